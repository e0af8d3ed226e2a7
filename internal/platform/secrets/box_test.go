package secrets

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealOpenRoundTrip(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)
	require.True(t, box.Enabled())

	sealed, err := box.Seal("sk-live-123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "sk-live-123")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-123", plain)
}

func TestOpenWithWrongKey(t *testing.T) {
	box, err := NewBox(testKey)
	require.NoError(t, err)
	sealed, err := box.Seal("secret")
	require.NoError(t, err)

	other := make([]byte, 32)
	other[0] = 0xff
	wrong, err := NewBox(hex.EncodeToString(other))
	require.NoError(t, err)
	_, err = wrong.Open(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestPassThroughBox(t *testing.T) {
	box, err := NewBox("")
	require.NoError(t, err)
	sealed, err := box.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	_, err = box.Open(sealedPrefix + "abc")
	assert.ErrorIs(t, err, ErrKeyNotLoaded)
}

func TestNewBoxRejectsShortKey(t *testing.T) {
	_, err := NewBox("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
