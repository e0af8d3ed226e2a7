// Package secrets seals provider credentials at rest with NaCl secretbox.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sb1:"

var (
	ErrInvalidKey   = errors.New("credentials key must be 32 bytes (hex or base64)")
	ErrDecrypt      = errors.New("credentials decryption failed")
	ErrKeyNotLoaded = errors.New("credentials are sealed but no key is configured")
)

// Box seals and opens credential strings. A Box without a key passes values
// through untouched.
type Box struct {
	key *[32]byte
}

// NewBox parses a 32-byte key given as hex or base64. An empty key yields a
// pass-through Box.
func NewBox(rawKey string) (*Box, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return &Box{}, nil
	}
	var decoded []byte
	if b, err := hex.DecodeString(rawKey); err == nil && len(b) == 32 {
		decoded = b
	} else if b, err := base64.StdEncoding.DecodeString(rawKey); err == nil && len(b) == 32 {
		decoded = b
	} else {
		return nil, ErrInvalidKey
	}
	var key [32]byte
	copy(key[:], decoded)
	return &Box{key: &key}, nil
}

func (b *Box) Enabled() bool { return b != nil && b.key != nil }

func (b *Box) Seal(plaintext string) (string, error) {
	if !b.Enabled() || plaintext == "" {
		return plaintext, nil
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, b.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as-is.
func (b *Box) Open(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}
	if !b.Enabled() {
		return "", ErrKeyNotLoaded
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil || len(raw) < 24 {
		return "", ErrDecrypt
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	out, ok := secretbox.Open(nil, raw[24:], &nonce, b.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(out), nil
}
