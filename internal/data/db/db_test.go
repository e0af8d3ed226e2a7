package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	types "github.com/yungbote/skilltree-backend/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestSQLiteMigrateAndUniqueURL(t *testing.T) {
	gdb, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })
	require.NoError(t, AutoMigrateAll(gdb))

	first := &types.Source{Title: "a", URL: "https://x.test/a", SourceType: types.SourceTypeBlog}
	require.NoError(t, gdb.Create(first).Error)
	dup := &types.Source{Title: "b", URL: "https://x.test/a", SourceType: types.SourceTypeBlog}
	err = gdb.Create(dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestPostgresDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", PostgresDSN("h", "5432", "u", "p", "n"))
}
