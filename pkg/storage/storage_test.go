// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *TokenStorage {
	t.Helper()
	return &TokenStorage{DataDir: t.TempDir()}
}

func TestSaveAndLoadToken(t *testing.T) {
	store := testStorage(t)

	token := &StoredToken{
		AccessToken: "abc123",
		TokenType:   "bearer",
		Scopes:      []string{"user:read:follows"},
		Login:       "streamfan",
		UserID:      "1234",
		ObtainedAt:  time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Save(token))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.Login, loaded.Login)
	assert.Equal(t, token.Scopes, loaded.Scopes)
	assert.True(t, token.ObtainedAt.Equal(loaded.ObtainedAt))
}

func TestSaveIsAtomicAndPrivate(t *testing.T) {
	store := testStorage(t)
	require.NoError(t, store.Save(&StoredToken{AccessToken: "abc"}))

	entries, err := os.ReadDir(store.DataDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")

	info, err := os.Stat(filepath.Join(store.DataDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadMissingToken(t *testing.T) {
	store := testStorage(t)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestDeleteToken(t *testing.T) {
	store := testStorage(t)
	require.NoError(t, store.Save(&StoredToken{AccessToken: "abc"}))

	require.NoError(t, store.Delete())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete())
}
