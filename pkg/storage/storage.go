// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

// Package storage persists the single token round-trip: the access token
// obtained by the auth flow, written when granted and read back on start.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	tokenFileName = "token.json"
	dirPerm       = 0o700
	filePerm      = 0o600
)

// ErrNoToken is returned when no token has been stored yet.
var ErrNoToken = errors.New("no stored token found")

// TokenStorage manages the persisted token file.
type TokenStorage struct {
	DataDir string
}

// StoredToken is the cached token with metadata from its validation.
type StoredToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Scopes       []string  `json:"scopes"`
	Login        string    `json:"login,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	ObtainedAt   time.Time `json:"obtained_at"`
}

// NewTokenStorage creates storage under the XDG data directory.
func NewTokenStorage() (*TokenStorage, error) {
	dataDir := filepath.Join(xdg.DataHome, "twitch-indicator")
	if err := os.MkdirAll(dataDir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &TokenStorage{DataDir: dataDir}, nil
}

// Save stores the token to disk with an atomic write.
func (s *TokenStorage) Save(token *StoredToken) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling token: %w", err)
	}

	tokenPath := filepath.Join(s.DataDir, tokenFileName)
	tempPath := tokenPath + ".tmp"
	if err := os.WriteFile(tempPath, data, filePerm); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tempPath, tokenPath); err != nil {
		os.Remove(tempPath) //nolint:errcheck
		return fmt.Errorf("renaming token file: %w", err)
	}
	return nil
}

// Load retrieves the token from disk.
func (s *TokenStorage) Load() (*StoredToken, error) {
	data, err := os.ReadFile(filepath.Join(s.DataDir, tokenFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var token StoredToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	return &token, nil
}

// Delete removes the stored token.
func (s *TokenStorage) Delete() error {
	if err := os.Remove(filepath.Join(s.DataDir, tokenFileName)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("deleting token file: %w", err)
	}
	return nil
}
