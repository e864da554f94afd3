// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package twitch

import "sync"

// TokenHandle is the shared owner of the current access token. The client
// reads it on every request; the auth flow and the settings path replace it
// wholesale. Reads never observe a partial update.
type TokenHandle struct {
	mu    sync.RWMutex
	token string
}

// NewTokenHandle creates a handle, optionally seeded with a stored token.
func NewTokenHandle(token string) *TokenHandle {
	return &TokenHandle{token: token}
}

// Get returns the current token and whether one is set.
func (h *TokenHandle) Get() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// Set replaces the token value.
func (h *TokenHandle) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// Clear drops the token.
func (h *TokenHandle) Clear() {
	h.Set("")
}
