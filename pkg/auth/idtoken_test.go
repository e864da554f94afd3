// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTestIDToken builds a minimal unsigned JWT for claim extraction.
func makeTestIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	body := base64.RawURLEncoding.EncodeToString(payload)
	signature := base64.RawURLEncoding.EncodeToString([]byte("test-signature"))
	return header + "." + body + "." + signature
}

func TestParseIDToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := makeTestIDToken(t, map[string]any{
		"sub":                "12345",
		"preferred_username": "streamfan",
		"exp":                exp.Unix(),
	})

	claims, err := parseIDToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "12345", claims.Subject)
	assert.Equal(t, "streamfan", claims.PreferredUsername)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestParseIDTokenGarbage(t *testing.T) {
	_, err := parseIDToken("not-a-jwt")
	require.Error(t, err)
}
