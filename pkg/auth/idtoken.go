// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// IDClaims are the OIDC claims carried by a Twitch id_token when the
// openid scope was requested.
type IDClaims struct {
	Subject           string
	PreferredUsername string
	ExpiresAt         time.Time
}

// parseIDToken extracts claims without verifying the signature. The token
// arrived over the loopback TLS channel from the provider's own redirect;
// it is used for display only, never as a credential.
func parseIDToken(raw string) (*IDClaims, error) {
	var claims jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("parsing id_token: %w", err)
	}

	out := &IDClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if username, ok := claims["preferred_username"].(string); ok {
		out.PreferredUsername = username
	}
	return out, nil
}

// logIdentity records who just authorized, when an id_token is present.
func logIdentity(raw string) {
	claims, err := parseIDToken(raw)
	if err != nil {
		log.Debug().Err(err).Msg("could not parse id_token")
		return
	}
	log.Info().
		Str("user_id", claims.Subject).
		Str("login", claims.PreferredUsername).
		Msg("authorized")
}
