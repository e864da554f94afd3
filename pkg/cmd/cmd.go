// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

// Package cmd implements the twitch-indicator command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fldc/twitch-indicator/pkg/auth"
	"github.com/fldc/twitch-indicator/pkg/config"
	"github.com/fldc/twitch-indicator/pkg/storage"
	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// SetupLogging configures the global zerolog logger.
func SetupLogging(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// authenticate runs one browser authorization round, validates the granted
// token and persists it. The shared handle is updated so API calls pick up
// the new token immediately.
func authenticate(ctx context.Context, cfg *config.Config, client *twitch.Client, store *storage.TokenStorage) error {
	flow := &auth.Flow{
		ClientID: cfg.Twitch.ClientID,
		Scopes:   cfg.Twitch.Scopes,
		Port:     cfg.Twitch.RedirectPort,
	}

	token, err := flow.Login(ctx)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	client.Token().Set(token.AccessToken)

	validation, err := client.ValidateToken(ctx)
	if err != nil {
		client.Token().Clear()
		return fmt.Errorf("validating granted token: %w", err)
	}

	stored := &storage.StoredToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Scopes:       token.Scope,
		Login:        validation.Login,
		UserID:       validation.UserID,
		ObtainedAt:   time.Now(),
	}
	if err := store.Save(stored); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	log.Info().Str("login", validation.Login).Msg("authenticated")
	return nil
}

// loadStoredToken seeds the client's token handle from disk if a token was
// persisted earlier. Missing tokens are not an error.
func loadStoredToken(client *twitch.Client, store *storage.TokenStorage) {
	stored, err := store.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrNoToken) {
			log.Warn().Err(err).Msg("could not read stored token")
		}
		return
	}
	client.Token().Set(stored.AccessToken)
	log.Debug().Str("login", stored.Login).Msg("loaded stored token")
}
