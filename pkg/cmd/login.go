// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fldc/twitch-indicator/pkg/config"
	"github.com/fldc/twitch-indicator/pkg/storage"
	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// AddLogin registers the login command.
func AddLogin(parent *cobra.Command) {
	var (
		clientID string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize with Twitch in the browser",
		Long: `Opens the system browser for a Twitch authorization and captures the
resulting access token on a local TLS listener.

Unless --force is given, a stored token that still validates is kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadWithDefaults()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if clientID != "" {
				cfg.Twitch.ClientID = clientID
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			store, err := storage.NewTokenStorage()
			if err != nil {
				return fmt.Errorf("initializing token storage: %w", err)
			}

			client := twitch.NewClient(cfg.Twitch.ClientID, twitch.NewTokenHandle(""))
			loadStoredToken(client, store)

			if !force {
				if validation, err := client.ValidateToken(ctx); err == nil {
					fmt.Printf("Already logged in as %s (token valid for %ds)\n",
						validation.Login, validation.ExpiresIn)
					return nil
				}
				client.Token().Clear()
			}

			if err := authenticate(ctx, cfg, client, store); err != nil {
				return err
			}

			fmt.Println("Login successful.")
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "Twitch application client ID (env: TWITCH_INDICATOR_CLIENT_ID)")
	cmd.Flags().BoolVar(&force, "force", false, "Force a new authorization (ignore stored token)")

	parent.AddCommand(cmd)
}
