// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fldc/twitch-indicator/pkg/config"
	"github.com/fldc/twitch-indicator/pkg/storage"
	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// AddStatus registers the status command.
func AddStatus(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored token and whether it still validates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadWithDefaults()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			store, err := storage.NewTokenStorage()
			if err != nil {
				return fmt.Errorf("initializing token storage: %w", err)
			}

			stored, err := store.Load()
			if err != nil {
				return err
			}

			client := twitch.NewClient(cfg.Twitch.ClientID, twitch.NewTokenHandle(stored.AccessToken))
			validation, err := client.ValidateToken(ctx)
			if err != nil {
				return fmt.Errorf("stored token does not validate: %w", err)
			}

			fmt.Printf("Logged in as:  %s\n", validation.Login)
			fmt.Printf("User ID:       %s\n", validation.UserID)
			fmt.Printf("Scopes:        %s\n", strings.Join(validation.Scopes, ", "))
			fmt.Printf("Expires in:    %s\n", time.Duration(validation.ExpiresIn)*time.Second)
			fmt.Printf("Obtained:      %s\n", stored.ObtainedAt.Format(time.RFC3339))
			return nil
		},
	}

	parent.AddCommand(cmd)
}
