// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fldc/twitch-indicator/pkg/config"
	"github.com/fldc/twitch-indicator/pkg/poller"
	"github.com/fldc/twitch-indicator/pkg/storage"
	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// AddRun registers the run command, the long-lived indicator loop.
func AddRun(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the indicator: authenticate and poll followed streams",
		Long: `Runs the indicator loop: makes sure a valid token is available
(starting a browser authorization if not), then polls the followed
streams at the configured interval and announces streams going live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.LoadWithDefaults()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
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

			if _, err := client.ValidateToken(ctx); err != nil {
				log.Info().Msg("no valid token, starting authorization")
				if err := authenticate(ctx, cfg, client, store); err != nil {
					return err
				}
			}

			user, err := client.GetUser(ctx)
			if err != nil {
				return fmt.Errorf("fetching authenticated user: %w", err)
			}
			log.Info().Str("login", user.Login).Str("display_name", user.DisplayName).Msg("running as")

			interval := time.Duration(cfg.Twitch.RefreshIntervalMinutes) * time.Minute
			notifier := newLogNotifier(cfg.Notifications)

			p := poller.New(client, notifier, user.ID, interval)
			p.OnUnauthorized = func(ctx context.Context) error {
				return authenticate(ctx, cfg, client, store)
			}

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				return p.Run(ctx)
			})

			if err := group.Wait(); err != nil && ctx.Err() == nil {
				return err
			}
			log.Info().Msg("shutting down")
			return nil
		},
	}

	parent.AddCommand(cmd)
}
