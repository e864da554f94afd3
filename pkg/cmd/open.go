// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fldc/twitch-indicator/pkg/auth"
	"github.com/fldc/twitch-indicator/pkg/config"
)

// AddOpen registers the open command.
func AddOpen(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "open <channel>",
		Short: "Open a channel's stream with the configured player",
		Long: `Opens a Twitch channel's stream page. With stream_open.program set in the
config the URL is handed to that player (e.g. mpv or streamlink) instead
of the browser; stream_open.extra_command additionally receives the
channel name, e.g. to launch a chat client.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithDefaults()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			url := "https://www.twitch.tv/" + args[0]
			return cfg.StreamOpen.OpenURL(url, auth.OpenBrowser)
		},
	}

	parent.AddCommand(cmd)
}
