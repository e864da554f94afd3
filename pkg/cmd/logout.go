// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fldc/twitch-indicator/pkg/storage"
)

// AddLogout registers the logout command.
func AddLogout(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewTokenStorage()
			if err != nil {
				return fmt.Errorf("initializing token storage: %w", err)
			}
			if err := store.Delete(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}

	parent.AddCommand(cmd)
}
