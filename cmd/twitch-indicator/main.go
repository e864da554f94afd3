// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fldc/twitch-indicator/pkg/cmd"
)

var version = "dev" // Set via ldflags during build

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "twitch-indicator",
		Short: "Twitch live-stream indicator",
		Long: `twitch-indicator watches the streams you follow on Twitch and announces
when one goes live.

It authorizes as a public OAuth client: the browser flow hands the access
token back over a short-lived TLS listener on localhost, so no client
secret is ever involved.`,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			cmd.SetupLogging(debug)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	cmd.AddRun(rootCmd)
	cmd.AddLogin(rootCmd)
	cmd.AddLogout(rootCmd)
	cmd.AddStatus(rootCmd)
	cmd.AddOpen(rootCmd)
	addVersion(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addVersion(parent *cobra.Command) {
	parent.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("twitch-indicator version %s\n", version)
		},
	})
}
