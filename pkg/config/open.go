// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package config

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// OpenURL opens a stream URL with the configured player program, falling
// back to the given browser opener when none is set. The optional extra
// command receives the channel name, e.g. for chat clients.
func (s *StreamOpenConfig) OpenURL(url string, openBrowser func(string) error) error {
	if program := strings.TrimSpace(s.Program); program != "" {
		args := append(append([]string{}, s.Arguments...), url)
		if err := exec.Command(program, args...).Start(); err != nil {
			return fmt.Errorf("launching %s: %w", program, err)
		}
		log.Info().Str("program", program).Str("url", url).Msg("opened stream")
	} else {
		if err := openBrowser(url); err != nil {
			return fmt.Errorf("opening browser: %w", err)
		}
		log.Info().Str("url", url).Msg("opened stream in browser")
	}

	if extra := strings.TrimSpace(s.ExtraCommand); extra != "" {
		if channel := extractChannelName(url); channel != "" {
			args := append(append([]string{}, s.ExtraArguments...), channel)
			if err := exec.Command(extra, args...).Start(); err != nil {
				log.Error().Err(err).Str("program", extra).Msg("failed to launch extra command")
			}
		}
	}

	return nil
}

// extractChannelName pulls the channel login out of a twitch.tv URL.
func extractChannelName(url string) string {
	pos := strings.Index(url, "twitch.tv/")
	if pos < 0 {
		return ""
	}
	rest := url[pos+len("twitch.tv/"):]
	if end := strings.IndexAny(rest, "/?#"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
