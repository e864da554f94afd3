// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

package cmd

import (
	"github.com/rs/zerolog/log"

	"github.com/fldc/twitch-indicator/pkg/config"
	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// logNotifier is the built-in Notifier: it announces live streams on the
// log. Desktop notification and tray collaborators plug in behind the
// same interface.
type logNotifier struct {
	cfg config.NotificationConfig
}

func newLogNotifier(cfg config.NotificationConfig) *logNotifier {
	return &logNotifier{cfg: cfg}
}

func (n *logNotifier) StreamLive(stream twitch.Stream, icon []byte) {
	if !n.cfg.Enabled {
		return
	}

	event := log.Info().
		Str("channel", stream.UserName).
		Str("title", stream.Title).
		Str("url", stream.URL())
	if n.cfg.ShowGame && stream.GameName != "" {
		event = event.Str("game", stream.GameName)
	}
	if n.cfg.ShowViewerCount {
		event = event.Str("viewers", stream.FormattedViewerCount())
	}
	event.Msg("stream went live")
}
