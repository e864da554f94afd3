// SPDX-FileCopyrightText: Copyright 2025 The twitch-indicator authors

// Package poller drives the periodic stream refresh: one cycle at a time,
// wholesale rebuilds, and fire-and-forget hand-off to the notification
// collaborators.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"

	"github.com/fldc/twitch-indicator/pkg/twitch"
)

// imageCacheTTL bounds how long notification icons are reused before being
// fetched again.
const imageCacheTTL = 30 * time.Minute

// StreamSource is the slice of the API client the poller consumes.
type StreamSource interface {
	GetFollowedStreams(ctx context.Context, userID string) ([]twitch.Stream, error)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// Notifier consumes newly live streams. Implementations render tray
// entries or desktop notifications; the poller never waits on them and
// ignores their outcome.
type Notifier interface {
	StreamLive(stream twitch.Stream, icon []byte)
}

// Poller polls followed streams at a fixed interval. Cycles run strictly
// in sequence: a slow request delays the next cycle rather than stacking
// a second one behind it.
type Poller struct {
	source   StreamSource
	notifier Notifier
	userID   string
	interval time.Duration

	// OnUnauthorized is invoked when a cycle fails with an expired or
	// revoked token. Returning nil means a fresh token is in place and
	// polling continues.
	OnUnauthorized func(ctx context.Context) error

	images *ttlcache.Cache[string, []byte]

	mu      sync.RWMutex
	current []twitch.Stream
	seen    map[string]struct{}
}

// New creates a poller for the given user's followed streams.
func New(source StreamSource, notifier Notifier, userID string, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		notifier: notifier,
		userID:   userID,
		interval: interval,
		images: ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](imageCacheTTL),
		),
		seen: make(map[string]struct{}),
	}
}

// Run polls until ctx is canceled. The first cycle runs immediately.
func (p *Poller) Run(ctx context.Context) error {
	go p.images.Start()
	defer p.images.Stop()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// CurrentStreams returns the last successful poll result.
func (p *Poller) CurrentStreams() []twitch.Stream {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]twitch.Stream, len(p.current))
	copy(out, p.current)
	return out
}

// cycle performs one poll round. Failures are logged and skipped; the
// previous successful result is retained until the next good cycle.
func (p *Poller) cycle(ctx context.Context) {
	streams, err := p.source.GetFollowedStreams(ctx, p.userID)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, twitch.ErrUnauthorized), errors.Is(err, twitch.ErrUnauthenticated):
			log.Warn().Msg("token rejected, re-authentication required")
			if p.OnUnauthorized == nil {
				return
			}
			if err := p.OnUnauthorized(ctx); err != nil {
				log.Error().Err(err).Msg("re-authentication failed")
			}
		case errors.Is(err, twitch.ErrRateLimited):
			log.Warn().Msg("rate limited, deferring next poll")
		default:
			log.Error().Err(err).Msg("failed to update streams")
		}
		return
	}

	p.announceNew(ctx, streams)

	p.mu.Lock()
	p.current = streams
	p.mu.Unlock()

	log.Debug().Int("live", len(streams)).Msg("stream update completed")
}

// announceNew notifies streams that were not live in the previous cycle
// and prunes the seen set down to the currently live ids, so a stream
// going offline and back online notifies again.
func (p *Poller) announceNew(ctx context.Context, streams []twitch.Stream) {
	live := make(map[string]struct{}, len(streams))

	for _, stream := range streams {
		live[stream.ID] = struct{}{}

		if _, ok := p.seen[stream.ID]; ok {
			continue
		}
		p.seen[stream.ID] = struct{}{}

		if p.notifier != nil {
			p.notifier.StreamLive(stream, p.fetchIcon(ctx, stream))
		}
	}

	for id := range p.seen {
		if _, ok := live[id]; !ok {
			delete(p.seen, id)
		}
	}
}

// fetchIcon returns thumbnail bytes for a notification, served from the
// TTL cache when possible. A failed download is not worth failing the
// cycle over; the notifier just gets no icon.
func (p *Poller) fetchIcon(ctx context.Context, stream twitch.Stream) []byte {
	url := stream.ThumbnailWithSize(320, 180)
	if url == "" {
		return nil
	}

	if item := p.images.Get(url); item != nil {
		return item.Value()
	}

	data, err := p.source.DownloadImage(ctx, url)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("thumbnail download failed")
		return nil
	}
	p.images.Set(url, data, ttlcache.DefaultTTL)
	return data
}
