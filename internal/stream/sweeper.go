// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import (
	"context"
	"time"

	"github.com/tomtom215/buzzstream/internal/logging"
)

// Sweeper defaults.
const (
	DefaultSweepInterval = 60 * time.Second
	DefaultStaleWindow   = 5 * time.Minute
	DefaultActiveWindow  = 60 * time.Second
)

// Sweeper periodically removes subscribers that have not received an
// event within the stale window.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	window   time.Duration
	now      func() time.Time
}

// NewSweeper creates a sweeper. Non-positive durations take their defaults.
func NewSweeper(registry *Registry, interval, window time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if window <= 0 {
		window = DefaultStaleWindow
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		window:   window,
		now:      registry.now,
	}
}

// Sweep removes stale subscribers once and returns their ids.
func (s *Sweeper) Sweep() []string {
	removed := s.registry.SweepStale(s.window, s.now())
	for _, id := range removed {
		logging.Info().Str("subscriber_id", id).Dur("stale_window", s.window).Msg("Removed stale subscriber")
	}
	return removed
}

// Serve implements suture.Service.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Sweeper) String() string {
	return "stream-sweeper"
}
