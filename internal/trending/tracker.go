// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package trending keeps a sliding window of recent tweets and finds
// hashtag clusters that may be artificially boosted by buzzer accounts.
package trending

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tomtom215/buzzstream/internal/models"
)

// Window defaults.
const (
	DefaultWindowSize = 1000
	DefaultWindowTTL  = 10 * time.Minute
)

// Config configures a Tracker.
type Config struct {
	WindowSize     int
	WindowTTL      time.Duration
	MinClusterSize int
}

// Tracker holds the most recent tweets, bounded by count and age.
// It is safe for concurrent use.
type Tracker struct {
	window         *expirable.LRU[string, models.Tweet]
	minClusterSize int
	now            func() time.Time
}

// NewTracker creates a tracker. Zero config fields take their defaults.
func NewTracker(cfg Config) *Tracker {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.WindowTTL <= 0 {
		cfg.WindowTTL = DefaultWindowTTL
	}
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = DefaultMinClusterSize
	}
	return &Tracker{
		window:         expirable.NewLRU[string, models.Tweet](cfg.WindowSize, nil, cfg.WindowTTL),
		minClusterSize: cfg.MinClusterSize,
		now:            time.Now,
	}
}

// RecordTweet adds t to the window. It never fails.
//
//nolint:gocritic // models.Tweet is passed by value across the producer
func (tr *Tracker) RecordTweet(_ context.Context, t models.Tweet) error {
	tr.window.Add(t.ID, t)
	return nil
}

// Len returns the number of tweets currently in the window.
func (tr *Tracker) Len() int {
	return tr.window.Len()
}

// Analyze scores every hashtag cluster in the window.
func (tr *Tracker) Analyze() []models.TrendingTopic {
	return Analyze(tr.window.Values(), tr.minClusterSize, tr.now())
}

// Top returns at most n topics from Analyze.
func (tr *Tracker) Top(n int) []models.TrendingTopic {
	topics := tr.Analyze()
	if n >= 0 && len(topics) > n {
		topics = topics[:n]
	}
	return topics
}
