// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package detection classifies tweets as suspected buzzer activity.
//
// Two classifiers are provided:
//   - Heuristic: the inline rule run on every produced tweet. It is cheap
//     and deterministic and raises the stream's alert events.
//   - Client: an on-demand call to the external AI detection service,
//     guarded by a circuit breaker and falling back to a neutral verdict
//     when the service is unavailable.
package detection

import (
	"time"

	"github.com/tomtom215/buzzstream/internal/models"
)

// Heuristic thresholds.
const (
	MinHashtags        = 3
	NewAccountAge      = 90 * 24 * time.Hour
	FollowingRatio     = 2
	heuristicScore     = 0.75
	heuristicReasonOne = "High posting frequency detected"
	heuristicReasonTwo = "Suspicious hashtag usage pattern"
)

// QuickCheck reports whether t looks like buzzer activity at now: at least
// three hashtags, an account younger than 90 days, and following more than
// twice the follower count. All three must hold.
//
//nolint:gocritic // models.Tweet is passed by value across the producer
func QuickCheck(t models.Tweet, now time.Time) bool {
	hasManyHashtags := len(t.Entities.Hashtags) >= MinHashtags
	isNewAccount := t.Author.CreatedAt.After(now.Add(-NewAccountAge))
	hasHighFollowing := t.Author.Following > t.Author.Followers*FollowingRatio
	return hasManyHashtags && isNewAccount && hasHighFollowing
}

// Heuristic adapts QuickCheck to the stream classifier interface.
type Heuristic struct{}

// Classify returns the alert payload for a flagged tweet.
//
//nolint:gocritic // models.Tweet is passed by value across the producer
func (Heuristic) Classify(t models.Tweet, now time.Time) (models.Detection, bool) {
	if !QuickCheck(t, now) {
		return models.Detection{}, false
	}
	return models.Detection{
		TweetID:     t.ID,
		BuzzerScore: heuristicScore,
		IsBuzzer:    true,
		Reasons:     []string{heuristicReasonOne, heuristicReasonTwo},
		ClusterID:   nil,
		Confidence:  heuristicScore,
		AnalyzedAt:  now.UTC(),
	}, true
}
