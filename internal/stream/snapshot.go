// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import "time"

// BackpressureMetrics describes queue pressure and subscriber liveness.
type BackpressureMetrics struct {
	TotalClients  int     `json:"total_clients"`
	ActiveClients int     `json:"active_clients"`
	QueueSize     int     `json:"queue_size"`
	QueueCapacity int     `json:"queue_capacity"`
	DroppedEvents uint64  `json:"dropped_events"`
	TotalEvents   uint64  `json:"total_events"`
	DropRate      float64 `json:"drop_rate"` // dropped/total in [0,1]
}

// Status is the read-only view returned by the status endpoint.
type Status struct {
	IsRunning       bool    `json:"is_running"`
	TotalTweets     uint64  `json:"total_tweets"`
	TotalAlerts     uint64  `json:"total_alerts"`
	RuntimeSeconds  int64   `json:"runtime_seconds"`
	TweetsPerSecond float64 `json:"tweets_per_second"`
	ConfiguredRate  int     `json:"configured_rate"`
	BackpressureMetrics
}

// Snapshot reads the backpressure metrics of q and r at now.
func Snapshot(q *Queue, r *Registry, activeWindow time.Duration, now time.Time) BackpressureMetrics {
	stats := q.Stats()
	return BackpressureMetrics{
		TotalClients:  r.Len(),
		ActiveClients: r.ActiveCount(activeWindow, now),
		QueueSize:     stats.Size,
		QueueCapacity: stats.Capacity,
		DroppedEvents: stats.TotalDropped,
		TotalEvents:   stats.TotalEnqueued,
		DropRate:      round(stats.DropRate(), 4),
	}
}
