// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
)

// Dispatcher defaults.
const (
	DefaultDispatchInterval = 100 * time.Millisecond
	DefaultMaxBatchSize     = 5
	DefaultWriteTimeout     = 5 * time.Second
)

// DispatcherConfig holds dispatch cycle tuning.
type DispatcherConfig struct {
	Interval     time.Duration
	MaxBatchSize int
	WriteTimeout time.Duration
}

// DefaultDispatcherConfig returns the production dispatch settings.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Interval:     DefaultDispatchInterval,
		MaxBatchSize: DefaultMaxBatchSize,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// BatchSize returns how many events each subscriber may take in one cycle:
// min(maxBatch, ceil(queueSize/subscribers)). It is 0 when either count is 0.
func BatchSize(queueSize, subscribers, maxBatch int) int {
	if queueSize <= 0 || subscribers <= 0 || maxBatch <= 0 {
		return 0
	}
	fair := (queueSize + subscribers - 1) / subscribers
	if fair < maxBatch {
		return fair
	}
	return maxBatch
}

// TickResult summarises one dispatch cycle.
type TickResult struct {
	Delivered int
	Removed   []string
}

// Dispatcher drains the shared queue into the registry on a fixed cadence.
// Each event is delivered to at most one subscriber.
type Dispatcher struct {
	queue    *Queue
	registry *Registry
	cfg      DispatcherConfig
	latency  latencyTracker
}

// NewDispatcher creates a dispatcher. Zero config fields take their defaults.
func NewDispatcher(queue *Queue, registry *Registry, cfg DispatcherConfig) *Dispatcher {
	def := DefaultDispatcherConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = def.MaxBatchSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Dispatcher{
		queue:    queue,
		registry: registry,
		cfg:      cfg,
	}
}

// Tick runs one dispatch cycle.
func (d *Dispatcher) Tick(ctx context.Context) TickResult {
	var result TickResult

	subscribers := d.registry.Len()
	queued := d.queue.Size()
	if subscribers == 0 || queued == 0 {
		return result
	}

	start := time.Now()
	batch := BatchSize(queued, subscribers, d.cfg.MaxBatchSize)

	var failed []string
	d.registry.ForEachActive(func(sub Subscriber) bool {
		if ctx.Err() != nil {
			return false
		}
		events := d.queue.Drain(batch)
		if len(events) == 0 {
			return false
		}
		delivered, ok := d.deliver(ctx, sub, events)
		result.Delivered += delivered
		if !ok {
			failed = append(failed, sub.ID)
		}
		return true
	})

	for _, id := range failed {
		if d.registry.RemoveFor(id, metrics.RemovalWriteFailure) {
			result.Removed = append(result.Removed, id)
		}
	}

	metrics.StreamDispatchDuration.Observe(time.Since(start).Seconds())
	return result
}

// deliver writes events to sub in order and stops at the first failure.
// Events after a failed write are discarded.
func (d *Dispatcher) deliver(ctx context.Context, sub Subscriber, events []Event) (int, bool) {
	delivered := 0
	for _, e := range events {
		frame, err := e.MarshalFrame()
		if err != nil {
			logging.Error().Err(err).Str("kind", string(e.Kind())).Msg("Dropping unencodable event")
			continue
		}

		writeCtx, cancel := context.WithTimeout(ctx, d.cfg.WriteTimeout)
		start := time.Now()
		err = sub.handle.Write(writeCtx, frame)
		elapsed := time.Since(start)
		cancel()

		metrics.RecordWrite(string(e.Kind()), sub.Transport, elapsed, err)
		if err != nil {
			logging.Warn().
				Err(err).
				Str("subscriber_id", sub.ID).
				Str("transport", sub.Transport).
				Msg("Write to subscriber failed, scheduling removal")
			return delivered, false
		}
		d.latency.observe(elapsed)
		d.registry.Touch(sub.ID)
		delivered++
	}
	return delivered, true
}

// AvgLatency returns the moving average of successful write latency.
func (d *Dispatcher) AvgLatency() time.Duration {
	return d.latency.average()
}

// Serve runs Tick every configured interval until ctx is cancelled.
// Implements suture.Service.
func (d *Dispatcher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", d.cfg.Interval).Int("max_batch", d.cfg.MaxBatchSize).Msg("Dispatcher started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Dispatcher stopped")
			return ctx.Err()
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (d *Dispatcher) String() string {
	return "stream-dispatcher"
}

// latencyAlpha weights the newest sample in the moving average.
const latencyAlpha = 0.2

// latencyTracker is an exponentially weighted moving average of write latency.
type latencyTracker struct {
	mu      sync.Mutex
	avg     float64 // nanoseconds
	samples uint64
}

func (l *latencyTracker) observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.samples == 0 {
		l.avg = float64(d)
	} else {
		l.avg = latencyAlpha*float64(d) + (1-latencyAlpha)*l.avg
	}
	l.samples++
}

func (l *latencyTracker) average() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Duration(math.Round(l.avg))
}
