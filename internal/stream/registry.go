// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
)

// ErrDuplicateSubscriber is returned by Registry.Add when the id is already registered.
var ErrDuplicateSubscriber = errors.New("subscriber already registered")

// Transport is a write handle to one connected subscriber.
// Implementations must be safe for concurrent Write and Close, and Close
// must be idempotent.
type Transport interface {
	// Write sends one encoded envelope. It must honour ctx cancellation.
	Write(ctx context.Context, frame []byte) error
	Close() error
	// Kind names the transport for metrics ("sse", "websocket").
	Kind() string
}

// Subscriber is a read-only view of a registered subscriber.
type Subscriber struct {
	ID             string    `json:"id"`
	Transport      string    `json:"transport"`
	ConnectedAt    time.Time `json:"connected_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	EventsSent     uint64    `json:"events_sent"`
	handle         Transport
}

type subscriber struct {
	id           string
	transport    Transport
	connectedAt  time.Time
	lastActivity time.Time
	eventsSent   uint64
}

func (s *subscriber) view() Subscriber {
	return Subscriber{
		ID:             s.id,
		Transport:      s.transport.Kind(),
		ConnectedAt:    s.connectedAt,
		LastActivityAt: s.lastActivity,
		EventsSent:     s.eventsSent,
		handle:         s.transport,
	}
}

// Registry is the set of live subscribers, iterated in registration order.
type Registry struct {
	mu    sync.RWMutex
	subs  map[string]*subscriber
	order []string
	now   func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		subs: make(map[string]*subscriber),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers transport under id.
func (r *Registry) Add(id string, transport Transport) error {
	r.mu.Lock()
	if _, exists := r.subs[id]; exists {
		r.mu.Unlock()
		return ErrDuplicateSubscriber
	}
	now := r.now()
	r.subs[id] = &subscriber{
		id:           id,
		transport:    transport,
		connectedAt:  now,
		lastActivity: now,
	}
	r.order = append(r.order, id)
	count := len(r.subs)
	r.mu.Unlock()

	metrics.RecordSubscriberAdded(transport.Kind())
	logging.Info().
		Str("subscriber_id", id).
		Str("transport", transport.Kind()).
		Int("subscribers", count).
		Msg("Subscriber connected")
	return nil
}

// Remove unregisters id after a client disconnect.
// It reports whether this call performed the removal.
func (r *Registry) Remove(id string) bool {
	return r.RemoveFor(id, metrics.RemovalDisconnect)
}

// RemoveFor unregisters id and records reason. Only the call that actually
// removes the entry closes its transport, so concurrent removals from the
// dispatcher, the sweeper, and the connection handler close it exactly once.
func (r *Registry) RemoveFor(id, reason string) bool {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.subs, id)
	r.dropFromOrder(id)
	count := len(r.subs)
	r.mu.Unlock()

	if err := sub.transport.Close(); err != nil {
		logging.Debug().Err(err).Str("subscriber_id", id).Msg("Error closing subscriber transport")
	}
	metrics.RecordSubscriberRemoved(sub.transport.Kind(), reason)
	logging.Info().
		Str("subscriber_id", id).
		Str("reason", reason).
		Int("subscribers", count).
		Msg("Subscriber removed")
	return true
}

// dropFromOrder must be called with mu held.
func (r *Registry) dropFromOrder(id string) {
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// ForEachActive calls fn for every subscriber registered when the call
// started, in registration order, skipping any removed in the meantime.
// fn runs without the registry lock held, so it may add or remove
// subscribers. Returning false stops iteration.
func (r *Registry) ForEachActive(fn func(Subscriber) bool) {
	for _, s := range r.Snapshot() {
		if !r.Has(s.ID) {
			continue
		}
		if !fn(s) {
			return
		}
	}
}

// Touch records a successful delivery to id. It is a no-op for unknown ids.
func (r *Registry) Touch(id string) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[id]; ok {
		sub.lastActivity = now
		sub.eventsSent++
	}
}

// SweepStale removes every subscriber idle for longer than window and
// returns the removed ids.
func (r *Registry) SweepStale(window time.Duration, now time.Time) []string {
	r.mu.RLock()
	var stale []string
	for _, id := range r.order {
		if now.Sub(r.subs[id].lastActivity) > window {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	removed := stale[:0]
	for _, id := range stale {
		if r.RemoveFor(id, metrics.RemovalStale) {
			removed = append(removed, id)
		}
	}
	return removed
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// ActiveCount returns the number of subscribers with activity within window of now.
func (r *Registry) ActiveCount(window time.Duration, now time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, sub := range r.subs {
		if now.Sub(sub.lastActivity) < window {
			n++
		}
	}
	return n
}

// Snapshot returns the registered subscribers in registration order.
func (r *Registry) Snapshot() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Subscriber, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.subs[id].view())
	}
	return out
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subs[id]
	return ok
}
