// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package cache provides a small TTL cache for API responses that are
// expensive to recompute on every request, such as the trending snapshot.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often Serve purges expired entries.
const DefaultCleanupInterval = time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	TotalKeys   int64     `json:"total_keys"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache is a thread-safe map with a single TTL for every entry.
// Expired entries are dropped lazily on Get and in bulk by Cleanup.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
	stats   Stats

	// loadMu serializes GetOrLoad so concurrent misses compute once.
	loadMu sync.Mutex
}

// Option configures a Cache.
type Option func(*cacheOptions)

type cacheOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *cacheOptions) { o.now = now }
}

// New creates a cache. A ttl of zero or less disables caching: every Get
// misses and GetOrLoad always calls the loader.
func New[V any](ttl time.Duration, opts ...Option) *Cache[V] {
	o := cacheOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     o.now,
		stats:   Stats{LastCleanup: o.now()},
	}
}

// Get returns the value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		c.record(func(s *Stats) { s.Misses++ })
		return zero, false
	}
	if !now.Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, still := c.entries[key]; still && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
			c.stats.Evictions++
			c.stats.TotalKeys = int64(len(c.entries))
		}
		c.stats.Misses++
		c.mu.Unlock()
		return zero, false
	}
	c.record(func(s *Stats) { s.Hits++ })
	return e.value, true
}

// Set stores value under key with the cache TTL.
func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.stats.TotalKeys = int64(len(c.entries))
	c.mu.Unlock()
}

// GetOrLoad returns the cached value for key, calling load on a miss and
// caching its result. Loader errors are returned and not cached.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// Another caller may have filled the entry while we waited.
	if v, ok := c.peek(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.stats.Evictions++
		c.stats.TotalKeys = int64(len(c.entries))
	}
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.stats.Evictions += int64(len(c.entries))
	c.entries = make(map[string]entry[V])
	c.stats.TotalKeys = 0
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Cleanup removes every expired entry and returns how many were removed.
func (c *Cache[V]) Cleanup() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Evictions += int64(removed)
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.LastCleanup = now
	return removed
}

// Serve runs Cleanup every DefaultCleanupInterval until ctx is done.
// It implements suture.Service.
func (c *Cache[V]) Serve(ctx context.Context) error {
	ticker := time.NewTicker(DefaultCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// String names the service in supervisor logs.
func (c *Cache[V]) String() string {
	return "response-cache-cleanup"
}

func (c *Cache[V]) record(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}
