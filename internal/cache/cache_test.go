// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCache_SetGet(t *testing.T) {
	c := New[string](time.Minute)

	c.Set("a", "alpha")
	if v, ok := c.Get("a"); !ok || v != "alpha" {
		t.Errorf("Get(a) = %q, %v, want alpha, true", v, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) ok = true, want false")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 key", stats)
	}
	if stats.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", stats.HitRate())
	}
}

func TestCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := New[int](10*time.Second, WithClock(clock.Now))

	c.Set("k", 1)
	clock.Advance(9 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired early")
	}
	clock.Advance(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry served at its expiry instant")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy eviction", c.Len())
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Errorf("Evictions = %d, want 1", ev)
	}
}

func TestCache_DisabledTTL(t *testing.T) {
	c := New[int](0)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("Get() ok = true with ttl 0, want false")
	}

	calls := 0
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrLoad("k", func() (int, error) { calls++; return calls, nil }); err != nil {
			t.Fatalf("GetOrLoad() error = %v", err)
		}
	}
	if calls != 3 {
		t.Errorf("loader calls = %d, want 3", calls)
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	clock := newFakeClock()
	c := New[string](time.Minute, WithClock(clock.Now))
	var calls atomic.Int32
	load := func() (string, error) {
		calls.Add(1)
		return "fresh", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("trending", load)
			if err != nil || v != "fresh" {
				t.Errorf("GetOrLoad() = %q, %v", v, err)
			}
		}()
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("loader calls = %d, want 1", n)
	}

	clock.Advance(time.Minute)
	if _, err := c.GetOrLoad("trending", load); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("loader calls after expiry = %d, want 2", n)
	}
}

func TestCache_GetOrLoadError(t *testing.T) {
	c := New[int](time.Minute)
	boom := errors.New("boom")

	if _, err := c.GetOrLoad("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("GetOrLoad() error = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0: errors must not be cached", c.Len())
	}
}

func TestCache_DeleteClear(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	c.Delete("missing")
	if c.Len() != 2 {
		t.Errorf("Len() after Delete = %d, want 2", c.Len())
	}

	c.Clear()
	stats := c.Stats()
	if c.Len() != 0 || stats.TotalKeys != 0 {
		t.Errorf("Len() = %d, TotalKeys = %d after Clear, want 0", c.Len(), stats.TotalKeys)
	}
	if stats.Evictions != 3 {
		t.Errorf("Evictions = %d, want 3", stats.Evictions)
	}
}

func TestCache_Cleanup(t *testing.T) {
	clock := newFakeClock()
	c := New[int](time.Minute, WithClock(clock.Now))
	c.Set("old", 1)
	clock.Advance(30 * time.Second)
	c.Set("new", 2)
	clock.Advance(45 * time.Second)

	if n := c.Cleanup(); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("unexpired entry removed by Cleanup")
	}
	if got := c.Stats().LastCleanup; !got.Equal(clock.Now()) {
		t.Errorf("LastCleanup = %v, want %v", got, clock.Now())
	}
}

func TestCache_ServeStopsOnCancel(t *testing.T) {
	c := New[int](time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
