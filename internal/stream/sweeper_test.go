// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweeper_Sweep(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(WithClock(clock.Now))
	s := NewSweeper(r, 0, 0)

	if s.interval != DefaultSweepInterval || s.window != DefaultStaleWindow {
		t.Errorf("defaults = %v/%v, want %v/%v", s.interval, s.window, DefaultSweepInterval, DefaultStaleWindow)
	}

	_ = r.Add("idle", newFakeTransport())
	clock.Advance(2 * time.Minute)
	_ = r.Add("recent", newFakeTransport())
	clock.Advance(4 * time.Minute)

	removed := s.Sweep()
	if len(removed) != 1 || removed[0] != "idle" {
		t.Errorf("Sweep() = %v, want [idle]", removed)
	}

	// Idempotent against a dispatcher removal of the same subscriber.
	if r.RemoveFor("idle", "write_failure") {
		t.Error("RemoveFor(idle) after sweep = true, want false")
	}
	if got := s.Sweep(); len(got) != 0 {
		t.Errorf("second Sweep() = %v, want none", got)
	}
}

func TestSweeper_ServeStopsOnCancel(t *testing.T) {
	s := NewSweeper(NewRegistry(), time.Millisecond, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(5 * time.Millisecond)
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
