// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// countingService runs until cancelled, failing its first fails runs.
type countingService struct {
	name    string
	fails   int32
	starts  atomic.Int32
	started chan struct{}
}

func newCountingService(name string, fails int32) *countingService {
	return &countingService{name: name, fails: fails, started: make(chan struct{}, 16)}
}

func (s *countingService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	select {
	case s.started <- struct{}{}:
	default:
	}
	if n <= s.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}

	custom := TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: 3 * time.Second}
	tree, err = NewSupervisorTree(quietLogger(), custom)
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.config != custom {
		t.Errorf("config = %+v, want %+v", tree.config, custom)
	}
}

func TestSupervisorTree_RunsEveryLayer(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	svcs := []*countingService{
		newCountingService("data", 0),
		newCountingService("messaging", 0),
		newCountingService("api", 0),
	}
	tree.AddDataService(svcs[0])
	tree.AddMessagingService(svcs[1])
	tree.AddAPIService(svcs[2])

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, s := range svcs {
		select {
		case <-s.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s service did not start", s.name)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("ServeBackground() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services = %v, want none", report)
	}
}

func TestSupervisorTree_RestartsFailedService(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	flaky := newCountingService("flaky", 2)
	steady := newCountingService("steady", 0)
	tree.AddMessagingService(flaky)
	tree.AddAPIService(steady)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- tree.Serve(ctx) }()

	deadline := time.After(3 * time.Second)
	for flaky.starts.Load() < 3 {
		select {
		case <-flaky.started:
		case <-deadline:
			t.Fatalf("flaky starts = %d, want 3", flaky.starts.Load())
		}
	}

	if got := steady.starts.Load(); got != 1 {
		t.Errorf("steady starts = %d, want 1 (isolated from messaging failures)", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
}
