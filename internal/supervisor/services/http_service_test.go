// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// fakeHTTPServer blocks in ListenAndServe until Shutdown unless listenErr is set.
type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	listens     atomic.Int32
	shutdowns   atomic.Int32
	started     chan struct{}
	stop        chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{
		started: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return f.shutdownErr
}

var _ suture.Service = (*HTTPServerService)(nil)

func TestNewHTTPServerService_Timeout(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{in: 3 * time.Second, want: 3 * time.Second},
		{in: 0, want: 10 * time.Second},
		{in: -time.Second, want: 10 * time.Second},
	}
	for _, tt := range tests {
		svc := NewHTTPServerService(newFakeHTTPServer(), tt.in)
		if svc.shutdownTimeout != tt.want {
			t.Errorf("NewHTTPServerService(%v).shutdownTimeout = %v, want %v", tt.in, svc.shutdownTimeout, tt.want)
		}
	}
	if got := NewHTTPServerService(newFakeHTTPServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q, want http-server", got)
	}
}

func TestHTTPServerService_ShutdownOnCancel(t *testing.T) {
	server := newFakeHTTPServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-server.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	if got := server.shutdowns.Load(); got != 1 {
		t.Errorf("Shutdown calls = %d, want 1", got)
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	bindErr := errors.New("bind: address already in use")
	server := newFakeHTTPServer()
	server.listenErr = bindErr

	err := NewHTTPServerService(server, time.Second).Serve(context.Background())
	if !errors.Is(err, bindErr) {
		t.Errorf("Serve() error = %v, want %v", err, bindErr)
	}
	if got := server.shutdowns.Load(); got != 0 {
		t.Errorf("Shutdown calls = %d, want 0", got)
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	shutdownErr := errors.New("shutdown timeout")
	server := newFakeHTTPServer()
	server.shutdownErr = shutdownErr
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	<-server.started
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() error = %v, want %v", err, shutdownErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestHTTPServerService_BindsBaseContext(t *testing.T) {
	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if srv.BaseContext == nil {
		t.Fatal("BaseContext not set")
	}
	if err := srv.BaseContext(nil).Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("BaseContext().Err() = %v, want context.Canceled", err)
	}
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	server := newFakeHTTPServer()
	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-server.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
	cancel()
	<-errCh

	if got := server.shutdowns.Load(); got != 1 {
		t.Errorf("Shutdown calls = %d, want 1", got)
	}
}
