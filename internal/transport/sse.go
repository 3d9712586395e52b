// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

var (
	sseDataPrefix = []byte("data: ")
	sseFrameEnd   = []byte("\n\n")
	ssePing       = []byte(": ping\n\n")
)

// SSE is a Server-Sent Events response stream.
type SSE struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu     sync.Mutex
	closed bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewSSE writes the event-stream headers and flushes them. The response
// writer must support flushing.
func NewSSE(w http.ResponseWriter) (*SSE, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("flush event-stream headers: %w", err)
	}

	return &SSE{
		w:    w,
		rc:   rc,
		done: make(chan struct{}),
	}, nil
}

// Hello sends the initial {"type":"connected","client_id":...} frame.
func (s *SSE) Hello(ctx context.Context, clientID string) error {
	frame, err := ConnectedFrame(clientID)
	if err != nil {
		return err
	}
	return s.Write(ctx, frame)
}

// Write sends one data frame and flushes it.
func (s *SSE) Write(ctx context.Context, frame []byte) error {
	return s.send(ctx, sseDataPrefix, frame, sseFrameEnd)
}

// Ping writes an SSE comment line that keeps proxies from timing out.
func (s *SSE) Ping(ctx context.Context) error {
	return s.send(ctx, ssePing)
}

func (s *SSE) send(ctx context.Context, parts ...[]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := s.rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return fmt.Errorf("set write deadline: %w", err)
		}
		defer s.rc.SetWriteDeadline(time.Time{}) //nolint:errcheck // best effort reset
	}

	for _, p := range parts {
		if _, err := s.w.Write(p); err != nil {
			return fmt.Errorf("sse write: %w", err)
		}
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("sse flush: %w", err)
	}
	return nil
}

// Close marks the stream closed and releases anyone waiting on Done.
// Safe to call more than once. It waits for an in-flight write.
func (s *SSE) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	return nil
}

// Done is closed by Close.
func (s *SSE) Done() <-chan struct{} {
	return s.done
}

// Kind returns "sse".
func (s *SSE) Kind() string {
	return KindSSE
}
