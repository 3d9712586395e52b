// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/tomtom215/buzzstream/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

// plainWriter supports neither flushing nor deadlines.
type plainWriter struct {
	header http.Header
}

func (w *plainWriter) Header() http.Header { return w.header }

func (w *plainWriter) Write(p []byte) (int, error) { return len(p), nil }

func (w *plainWriter) WriteHeader(int) {}

// brokenWriter flushes but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestNewSSE_Headers(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, err := NewSSE(rec); err != nil {
		t.Fatalf("NewSSE() error = %v", err)
	}

	tests := []struct {
		header string
		want   string
	}{
		{header: "Content-Type", want: "text/event-stream"},
		{header: "Cache-Control", want: "no-cache"},
		{header: "Connection", want: "keep-alive"},
		{header: "X-Accel-Buffering", want: "no"},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
		}
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !rec.Flushed {
		t.Error("headers were not flushed")
	}
}

func TestNewSSE_RequiresFlusher(t *testing.T) {
	if _, err := NewSSE(&plainWriter{header: http.Header{}}); err == nil {
		t.Error("NewSSE() error = nil, want flush error")
	}
}

func TestSSE_Frames(t *testing.T) {
	rec := httptest.NewRecorder()
	s, err := NewSSE(rec)
	if err != nil {
		t.Fatalf("NewSSE() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Hello(ctx, "abc"); err != nil {
		t.Fatalf("Hello() error = %v", err)
	}
	if err := s.Write(ctx, []byte(`{"type":"domain"}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	want := "data: {\"type\":\"connected\",\"client_id\":\"abc\"}\n\n" +
		"data: {\"type\":\"domain\"}\n\n" +
		": ping\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if s.Kind() != KindSSE {
		t.Errorf("Kind() = %s, want %s", s.Kind(), KindSSE)
	}
}

func TestSSE_WriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) (*SSE, context.Context)
		wantErr error
	}{
		{
			name: "closed",
			setup: func(t *testing.T) (*SSE, context.Context) {
				s, _ := NewSSE(httptest.NewRecorder())
				_ = s.Close()
				return s, context.Background()
			},
			wantErr: ErrClosed,
		},
		{
			name: "cancelled context",
			setup: func(t *testing.T) (*SSE, context.Context) {
				s, _ := NewSSE(httptest.NewRecorder())
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return s, ctx
			},
			wantErr: context.Canceled,
		},
		{
			name: "broken connection",
			setup: func(t *testing.T) (*SSE, context.Context) {
				s, err := NewSSE(brokenWriter{httptest.NewRecorder()})
				if err != nil {
					t.Fatalf("NewSSE() error = %v", err)
				}
				return s, context.Background()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ctx := tt.setup(t)
			err := s.Write(ctx, []byte("{}"))
			if err == nil {
				t.Fatal("Write() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Write() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSSE_CloseIdempotent(t *testing.T) {
	s, err := NewSSE(httptest.NewRecorder())
	if err != nil {
		t.Fatalf("NewSSE() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Errorf("Close() #%d error = %v", i+1, err)
		}
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done() not closed after Close()")
	}
}
