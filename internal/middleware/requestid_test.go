// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/buzzstream/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
	os.Exit(m.Run())
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generates when absent", incoming: ""},
		{name: "preserves upstream id", incoming: "upstream-123", wantSame: true},
		{name: "replaces oversized id", incoming: strings.Repeat("x", maxRequestIDLen+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID, logID, correlationID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				logID = logging.RequestIDFromContext(r.Context())
				correlationID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.wantSame {
				if got != tt.incoming {
					t.Errorf("%s = %q, want %q", RequestIDHeader, got, tt.incoming)
				}
			} else if _, err := uuid.Parse(got); err != nil {
				t.Errorf("%s = %q, want a UUID: %v", RequestIDHeader, got, err)
			}
			if ctxID != got || logID != got {
				t.Errorf("context ids = %q/%q, want %q", ctxID, logID, got)
			}
			if correlationID == "" {
				t.Error("correlation id missing from context")
			}
		})
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
