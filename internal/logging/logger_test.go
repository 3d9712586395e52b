// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("component", "test").Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
	if !strings.Contains(output, `"component":"test"`) {
		t.Errorf("expected output to contain component field, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCtx_AddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	defer Init(DefaultConfig())

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	ctx = ContextWithSubscriberID(ctx, "sub-1")

	Ctx(ctx).Info().Msg("hello")

	output := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"correlation_id":"corr-1"`, `"subscriber_id":"sub-1"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestContextIDs_EmptyWhenAbsent(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext = %q, want empty", got)
	}
	if got := CorrelationIDFromContext(ctx); got != "" {
		t.Errorf("CorrelationIDFromContext = %q, want empty", got)
	}
	if got := len(GenerateCorrelationID()); got != 8 {
		t.Errorf("GenerateCorrelationID length = %d, want 8", got)
	}
}

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	slogger := slog.New(NewSlogHandlerWithLogger(logger)).WithGroup("supervisor")
	slogger.Warn("service restarted", slog.String("service", "dispatcher"), slog.Int("attempt", 2))

	output := buf.String()
	if !strings.Contains(output, `"level":"warn"`) {
		t.Errorf("expected warn level in output: %s", output)
	}
	if !strings.Contains(output, `"supervisor.service":"dispatcher"`) {
		t.Errorf("expected grouped key in output: %s", output)
	}
	if !strings.Contains(output, `"supervisor.attempt":2`) {
		t.Errorf("expected int attribute in output: %s", output)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	handler := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled for a warn-level logger")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled for a warn-level logger")
	}
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	var adapter watermill.LoggerAdapter = NewWatermillAdapterWithLogger(zerolog.New(&buf))

	adapter = adapter.With(watermill.LogFields{"topic": "tweets"})
	adapter.Error("publish failed", errors.New("boom"), watermill.LogFields{"uuid": "abc"})

	output := buf.String()
	for _, want := range []string{`"topic":"tweets"`, `"uuid":"abc"`, `"error":"boom"`, `"message":"publish failed"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}
