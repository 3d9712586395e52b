// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
	subscriberIDKey  contextKey = "subscriber_id"
)

// GenerateCorrelationID returns the first 8 characters of a UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a full UUID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID returns a new context carrying id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a freshly generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithSubscriberID tags ctx with the stream subscriber it serves.
func ContextWithSubscriberID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, subscriberIDKey, id)
}

// SubscriberIDFromContext returns the subscriber ID or "".
func SubscriberIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(subscriberIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger enriched with any correlation, request,
// and subscriber IDs found in ctx.
//
//	logging.Ctx(ctx).Info().Msg("subscriber connected")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()

	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := SubscriberIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("subscriber_id", id)
	}

	l := logCtx.Logger()
	return &l
}

// WithComponent creates a child logger with a component field.
//
//	dispatchLog := logging.WithComponent("dispatcher")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
