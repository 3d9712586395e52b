// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
	"github.com/tomtom215/buzzstream/internal/stream"
	"github.com/tomtom215/buzzstream/internal/transport"
	"github.com/tomtom215/buzzstream/internal/validation"
)

const maxStartBody = 4 << 10

// StartRequest is the optional body of POST /api/stream/start.
type StartRequest struct {
	EventsPerSecond *int `json:"events_per_second,omitempty"`
}

type rateSetting struct {
	EventsPerSecond int `json:"events_per_second" validate:"min=1,max=1000"`
}

// SubscribersView is the body of GET /api/stream/subscribers.
type SubscribersView struct {
	Count       int                 `json:"count"`
	Max         int                 `json:"max"`
	Subscribers []stream.Subscriber `json:"subscribers"`
}

// atCapacity reports whether a new subscriber must be refused.
func (h *Handler) atCapacity() bool {
	return h.cfg.MaxSubscribers > 0 && h.registry.Len() >= h.cfg.MaxSubscribers
}

// StreamSSE subscribes the caller over Server-Sent Events.
//
// @Summary Subscribe over SSE
// @Description Opens a text/event-stream. The first frame is {"type":"connected","client_id":...}; later frames carry tweet, alert, trending, and metrics envelopes. A ": ping" comment is sent every 30 seconds.
// @Tags Stream
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 503 {object} Response "Subscriber limit reached"
// @Router /api/stream [get]
func (h *Handler) StreamSSE(w http.ResponseWriter, r *http.Request) {
	if h.atCapacity() {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Maximum subscribers reached")
		return
	}

	sse, err := transport.NewSSE(w)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("SSE not supported by response writer")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Streaming unsupported")
		return
	}

	id := uuid.NewString()
	ctx := logging.ContextWithSubscriberID(r.Context(), id)
	if !h.register(ctx, id, sse, sse.Hello) {
		return
	}
	// Close waits for an in-flight dispatcher write, so nothing touches w
	// after the handler returns.
	defer sse.Close() //nolint:errcheck // idempotent

	ticker := time.NewTicker(h.cfg.KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.registry.Remove(id)
			return
		case <-sse.Done():
			// Closed by the dispatcher or the sweeper, which already unregistered it.
			return
		case <-ticker.C:
			if err := h.ping(ctx, sse); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Keepalive failed")
				h.registry.RemoveFor(id, metrics.RemovalWriteFailure)
				return
			}
		}
	}
}

func (h *Handler) ping(ctx context.Context, sse *transport.SSE) error {
	pingCtx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	defer cancel()
	return sse.Ping(pingCtx)
}

// StreamWebSocket subscribes the caller over a WebSocket.
//
// @Summary Subscribe over WebSocket
// @Description Upgrades to a WebSocket. Each text message is one JSON envelope, starting with {"type":"connected","client_id":...}.
// @Tags Stream
// @Success 101 {string} string "switching protocols"
// @Failure 503 {object} Response "Subscriber limit reached"
// @Router /api/stream/ws [get]
func (h *Handler) StreamWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.atCapacity() {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Maximum subscribers reached")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	ws := transport.NewWebSocket(conn)
	id := uuid.NewString()
	ctx := logging.ContextWithSubscriberID(r.Context(), id)
	if !h.register(ctx, id, ws, ws.Hello) {
		return
	}

	select {
	case <-ctx.Done():
		h.registry.Remove(id)
	case <-ws.Done():
		h.registry.Remove(id)
	}
}

// register greets the subscriber and adds it to the registry. On failure
// the transport is closed and false is returned.
func (h *Handler) register(ctx context.Context, id string, t stream.Transport, hello func(context.Context, string) error) bool {
	helloCtx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
	err := hello(helloCtx, id)
	cancel()
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to greet subscriber")
		_ = t.Close()
		return false
	}

	if err := h.registry.Add(id, t); err != nil {
		// Headers are already committed, so the only signal left is closing the stream.
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to register subscriber")
		_ = t.Close()
		return false
	}
	return true
}

// StartStream starts the producer.
//
// @Summary Start the producer
// @Description Applies the optional rate and starts producing. Starting a running producer is a no-op.
// @Tags Stream
// @Accept json
// @Produce json
// @Param request body StartRequest false "Producer rate"
// @Success 200 {object} Response{status=stream.Status}
// @Failure 400 {object} Response "Invalid body or rate"
// @Router /api/stream/start [post]
func (h *Handler) StartStream(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxStartBody))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Request body too large")
		return
	}
	var req StartRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
			return
		}
	}

	if req.EventsPerSecond != nil {
		setting := rateSetting{EventsPerSecond: *req.EventsPerSecond}
		if err := validation.Struct(setting); err != nil {
			respondValidation(w, r, err)
			return
		}
		if err := h.service.SetEventsPerSecond(setting.EventsPerSecond); err != nil {
			respondValidation(w, r, err)
			return
		}
	}

	message := "Stream started"
	if !h.service.Start() {
		message = "Stream already running"
	}
	status := h.service.Status()
	logging.Ctx(r.Context()).Info().Int("events_per_second", status.ConfiguredRate).Msg(message)

	respondJSON(w, http.StatusOK, &Response{
		Success: true,
		Message: message,
		Status:  &status,
	})
}

// StopStream stops the producer.
//
// @Summary Stop the producer
// @Description Stops producing. Subscribers stay connected and the queue keeps draining.
// @Tags Stream
// @Produce json
// @Success 200 {object} Response
// @Router /api/stream/stop [post]
func (h *Handler) StopStream(w http.ResponseWriter, r *http.Request) {
	message := "Stream stopped"
	if !h.service.Stop() {
		message = "Stream already stopped"
	}
	logging.Ctx(r.Context()).Info().Msg(message)
	respondJSON(w, http.StatusOK, &Response{Success: true, Message: message})
}

// StreamStatus reports producer and backpressure state.
//
// @Summary Stream status
// @Tags Stream
// @Produce json
// @Success 200 {object} Response{data=stream.Status}
// @Router /api/stream/status [get]
func (h *Handler) StreamStatus(w http.ResponseWriter, _ *http.Request) {
	respondData(w, h.service.Status())
}

// Subscribers lists connected subscribers in registration order.
//
// @Summary Connected subscribers
// @Tags Stream
// @Produce json
// @Success 200 {object} Response{data=SubscribersView}
// @Router /api/stream/subscribers [get]
func (h *Handler) Subscribers(w http.ResponseWriter, _ *http.Request) {
	subs := h.registry.Snapshot()
	respondData(w, SubscribersView{
		Count:       len(subs),
		Max:         h.cfg.MaxSubscribers,
		Subscribers: subs,
	})
}
