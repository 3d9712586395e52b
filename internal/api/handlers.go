// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/buzzstream/internal/cache"
	"github.com/tomtom215/buzzstream/internal/models"
	"github.com/tomtom215/buzzstream/internal/stream"
	"github.com/tomtom215/buzzstream/internal/transport"
)

// StreamController starts and stops the producer.
type StreamController interface {
	Start() bool
	Stop() bool
	SetEventsPerSecond(n int) error
	Status() stream.Status
}

// TweetStore serves cached tweets and hashtag counters.
type TweetStore interface {
	Tweet(ctx context.Context, id string) (models.Tweet, error)
	TopHashtags(ctx context.Context, limit int) ([]models.HashtagCount, error)
}

// Detector classifies one tweet through the AI service.
type Detector interface {
	Detect(ctx context.Context, t models.Tweet) (models.Detection, error)
}

// TrendingSource reports the current trending topics.
type TrendingSource interface {
	Top(n int) []models.TrendingTopic
}

// BuzzerSource reports generator buzzer account statistics.
type BuzzerSource interface {
	BuzzerAccountStats() []models.BuzzerAccountStats
}

// Deps are the components behind the handlers. Service and Registry are
// required. A nil Store, Detector, Trending, or Buzzers makes the matching
// endpoints answer 503, or an empty list for buzzers.
type Deps struct {
	Service  StreamController
	Registry *stream.Registry
	Store    TweetStore
	Detector Detector
	Trending TrendingSource
	Buzzers  BuzzerSource
}

// Handler serves every route.
type Handler struct {
	cfg       Config
	service   StreamController
	registry  *stream.Registry
	store     TweetStore
	detector  Detector
	trending  TrendingSource
	buzzers   BuzzerSource
	upgrader  *websocket.Upgrader
	topics    *cache.Cache[[]models.TrendingTopic]
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a handler.
func NewHandler(cfg Config, deps Deps) *Handler {
	return &Handler{
		cfg:       cfg,
		service:   deps.Service,
		registry:  deps.Registry,
		store:     deps.Store,
		detector:  deps.Detector,
		trending:  deps.Trending,
		buzzers:   deps.Buzzers,
		upgrader:  transport.NewUpgrader(cfg.CORSOrigins),
		topics:    cache.New[[]models.TrendingTopic](cfg.TrendingCacheTTL),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// TrendingCache exposes the response cache so its cleanup can be supervised.
func (h *Handler) TrendingCache() *cache.Cache[[]models.TrendingTopic] {
	return h.topics
}

// Root lists the service endpoints.
//
// @Summary Service information
// @Description Returns the service name, version, and endpoint list
// @Tags Core
// @Produce json
// @Success 200 {object} ServiceInfo
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, ServiceInfo{
		Service: "Buzzstream",
		Version: h.cfg.Version,
		Status:  "running",
		Endpoints: map[string]string{
			"health":      "GET /health",
			"stream":      "GET /api/stream",
			"stream_ws":   "GET /api/stream/ws",
			"start":       "POST /api/stream/start",
			"stop":        "POST /api/stream/stop",
			"status":      "GET /api/stream/status",
			"subscribers": "GET /api/stream/subscribers",
			"trending":    "GET /api/trending",
			"hashtags":    "GET /api/hashtags",
			"tweet":       "GET /api/tweets/{id}",
			"detect":      "POST /api/tweets/{id}/detect",
			"buzzers":     "GET /api/buzzers",
			"metrics":     "GET /metrics",
			"docs":        "GET /swagger/index.html",
		},
	})
}

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"` // seconds
}

// Health reports liveness.
//
// @Summary Health check
// @Description Returns ok with the current time and process uptime in seconds
// @Tags Core
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	respondJSON(w, http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.startTime).Seconds(),
	})
}
