// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tomtom215/buzzstream/internal/api/apidocs" // registers /swagger/doc.json
	"github.com/tomtom215/buzzstream/internal/cache"
	"github.com/tomtom215/buzzstream/internal/middleware"
	"github.com/tomtom215/buzzstream/internal/models"
)

// Config tunes the HTTP surface.
type Config struct {
	Version string

	MaxSubscribers    int
	KeepaliveInterval time.Duration
	WriteTimeout      time.Duration
	TrendingTopN      int
	TrendingCacheTTL  time.Duration

	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultConfig returns the production HTTP settings.
func DefaultConfig() Config {
	return Config{
		Version:           "1.0.0",
		MaxSubscribers:    100,
		KeepaliveInterval: 30 * time.Second,
		WriteTimeout:      5 * time.Second,
		TrendingTopN:      3,
		TrendingCacheTTL:  10 * time.Second,
		CORSOrigins:       []string{"*"},
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// Router owns the chi mux and its handler.
type Router struct {
	cfg     Config
	handler *Handler
}

// NewRouter creates a router serving deps.
func NewRouter(cfg Config, deps Deps) *Router {
	return &Router{
		cfg:     cfg,
		handler: NewHandler(cfg, deps),
	}
}

// TrendingCache returns the trending response cache for supervision.
func (router *Router) TrendingCache() *cache.Cache[[]models.TrendingTopic] {
	return router.handler.TrendingCache()
}

// Handler builds the chi route tree.
func (router *Router) Handler() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.cors())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Long-lived subscriptions: no rate limit, no compression.
		r.Get("/stream", h.StreamSSE)
		r.Get("/stream/ws", h.StreamWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(router.rateLimit())
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Post("/stream/start", h.StartStream)
			r.Post("/stream/stop", h.StopStream)
			r.Get("/stream/status", h.StreamStatus)
			r.Get("/stream/subscribers", h.Subscribers)

			r.Get("/trending", h.Trending)
			r.Get("/hashtags", h.Hashtags)
			r.Get("/tweets/{id}", h.Tweet)
			r.Post("/tweets/{id}/detect", h.DetectTweet)
			r.Get("/buzzers", h.Buzzers)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}

func (router *Router) cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         86400,
	})
}

func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		router.cfg.RateLimitRequests,
		router.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
		}),
	)
}
