// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package config loads Buzzstream configuration with Koanf v2.
//
// Sources are layered, each overriding the previous one:
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML (CONFIG_PATH, or config.yaml in the
//     working directory, or /etc/buzzstream/config.yaml)
//  3. Environment variables: only the names listed in envMappings
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	addr := cfg.Server.Addr()
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Stream     StreamConfig     `koanf:"stream"`
	Generator  GeneratorConfig  `koanf:"generator"`
	AI         AIConfig         `koanf:"ai"`
	Store      StoreConfig      `koanf:"store"`
	Trending   TrendingConfig   `koanf:"trending"`
	Bus        BusConfig        `koanf:"bus"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
//
// WriteTimeout is not configurable: stream responses are long-lived and
// enforce per-write deadlines instead.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production test"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StreamConfig holds backpressure and delivery settings.
//
// Environment Variables:
//   - MAX_CLIENTS: concurrent subscriber limit (default: 100)
//   - TWEETS_PER_SECOND: producer rate (default: 10)
//   - BACKPRESSURE_THRESHOLD: queue capacity (default: 50)
//   - DISPATCH_INTERVAL, MAX_BATCH_SIZE, WRITE_TIMEOUT: dispatch tuning
//   - METRICS_INTERVAL: metrics event cadence (default: 5s)
//   - SWEEP_INTERVAL, STALE_WINDOW, ACTIVE_WINDOW: liveness tuning
//   - KEEPALIVE_INTERVAL: SSE ping cadence (default: 30s)
//   - STREAM_AUTO_START: start the producer at boot (default: false)
type StreamConfig struct {
	MaxClients            int           `koanf:"max_clients" validate:"min=1"`
	TweetsPerSecond       int           `koanf:"tweets_per_second" validate:"min=1,max=1000"`
	BackpressureThreshold int           `koanf:"backpressure_threshold" validate:"min=1"`
	DispatchInterval      time.Duration `koanf:"dispatch_interval"`
	MaxBatchSize          int           `koanf:"max_batch_size" validate:"min=1"`
	WriteTimeout          time.Duration `koanf:"write_timeout"`
	MetricsInterval       time.Duration `koanf:"metrics_interval"`
	SweepInterval         time.Duration `koanf:"sweep_interval"`
	StaleWindow           time.Duration `koanf:"stale_window"`
	ActiveWindow          time.Duration `koanf:"active_window"`
	KeepaliveInterval     time.Duration `koanf:"keepalive_interval"`
	AutoStart             bool          `koanf:"auto_start"`
}

// GeneratorConfig controls the synthetic tweet generator.
type GeneratorConfig struct {
	Enabled    bool    `koanf:"enabled"`
	BuzzerRate float64 `koanf:"buzzer_rate" validate:"gte=0,lte=1"`
}

// AIConfig points at the external detection service.
type AIConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	Timeout        time.Duration `koanf:"timeout"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// StoreConfig configures the BadgerDB tweet cache. An empty Path keeps it in memory.
type StoreConfig struct {
	Path       string        `koanf:"path"`
	TweetTTL   time.Duration `koanf:"tweet_ttl"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// TrendingConfig configures the trending window and its publication.
type TrendingConfig struct {
	Interval       time.Duration `koanf:"interval"`
	MinClusterSize int           `koanf:"min_cluster_size" validate:"min=1"`
	TopN           int           `koanf:"top_n" validate:"min=1"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	WindowSize     int           `koanf:"window_size" validate:"min=1"`
	WindowTTL      time.Duration `koanf:"window_ttl"`
}

// BusConfig configures the Watermill event bus. Without NATS the bus is in-process.
type BusConfig struct {
	NATSEnabled  bool   `koanf:"nats_enabled"`
	URL          string `koanf:"url"`
	Embedded     bool   `koanf:"embedded"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`
	QueueGroup   string `koanf:"queue_group"`
	PublishTopic string `koanf:"publish_topic" validate:"required"`
	IngestTopic  string `koanf:"ingest_topic" validate:"required"`
	Source       string `koanf:"source"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is json (production) or console (development).
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// SupervisorConfig holds suture restart policy.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
