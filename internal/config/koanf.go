// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/buzzstream/config.yaml",
	"/etc/buzzstream/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. They are applied first,
// then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Host:            "0.0.0.0",
			Environment:     "development",
			ReadTimeout:     15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Stream: StreamConfig{
			MaxClients:            100,
			TweetsPerSecond:       10,
			BackpressureThreshold: 50,
			DispatchInterval:      100 * time.Millisecond,
			MaxBatchSize:          5,
			WriteTimeout:          5 * time.Second,
			MetricsInterval:       5 * time.Second,
			SweepInterval:         60 * time.Second,
			StaleWindow:           5 * time.Minute,
			ActiveWindow:          60 * time.Second,
			KeepaliveInterval:     30 * time.Second,
			AutoStart:             false,
		},
		Generator: GeneratorConfig{
			Enabled:    true,
			BuzzerRate: 0.3,
		},
		AI: AIConfig{
			Enabled:        false,
			URL:            "http://localhost:8000",
			Timeout:        5 * time.Second,
			BreakerTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Path:       "", // In memory
			TweetTTL:   time.Hour,
			GCInterval: 10 * time.Minute,
		},
		Trending: TrendingConfig{
			Interval:       30 * time.Second,
			MinClusterSize: 5,
			TopN:           3,
			CacheTTL:       10 * time.Second,
			WindowSize:     1000,
			WindowTTL:      10 * time.Minute,
		},
		Bus: BusConfig{
			NATSEnabled:  false,
			URL:          "nats://127.0.0.1:4222",
			Embedded:     false,
			EmbeddedHost: "127.0.0.1",
			EmbeddedPort: 4222,
			QueueGroup:   "buzzstream",
			PublishTopic: "buzzstream.tweets",
			IngestTopic:  "buzzstream.ingest",
			Source:       "buzzstream",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load loads configuration from defaults, the optional config file, and
// the environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	// Server
	"port":        "server.port",
	"http_port":   "server.port",
	"host":        "server.host",
	"environment": "server.environment",
	"node_env":    "server.environment",

	// Stream
	"max_clients":            "stream.max_clients",
	"tweets_per_second":      "stream.tweets_per_second",
	"backpressure_threshold": "stream.backpressure_threshold",
	"dispatch_interval":      "stream.dispatch_interval",
	"max_batch_size":         "stream.max_batch_size",
	"write_timeout":          "stream.write_timeout",
	"metrics_interval":       "stream.metrics_interval",
	"sweep_interval":         "stream.sweep_interval",
	"stale_window":           "stream.stale_window",
	"active_window":          "stream.active_window",
	"keepalive_interval":     "stream.keepalive_interval",
	"stream_auto_start":      "stream.auto_start",

	// Generator
	"enable_mock_data": "generator.enabled",
	"mock_buzzer_rate": "generator.buzzer_rate",

	// AI service
	"ai_service_url":     "ai.url",
	"ai_service_timeout": "ai.timeout",
	"ai_service_enabled": "ai.enabled",

	// Store
	"store_path": "store.path",
	"tweet_ttl":  "store.tweet_ttl",

	// Trending
	"trending_interval":    "trending.interval",
	"trending_min_cluster": "trending.min_cluster_size",
	"trending_top_n":       "trending.top_n",
	"trending_cache_ttl":   "trending.cache_ttl",

	// Event bus
	"nats_enabled":       "bus.nats_enabled",
	"nats_url":           "bus.url",
	"nats_embedded":      "bus.embedded",
	"nats_publish_topic": "bus.publish_topic",
	"nats_ingest_topic":  "bus.ingest_topic",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path,
// or "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
