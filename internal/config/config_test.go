// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"server.port", cfg.Server.Port, 3000},
		{"stream.max_clients", cfg.Stream.MaxClients, 100},
		{"stream.tweets_per_second", cfg.Stream.TweetsPerSecond, 10},
		{"stream.backpressure_threshold", cfg.Stream.BackpressureThreshold, 50},
		{"stream.dispatch_interval", cfg.Stream.DispatchInterval, 100 * time.Millisecond},
		{"stream.max_batch_size", cfg.Stream.MaxBatchSize, 5},
		{"stream.stale_window", cfg.Stream.StaleWindow, 5 * time.Minute},
		{"generator.buzzer_rate", cfg.Generator.BuzzerRate, 0.3},
		{"ai.url", cfg.AI.URL, "http://localhost:8000"},
		{"trending.top_n", cfg.Trending.TopN, 3},
		{"bus.publish_topic", cfg.Bus.PublishTopic, "buzzstream.tweets"},
		{"logging.level", cfg.Logging.Level, "info"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Server.Addr() != "0.0.0.0:3000" {
		t.Errorf("Addr() = %s, want 0.0.0.0:3000", cfg.Server.Addr())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("MAX_CLIENTS", "250")
	t.Setenv("TWEETS_PER_SECOND", "40")
	t.Setenv("BACKPRESSURE_THRESHOLD", "500")
	t.Setenv("WRITE_TIMEOUT", "2s")
	t.Setenv("STREAM_AUTO_START", "true")
	t.Setenv("ENABLE_MOCK_DATA", "false")
	t.Setenv("MOCK_BUZZER_RATE", "0.5")
	t.Setenv("AI_SERVICE_ENABLED", "true")
	t.Setenv("AI_SERVICE_URL", "https://ai.example.com")
	t.Setenv("TWEET_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"server.port", cfg.Server.Port, 8080},
		{"server.environment", cfg.Server.Environment, "production"},
		{"stream.max_clients", cfg.Stream.MaxClients, 250},
		{"stream.tweets_per_second", cfg.Stream.TweetsPerSecond, 40},
		{"stream.backpressure_threshold", cfg.Stream.BackpressureThreshold, 500},
		{"stream.write_timeout", cfg.Stream.WriteTimeout, 2 * time.Second},
		{"stream.auto_start", cfg.Stream.AutoStart, true},
		{"generator.enabled", cfg.Generator.Enabled, false},
		{"generator.buzzer_rate", cfg.Generator.BuzzerRate, 0.5},
		{"ai.enabled", cfg.AI.Enabled, true},
		{"ai.url", cfg.AI.URL, "https://ai.example.com"},
		{"store.tweet_ttl", cfg.Store.TweetTTL, 30 * time.Minute},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if got := strings.Join(cfg.Security.CORSOrigins, "|"); got != "https://a.example|https://b.example" {
		t.Errorf("cors_origins = %v", cfg.Security.CORSOrigins)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
stream:
  max_clients: 7
  backpressure_threshold: 20
trending:
  top_n: 5
bus:
  ingest_topic: custom.ingest
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// Environment beats the file.
	t.Setenv("MAX_CLIENTS", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Stream.MaxClients != 9 {
		t.Errorf("max_clients = %d, want 9 from env", cfg.Stream.MaxClients)
	}
	if cfg.Stream.BackpressureThreshold != 20 {
		t.Errorf("backpressure_threshold = %d, want 20 from file", cfg.Stream.BackpressureThreshold)
	}
	if cfg.Trending.TopN != 5 {
		t.Errorf("top_n = %d, want 5 from file", cfg.Trending.TopN)
	}
	if cfg.Bus.IngestTopic != "custom.ingest" {
		t.Errorf("ingest_topic = %s, want custom.ingest", cfg.Bus.IngestTopic)
	}
	// Untouched keys keep their defaults.
	if cfg.Stream.TweetsPerSecond != 10 {
		t.Errorf("tweets_per_second = %d, want default 10", cfg.Stream.TweetsPerSecond)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "rate above 1000",
			mutate:  func(c *Config) { c.Stream.TweetsPerSecond = 1001 },
			wantErr: "TweetsPerSecond",
		},
		{
			name:    "zero capacity",
			mutate:  func(c *Config) { c.Stream.BackpressureThreshold = 0 },
			wantErr: "BackpressureThreshold",
		},
		{
			name:    "buzzer rate above 1",
			mutate:  func(c *Config) { c.Generator.BuzzerRate = 1.5 },
			wantErr: "BuzzerRate",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "Level",
		},
		{
			name:    "zero dispatch interval",
			mutate:  func(c *Config) { c.Stream.DispatchInterval = 0 },
			wantErr: "DISPATCH_INTERVAL must be positive",
		},
		{
			name:    "active window beyond stale window",
			mutate:  func(c *Config) { c.Stream.ActiveWindow = 10 * time.Minute },
			wantErr: "ACTIVE_WINDOW",
		},
		{
			name:    "write timeout beyond stale window",
			mutate:  func(c *Config) { c.Stream.WriteTimeout = 10 * time.Minute },
			wantErr: "WRITE_TIMEOUT",
		},
		{
			name: "ai enabled with bad url",
			mutate: func(c *Config) {
				c.AI.Enabled = true
				c.AI.URL = "ftp://ai.example.com"
			},
			wantErr: "AI_SERVICE_URL",
		},
		{
			name: "ai disabled ignores url",
			mutate: func(c *Config) {
				c.AI.URL = "not a url"
			},
		},
		{
			name:    "topic loop",
			mutate:  func(c *Config) { c.Bus.IngestTopic = c.Bus.PublishTopic },
			wantErr: "must differ",
		},
		{
			name: "external nats needs nats url",
			mutate: func(c *Config) {
				c.Bus.NATSEnabled = true
				c.Bus.URL = "http://nats.example.com"
			},
			wantErr: "NATS_URL",
		},
		{
			name: "embedded nats ignores url",
			mutate: func(c *Config) {
				c.Bus.NATSEnabled = true
				c.Bus.Embedded = true
				c.Bus.URL = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"PORT", "server.port"},
		{"HTTP_PORT", "server.port"},
		{"NODE_ENV", "server.environment"},
		{"BACKPRESSURE_THRESHOLD", "stream.backpressure_threshold"},
		{"NATS_INGEST_TOPIC", "bus.ingest_topic"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
