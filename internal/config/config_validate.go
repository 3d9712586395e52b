// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/tomtom215/buzzstream/internal/validation"
)

// Validate checks struct tag rules first, then cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	if err := c.validateDurations(); err != nil {
		return err
	}
	if err := c.validateStream(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	return c.validateBus()
}

// validateDurations rejects zero or negative intervals that would panic a
// ticker or disable a timeout.
func (c *Config) validateDurations() error {
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"DISPATCH_INTERVAL", c.Stream.DispatchInterval},
		{"WRITE_TIMEOUT", c.Stream.WriteTimeout},
		{"METRICS_INTERVAL", c.Stream.MetricsInterval},
		{"SWEEP_INTERVAL", c.Stream.SweepInterval},
		{"STALE_WINDOW", c.Stream.StaleWindow},
		{"ACTIVE_WINDOW", c.Stream.ActiveWindow},
		{"KEEPALIVE_INTERVAL", c.Stream.KeepaliveInterval},
		{"AI_SERVICE_TIMEOUT", c.AI.Timeout},
		{"TWEET_TTL", c.Store.TweetTTL},
		{"store.gc_interval", c.Store.GCInterval},
		{"TRENDING_INTERVAL", c.Trending.Interval},
		{"trending.window_ttl", c.Trending.WindowTTL},
		{"RATE_LIMIT_WINDOW", c.Security.RateLimitWindow},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	if c.Trending.CacheTTL < 0 {
		return fmt.Errorf("TRENDING_CACHE_TTL must not be negative, got %s", c.Trending.CacheTTL)
	}
	return nil
}

func (c *Config) validateStream() error {
	if c.Stream.ActiveWindow > c.Stream.StaleWindow {
		return fmt.Errorf("ACTIVE_WINDOW (%s) must not exceed STALE_WINDOW (%s)",
			c.Stream.ActiveWindow, c.Stream.StaleWindow)
	}
	if c.Stream.WriteTimeout >= c.Stream.StaleWindow {
		return fmt.Errorf("WRITE_TIMEOUT (%s) must be shorter than STALE_WINDOW (%s)",
			c.Stream.WriteTimeout, c.Stream.StaleWindow)
	}
	return nil
}

func (c *Config) validateAI() error {
	if !c.AI.Enabled {
		return nil
	}
	if c.AI.URL == "" {
		return fmt.Errorf("AI_SERVICE_URL is required when AI_SERVICE_ENABLED=true")
	}
	if err := validateHTTPURL(c.AI.URL, "AI_SERVICE_URL"); err != nil {
		return fmt.Errorf("AI_SERVICE_URL is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateBus() error {
	if c.Bus.PublishTopic == c.Bus.IngestTopic {
		return fmt.Errorf("NATS_PUBLISH_TOPIC and NATS_INGEST_TOPIC must differ, both are %q", c.Bus.PublishTopic)
	}
	if !c.Bus.NATSEnabled || c.Bus.Embedded {
		return nil
	}
	if err := validateNATSURL(c.Bus.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	return nil
}

// validateHTTPURL accepts http and https base URLs without query parameters.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}

// validateNATSURL accepts nats, tls, ws, and wss URLs with a host.
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}
	return nil
}
