// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package detection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
	"github.com/tomtom215/buzzstream/internal/models"
)

// ErrServiceUnavailable wraps every failure to obtain a verdict from the AI service.
var ErrServiceUnavailable = errors.New("AI service unavailable")

const (
	breakerName = "ai-service"

	// DefaultTimeout bounds a single detection request.
	DefaultTimeout = 5 * time.Second

	// DefaultBreakerTimeout is how long the circuit stays open before a trial request.
	DefaultBreakerTimeout = 30 * time.Second

	maxErrorBody = 512
)

// ClientConfig configures the AI service client.
type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	BreakerTimeout time.Duration
	HTTPClient     *http.Client
}

// Client calls POST {BaseURL}/api/detect through a circuit breaker.
//
// The breaker uses real time for its interval and open timeout; tests drive
// it by request outcomes rather than by clock.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[models.Detection]
	now     func() time.Time
}

// NewClient creates an AI service client.
// Circuit breaker configuration:
// - Max 3 requests in half-open state
// - 1 minute measurement window
// - Opens after 60% failure rate with minimum 10 requests
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = DefaultBreakerTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[models.Detection](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening AI service circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		cb:      cb,
		now:     time.Now,
	}
}

// Detect asks the AI service to classify t. On any failure it returns the
// fallback verdict together with an error wrapping ErrServiceUnavailable,
// so callers can always serve a result.
//
//nolint:gocritic // models.Tweet is passed by value across the producer
func (c *Client) Detect(ctx context.Context, t models.Tweet) (models.Detection, error) {
	result, err := c.cb.Execute(func() (models.Detection, error) {
		return c.call(ctx, t)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		}
		logging.Ctx(ctx).Warn().Err(err).Str("tweet_id", t.ID).Msg("AI service call failed, using fallback")
		return Fallback(t.ID, c.now()), fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return result, nil
}

//nolint:gocritic // models.Tweet is passed by value across the producer
func (c *Client) call(ctx context.Context, t models.Tweet) (models.Detection, error) {
	body, err := json.Marshal(detectRequest{Tweet: t})
	if err != nil {
		return models.Detection{}, fmt.Errorf("encode detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/detect", bytes.NewReader(body))
	if err != nil {
		return models.Detection{}, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Detection{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return models.Detection{}, fmt.Errorf("AI service error: %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var d models.Detection
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return models.Detection{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return d, nil
}

// State returns the breaker state name: closed, half-open or open.
func (c *Client) State() string {
	return stateToString(c.cb.State())
}

type detectRequest struct {
	Tweet models.Tweet `json:"tweet"`
}

// Fallback is the neutral verdict served while the AI service is unreachable.
func Fallback(tweetID string, now time.Time) models.Detection {
	return models.Detection{
		TweetID:     tweetID,
		BuzzerScore: 0.5,
		IsBuzzer:    false,
		Reasons:     []string{"AI service unavailable"},
		Confidence:  0.3,
		AnalyzedAt:  now.UTC(),
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
