// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package metrics holds the Prometheus instrumentation for Buzzstream.
// Collectors are registered on the default registry at package init and
// exposed by the API router on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Removal reasons for StreamSubscribersRemoved.
const (
	RemovalWriteFailure = "write_failure"
	RemovalStale        = "stale"
	RemovalDisconnect   = "disconnect"
)

var (
	// Backpressure queue
	StreamQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_queue_depth",
			Help: "Current number of events waiting in the shared queue",
		},
	)

	StreamEventsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_enqueued_total",
			Help: "Total number of events admitted to the queue",
		},
		[]string{"kind"}, // domain, alert, trending, metrics
	)

	StreamEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_events_dropped_total",
			Help: "Total number of events evicted from the queue head under backpressure",
		},
	)

	// Subscribers and dispatch
	StreamSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stream_subscribers",
			Help: "Current number of registered stream subscribers",
		},
		[]string{"transport"}, // sse, websocket
	)

	StreamSubscribersRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_subscribers_removed_total",
			Help: "Total number of subscribers removed from the registry",
		},
		[]string{"reason"},
	)

	StreamEventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_events_dispatched_total",
			Help: "Total number of events written to a subscriber",
		},
		[]string{"kind"},
	)

	StreamWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_write_failures_total",
			Help: "Total number of failed subscriber writes",
		},
		[]string{"transport"},
	)

	StreamWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stream_write_duration_seconds",
			Help:    "Duration of a single subscriber write",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	StreamDispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stream_dispatch_cycle_duration_seconds",
			Help:    "Duration of one dispatch cycle across all subscribers",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// Producer
	StreamProducerTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_producer_ticks_total",
			Help: "Total number of producer ticks that generated a tweet",
		},
	)

	StreamAlertsRaised = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_alerts_raised_total",
			Help: "Total number of tweets flagged by the buzzer heuristic",
		},
	)

	StreamRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_running",
			Help: "Whether the producer loop is running (1) or stopped (0)",
		},
	)

	// Circuit Breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Event bus
	BusMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventbus_messages_published_total",
			Help: "Total number of tweets mirrored to the event bus",
		},
	)

	BusMessagesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventbus_messages_ingested_total",
			Help: "Total number of tweets ingested from the event bus",
		},
	)

	BusMessagesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventbus_messages_rejected_total",
			Help: "Total number of malformed event bus messages",
		},
	)

	// Tweet store
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of tweet store operations",
		},
		[]string{"operation", "result"}, // result: ok, error, miss
	)
)

// RecordEnqueue records an admitted event and the resulting queue depth.
func RecordEnqueue(kind string, depth int, dropped bool) {
	StreamEventsEnqueued.WithLabelValues(kind).Inc()
	if dropped {
		StreamEventsDropped.Inc()
	}
	StreamQueueDepth.Set(float64(depth))
}

// RecordWrite records one subscriber write.
func RecordWrite(kind, transport string, duration time.Duration, err error) {
	StreamWriteDuration.Observe(duration.Seconds())
	if err != nil {
		StreamWriteFailures.WithLabelValues(transport).Inc()
		return
	}
	StreamEventsDispatched.WithLabelValues(kind).Inc()
}

// RecordSubscriberAdded increments the subscriber gauge for transport.
func RecordSubscriberAdded(transport string) {
	StreamSubscribers.WithLabelValues(transport).Inc()
}

// RecordSubscriberRemoved decrements the gauge and counts the removal reason.
func RecordSubscriberRemoved(transport, reason string) {
	StreamSubscribers.WithLabelValues(transport).Dec()
	StreamSubscribersRemoved.WithLabelValues(reason).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOperation counts a tweet store operation by outcome.
func RecordStoreOperation(operation, result string) {
	StoreOperations.WithLabelValues(operation, result).Inc()
}
