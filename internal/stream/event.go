// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package stream

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/buzzstream/internal/models"
)

// Kind identifies the payload carried by an Event. The string value is
// the "type" field of the wire envelope.
type Kind string

const (
	KindDomain   Kind = "domain"
	KindAlert    Kind = "alert"
	KindTrending Kind = "trending"
	KindMetrics  Kind = "metrics"
)

// Priority selects the insertion end of the queue.
type Priority uint8

const (
	// PriorityNormal events are appended at the queue tail.
	PriorityNormal Priority = iota
	// PriorityHigh events are inserted at the queue head.
	PriorityHigh
)

func (p Priority) String() string {
	if p == PriorityHigh {
		return "high"
	}
	return "normal"
}

// TimestampLayout is the ISO-8601 layout used on the wire (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Event is an immutable stream event. Construct it with one of the
// New*Event functions; the zero value is not a valid event.
type Event struct {
	kind      Kind
	priority  Priority
	data      interface{}
	timestamp time.Time
}

// NewDomainEvent wraps a produced tweet.
//
//nolint:gocritic // models.Tweet is stored by value
func NewDomainEvent(t models.Tweet, ts time.Time) Event {
	return Event{kind: KindDomain, priority: PriorityNormal, data: t, timestamp: ts}
}

// NewAlertEvent wraps a heuristic detection. Alerts are high priority.
func NewAlertEvent(d models.Detection, ts time.Time) Event {
	return Event{kind: KindAlert, priority: PriorityHigh, data: d, timestamp: ts}
}

// NewTrendingEvent wraps one trending topic.
func NewTrendingEvent(topic models.TrendingTopic, ts time.Time) Event {
	return Event{kind: KindTrending, priority: PriorityNormal, data: topic, timestamp: ts}
}

// NewMetricsEvent wraps a system metrics snapshot.
func NewMetricsEvent(m models.SystemMetrics, ts time.Time) Event {
	return Event{kind: KindMetrics, priority: PriorityNormal, data: m, timestamp: ts}
}

// Kind returns the payload kind.
func (e Event) Kind() Kind { return e.kind }

// Priority returns the queue insertion priority.
func (e Event) Priority() Priority { return e.priority }

// Data returns the payload.
func (e Event) Data() interface{} { return e.data }

// Timestamp returns the creation time.
func (e Event) Timestamp() time.Time { return e.timestamp }

func (e Event) String() string {
	return fmt.Sprintf("%s@%s", e.kind, e.timestamp.UTC().Format(TimestampLayout))
}

// Envelope is the JSON object written to subscribers for each event.
type Envelope struct {
	Type      Kind        `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Envelope returns the wire representation of e.
func (e Event) Envelope() Envelope {
	return Envelope{
		Type:      e.kind,
		Data:      e.data,
		Timestamp: e.timestamp.UTC().Format(TimestampLayout),
	}
}

// MarshalFrame encodes the wire envelope. Transports add their own framing.
func (e Event) MarshalFrame() ([]byte, error) {
	b, err := json.Marshal(e.Envelope())
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.kind, err)
	}
	return b, nil
}
