// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package eventbus

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/buzzstream/internal/metrics"
	"github.com/tomtom215/buzzstream/internal/models"
)

// Mirror republishes produced tweets on the bus. It satisfies the stream
// service's Recorder interface.
type Mirror struct {
	pub    message.Publisher
	topic  string
	source string
}

// NewMirror creates a mirror publishing to topic.
func NewMirror(pub message.Publisher, topic, source string) *Mirror {
	if source == "" {
		source = DefaultSource
	}
	return &Mirror{pub: pub, topic: topic, source: source}
}

// RecordTweet publishes t as a JSON message.
//
//nolint:gocritic // models.Tweet is passed by value across the producer
func (m *Mirror) RecordTweet(ctx context.Context, t models.Tweet) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tweet %s: %w", t.ID, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataSource, m.source)
	msg.Metadata.Set(MetadataTweetID, t.ID)
	msg.SetContext(ctx)

	if err := m.pub.Publish(m.topic, msg); err != nil {
		return fmt.Errorf("publish tweet %s to %s: %w", t.ID, m.topic, err)
	}
	metrics.BusMessagesPublished.Inc()
	return nil
}

// Topic returns the publish topic.
func (m *Mirror) Topic() string {
	return m.topic
}
