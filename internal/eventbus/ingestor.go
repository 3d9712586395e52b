// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/buzzstream/internal/logging"
	"github.com/tomtom215/buzzstream/internal/metrics"
	"github.com/tomtom215/buzzstream/internal/models"
	"github.com/tomtom215/buzzstream/internal/validation"
)

// ErrSubscriptionClosed is returned by Serve when the backend closes the
// message channel while the context is still live.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Sink receives ingested tweets.
type Sink interface {
	Ingest(ctx context.Context, t models.Tweet)
}

// Ingestor feeds tweets from the ingest topic into a Sink.
// Implements suture.Service.
type Ingestor struct {
	sub   message.Subscriber
	topic string
	sink  Sink

	ready     chan struct{}
	readyOnce sync.Once
}

// NewIngestor creates an ingestor for topic.
func NewIngestor(sub message.Subscriber, topic string, sink Sink) *Ingestor {
	return &Ingestor{
		sub:   sub,
		topic: topic,
		sink:  sink,
		ready: make(chan struct{}),
	}
}

// Serve subscribes and processes messages until ctx is cancelled.
func (i *Ingestor) Serve(ctx context.Context) error {
	messages, err := i.sub.Subscribe(ctx, i.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", i.topic, err)
	}
	i.readyOnce.Do(func() { close(i.ready) })

	logging.Info().Str("topic", i.topic).Msg("Event bus ingestor subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%s: %w", i.topic, ErrSubscriptionClosed)
			}
			i.handle(ctx, msg)
		}
	}
}

// handle always acks: the ingest feed is best effort.
func (i *Ingestor) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var t models.Tweet
	if err := json.Unmarshal(msg.Payload, &t); err != nil {
		i.reject(msg, err)
		return
	}
	if err := validation.Struct(&t); err != nil {
		i.reject(msg, err)
		return
	}

	i.sink.Ingest(ctx, t)
	metrics.BusMessagesIngested.Inc()
}

func (i *Ingestor) reject(msg *message.Message, err error) {
	metrics.BusMessagesRejected.Inc()
	logging.Warn().
		Err(err).
		Str("message_uuid", msg.UUID).
		Str("source", msg.Metadata.Get(MetadataSource)).
		Msg("Rejected ingest message")
}

// Ready is closed once the first subscription is established.
func (i *Ingestor) Ready() <-chan struct{} {
	return i.ready
}

func (i *Ingestor) String() string {
	return "eventbus-ingestor"
}
