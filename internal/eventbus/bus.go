// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package eventbus connects the stream producer to a Watermill message bus.
//
// A Mirror publishes every produced tweet to the publish topic so that
// downstream consumers (archivers, the external AI service) see the same
// feed the subscribers do. An Ingestor consumes tweets from the ingest topic
// and feeds them into the stream service as if they had been generated
// locally.
//
// Two backends are available:
//
//   - gochannel: Watermill's in-process pub/sub, always compiled in
//   - nats: core NATS through watermill-nats, optionally with an embedded
//     server; requires building with -tags nats
//
// Delivery is best effort in both cases. Malformed or invalid ingest
// messages are acknowledged and counted rather than redelivered.
package eventbus

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/buzzstream/internal/logging"
)

// Backend names.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// Topic and metadata defaults.
const (
	DefaultPublishTopic = "buzzstream.tweets"
	DefaultIngestTopic  = "buzzstream.ingest"
	DefaultSource       = "buzzstream"

	// MetadataSource names the producing service on every mirrored message.
	MetadataSource = "source"
	// MetadataTweetID carries the tweet id so consumers can route without decoding.
	MetadataTweetID = "tweet_id"

	goChannelBuffer = 256
)

var (
	// ErrNATSNotEnabled is returned by Open when NATS is requested in a
	// binary built without -tags nats.
	ErrNATSNotEnabled = errors.New("NATS support not compiled in: build with -tags nats")

	// ErrTopicLoop is returned when the publish and ingest topics are equal,
	// which would feed every mirrored tweet back into the producer.
	ErrTopicLoop = errors.New("publish topic and ingest topic must differ")
)

// Config selects and configures the bus backend.
type Config struct {
	NATSEnabled  bool
	URL          string
	Embedded     bool
	EmbeddedHost string
	EmbeddedPort int
	QueueGroup   string
	PublishTopic string
	IngestTopic  string
	Source       string
}

// WithDefaults fills empty topic and source fields.
//
//nolint:gocritic // Config is small and copied once at startup
func (c Config) WithDefaults() Config {
	if c.PublishTopic == "" {
		c.PublishTopic = DefaultPublishTopic
	}
	if c.IngestTopic == "" {
		c.IngestTopic = DefaultIngestTopic
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	return c
}

// Validate checks the topic configuration.
//
//nolint:gocritic // Config is small and copied once at startup
func (c Config) Validate() error {
	if c.PublishTopic == c.IngestTopic {
		return fmt.Errorf("%w: %q", ErrTopicLoop, c.PublishTopic)
	}
	return nil
}

// Bus is an opened publisher and subscriber pair.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Backend    string

	closers []func() error
}

// Open creates the configured backend.
//
//nolint:gocritic // Config is small and copied once at startup
func Open(cfg Config) (*Bus, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewWatermillAdapter()
	if !cfg.NATSEnabled {
		return NewInProcess(logger), nil
	}

	b, err := openNATS(cfg, logger)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("backend", b.Backend).
		Str("publish_topic", cfg.PublishTopic).
		Str("ingest_topic", cfg.IngestTopic).
		Msg("Event bus opened")
	return b, nil
}

// NewInProcess returns a bus backed by Watermill's gochannel pub/sub.
func NewInProcess(logger watermill.LoggerAdapter) *Bus {
	return NewGoChannel(gochannel.Config{OutputChannelBuffer: goChannelBuffer}, logger)
}

// NewGoChannel returns a gochannel bus with an explicit config.
func NewGoChannel(cfg gochannel.Config, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ch := gochannel.NewGoChannel(cfg, logger)
	return &Bus{
		Publisher:  ch,
		Subscriber: ch,
		Backend:    BackendGoChannel,
		closers:    []func() error{ch.Close},
	}
}

// Close releases the backend in reverse order of acquisition.
func (b *Bus) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
