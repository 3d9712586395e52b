// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package services

import (
	"context"

	"github.com/tomtom215/buzzstream/internal/logging"
)

// StartStopper is the lifecycle of the stream producer. Both calls are
// idempotent and report whether they changed state.
type StartStopper interface {
	Start() bool
	Stop() bool
}

// ProducerService ties the producer's loops to the supervisor: it
// optionally starts them when supervision begins and always stops them on
// shutdown. Between those points the API may start and stop the producer
// freely.
type ProducerService struct {
	producer  StartStopper
	autoStart bool
}

// NewProducerService wraps producer.
func NewProducerService(producer StartStopper, autoStart bool) *ProducerService {
	return &ProducerService{producer: producer, autoStart: autoStart}
}

// Serve implements suture.Service.
func (p *ProducerService) Serve(ctx context.Context) error {
	if p.autoStart && p.producer.Start() {
		logging.Info().Msg("Stream producer auto-started")
	}

	<-ctx.Done()

	if p.producer.Stop() {
		logging.Info().Msg("Stream producer stopped for shutdown")
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (p *ProducerService) String() string {
	return "stream-producer"
}
