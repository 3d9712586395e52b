// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

/*
Package stream implements the backpressure layer between event producers
and long-lived subscribers.

# Components

  - Queue: bounded ring of events. When full, the head is evicted before a
    new event is admitted. Alerts jump to the head.
  - Registry: connected subscribers in registration order, each wrapping a
    Transport (SSE or WebSocket).
  - Dispatcher: every 100ms drains min(5, ceil(queue/subscribers)) events
    per subscriber. A subscriber whose write fails is removed after the cycle.
  - Sweeper: every 60s removes subscribers idle for more than 5 minutes.
  - Service: the producer, metrics, and trending loops. Start and Stop are
    idempotent.

# Delivery

Delivery is work distribution, not broadcast: each drained event is written
to exactly one subscriber or discarded. There is no retry and no
re-enqueue.

# Usage

	queue := stream.NewQueue(stream.DefaultQueueCapacity)
	registry := stream.NewRegistry()
	dispatcher := stream.NewDispatcher(queue, registry, stream.DefaultDispatcherConfig())
	svc := stream.NewService(queue, registry, stream.DefaultServiceConfig(),
		stream.WithGenerator(gen),
		stream.WithClassifier(detection.Heuristic{}),
		stream.WithLatencySource(dispatcher),
	)

	supervisor.AddMessagingService(dispatcher)
	svc.Start()
*/
package stream
