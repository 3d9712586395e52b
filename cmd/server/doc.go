// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

/*
Package main is the entry point for the Buzzstream server.

Buzzstream streams synthetic (or bus-ingested) political tweets to many
subscribers over Server-Sent Events and WebSocket, flags likely buzzer
accounts, and publishes periodic metrics and trending-topic events. A
bounded queue between the producer and the dispatcher sheds the oldest
events under load instead of blocking the producer.

# Application Architecture

	RootSupervisor ("buzzstream")
	├── DataSupervisor ("data-layer")
	│   ├── tweet-store (BadgerDB)
	│   └── response-cache-cleanup
	├── MessagingSupervisor ("messaging-layer")
	│   ├── stream-dispatcher
	│   ├── subscriber-sweeper
	│   ├── bus-ingestor (Watermill gochannel or NATS)
	│   └── stream-producer
	└── APISupervisor ("api-layer")
	    └── http-server (chi)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog, JSON or console
 3. Tweet store: BadgerDB, in memory unless STORE_PATH is set
 4. Event bus: Watermill, in-process unless NATS_ENABLED=true
 5. Stream core: queue, registry, dispatcher, sweeper, producer
 6. HTTP router: SSE, WebSocket, control and data endpoints
 7. Supervisor tree: suture v4

# Configuration

	PORT=3000                    # HTTP port
	MAX_CLIENTS=100              # subscriber limit
	TWEETS_PER_SECOND=10         # producer rate
	BACKPRESSURE_THRESHOLD=50    # queue capacity
	STREAM_AUTO_START=false      # start producing at boot
	ENABLE_MOCK_DATA=true        # synthetic generator
	AI_SERVICE_ENABLED=false     # external detection service
	AI_SERVICE_URL=http://localhost:8000
	NATS_ENABLED=false           # requires -tags nats
	LOG_LEVEL=info
	LOG_FORMAT=json

# Build Tags

	go build ./cmd/server              # in-process bus only
	go build -tags nats ./cmd/server   # NATS bus, optional embedded server

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The producer stops, open
stream responses end through their request contexts, the HTTP server
drains, and the bus and store close last.

@title Buzzstream API
@version 1.0
@description Real-time buzzer-detection tweet stream with backpressure.
@license.name AGPL-3.0-or-later
@BasePath /
*/
package main
