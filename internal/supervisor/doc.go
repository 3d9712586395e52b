// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

/*
Package supervisor runs every long-lived Buzzstream component under a
suture v4 supervisor tree.

# Layout

	RootSupervisor ("buzzstream")
	├── DataSupervisor ("data-layer")
	│   ├── tweet-store (BadgerDB value log GC)
	│   └── response-cache-cleanup
	├── MessagingSupervisor ("messaging-layer")
	│   ├── stream-dispatcher
	│   ├── subscriber-sweeper
	│   ├── bus-ingestor
	│   └── stream-producer
	└── APISupervisor ("api-layer")
	    └── http-server

Each layer counts failures on its own, so a dispatcher that keeps
panicking backs off inside the messaging layer while the HTTP server keeps
answering status requests.

# Configuration

TreeConfig maps onto suture.Spec. Zero values fall back to
DefaultTreeConfig, which matches suture's built-in defaults:

	FailureThreshold: 5
	FailureDecay:     30 (seconds)
	FailureBackoff:   15s
	ShutdownTimeout:  10s

# Service contract

	nil        -> stopped cleanly, not restarted
	error      -> crashed, restarted after backoff
	ctx.Err()  -> shutdown requested

Supervisor events are logged through sutureslog, bridged into zerolog by
logging.NewSlogLogger.

# Shutdown

Cancelling the context passed to Serve stops every layer. Services that do
not return within ShutdownTimeout are listed by UnstoppedServiceReport.
*/
package supervisor
