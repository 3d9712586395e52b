// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

// Package transport adapts long-lived HTTP connections to the stream
// registry's Transport interface.
//
// SSE frames each event as "data: <json>\n\n" on a text/event-stream
// response. WebSocket sends each event as one text message over a
// gorilla/websocket connection. Both serialize writers with a mutex, apply
// the caller's context deadline as the connection write deadline, expose a
// Done channel that closes when the connection ends, and make Close
// idempotent.
//
// Write failures are returned to the caller, which removes the subscriber.
// Nothing here retries.
package transport

import "errors"

// Transport kinds reported by Kind.
const (
	KindSSE       = "sse"
	KindWebSocket = "websocket"
)

// ErrClosed is returned by writes on a closed transport.
var ErrClosed = errors.New("transport closed")
