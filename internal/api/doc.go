// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

/*
Package api exposes the HTTP surface: the SSE and WebSocket subscription
endpoints, stream control, and read-only views of the tweet store,
trending window, and buzzer accounts.

# Routing

The router is chi. Every route passes through RequestID, RealIP,
Recoverer, CORS, and Prometheus request metrics. Control and data routes
under /api are also rate limited per IP and gzip compressed. The two
stream routes are not: they are long-lived and write their own framing.

# Responses

JSON bodies use one envelope:

	{"success": true, "data": ...}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}}

Start and stop keep the older {success, message, status} shape that
dashboards already parse.
*/
package api
