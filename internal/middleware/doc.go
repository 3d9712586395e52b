// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

/*
Package middleware provides the HTTP middleware shared by every route.

  - RequestID: reuses or generates X-Request-ID and seeds the logging
    context with request and correlation ids.
  - PrometheusMetrics: request count, duration, and in-flight gauge,
    labelled by the chi route pattern.

Both are func(http.Handler) http.Handler so they plug into chi's r.Use.
The metrics writer wrapper keeps Flush, Hijack, and Unwrap working, so
SSE and WebSocket routes can sit behind it.
*/
package middleware
