// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package middleware provides HTTP middleware for the relay's HTTP surface.

  - RequestID: X-Request-ID propagation plus request and correlation ids in
    the logging context
  - PrometheusMetrics: request count, duration and in-flight gauge, labelled
    by chi route pattern

Both are written as http.HandlerFunc wrappers; the api package adapts them
to chi's func(http.Handler) http.Handler form. The metrics wrapper supports
http.Hijacker so the /ws upgrade can pass through it.
*/
package middleware
