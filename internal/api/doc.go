// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package api provides the relay's HTTP surface on a chi router.

Routes:

	GET /ws            WebSocket upgrade into the relay (path configurable)
	GET /health        liveness, version, open connections
	GET /api/v1/stats  connection, group and membership counts
	GET /metrics       Prometheus exposition

JSON endpoints answer with models.APIResponse:

	{"status":"success","data":{...},"metadata":{"timestamp":"..."}}

Every route passes through request id, real IP, panic recovery, CORS
(go-chi/cors) and Prometheus middleware. Per-IP limits (go-chi/httprate) are
applied to /health, the upgrade endpoint and /api/v1 separately.
*/
package api
