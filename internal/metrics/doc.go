// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered on the default registry through promauto and exposed
at /metrics by the API router:

	curl http://localhost:3858/metrics

# Available Metrics

Relay:
  - tourline_relay_connections, tourline_relay_groups, tourline_relay_memberships (gauges)
  - tourline_relay_events_received_total{event}
  - tourline_relay_broadcasts_total, tourline_relay_deliveries_total
  - tourline_relay_fanout_members (histogram)
  - tourline_relay_dropped_updates_total{reason}: no_group, malformed, rate_limited
  - tourline_relay_slow_consumers_total
  - tourline_relay_errors_total{error_type}

Client:
  - tourline_client_samples_total, tourline_client_sample_failures_total
  - tourline_client_position_updates_total

Event tap:
  - tourline_event_tap_published_total{kind}
  - tourline_event_tap_failures_total{reason}
  - circuit_breaker_state{name}, circuit_breaker_state_transitions_total

HTTP:
  - api_requests_total, api_request_duration_seconds, api_active_requests

Location coordinates and group ids are never used as label values.
*/
package metrics
