// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons for RelayDroppedUpdates.
const (
	DropReasonNoGroup     = "no_group"
	DropReasonMalformed   = "malformed"
	DropReasonRateLimited = "rate_limited"
)

// Circuit breaker state values for CircuitBreakerState.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

var (
	// Relay Metrics
	RelayConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tourline_relay_connections",
			Help: "Current number of open relay WebSocket connections",
		},
	)

	RelayGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tourline_relay_groups",
			Help: "Current number of groups with at least one member",
		},
	)

	RelayMemberships = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tourline_relay_memberships",
			Help: "Current number of (connection, group) memberships",
		},
	)

	RelayEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourline_relay_events_received_total",
			Help: "Total number of inbound relay events by event name",
		},
		[]string{"event"}, // join, leave, locationUpdate, unknown
	)

	RelayBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourline_relay_broadcasts_total",
			Help: "Total number of location updates fanned out to a group",
		},
	)

	RelayDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourline_relay_deliveries_total",
			Help: "Total number of frames queued to individual connections",
		},
	)

	RelayFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tourline_relay_fanout_members",
			Help:    "Number of recipients per location broadcast",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	RelayDroppedUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourline_relay_dropped_updates_total",
			Help: "Total number of inbound events dropped without delivery",
		},
		[]string{"reason"}, // no_group, malformed, rate_limited
	)

	RelaySlowConsumers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourline_relay_slow_consumers_total",
			Help: "Total number of connections dropped because their send buffer was full",
		},
	)

	RelayErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourline_relay_errors_total",
			Help: "Total number of relay transport errors",
		},
		[]string{"error_type"}, // upgrade, read, write
	)

	// Client Metrics
	ClientSamples = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourline_client_samples_total",
			Help: "Total number of position samples sent by the sharing controller",
		},
	)

	ClientSampleFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourline_client_sample_failures_total",
			Help: "Total number of position samples skipped because sampling failed",
		},
	)

	ClientPositionUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tourline_client_position_updates_total",
			Help: "Total number of participant positions applied by the position tracker",
		},
	)

	// Event Tap Metrics
	EventTapPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourline_event_tap_published_total",
			Help: "Total number of lifecycle events published to NATS",
		},
		[]string{"kind"},
	)

	EventTapFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tourline_event_tap_failures_total",
			Help: "Total number of lifecycle events that could not be published",
		},
		[]string{"reason"}, // publish, circuit_open, buffer_full, encode
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRelayEvent counts an inbound event. Unknown event names are folded
// into "unknown" to keep label cardinality bounded.
func RecordRelayEvent(event string) {
	switch event {
	case "join", "leave", "locationUpdate":
	default:
		event = "unknown"
	}
	RelayEventsReceived.WithLabelValues(event).Inc()
}

// RecordDroppedUpdate counts an inbound event dropped for reason.
func RecordDroppedUpdate(reason string) {
	RelayDroppedUpdates.WithLabelValues(reason).Inc()
}

// RecordBroadcast records one location fan-out to recipients connections.
func RecordBroadcast(recipients int) {
	RelayBroadcasts.Inc()
	RelayDeliveries.Add(float64(recipients))
	RelayFanout.Observe(float64(recipients))
}

// SetRelayTopology publishes the current registry shape.
func SetRelayTopology(connections, groups, memberships int) {
	RelayConnections.Set(float64(connections))
	RelayGroups.Set(float64(groups))
	RelayMemberships.Set(float64(memberships))
}

// RecordBreakerTransition records a circuit breaker state change.
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
