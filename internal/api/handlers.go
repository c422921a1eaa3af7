// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/tourline/internal/models"
)

// RelayStatus is the read side of the relay hub used by the HTTP handlers.
type RelayStatus interface {
	Stats() models.RelayStats
	GetClientCount() int
}

// Handler serves the JSON endpoints.
type Handler struct {
	relay     RelayStatus
	version   string
	eventTap  bool
	startTime time.Time
}

// NewHandler creates a Handler. eventTap reports whether lifecycle events
// are being published.
func NewHandler(relay RelayStatus, version string, eventTap bool) *Handler {
	return &Handler{
		relay:     relay,
		version:   version,
		eventTap:  eventTap,
		startTime: time.Now(),
	}
}

// Health reports liveness and the number of open relay connections.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:   "healthy",
		Version:  h.version,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		EventTap: h.eventTap,
	}
	if h.relay == nil {
		status.Status = "degraded"
	} else {
		status.Connections = h.relay.GetClientCount()
	}

	respondSuccess(w, status)
}

// Stats returns connection and group counts. Group ids are included; no
// participant or position data is exposed.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.relay == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Relay not running", nil)
		return
	}
	respondSuccess(w, h.relay.Stats())
}

// NotFound answers unknown routes with the standard error envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}
