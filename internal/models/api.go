// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package models

import "time"

// APIResponse is the wrapper returned by every JSON HTTP endpoint.
//
//	{
//	  "status": "success",
//	  "data": {"groups": 2, "connections": 5},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError represents an error response with structured error details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Connections int    `json:"connections"`
	EventTap    bool   `json:"event_tap"`
}

// RelayStats is the /api/v1/stats payload.
type RelayStats struct {
	Connections int            `json:"connections"`
	Groups      int            `json:"groups"`
	Memberships int            `json:"memberships"`
	GroupSizes  map[string]int `json:"group_sizes"`
}
