// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package client

import "errors"

var (
	// ErrPermissionDenied is returned by Controller.Start when the
	// Geolocator refuses location access.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrSampleFailure wraps a failed position read. The sampling task logs
	// it and skips the tick.
	ErrSampleFailure = errors.New("location sample failed")

	// ErrConnClosed is returned by Conn.Emit after the connection is closed.
	ErrConnClosed = errors.New("relay connection closed")

	// ErrInvalidServerURL is returned when the relay address cannot be dialed.
	ErrInvalidServerURL = errors.New("invalid relay server url")
)
