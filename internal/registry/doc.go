// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

// Package registry tracks group membership for the relay: group id to the set
// of connection ids currently joined. Groups are created on first join and
// deleted when the last member leaves or disconnects. State is memory only.
package registry
