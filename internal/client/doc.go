// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package client is the participant side of the relay: it shares the device
position with a group and tracks the positions of everyone else in it.

# Components

  - Conn: a relay WebSocket connection with per-event handlers
  - Controller: owns one Conn and one sampling task, emits join and periodic locationUpdate events
  - Session: turns {enabled, groupId, participantId} state changes into Start/Stop calls
  - PositionTracker: listens for locationUpdate broadcasts and keeps the latest position per participant
  - SimulatedGeolocator: a Geolocator that walks a fixed route

# Usage

	ctrl := client.NewController(geo, client.OptionsFromConfig(cfg.Client))
	if err := ctrl.Start(ctx, "tour-42", "guide-1", cfg.Client.ServerURL); err != nil {
	    return err
	}
	defer ctrl.Stop()

	tracker := client.NewPositionTracker(ctrl.Conn(), client.TrackerOptions{IgnoreSelf: true})
	tracker.SetActive(true)
	defer tracker.Close()

There is no automatic reconnect. When the relay goes away the Conn reports
EventDisconnect; calling Start again dials a fresh connection.
*/
package client
