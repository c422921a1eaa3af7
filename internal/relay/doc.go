// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package relay is the WebSocket relay server: it accepts connections, tracks
group membership and fans location updates out to every member of a group.

The package uses a hub-and-spoke layout built on gorilla/websocket:

	┌────────────────────────────┐
	│ Hub (single event loop)    │ ← join / leave / locationUpdate / disconnect
	│   registry: group → conns  │
	└────┬───────────┬───────────┘
	     │           │
	 Client A    Client B   (readPump + writePump each)

Each Client has two goroutines. readPump decodes frames, applies the
per-connection rate limit and forwards events to the hub. writePump drains
the buffered send channel and sends keepalive pings.

# Protocol

Frames are JSON text messages of the form {"event": name, "data": payload}.

	→ join            "tour-42"
	→ leave           "tour-42"
	→ locationUpdate  {"groupId":"tour-42","userId":"u1","location":{"latitude":..,"longitude":..}}
	← connected       {"socketId":"<uuid>"}
	← locationUpdate  {"socketId":"<sender uuid>","userId":"u1","location":{..}}

A location update is delivered to every current member of its group,
sender included; receivers compare socketId with their own id to ignore the
echo. Updates for a group without members are dropped. Malformed frames are
dropped and counted; the sender never receives an error.

# Usage

	hub := relay.NewHub(relay.OptionsFromConfig(cfg.Relay, cfg.Security), tap)
	go hub.RunWithContext(ctx)
	r.Get("/ws", hub.ServeWS)

Delivery is best effort. A client whose send buffer is full is disconnected
and removed from its groups.
*/
package relay
