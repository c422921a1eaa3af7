// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package models defines the data structures shared by the relay server and the
location sharing client.

Wire protocol (JSON text frames, one Envelope each):

	client -> server  {"event":"join","data":"tour-42"}
	client -> server  {"event":"leave","data":"tour-42"}
	client -> server  {"event":"locationUpdate","data":{"groupId":"tour-42","userId":"u1","location":{"latitude":48.85,"longitude":2.35}}}
	server -> client  {"event":"connected","data":{"socketId":"6f1c..."}}
	server -> client  {"event":"locationUpdate","data":{"socketId":"6f1c...","userId":"u1","location":{"latitude":48.85,"longitude":2.35}}}

Decoding failures and validation failures both wrap ErrMalformedPayload.

HTTP models (APIResponse, HealthStatus, RelayStats) and the NATS lifecycle
event (LifecycleEvent) live here as well.
*/
package models
