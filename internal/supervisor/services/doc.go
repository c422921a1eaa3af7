// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package services provides suture.Service wrappers for the relay server's
long-running components.

# Available Services

HTTP Server (HTTPServerService):
  - Runs ListenAndServe in a goroutine
  - Calls Shutdown with a bounded context when the tree stops
  - Returns listen failures so the supervisor restarts the server

Relay Hub (RelayHubService):
  - Runs relay.Hub.RunWithContext
  - The hub closes every connection when the loop exits

Event Tap (EventTapService):
  - Drains the lifecycle event queue and publishes to NATS
  - Closes the publisher and embedded broker when the tree stops

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(logger, supervisor.TreeConfigFromConfig(cfg.Supervisor))
	tree.AddMessagingService(services.NewRelayHubService(hub))
	if tap != nil {
	    tree.AddMessagingService(services.NewEventTapService(tap, cfg.Server.ShutdownTimeout))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

# Error Handling

Return values decide what the supervisor does next:

	nil         -> service stopped cleanly
	error       -> service crashed and is restarted with backoff
	ctx.Err()   -> shutdown requested
*/
package services
