// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package supervisor provides process supervision for the relay server using suture v4.

# Overview

Services are organized into two layers for failure isolation:

	RootSupervisor ("tourline")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── RelayHubService
	│   └── EventTapService (if NATS is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A hub crash restarts the hub loop without touching the HTTP listener. Broker
outages never reach the hub because the event tap queues and drops on its own.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewRelayHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

# Configuration

TreeConfig controls restart behavior. Zero fields take suture's defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Debugging Shutdown Issues

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("service did not stop")
	}

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4: underlying library
*/
package supervisor
