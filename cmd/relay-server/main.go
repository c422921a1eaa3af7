// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

// Package main is the entry point for the Tourline relay server.
//
// The relay accepts WebSocket connections from tour participants, tracks
// which connections belong to which tour group, and rebroadcasts every
// location update to all members of the sender's group.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file and environment (Koanf v2)
//  2. Event tap (optional): NATS publisher for group lifecycle events
//  3. Relay hub: connection registry and fan-out loop
//  4. HTTP router: /ws, /health, /api/v1/stats and /metrics
//  5. Supervisor tree: runs the hub, the tap and the HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server, closes every relay connection and shuts down the event tap.
//
// # Example Usage
//
//	PORT=3858 LOG_LEVEL=debug ./relay-server
//
//	NATS_ENABLED=true NATS_EMBEDDED=true ./relay-server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tourline/internal/api"
	"github.com/tomtom215/tourline/internal/config"
	"github.com/tomtom215/tourline/internal/eventtap"
	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/relay"
	"github.com/tomtom215/tourline/internal/supervisor"
	"github.com/tomtom215/tourline/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Tourline relay")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFromConfig(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tap := initEventTap(cfg)

	var sink relay.EventSink
	if tap != nil {
		sink = tap
		tree.AddMessagingService(services.NewEventTapService(tap, cfg.Supervisor.ShutdownTimeout))
	}

	hub := relay.NewHub(relay.OptionsFromConfig(cfg.Relay, cfg.Security), sink)
	tree.AddMessagingService(services.NewRelayHubService(hub))

	handler := api.NewHandler(hub, version, tap != nil)
	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security))
	router := api.NewRouter(handler, mw, cfg.Relay.Path, hub.ServeWS)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Str("ws_path", cfg.Relay.Path).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Relay stopped gracefully")
}

// initEventTap opens the NATS lifecycle event tap. It returns nil when NATS
// is disabled or unreachable; the relay runs without a tap in that case.
func initEventTap(cfg *config.Config) *eventtap.Tap {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Event tap disabled (NATS_ENABLED=false)")
		return nil
	}

	tap, err := eventtap.Open(eventtap.FromConfig(cfg.NATS))
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to open event tap, continuing without lifecycle events")
		return nil
	}
	logging.Info().Str("broker", tap.BrokerURL()).Msg("Event tap connected")
	return tap
}
