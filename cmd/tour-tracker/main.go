// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

// Package main is a command-line tour participant.
//
// It joins a tour group on the relay, shares a simulated position walking a
// short route, and logs every change to the positions of the other
// participants in the group.
//
//	tour-tracker -group tour-42 -user guide-1 -server ws://127.0.0.1:3858/ws
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/tourline/internal/client"
	"github.com/tomtom215/tourline/internal/config"
	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/models"
)

// route is a loop around the Louvre courtyard.
var route = []models.Location{
	{Latitude: 48.86061, Longitude: 2.33764},
	{Latitude: 48.86118, Longitude: 2.33557},
	{Latitude: 48.86205, Longitude: 2.33616},
	{Latitude: 48.86147, Longitude: 2.33830},
	{Latitude: 48.86061, Longitude: 2.33764},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	group := flag.String("group", "", "tour group id to join")
	user := flag.String("user", "", "participant id to report")
	server := flag.String("server", cfg.Client.ServerURL, "relay WebSocket URL")
	steps := flag.Int("steps", 10, "samples per leg of the simulated route")
	flag.Parse()

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if *group == "" || *user == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logging.ContextWithNewCorrelationID(ctx)

	geo := client.NewSimulatedGeolocator(route, *steps)
	ctrl := client.NewController(geo, client.OptionsFromConfig(cfg.Client))
	session := client.NewSession(ctrl, *server)

	if err := session.Apply(ctx, client.Binding{Enabled: true, GroupID: *group, ParticipantID: *user}); err != nil {
		logging.Ctx(ctx).Fatal().Err(err).Str("server", *server).Msg("Failed to start location sharing")
	}
	defer session.Close()

	conn := ctrl.Conn()
	tracker := client.NewPositionTracker(conn, client.TrackerOptions{
		IgnoreSelf: true,
		OnChange: func(userID string, loc models.Location) {
			logging.Info().
				Str("participant", userID).
				Float64("latitude", loc.Latitude).
				Float64("longitude", loc.Longitude).
				Msg("participant moved")
		},
	})
	tracker.SetActive(true)
	defer tracker.Close()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Leaving tour")
	case <-conn.Done():
		logging.Warn().Msg("Relay connection lost")
	}

	logging.Info().Int("participants", len(tracker.Positions())).Msg("Final position map")
}
