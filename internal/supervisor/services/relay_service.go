// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package services

import (
	"context"

	"github.com/tomtom215/tourline/internal/logging"
)

// RelayHub is satisfied by *relay.Hub.
type RelayHub interface {
	RunWithContext(ctx context.Context) error
	GetClientCount() int
}

// RelayHubService runs the relay hub's event loop under supervision.
//
// The hub closes every connection when its loop exits, so a restart starts
// from an empty registry and clients reconnect.
type RelayHubService struct {
	hub  RelayHub
	name string
}

// NewRelayHubService wraps hub.
func NewRelayHubService(hub RelayHub) *RelayHubService {
	return &RelayHubService{
		hub:  hub,
		name: "relay-hub",
	}
}

// Serve implements suture.Service.
func (r *RelayHubService) Serve(ctx context.Context) error {
	err := r.hub.RunWithContext(ctx)
	if ctx.Err() == nil && err != nil {
		logging.Error().Err(err).Int("connections", r.hub.GetClientCount()).Msg("relay hub loop failed")
	}
	return err
}

// String implements fmt.Stringer for suture logging.
func (r *RelayHubService) String() string {
	return r.name
}
