// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package client

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/tourline/internal/models"
)

// Geolocator provides the device position.
type Geolocator interface {
	// RequestPermission asks for location access and reports whether it was granted.
	RequestPermission(ctx context.Context) (bool, error)

	// CurrentPosition reads the current position.
	CurrentPosition(ctx context.Context) (models.Location, error)
}

// errNoWaypoints is returned by SimulatedGeolocator when it has no route.
var errNoWaypoints = errors.New("simulated route has no waypoints")

// SimulatedGeolocator walks a route of waypoints, moving one step per
// CurrentPosition call and looping back to the start at the end.
type SimulatedGeolocator struct {
	mu          sync.Mutex
	waypoints   []models.Location
	stepsPerLeg int
	step        int

	// Deny makes RequestPermission refuse access.
	Deny bool
}

// NewSimulatedGeolocator creates a walker over waypoints. Each leg between
// consecutive waypoints is split into stepsPerLeg samples (minimum 1).
func NewSimulatedGeolocator(waypoints []models.Location, stepsPerLeg int) *SimulatedGeolocator {
	if stepsPerLeg < 1 {
		stepsPerLeg = 1
	}
	route := make([]models.Location, len(waypoints))
	copy(route, waypoints)
	return &SimulatedGeolocator{waypoints: route, stepsPerLeg: stepsPerLeg}
}

// RequestPermission implements Geolocator.
func (g *SimulatedGeolocator) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return !g.Deny, nil
}

// CurrentPosition implements Geolocator.
func (g *SimulatedGeolocator) CurrentPosition(ctx context.Context) (models.Location, error) {
	if err := ctx.Err(); err != nil {
		return models.Location{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch len(g.waypoints) {
	case 0:
		return models.Location{}, errNoWaypoints
	case 1:
		return g.waypoints[0], nil
	}

	legs := len(g.waypoints) - 1
	total := legs * g.stepsPerLeg
	pos := g.step % (total + 1)
	g.step++

	leg := pos / g.stepsPerLeg
	if leg == legs {
		return g.waypoints[legs], nil
	}
	frac := float64(pos%g.stepsPerLeg) / float64(g.stepsPerLeg)
	from, to := g.waypoints[leg], g.waypoints[leg+1]
	return models.Location{
		Latitude:  from.Latitude + (to.Latitude-from.Latitude)*frac,
		Longitude: from.Longitude + (to.Longitude-from.Longitude)*frac,
	}, nil
}
