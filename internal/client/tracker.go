// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package client

import (
	"sync"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/metrics"
	"github.com/tomtom215/tourline/internal/models"
)

// Source is the event stream a PositionTracker reads from. *Conn satisfies it.
type Source interface {
	On(event string, h Handler) (unsubscribe func())
	ID() string
}

// TrackerOptions configures a PositionTracker.
type TrackerOptions struct {
	// IgnoreSelf drops updates whose socketId is the source's own id.
	IgnoreSelf bool

	// OnChange is called after a participant's position is updated. It runs
	// on the source's read goroutine and must not block.
	OnChange func(userID string, loc models.Location)
}

// PositionTracker keeps the latest known position of every participant in
// the group.
//
// While active it listens for locationUpdate events. Each update replaces the
// entry for its userId in arrival order. Entries are never removed: a
// participant who left stays at their last position.
type PositionTracker struct {
	src  Source
	opts TrackerOptions

	mu          sync.RWMutex
	positions   map[string]models.Location
	unsubscribe func()
}

// NewPositionTracker creates an inactive tracker over src.
func NewPositionTracker(src Source, opts TrackerOptions) *PositionTracker {
	return &PositionTracker{
		src:       src,
		opts:      opts,
		positions: make(map[string]models.Location),
	}
}

// SetActive subscribes to or unsubscribes from location updates. Repeated
// calls with the same value are no-ops.
func (t *PositionTracker) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case active && t.unsubscribe == nil && t.src != nil:
		t.unsubscribe = t.src.On(models.EventLocationUpdate, t.handle)
	case !active && t.unsubscribe != nil:
		t.unsubscribe()
		t.unsubscribe = nil
	}
}

// Active reports whether the tracker is subscribed.
func (t *PositionTracker) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.unsubscribe != nil
}

// Positions returns a copy of the position map keyed by participant id.
func (t *PositionTracker) Positions() map[string]models.Location {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]models.Location, len(t.positions))
	for id, loc := range t.positions {
		out[id] = loc
	}
	return out
}

// Position returns the last known position of userID.
func (t *PositionTracker) Position(userID string) (models.Location, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	loc, ok := t.positions[userID]
	return loc, ok
}

// Close unsubscribes the tracker. The position map is kept.
func (t *PositionTracker) Close() {
	t.SetActive(false)
}

func (t *PositionTracker) handle(env models.Envelope) {
	b, err := env.LocationBroadcast()
	if err != nil {
		logging.Debug().Err(err).Msg("ignoring malformed location broadcast")
		return
	}
	if t.opts.IgnoreSelf && b.SocketID != "" && b.SocketID == t.src.ID() {
		return
	}

	t.mu.Lock()
	if t.unsubscribe == nil {
		// Deactivated while this update was in flight.
		t.mu.Unlock()
		return
	}
	t.positions[b.UserID] = b.Location
	t.mu.Unlock()

	metrics.ClientPositionUpdates.Inc()
	if t.opts.OnChange != nil {
		t.opts.OnChange(b.UserID, b.Location)
	}
}
