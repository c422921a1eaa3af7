// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package services

import (
	"context"
	"time"

	"github.com/tomtom215/tourline/internal/logging"
)

// EventTap is satisfied by *eventtap.Tap.
type EventTap interface {
	Serve(ctx context.Context) error
	Close(ctx context.Context) error
}

// EventTapService drains the lifecycle event tap under supervision and
// releases its broker resources once the tree shuts down.
//
// Close runs only when ctx is canceled. A Serve error without cancellation
// leaves the publisher open so the supervisor can restart the loop.
type EventTapService struct {
	tap          EventTap
	closeTimeout time.Duration
	name         string
}

// NewEventTapService wraps tap. A non-positive closeTimeout falls back to 10s.
func NewEventTapService(tap EventTap, closeTimeout time.Duration) *EventTapService {
	if closeTimeout <= 0 {
		closeTimeout = defaultShutdownTimeout
	}
	return &EventTapService{
		tap:          tap,
		closeTimeout: closeTimeout,
		name:         "event-tap",
	}
}

// Serve implements suture.Service.
func (e *EventTapService) Serve(ctx context.Context) error {
	err := e.tap.Serve(ctx)
	if ctx.Err() == nil {
		return err
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), e.closeTimeout)
	defer cancel()
	if cerr := e.tap.Close(closeCtx); cerr != nil {
		logging.Warn().Err(cerr).Msg("event tap did not close cleanly")
	}
	return err
}

// String implements fmt.Stringer for suture logging.
func (e *EventTapService) String() string {
	return e.name
}
