// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/tourline/internal/eventtap"
)

type mockEventTap struct {
	serveErr   error
	closeErr   error
	closeCount atomic.Int32
}

func (m *mockEventTap) Serve(ctx context.Context) error {
	if m.serveErr != nil {
		return m.serveErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockEventTap) Close(ctx context.Context) error {
	m.closeCount.Add(1)
	return m.closeErr
}

func TestEventTapService_Interface(t *testing.T) {
	var _ suture.Service = (*EventTapService)(nil)
	var _ EventTap = (*eventtap.Tap)(nil)
}

func TestNewEventTapService_DefaultTimeout(t *testing.T) {
	svc := NewEventTapService(&mockEventTap{}, 0)
	if svc.closeTimeout != defaultShutdownTimeout {
		t.Errorf("expected default timeout %v, got %v", defaultShutdownTimeout, svc.closeTimeout)
	}
	if svc.String() != "event-tap" {
		t.Errorf("expected 'event-tap', got %q", svc.String())
	}
}

func TestEventTapService_Serve(t *testing.T) {
	t.Run("closes the tap on shutdown", func(t *testing.T) {
		tap := &mockEventTap{closeErr: errors.New("ignored")}
		svc := NewEventTapService(tap, time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
		if tap.closeCount.Load() != 1 {
			t.Errorf("expected 1 close, got %d", tap.closeCount.Load())
		}
	})

	t.Run("keeps the tap open on failure", func(t *testing.T) {
		expectedErr := errors.New("drain failed")
		tap := &mockEventTap{serveErr: expectedErr}
		svc := NewEventTapService(tap, time.Second)

		if err := svc.Serve(context.Background()); !errors.Is(err, expectedErr) {
			t.Errorf("expected %v, got %v", expectedErr, err)
		}
		if tap.closeCount.Load() != 0 {
			t.Error("tap must stay open so the supervisor can restart it")
		}
	})
}
