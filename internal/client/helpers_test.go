// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/models"
	"github.com/tomtom215/tourline/internal/relay"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// startRelay runs a relay hub behind an httptest server and returns its ws URL.
func startRelay(t *testing.T) (*relay.Hub, string) {
	t.Helper()
	opts := relay.DefaultOptions()
	opts.InboundRate = 0
	hub := relay.NewHub(opts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
	})
	return hub, "ws" + server.URL[len("http"):]
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("%s: timeout after %v", msg, timeout)
}

// fakeGeolocator returns a fixed position, optionally failing the first reads.
type fakeGeolocator struct {
	mu        sync.Mutex
	deny      bool
	permErr   error
	loc       models.Location
	failFirst int
	reads     int
	perms     int
}

func (g *fakeGeolocator) RequestPermission(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.perms++
	if g.permErr != nil {
		return false, g.permErr
	}
	return !g.deny, nil
}

func (g *fakeGeolocator) CurrentPosition(ctx context.Context) (models.Location, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reads++
	if g.reads <= g.failFirst {
		return models.Location{}, errors.New("gps timeout")
	}
	return g.loc, nil
}

func (g *fakeGeolocator) Reads() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reads
}

func fastOptions() Options {
	return Options{SampleInterval: 20 * time.Millisecond, DialTimeout: 2 * time.Second}
}

// fakeSource is a Source whose events are delivered by the test.
type fakeSource struct {
	mu       sync.Mutex
	id       string
	handlers map[int]Handler
	next     int
}

func newFakeSource(id string) *fakeSource {
	return &fakeSource{id: id, handlers: make(map[int]Handler)}
}

func (s *fakeSource) On(event string, h Handler) func() {
	if event != models.EventLocationUpdate {
		return func() {}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.handlers[id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

func (s *fakeSource) ID() string { return s.id }

func (s *fakeSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

func (s *fakeSource) deliver(t *testing.T, b models.LocationBroadcast) {
	t.Helper()
	frame, err := models.Encode(models.EventLocationUpdate, b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := models.DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, h := range handlers {
		h(env)
	}
}
