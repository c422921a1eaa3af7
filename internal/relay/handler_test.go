// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/tourline/internal/models"
)

// setupRelayServer starts a running hub behind an httptest server.
func setupRelayServer(t *testing.T, opts Options) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(opts, nil)
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
	return hub, server
}

// dialRelay connects to the relay and returns the connection and its socket id.
func dialRelay(t *testing.T, server *httptest.Server, header http.Header) (*websocket.Conn, string) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial relay: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	env := readEnvelope(t, conn)
	if env.Event != models.EventConnected {
		t.Fatalf("first event = %q, want connected", env.Event)
	}
	connected, err := env.Connected()
	if err != nil {
		t.Fatalf("Connected(): %v", err)
	}
	return conn, connected.SocketID
}

func readEnvelope(t *testing.T, conn *websocket.Conn) models.Envelope {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	env, err := models.DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	return env
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	frame, err := models.Encode(event, data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
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

func sampleUpdate(groupID, userID string, lat, lng float64) models.LocationUpdate {
	return models.LocationUpdate{
		GroupID:  groupID,
		UserID:   userID,
		Location: &models.Location{Latitude: lat, Longitude: lng},
	}
}

func TestServeWS_EndToEndFanout(t *testing.T) {
	opts := DefaultOptions()
	opts.InboundRate = 0
	hub, server := setupRelayServer(t, opts)

	guide, guideID := dialRelay(t, server, nil)
	traveler, _ := dialRelay(t, server, nil)

	send(t, guide, models.EventJoin, "tour-42")
	send(t, traveler, models.EventJoin, "tour-42")
	waitFor(t, time.Second, "both members joined", func() bool {
		return len(hub.Registry().MembersOf("tour-42")) == 2
	})

	send(t, guide, models.EventLocationUpdate, sampleUpdate("tour-42", "guide-1", 48.85, 2.35))

	for name, conn := range map[string]*websocket.Conn{"guide": guide, "traveler": traveler} {
		env := readEnvelope(t, conn)
		if env.Event != models.EventLocationUpdate {
			t.Fatalf("%s: event = %q", name, env.Event)
		}
		b, err := env.LocationBroadcast()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if b.SocketID != guideID {
			t.Errorf("%s: socketId = %q, want sender %q", name, b.SocketID, guideID)
		}
		if b.UserID != "guide-1" || b.Location.Latitude != 48.85 || b.Location.Longitude != 2.35 {
			t.Errorf("%s: broadcast = %+v", name, b)
		}
	}
}

func TestServeWS_DisconnectCleansUp(t *testing.T) {
	hub, server := setupRelayServer(t, DefaultOptions())

	conn, _ := dialRelay(t, server, nil)
	send(t, conn, models.EventJoin, "tour-1")
	send(t, conn, models.EventJoin, "tour-2")
	waitFor(t, time.Second, "joined both groups", func() bool {
		return hub.Registry().Exists("tour-1") && hub.Registry().Exists("tour-2")
	})

	_ = conn.Close()

	waitFor(t, 2*time.Second, "groups removed after disconnect", func() bool {
		return !hub.Registry().Exists("tour-1") && !hub.Registry().Exists("tour-2") && hub.GetClientCount() == 0
	})
}

func TestServeWS_MalformedFramesKeepConnection(t *testing.T) {
	hub, server := setupRelayServer(t, DefaultOptions())

	conn, _ := dialRelay(t, server, nil)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	send(t, conn, models.EventLocationUpdate, map[string]string{"userId": "no-group"})
	send(t, conn, models.EventJoin, "tour-1")

	waitFor(t, time.Second, "join after malformed frames", func() bool {
		return hub.Registry().Exists("tour-1")
	})

	send(t, conn, models.EventLocationUpdate, sampleUpdate("tour-1", "u", 1, 1))
	if env := readEnvelope(t, conn); env.Event != models.EventLocationUpdate {
		t.Errorf("event = %q, want locationUpdate", env.Event)
	}
}

func TestServeWS_UpdateToEmptyGroupNotDelivered(t *testing.T) {
	opts := DefaultOptions()
	opts.InboundRate = 0
	hub, server := setupRelayServer(t, opts)

	conn, _ := dialRelay(t, server, nil)
	send(t, conn, models.EventLocationUpdate, sampleUpdate("ghost", "u", 1, 1))
	send(t, conn, models.EventJoin, "real")
	waitFor(t, time.Second, "join", func() bool { return hub.Registry().Exists("real") })
	send(t, conn, models.EventLocationUpdate, sampleUpdate("real", "u", 2, 2))

	// Only the second update comes back.
	env := readEnvelope(t, conn)
	b, err := env.LocationBroadcast()
	if err != nil {
		t.Fatalf("LocationBroadcast: %v", err)
	}
	if b.Location.Latitude != 2 {
		t.Errorf("latitude = %v, want 2 (update to empty group must be dropped)", b.Location.Latitude)
	}
	if hub.Registry().Exists("ghost") {
		t.Error("update must not create a group")
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"https://tours.example"}, "", true},
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"exact match", []string{"https://tours.example"}, "https://tours.example", true},
		{"case insensitive", []string{"https://Tours.Example"}, "https://tours.example", true},
		{"not allowed", []string{"https://tours.example"}, "https://evil.example", false},
		{"empty allow list", nil, "https://tours.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AllowedOrigins = tt.allowed
			hub := NewHub(opts, nil)

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := hub.checkOrigin(req); got != tt.want {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServeWS_RejectsForeignOrigin(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowedOrigins = []string{"https://tours.example"}
	_, server := setupRelayServer(t, opts)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err == nil {
		_ = conn.Close()
		t.Fatal("expected handshake to fail for foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 response, got %v", resp)
	}
}

func TestServeWS_InboundRateLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.InboundRate = 0.001
	opts.InboundBurst = 1
	hub, server := setupRelayServer(t, opts)

	conn, _ := dialRelay(t, server, nil)
	send(t, conn, models.EventJoin, "first")
	send(t, conn, models.EventJoin, "second")

	waitFor(t, time.Second, "first join applied", func() bool { return hub.Registry().Exists("first") })
	time.Sleep(50 * time.Millisecond)
	if hub.Registry().Exists("second") {
		t.Error("second join should have been rate limited")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
