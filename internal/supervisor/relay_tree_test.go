// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package supervisor

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/models"
	"github.com/tomtom215/tourline/internal/relay"
	"github.com/tomtom215/tourline/internal/supervisor/services"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// TestSupervisorTreeRunsRelay starts a relay hub and HTTP server under the
// tree and checks that a WebSocket client is greeted with its socket id.
func TestSupervisorTreeRunsRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	hub := relay.NewHub(relay.DefaultOptions(), nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: time.Second}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tree, err := NewSupervisorTree(logger, TreeConfig{ShutdownTimeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	tree.AddMessagingService(services.NewRelayHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	defer func() {
		cancel()
		<-errCh
	}()

	var conn *websocket.Conn
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, _, err = websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	env, err := models.DecodeEnvelope(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	connected, err := env.Connected()
	if err != nil {
		t.Fatalf("Connected: %v", err)
	}
	if strings.TrimSpace(connected.SocketID) == "" {
		t.Error("expected a socket id in the connected event")
	}
}
