// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/metrics"
	"github.com/tomtom215/tourline/internal/models"
)

// clientSeq orders clients by arrival for deterministic shutdown.
var clientSeq atomic.Uint64

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	id   string // opaque connection id sent to peers as socketId
	seq  uint64
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// done is closed when the hub drops the client; pumps blocked on the
	// hub's channels select on it.
	done      chan struct{}
	closeOnce sync.Once

	limiter *rate.Limiter
	ctx     context.Context
}

// NewClient creates a Client with a fresh UUID connection id.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := uuid.New().String()
	return &Client{
		id:      id,
		seq:     clientSeq.Add(1),
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, hub.opts.SendBufferSize),
		done:    make(chan struct{}),
		limiter: hub.opts.newLimiter(),
		ctx:     logging.ContextWithConnectionID(context.Background(), id),
	}
}

// ID returns the connection id.
func (c *Client) ID() string {
	return c.id
}

// shutdown closes the send queue, which makes writePump send a close frame.
// Only the hub calls it; the Once guards a remove racing a shutdown sweep.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.send)
	})
}

// enqueue queues a frame without blocking. It returns false when the buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// readPump pumps frames from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.done:
		}
		_ = c.conn.Close() // best-effort cleanup
	}()

	opts := c.hub.opts
	c.conn.SetReadLimit(opts.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(opts.PongWait)); err != nil {
		logging.Ctx(c.ctx).Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	for {
		msgType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.RelayErrors.WithLabelValues("read").Inc()
				logging.Ctx(c.ctx).Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		if msgType != websocket.TextMessage {
			metrics.RecordDroppedUpdate(metrics.DropReasonMalformed)
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			metrics.RecordDroppedUpdate(metrics.DropReasonRateLimited)
			logging.Ctx(c.ctx).Debug().Msg("inbound event rate limited")
			continue
		}

		env, err := models.DecodeEnvelope(frame)
		if err != nil {
			metrics.RecordRelayEvent("")
			metrics.RecordDroppedUpdate(metrics.DropReasonMalformed)
			logging.Ctx(c.ctx).Debug().Err(err).Msg("dropping undecodable frame")
			continue
		}

		select {
		case c.hub.inbound <- inboundEvent{client: c, env: env}:
		case <-c.done:
			return
		}
	}
}

// writePump pumps frames from the hub to the websocket connection
func (c *Client) writePump() {
	opts := c.hub.opts
	ticker := time.NewTicker(opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait)); err != nil {
				logging.Ctx(c.ctx).Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				metrics.RelayErrors.WithLabelValues("write").Inc()
				logging.Ctx(c.ctx).Debug().Err(err).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait)); err != nil {
				logging.Ctx(c.ctx).Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
