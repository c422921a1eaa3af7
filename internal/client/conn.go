// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/models"
)

// EventDisconnect is delivered to handlers once, when the connection ends for
// any reason. It never appears on the wire; its envelope carries no data.
const EventDisconnect = "disconnect"

const writeWait = 10 * time.Second

// Handler receives an inbound envelope. Handlers run on the connection's read
// goroutine and must not block.
type Handler func(env models.Envelope)

// Conn is the client side of a relay connection.
//
// Inbound frames are dispatched by event name to handlers registered with On.
// The connection learns its own id from the server's connected event.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handlers  map[string]map[uint64]Handler
	nextID    uint64

	idMu    sync.RWMutex
	id      string
	idReady chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the relay at serverURL. http(s) URLs are converted to ws(s).
func Dial(ctx context.Context, serverURL string, dialer *websocket.Dialer) (*Conn, error) {
	wsURL, err := websocketURL(serverURL)
	if err != nil {
		return nil, err
	}
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}

	ws, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("relay dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("relay dial: %w", err)
	}

	c := &Conn{
		ws:       ws,
		handlers: make(map[string]map[uint64]Handler),
		idReady:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// websocketURL normalizes a relay address to a ws:// or wss:// URL.
func websocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidServerURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidServerURL)
	}
	return u.String(), nil
}

// On registers h for event and returns a function that removes it.
// The returned function is safe to call more than once.
func (c *Conn) On(event string, h Handler) (unsubscribe func()) {
	c.handlerMu.Lock()
	c.nextID++
	id := c.nextID
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[uint64]Handler)
	}
	c.handlers[event][id] = h
	c.handlerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.handlerMu.Lock()
			defer c.handlerMu.Unlock()
			delete(c.handlers[event], id)
			if len(c.handlers[event]) == 0 {
				delete(c.handlers, event)
			}
		})
	}
}

// HandlerCount returns the number of handlers registered for event.
func (c *Conn) HandlerCount(event string) int {
	c.handlerMu.RLock()
	defer c.handlerMu.RUnlock()
	return len(c.handlers[event])
}

// Emit sends an event to the relay.
func (c *Conn) Emit(event string, data interface{}) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	frame, err := models.Encode(event, data)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// ID returns the server-assigned connection id, or "" before the connected
// event has arrived.
func (c *Conn) ID() string {
	c.idMu.RLock()
	defer c.idMu.RUnlock()
	return c.id
}

// WaitID blocks until the connection id is known.
func (c *Conn) WaitID(ctx context.Context) (string, error) {
	select {
	case <-c.idReady:
		return c.ID(), nil
	case <-c.done:
		return "", ErrConnClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Done is closed when the connection has ended.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether the connection has ended.
func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Close sends a close frame and tears down the connection. Safe to call twice.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) readLoop() {
	defer func() {
		_ = c.Close()
		c.dispatch(models.Envelope{Event: EventDisconnect})
	}()

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			if !c.Closed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug().Err(err).Msg("relay connection read failed")
			}
			return
		}

		env, err := models.DecodeEnvelope(frame)
		if err != nil {
			logging.Debug().Err(err).Msg("ignoring malformed relay frame")
			continue
		}

		if env.Event == models.EventConnected {
			c.setID(env)
		}
		c.dispatch(env)
	}
}

func (c *Conn) setID(env models.Envelope) {
	connected, err := env.Connected()
	if err != nil {
		logging.Debug().Err(err).Msg("ignoring malformed connected event")
		return
	}
	c.idMu.Lock()
	defer c.idMu.Unlock()
	if c.id != "" {
		return
	}
	c.id = connected.SocketID
	close(c.idReady)
}

func (c *Conn) dispatch(env models.Envelope) {
	c.handlerMu.RLock()
	registered := c.handlers[env.Event]
	handlers := make([]Handler, 0, len(registered))
	for _, h := range registered {
		handlers = append(handlers, h)
	}
	c.handlerMu.RUnlock()

	for _, h := range handlers {
		h(env)
	}
}
