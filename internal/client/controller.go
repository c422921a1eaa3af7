// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/tourline/internal/config"
	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/metrics"
	"github.com/tomtom215/tourline/internal/models"
)

// Options configures a Controller.
type Options struct {
	// SampleInterval is the time between position samples. Default: 5s
	SampleInterval time.Duration

	// DialTimeout bounds the WebSocket handshake. Default: 10s
	DialTimeout time.Duration
}

// DefaultOptions returns the controller defaults.
func DefaultOptions() Options {
	return Options{
		SampleInterval: 5 * time.Second,
		DialTimeout:    10 * time.Second,
	}
}

// OptionsFromConfig converts the client section of the application config.
// Zero values take defaults.
func OptionsFromConfig(cfg config.ClientConfig) Options {
	opts := DefaultOptions()
	if cfg.SampleInterval > 0 {
		opts.SampleInterval = cfg.SampleInterval
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return opts
}

// binding is the group and participant the sampler reports for.
type binding struct {
	groupID       string
	participantID string
}

// Controller shares the device position with a relay group.
//
// It owns at most one relay connection and one sampling task. Start may be
// called repeatedly: every call emits a join, but the connection and the
// task are created only once. Stop tears both down.
type Controller struct {
	geo  Geolocator
	opts Options

	mu       sync.Mutex
	conn     *Conn
	unsubs   []func()
	cancel   context.CancelFunc
	taskDone chan struct{}

	bound atomic.Pointer[binding]
}

// NewController creates an idle controller.
func NewController(geo Geolocator, opts Options) *Controller {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = DefaultOptions().SampleInterval
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultOptions().DialTimeout
	}
	return &Controller{geo: geo, opts: opts}
}

// Start begins sharing the position for participantID in groupID.
//
// It returns ErrPermissionDenied if the Geolocator refuses access, and a dial
// error if the relay cannot be reached. ctx bounds the permission request and
// the dial; the sampling task keeps running until Stop.
func (c *Controller) Start(ctx context.Context, groupID, participantID, serverAddr string) error {
	granted, err := c.geo.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("request location permission: %w", err)
	}
	if !granted {
		return ErrPermissionDenied
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.conn.Closed() {
		// The relay dropped us since the last Start. The old task is bound
		// to the dead connection; it never takes c.mu, so waiting here is safe.
		if c.cancel != nil {
			c.cancel()
			<-c.taskDone
			c.cancel, c.taskDone = nil, nil
		}
		c.releaseConnLocked()
	}

	if c.conn == nil {
		dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
		conn, err := Dial(dialCtx, serverAddr, &websocket.Dialer{HandshakeTimeout: c.opts.DialTimeout})
		cancel()
		if err != nil {
			return err
		}
		c.conn = conn
		c.unsubs = c.registerLogHandlers(conn)
	}

	c.bound.Store(&binding{groupID: groupID, participantID: participantID})

	if err := c.conn.Emit(models.EventJoin, groupID); err != nil {
		return fmt.Errorf("join group: %w", err)
	}

	if c.cancel == nil {
		taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.cancel = cancel
		c.taskDone = make(chan struct{})
		go c.sample(taskCtx, c.conn, c.taskDone)
	}

	logging.Ctx(ctx).Info().
		Str("group_id", groupID).
		Str("participant_id", participantID).
		Msg("location sharing started")
	return nil
}

// Stop cancels the sampling task and closes the connection. It is safe to
// call when idle and safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.taskDone
	c.cancel, c.taskDone = nil, nil
	wasActive := c.conn != nil
	c.releaseConnLocked()
	c.bound.Store(nil)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if wasActive {
		logging.Info().Msg("location sharing stopped")
	}
}

// releaseConnLocked drops the handlers and closes the connection (c.mu held).
func (c *Controller) releaseConnLocked() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Conn returns the active connection, or nil when idle.
func (c *Controller) Conn() *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Active reports whether the sampling task is running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Controller) registerLogHandlers(conn *Conn) []func() {
	return []func(){
		conn.On(models.EventConnected, func(models.Envelope) {
			logging.Info().Str("socket_id", conn.ID()).Msg("connected to relay")
		}),
		conn.On(EventDisconnect, func(models.Envelope) {
			logging.Warn().Msg("disconnected from relay")
		}),
		conn.On(models.EventLocationUpdate, func(env models.Envelope) {
			b, err := env.LocationBroadcast()
			if err != nil {
				return
			}
			logging.Debug().Str("user_id", b.UserID).Str("socket_id", b.SocketID).Msg("location update received")
		}),
	}
}

// sample emits one locationUpdate per tick until ctx is canceled.
func (c *Controller) sample(ctx context.Context, conn *Conn, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.opts.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sampleOnce(ctx, conn)
		}
	}
}

func (c *Controller) sampleOnce(ctx context.Context, conn *Conn) {
	b := c.bound.Load()
	if b == nil {
		return
	}

	loc, err := c.geo.CurrentPosition(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.ClientSampleFailures.Inc()
		logging.Warn().Err(fmt.Errorf("%w: %v", ErrSampleFailure, err)).Msg("skipping location sample")
		return
	}

	update := models.LocationUpdate{
		GroupID:  b.groupID,
		UserID:   b.participantID,
		Location: &loc,
	}
	if err := conn.Emit(models.EventLocationUpdate, update); err != nil {
		logging.Warn().Err(err).Str("group_id", b.groupID).Msg("failed to send location sample")
		return
	}
	metrics.ClientSamples.Inc()
}
