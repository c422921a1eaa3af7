// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package relay

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/metrics"
	"github.com/tomtom215/tourline/internal/models"
	"github.com/tomtom215/tourline/internal/registry"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// EventSink receives group lifecycle events. Emit must not block.
type EventSink interface {
	Emit(models.LifecycleEvent)
}

// inboundEvent is a decoded frame waiting for the hub loop.
type inboundEvent struct {
	client *Client
	env    models.Envelope
}

// Hub owns every connection and the group registry. All registry mutations
// happen on the RunWithContext goroutine, so events from all connections are
// applied one at a time in arrival order.
type Hub struct {
	clients    map[string]*Client
	registry   *registry.Registry
	inbound    chan inboundEvent
	Register   chan *Client
	Unregister chan *Client
	sink       EventSink
	opts       Options
	started    time.Time
	mu         sync.RWMutex
}

// NewHub creates a Hub with its own registry. sink may be nil.
func NewHub(opts Options, sink EventSink) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		registry:   registry.New(),
		inbound:    make(chan inboundEvent, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		sink:       sink,
		opts:       opts,
		started:    time.Now(),
	}
}

// Registry exposes the group registry for read-only inspection.
func (h *Hub) Registry() *registry.Registry {
	return h.registry
}

// RunWithContext runs the hub loop until ctx is canceled, then closes every
// client and returns ctx.Err(). Selection is prioritised: shutdown first,
// then connection lifecycle, then inbound events.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client, "disconnected")
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client, "disconnected")
		case ev := <-h.inbound:
			h.dispatch(ev.client, ev.env)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logging.
func (h *Hub) String() string {
	return "relay-hub"
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	frame, err := models.Encode(models.EventConnected, models.Connected{SocketID: c.id})
	if err == nil {
		c.enqueue(frame)
	}

	h.publishTopology()
	logging.Ctx(c.ctx).Info().Int("total_clients", total).Msg("relay client connected")
}

// removeClient closes c and removes it from every group it joined.
// It is a no-op for clients the hub no longer knows.
func (h *Hub) removeClient(c *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	total := len(h.clients)
	h.mu.Unlock()

	c.shutdown()

	for _, dep := range h.registry.DisconnectCleanup(c.id) {
		h.emitLeave(c.id, dep.GroupID, dep.Deleted)
	}

	h.publishTopology()
	logging.Ctx(c.ctx).Info().
		Str("reason", reason).
		Int("total_clients", total).
		Msg("relay client disconnected")
}

// dispatch applies one inbound event.
func (h *Hub) dispatch(c *Client, env models.Envelope) {
	metrics.RecordRelayEvent(env.Event)

	switch env.Event {
	case models.EventJoin:
		groupID, err := env.GroupID()
		if err != nil {
			h.malformed(c, env, err)
			return
		}
		h.join(c, groupID)

	case models.EventLeave:
		groupID, err := env.GroupID()
		if err != nil {
			h.malformed(c, env, err)
			return
		}
		h.leave(c, groupID)

	case models.EventLocationUpdate:
		update, err := env.LocationUpdate()
		if err != nil {
			h.malformed(c, env, err)
			return
		}
		h.broadcastLocation(c, update)

	default:
		h.malformed(c, env, models.ErrMalformedPayload)
	}
}

func (h *Hub) malformed(c *Client, env models.Envelope, err error) {
	metrics.RecordDroppedUpdate(metrics.DropReasonMalformed)
	logging.Ctx(c.ctx).Debug().
		Str("event", env.Event).
		Err(err).
		Msg("ignoring malformed event")
}

func (h *Hub) join(c *Client, groupID string) {
	created, added := h.registry.Join(c.id, groupID)
	if created {
		h.emit(models.GroupCreated, groupID, c.id)
	}
	if added {
		h.emit(models.MemberJoined, groupID, c.id)
		h.publishTopology()
	}
	logging.Ctx(c.ctx).Debug().
		Str("group_id", groupID).
		Bool("group_created", created).
		Msg("joined group")
}

func (h *Hub) leave(c *Client, groupID string) {
	removed, deleted := h.registry.Leave(c.id, groupID)
	if !removed {
		return
	}
	h.emitLeave(c.id, groupID, deleted)
	h.publishTopology()
	logging.Ctx(c.ctx).Debug().
		Str("group_id", groupID).
		Bool("group_removed", deleted).
		Msg("left group")
}

// broadcastLocation fans an update out to every member of its group,
// including the sender. The sender does not have to be a member.
func (h *Hub) broadcastLocation(sender *Client, update *models.LocationUpdate) {
	if !h.registry.Exists(update.GroupID) {
		metrics.RecordDroppedUpdate(metrics.DropReasonNoGroup)
		logging.Ctx(sender.ctx).Debug().
			Str("group_id", update.GroupID).
			Msg("dropping location update for empty group")
		return
	}

	frame, err := models.Encode(models.EventLocationUpdate, models.LocationBroadcast{
		SocketID: sender.id,
		UserID:   update.UserID,
		Location: *update.Location,
	})
	if err != nil {
		metrics.RelayErrors.WithLabelValues("encode").Inc()
		logging.Ctx(sender.ctx).Error().Err(err).Msg("failed to encode location broadcast")
		return
	}

	// MembersOf is sorted, so delivery order is deterministic.
	members := h.registry.MembersOf(update.GroupID)

	var slow []*Client
	delivered := 0
	h.mu.RLock()
	for _, id := range members {
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		if client.enqueue(frame) {
			delivered++
		} else {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	metrics.RecordBroadcast(delivered)

	for _, client := range slow {
		metrics.RelaySlowConsumers.Inc()
		h.removeClient(client, "slow_consumer")
	}
}

func (h *Hub) emitLeave(connID, groupID string, deleted bool) {
	h.emit(models.MemberLeft, groupID, connID)
	if deleted {
		h.emit(models.GroupRemoved, groupID, connID)
	}
}

func (h *Hub) emit(kind models.LifecycleKind, groupID, connID string) {
	if h.sink == nil {
		return
	}
	h.sink.Emit(models.LifecycleEvent{
		Kind:         kind,
		GroupID:      groupID,
		ConnectionID: connID,
		Members:      len(h.registry.MembersOf(groupID)),
		OccurredAt:   time.Now().UTC(),
	})
}

func (h *Hub) publishTopology() {
	groups, memberships := h.registry.Stats()
	metrics.SetRelayTopology(h.GetClientCount(), groups, memberships)
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns a snapshot of connections and group sizes.
func (h *Hub) Stats() models.RelayStats {
	groups, memberships := h.registry.Stats()
	return models.RelayStats{
		Connections: h.GetClientCount(),
		Groups:      groups,
		Memberships: memberships,
		GroupSizes:  h.registry.Snapshot(),
	}
}

// Uptime returns how long the hub has existed.
func (h *Hub) Uptime() time.Duration {
	return time.Since(h.started)
}

// logGracefulShutdown closes all clients and logs why the hub stopped.
// ctx.Err() is not logged as an error; cancellation is the normal path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()

	h.closeAllClients()

	logging.Info().
		Str("component", "relay-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("relay hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every client in arrival order and clears the registry.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].seq < clients[j].seq
	})

	for _, client := range clients {
		h.removeClient(client, "shutdown")
	}
}
