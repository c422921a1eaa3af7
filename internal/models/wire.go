// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tourline/internal/validation"
)

// Event names carried in Envelope.Event.
const (
	// EventJoin (client -> server): data is the group id string.
	EventJoin = "join"

	// EventLeave (client -> server): data is the group id string.
	EventLeave = "leave"

	// EventLocationUpdate is sent both ways. Inbound data is a LocationUpdate,
	// outbound data is a LocationBroadcast.
	EventLocationUpdate = "locationUpdate"

	// EventConnected (server -> client): data is Connected, sent once per connection.
	EventConnected = "connected"
)

// ErrMalformedPayload is returned when an inbound frame cannot be decoded or
// fails validation. The relay drops such frames without replying.
var ErrMalformedPayload = errors.New("malformed payload")

// Envelope is the JSON frame exchanged over the WebSocket:
//
//	{"event": "locationUpdate", "data": {...}}
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Location is a single position sample in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// LocationUpdate is the inbound locationUpdate payload.
//
// UserID is trusted as supplied; the channel is unauthenticated.
type LocationUpdate struct {
	GroupID  string    `json:"groupId" validate:"required,notblank"`
	UserID   string    `json:"userId"`
	Location *Location `json:"location" validate:"required"`
}

// LocationBroadcast is the outbound locationUpdate payload. SocketID is the
// sender's connection id so receivers can recognise their own echo.
type LocationBroadcast struct {
	SocketID string   `json:"socketId"`
	UserID   string   `json:"userId"`
	Location Location `json:"location"`
}

// Connected tells a client its own connection id.
type Connected struct {
	SocketID string `json:"socketId"`
}

// groupRef is the object form of a join/leave payload.
type groupRef struct {
	GroupID string `json:"groupId"`
}

// Encode builds a wire frame for event with data marshalled into the envelope.
func Encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", event, err)
	}
	return frame, nil
}

// DecodeEnvelope parses a wire frame. The data field is left raw.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", ErrMalformedPayload)
	}
	return env, nil
}

// GroupID decodes a join/leave payload. Both the bare string form ("tour-7")
// and the object form ({"groupId":"tour-7"}) are accepted.
func (e Envelope) GroupID() (string, error) {
	var id string
	if err := json.Unmarshal(e.Data, &id); err != nil {
		var ref groupRef
		if objErr := json.Unmarshal(e.Data, &ref); objErr != nil {
			return "", fmt.Errorf("%w: %s payload is not a group id", ErrMalformedPayload, e.Event)
		}
		id = ref.GroupID
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: %s payload has an empty group id", ErrMalformedPayload, e.Event)
	}
	return id, nil
}

// LocationUpdate decodes and validates an inbound locationUpdate payload.
func (e Envelope) LocationUpdate() (*LocationUpdate, error) {
	var update LocationUpdate
	if err := json.Unmarshal(e.Data, &update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if verr := validation.ValidateStruct(&update); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, verr)
	}
	return &update, nil
}

// LocationBroadcast decodes an outbound locationUpdate payload (client side).
func (e Envelope) LocationBroadcast() (*LocationBroadcast, error) {
	var b LocationBroadcast
	if err := json.Unmarshal(e.Data, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &b, nil
}

// Connected decodes a connected payload (client side).
func (e Envelope) Connected() (*Connected, error) {
	var c Connected
	if err := json.Unmarshal(e.Data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if c.SocketID == "" {
		return nil, fmt.Errorf("%w: connected payload has no socketId", ErrMalformedPayload)
	}
	return &c, nil
}
