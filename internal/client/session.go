// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package client

import (
	"context"
	"strings"
	"sync"
)

// Binding is the externally owned sharing state: whether sharing is enabled
// and for which group and participant.
type Binding struct {
	Enabled       bool
	GroupID       string
	ParticipantID string
}

// usable reports whether the binding asks for sharing with complete ids.
func (b Binding) usable() bool {
	return b.Enabled && strings.TrimSpace(b.GroupID) != "" && strings.TrimSpace(b.ParticipantID) != ""
}

// Sharer is the part of Controller a Session drives.
type Sharer interface {
	Start(ctx context.Context, groupID, participantID, serverAddr string) error
	Stop()
}

// Session applies Binding changes to a Sharer.
//
// Enabling starts sharing, disabling stops it, and switching to another group
// or participant stops the current share before starting the new one.
type Session struct {
	sharer     Sharer
	serverAddr string

	mu      sync.Mutex
	current Binding
	running bool
}

// NewSession creates a Session that shares through sharer to serverAddr.
func NewSession(sharer Sharer, serverAddr string) *Session {
	return &Session{sharer: sharer, serverAddr: serverAddr}
}

// Apply moves the sharer to the state described by b.
func (s *Session) Apply(ctx context.Context, b Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !b.usable() {
		s.stopLocked()
		s.current = b
		return nil
	}

	if s.running && s.current == b {
		return nil
	}

	s.stopLocked()
	if err := s.sharer.Start(ctx, b.GroupID, b.ParticipantID, s.serverAddr); err != nil {
		s.sharer.Stop()
		return err
	}
	s.current = b
	s.running = true
	return nil
}

// Current returns the last applied binding and whether sharing is running.
func (s *Session) Current() (Binding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.running
}

// Close stops sharing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.running {
		s.sharer.Stop()
		s.running = false
	}
}
