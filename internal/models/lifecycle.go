// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package models

import "time"

// LifecycleKind names a group membership transition published by the event tap.
type LifecycleKind string

const (
	GroupCreated LifecycleKind = "group.created"
	GroupRemoved LifecycleKind = "group.removed"
	MemberJoined LifecycleKind = "member.joined"
	MemberLeft   LifecycleKind = "member.left"
)

// LifecycleEvent is a membership transition. It never carries a position.
type LifecycleEvent struct {
	Kind         LifecycleKind `json:"kind"`
	GroupID      string        `json:"group_id"`
	ConnectionID string        `json:"connection_id"`
	Members      int           `json:"members"`
	OccurredAt   time.Time     `json:"occurred_at"`
}
