// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package registry

import (
	"sort"
	"sync"
)

// Registry tracks which connections belong to which groups.
//
// A group exists only while it has at least one member: Join creates it and
// the Leave that removes the last member deletes it. Unknown groups and
// connections are never an error.
//
// Registry is safe for concurrent use. The relay hub issues every mutation
// from its single event loop; readers (stats endpoint, tests) may call from
// any goroutine.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]struct{} // group id -> connection ids
	conns  map[string]map[string]struct{} // connection id -> group ids
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		groups: make(map[string]map[string]struct{}),
		conns:  make(map[string]map[string]struct{}),
	}
}

// Join adds connID to groupID, creating the group when absent. Joining a
// group twice is a no-op. created reports whether the group did not exist
// before this call; added reports whether connID was not already a member.
func (r *Registry) Join(connID, groupID string) (created, added bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, exists := r.groups[groupID]
	if !exists {
		members = make(map[string]struct{})
		r.groups[groupID] = members
		created = true
	}

	if _, already := members[connID]; already {
		return created, false
	}
	members[connID] = struct{}{}

	memberOf, ok := r.conns[connID]
	if !ok {
		memberOf = make(map[string]struct{})
		r.conns[connID] = memberOf
	}
	memberOf[groupID] = struct{}{}

	return created, true
}

// Leave removes connID from groupID and deletes the group once it is empty.
// It is a no-op when connID is not a member. removed reports whether connID
// was a member; deleted reports whether the group was deleted.
func (r *Registry) Leave(connID, groupID string) (removed, deleted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leaveLocked(connID, groupID)
}

func (r *Registry) leaveLocked(connID, groupID string) (removed, deleted bool) {
	members, exists := r.groups[groupID]
	if !exists {
		return false, false
	}
	if _, ok := members[connID]; !ok {
		return false, false
	}

	delete(members, connID)
	if len(members) == 0 {
		delete(r.groups, groupID)
		deleted = true
	}

	if memberOf, ok := r.conns[connID]; ok {
		delete(memberOf, groupID)
		if len(memberOf) == 0 {
			delete(r.conns, connID)
		}
	}

	return true, deleted
}

// Departure records one group a disconnected connection was removed from.
type Departure struct {
	GroupID string
	Deleted bool // the group became empty and was removed
}

// DisconnectCleanup removes connID from every group it belongs to, with the
// same semantics as calling Leave for each. Departures are returned in group
// id order.
func (r *Registry) DisconnectCleanup(connID string) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	memberOf, ok := r.conns[connID]
	if !ok {
		return nil
	}

	groupIDs := sortedKeys(memberOf)
	departures := make([]Departure, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		_, deleted := r.leaveLocked(connID, groupID)
		departures = append(departures, Departure{GroupID: groupID, Deleted: deleted})
	}

	return departures
}

// MembersOf returns the connection ids in groupID, sorted. The slice is a
// copy; it is empty (not nil) when the group does not exist.
func (r *Registry) MembersOf(groupID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.groups[groupID]
	if !ok {
		return []string{}
	}
	return sortedKeys(members)
}

// GroupsOf returns the group ids connID belongs to, sorted.
func (r *Registry) GroupsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memberOf, ok := r.conns[connID]
	if !ok {
		return []string{}
	}
	return sortedKeys(memberOf)
}

// Exists reports whether groupID currently has members.
func (r *Registry) Exists(groupID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.groups[groupID]
	return ok
}

// Stats returns the number of groups and the total number of memberships.
func (r *Registry) Stats() (groups, memberships int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups = len(r.groups)
	for _, members := range r.groups {
		memberships += len(members)
	}
	return groups, memberships
}

// Snapshot returns the member count of every group.
func (r *Registry) Snapshot() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sizes := make(map[string]int, len(r.groups))
	for groupID, members := range r.groups {
		sizes[groupID] = len(members)
	}
	return sizes
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
