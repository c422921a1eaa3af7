// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package eventtap

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tourline/internal/models"
)

var errIncompleteEvent = errors.New("lifecycle event needs kind and group id")

// Marshal converts a lifecycle event to JSON bytes.
func Marshal(event models.LifecycleEvent) ([]byte, error) {
	if event.Kind == "" || event.GroupID == "" {
		return nil, errIncompleteEvent
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal converts JSON bytes to a lifecycle event.
func Unmarshal(data []byte) (models.LifecycleEvent, error) {
	var event models.LifecycleEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return models.LifecycleEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}

// Topic returns the subject an event is published on.
func Topic(prefix string, kind models.LifecycleKind) string {
	return prefix + "." + string(kind)
}
