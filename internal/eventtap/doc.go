// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package eventtap publishes group lifecycle events from the relay to NATS.

The tap is optional and off by default. When enabled, the relay hub emits an
event for every membership transition:

	tourline.group.created   first member joined
	tourline.member.joined
	tourline.member.left     leave or disconnect
	tourline.group.removed   last member left

Payloads are JSON models.LifecycleEvent values. Location samples are never
published; the relay keeps no position history.

Publishing goes through a Watermill NATS publisher guarded by a gobreaker
circuit breaker. The hub never waits on the broker: Emit queues onto a
bounded channel and Serve publishes from its own goroutine under the
supervisor. With nats.embedded_server set, an in-process nats-server is
started first; JetStream is enabled when nats.store_dir is configured.

	tap, err := eventtap.Open(eventtap.FromConfig(cfg.NATS))
	hub := relay.NewHub(opts, tap)
	tree.AddMessagingService(tap)
*/
package eventtap
