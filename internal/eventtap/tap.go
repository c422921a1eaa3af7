// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package eventtap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/metrics"
	"github.com/tomtom215/tourline/internal/models"
)

// Tap forwards group lifecycle events from the relay hub to a message broker.
//
// Emit never blocks the hub: events are queued on a bounded channel and
// dropped when it is full. Serve drains the queue and publishes each event on
// "<prefix>.<kind>". Positions are never published.
type Tap struct {
	cfg       Config
	publisher *Publisher
	server    *EmbeddedServer
	events    chan models.LifecycleEvent

	closeOnce sync.Once
}

// New creates a Tap that publishes through pub.
func New(cfg Config, pub *Publisher) (*Tap, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tap{
		cfg:       cfg,
		publisher: pub,
		events:    make(chan models.LifecycleEvent, cfg.BufferSize),
	}, nil
}

// Open starts the embedded NATS server when configured, connects a NATS
// publisher guarded by a circuit breaker, and returns the Tap.
func Open(cfg Config) (*Tap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var embedded *EmbeddedServer
	if cfg.Server != nil {
		srv, err := NewEmbeddedServer(cfg.Server)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		embedded = srv
		cfg.Publisher.URL = srv.ClientURL()
		logging.Info().
			Str("url", srv.ClientURL()).
			Bool("jetstream", srv.JetStreamEnabled()).
			Msg("embedded NATS server started")
	}

	pub, err := NewPublisher(cfg.Publisher, logging.NewWatermillAdapter("event-tap"))
	if err != nil {
		if embedded != nil {
			_ = embedded.Shutdown(context.Background())
		}
		return nil, err
	}
	pub.SetCircuitBreaker(NewCircuitBreaker(cfg.Breaker))

	tap, err := New(cfg, pub)
	if err != nil {
		_ = pub.Close()
		if embedded != nil {
			_ = embedded.Shutdown(context.Background())
		}
		return nil, err
	}
	tap.server = embedded
	return tap, nil
}

// Emit queues an event for publishing. It drops the event when the queue is full.
func (t *Tap) Emit(event models.LifecycleEvent) {
	select {
	case t.events <- event:
	default:
		metrics.EventTapFailures.WithLabelValues("buffer_full").Inc()
		logging.Debug().
			Str("kind", string(event.Kind)).
			Msg("event tap queue full, dropping lifecycle event")
	}
}

// Serve publishes queued events until ctx is canceled. It implements suture.Service.
func (t *Tap) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-t.events:
			t.publish(event)
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (t *Tap) String() string {
	return "event-tap"
}

func (t *Tap) publish(event models.LifecycleEvent) {
	payload, err := Marshal(event)
	if err != nil {
		metrics.EventTapFailures.WithLabelValues("encode").Inc()
		logging.Error().Err(err).Msg("failed to encode lifecycle event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("kind", string(event.Kind))
	msg.Metadata.Set("group_id", event.GroupID)

	topic := Topic(t.cfg.SubjectPrefix, event.Kind)
	if err := t.publisher.Publish(topic, msg); err != nil {
		reason := "publish"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = "circuit_open"
		}
		metrics.EventTapFailures.WithLabelValues(reason).Inc()
		logging.Warn().Err(err).Str("topic", topic).Msg("failed to publish lifecycle event")
		return
	}

	metrics.EventTapPublished.WithLabelValues(string(event.Kind)).Inc()
}

// Close closes the publisher and stops the embedded server, if any.
func (t *Tap) Close(ctx context.Context) error {
	var errs []error
	t.closeOnce.Do(func() {
		if err := t.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
		if t.server != nil {
			if err := t.server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown embedded NATS: %w", err))
			}
		}
	})
	return errors.Join(errs...)
}

// BrokerURL returns the URL the publisher connects to.
func (t *Tap) BrokerURL() string {
	if t.server != nil {
		return t.server.ClientURL()
	}
	return t.cfg.Publisher.URL
}
