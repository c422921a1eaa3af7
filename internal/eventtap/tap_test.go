// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package eventtap

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tourline/internal/logging"
	"github.com/tomtom215/tourline/internal/metrics"
	"github.com/tomtom215/tourline/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// failingPublisher always returns err.
type failingPublisher struct {
	err error
}

func (f *failingPublisher) Publish(string, ...*message.Message) error { return f.err }
func (f *failingPublisher) Close() error                              { return nil }

func newGoChannelTap(t *testing.T) (*Tap, *gochannel.GoChannel) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	pub, err := WrapPublisher(pubSub)
	if err != nil {
		t.Fatalf("WrapPublisher: %v", err)
	}
	cfg := DefaultConfig("")
	cfg.Server = &ServerConfig{} // satisfies Validate without a URL
	tap, err := New(cfg, pub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = tap.Close(context.Background()) })
	return tap, pubSub
}

func TestNew_Validation(t *testing.T) {
	pub, err := WrapPublisher(&failingPublisher{})
	if err != nil {
		t.Fatalf("WrapPublisher: %v", err)
	}

	if _, err := New(DefaultConfig("nats://127.0.0.1:4222"), nil); !errors.Is(err, ErrNilPublisher) {
		t.Errorf("nil publisher: got %v, want ErrNilPublisher", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank prefix", func(c *Config) { c.SubjectPrefix = " " }},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }},
		{"no url", func(c *Config) { c.Publisher.URL = "" }},
		{"zero threshold", func(c *Config) { c.Breaker.FailureThreshold = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("nats://127.0.0.1:4222")
			tt.mutate(&cfg)
			if _, err := New(cfg, pub); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestWrapPublisher_Nil(t *testing.T) {
	if _, err := WrapPublisher(nil); !errors.Is(err, ErrNilPublisher) {
		t.Errorf("got %v, want ErrNilPublisher", err)
	}
}

func TestTap_PublishesLifecycleEvents(t *testing.T) {
	tap, pubSub := newGoChannelTap(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := pubSub.Subscribe(ctx, "tourline.group.created")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	go func() { _ = tap.Serve(ctx) }()

	before := testutil.ToFloat64(metrics.EventTapPublished.WithLabelValues(string(models.GroupCreated)))
	tap.Emit(models.LifecycleEvent{
		Kind:         models.GroupCreated,
		GroupID:      "tour-9",
		ConnectionID: "conn-1",
		Members:      1,
		OccurredAt:   time.Now().UTC(),
	})

	select {
	case msg := <-msgs:
		msg.Ack()
		event, err := Unmarshal(msg.Payload)
		if err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if event.GroupID != "tour-9" || event.Kind != models.GroupCreated || event.Members != 1 {
			t.Errorf("event = %+v", event)
		}
		if got := msg.Metadata.Get("group_id"); got != "tour-9" {
			t.Errorf("group_id metadata = %q", got)
		}
		if msg.Metadata.Get("Nats-Msg-Id") != msg.UUID {
			t.Error("message id header should match the message UUID")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(metrics.EventTapPublished.WithLabelValues(string(models.GroupCreated)))-before == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("published counter was not incremented")
}

func TestTap_EmitDropsWhenFull(t *testing.T) {
	pub, err := WrapPublisher(&failingPublisher{})
	if err != nil {
		t.Fatalf("WrapPublisher: %v", err)
	}
	cfg := DefaultConfig("nats://127.0.0.1:4222")
	cfg.BufferSize = 1
	tap, err := New(cfg, pub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before := testutil.ToFloat64(metrics.EventTapFailures.WithLabelValues("buffer_full"))
	ev := models.LifecycleEvent{Kind: models.MemberJoined, GroupID: "g"}
	tap.Emit(ev)
	tap.Emit(ev) // not served, so this one is dropped

	if got := testutil.ToFloat64(metrics.EventTapFailures.WithLabelValues("buffer_full")); got-before != 1 {
		t.Errorf("buffer_full delta = %v, want 1", got-before)
	}
}

func TestTap_PublishFailureOpensBreaker(t *testing.T) {
	pub, err := WrapPublisher(&failingPublisher{err: errors.New("broker down")})
	if err != nil {
		t.Fatalf("WrapPublisher: %v", err)
	}
	breakerCfg := CircuitBreakerConfig{
		Name:             "tap-test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}
	pub.SetCircuitBreaker(NewCircuitBreaker(breakerCfg))

	cfg := DefaultConfig("nats://127.0.0.1:4222")
	tap, err := New(cfg, pub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	publishBefore := testutil.ToFloat64(metrics.EventTapFailures.WithLabelValues("publish"))
	openBefore := testutil.ToFloat64(metrics.EventTapFailures.WithLabelValues("circuit_open"))

	ev := models.LifecycleEvent{Kind: models.MemberLeft, GroupID: "g"}
	for i := 0; i < 3; i++ {
		tap.publish(ev)
	}

	if got := testutil.ToFloat64(metrics.EventTapFailures.WithLabelValues("publish")); got-publishBefore != 2 {
		t.Errorf("publish failures delta = %v, want 2", got-publishBefore)
	}
	if got := testutil.ToFloat64(metrics.EventTapFailures.WithLabelValues("circuit_open")); got-openBefore != 1 {
		t.Errorf("circuit_open delta = %v, want 1", got-openBefore)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("tap-test")); got != metrics.BreakerOpen {
		t.Errorf("breaker state gauge = %v, want open", got)
	}
}

func TestTap_ServeStopsOnCancel(t *testing.T) {
	tap, _ := newGoChannelTap(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- tap.Serve(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if tap.String() != "event-tap" {
		t.Errorf("String() = %q", tap.String())
	}
}

func TestPublisher_ClosedRejectsPublish(t *testing.T) {
	pub, err := WrapPublisher(&failingPublisher{})
	if err != nil {
		t.Fatalf("WrapPublisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	err = pub.Publish("t", message.NewMessage(watermill.NewUUID(), []byte("{}")))
	if !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("got %v, want ErrPublisherClosed", err)
	}
}

func TestSerializer(t *testing.T) {
	if _, err := Marshal(models.LifecycleEvent{GroupID: "g"}); err == nil {
		t.Error("expected error for missing kind")
	}
	if _, err := Marshal(models.LifecycleEvent{Kind: models.GroupRemoved}); err == nil {
		t.Error("expected error for missing group id")
	}
	if _, err := Unmarshal([]byte("{")); err == nil {
		t.Error("expected error for truncated payload")
	}
	if got := Topic("tourline", models.MemberJoined); got != "tourline.member.joined" {
		t.Errorf("Topic = %q", got)
	}
}
