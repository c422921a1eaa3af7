// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package eventtap

import (
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tourline/internal/config"
)

func TestNewCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("test-breaker"))

	if cb.Name() != "test-breaker" {
		t.Errorf("Expected name=test-breaker, got %s", cb.Name())
	}
	if state := CircuitBreakerState(cb); state != "closed" {
		t.Errorf("Expected initial state=closed, got %s", state)
	}
}

func TestExecuteWithBreaker(t *testing.T) {
	t.Run("successful execution", func(t *testing.T) {
		cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("success-test"))

		result, err := ExecuteWithBreaker(cb, func() (interface{}, error) {
			return "success", nil
		})
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if result != "success" {
			t.Errorf("Expected 'success', got %v", result)
		}
	})

	t.Run("circuit opens after failures", func(t *testing.T) {
		cb := NewCircuitBreaker(CircuitBreakerConfig{
			Name:             "open-test",
			MaxRequests:      1,
			Interval:         time.Second,
			Timeout:          time.Second,
			FailureThreshold: 2,
		})

		testErr := errors.New("fail")
		for i := 0; i < 2; i++ {
			_, _ = ExecuteWithBreaker(cb, func() (interface{}, error) { return nil, testErr })
		}

		if CircuitBreakerState(cb) != "open" {
			t.Errorf("Expected state=open, got %s", CircuitBreakerState(cb))
		}

		_, err := ExecuteWithBreaker(cb, func() (interface{}, error) { return "ok", nil })
		if !errors.Is(err, gobreaker.ErrOpenState) {
			t.Errorf("Expected ErrOpenState, got %v", err)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("nats://broker:4222")
	if cfg.Server != nil {
		t.Error("default config should not start an embedded server")
	}
	if cfg.Publisher.JetStream {
		t.Error("JetStream should be off by default")
	}
	if cfg.Publisher.MaxReconnects != -1 {
		t.Errorf("MaxReconnects = %d, want -1", cfg.Publisher.MaxReconnects)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.NATSConfig{
		Enabled:            true,
		URL:                "nats://broker:4222",
		EmbeddedServer:     true,
		Host:               "0.0.0.0",
		Port:               4333,
		StoreDir:           "/var/lib/tourline/nats",
		SubjectPrefix:      "tours",
		MaxReconnects:      5,
		ReconnectWait:      time.Second,
		BreakerMaxFailures: 7,
		BreakerTimeout:     time.Minute,
	})

	if cfg.SubjectPrefix != "tours" {
		t.Errorf("SubjectPrefix = %q", cfg.SubjectPrefix)
	}
	if cfg.Server == nil || cfg.Server.Port != 4333 || cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("Server = %+v", cfg.Server)
	}
	if !cfg.Publisher.JetStream {
		t.Error("a store dir should enable JetStream")
	}
	if cfg.Publisher.MaxReconnects != 5 || cfg.Publisher.ReconnectWait != time.Second {
		t.Errorf("Publisher = %+v", cfg.Publisher)
	}
	if cfg.Breaker.FailureThreshold != 7 || cfg.Breaker.Timeout != time.Minute {
		t.Errorf("Breaker = %+v", cfg.Breaker)
	}
}
