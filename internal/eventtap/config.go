// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package eventtap

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/tourline/internal/config"
)

// Config holds the event tap settings derived from config.NATSConfig.
type Config struct {
	// SubjectPrefix is prepended to every lifecycle kind: "tourline.group.created".
	SubjectPrefix string

	// BufferSize is the number of events queued between the hub and the publisher.
	BufferSize int

	Publisher PublisherConfig
	Breaker   CircuitBreakerConfig

	// Server is nil unless an embedded NATS server should be started.
	Server *ServerConfig
}

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host string
	Port int // -1 picks a random free port

	// StoreDir enables JetStream with file storage. Empty runs core NATS only.
	StoreDir string

	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns defaults for the embedded NATS server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		JetStreamMaxMem:   64 << 20,  // 64MB
		JetStreamMaxStore: 512 << 20, // 512MB
	}
}

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	URL             string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int

	// JetStream publishes through JetStream and provisions the stream on
	// first use. When false, events go out as core NATS messages.
	JetStream bool

	EnableTrackMsgID bool // nolint:revive // ID is correct per Go conventions
}

// DefaultPublisherConfig returns defaults for the publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1, // Unlimited
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024, // 8MB
		EnableTrackMsgID: true,
	}
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Failures before opening
}

// DefaultCircuitBreakerConfig returns defaults for the publish breaker.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// DefaultConfig returns a tap configuration for a broker at url.
func DefaultConfig(url string) Config {
	return Config{
		SubjectPrefix: "tourline",
		BufferSize:    1024,
		Publisher:     DefaultPublisherConfig(url),
		Breaker:       DefaultCircuitBreakerConfig("event-tap"),
	}
}

// FromConfig maps the application NATS section onto a tap Config.
func FromConfig(cfg config.NATSConfig) Config {
	c := DefaultConfig(cfg.URL)
	c.SubjectPrefix = cfg.SubjectPrefix
	c.Publisher.MaxReconnects = cfg.MaxReconnects
	c.Publisher.ReconnectWait = cfg.ReconnectWait
	c.Publisher.JetStream = cfg.StoreDir != ""
	c.Breaker.FailureThreshold = cfg.BreakerMaxFailures
	c.Breaker.Timeout = cfg.BreakerTimeout

	if cfg.EmbeddedServer {
		srv := DefaultServerConfig()
		srv.Host = cfg.Host
		srv.Port = cfg.Port
		srv.StoreDir = cfg.StoreDir
		c.Server = &srv
	}
	return c
}

// Validate checks the values the tap cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SubjectPrefix) == "" {
		return fmt.Errorf("%w: subject prefix is required", ErrInvalidConfig)
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("%w: buffer size must be positive", ErrInvalidConfig)
	}
	if c.Server == nil && c.Publisher.URL == "" {
		return fmt.Errorf("%w: NATS URL is required without an embedded server", ErrInvalidConfig)
	}
	if c.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("%w: breaker failure threshold must be positive", ErrInvalidConfig)
	}
	return nil
}
