// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all Tourline configuration for both the relay server and the
// location sharing client.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: explicit mappings in envTransformFunc
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Relay      RelayConfig      `koanf:"relay"`
	Client     ClientConfig     `koanf:"client"`
	NATS       NATSConfig       `koanf:"nats"` // Optional: group lifecycle event tap
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP listener settings for the relay server.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment" validate:"oneof=development dev staging production prod"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RelayConfig tunes the WebSocket relay.
//
// PingPeriod must be shorter than PongWait so a healthy peer always answers
// before its read deadline expires.
type RelayConfig struct {
	// Path is the HTTP route that upgrades to WebSocket.
	Path string `koanf:"path" validate:"required,startswith=/"`

	WriteWait  time.Duration `koanf:"write_wait"`
	PongWait   time.Duration `koanf:"pong_wait"`
	PingPeriod time.Duration `koanf:"ping_period"`

	// MaxMessageSize is the read limit per inbound frame in bytes.
	MaxMessageSize int64 `koanf:"max_message_size" validate:"min=128,max=1048576"`

	// SendBufferSize is the per-connection outbound queue. A full queue marks
	// the connection as a slow consumer and it is dropped.
	SendBufferSize int `koanf:"send_buffer_size" validate:"min=1,max=65536"`

	// InboundRate is the sustained inbound events per second allowed per
	// connection; 0 disables limiting.
	InboundRate  float64 `koanf:"inbound_rate" validate:"gte=0"`
	InboundBurst int     `koanf:"inbound_burst" validate:"gte=0"`
}

// ClientConfig holds defaults for the location sharing client (cmd/tour-tracker).
type ClientConfig struct {
	// ServerURL is the relay WebSocket endpoint (ws:// or wss://).
	ServerURL      string        `koanf:"server_url" validate:"required"`
	SampleInterval time.Duration `koanf:"sample_interval"`
	DialTimeout    time.Duration `koanf:"dial_timeout"`
}

// NATSConfig configures the optional group lifecycle event tap.
//
// Only membership lifecycle events are published. Location samples never
// leave the relay process.
type NATSConfig struct {
	// Enabled controls whether lifecycle events are published.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server before the publisher connects.
	EmbeddedServer bool   `koanf:"embedded_server"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port" validate:"min=0,max=65535"`

	// StoreDir enables JetStream file storage for the embedded server when set.
	StoreDir string `koanf:"store_dir"`

	// SubjectPrefix is prepended to every lifecycle topic ("tourline.group.created").
	SubjectPrefix string `koanf:"subject_prefix" validate:"required"`

	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// BreakerMaxFailures is the consecutive publish failures that open the circuit.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"min=1"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds the HTTP surface protections.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// SupervisorConfig mirrors suture's restart parameters.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gte=0"`
	FailureDecay     float64       `koanf:"failure_decay" validate:"gte=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
func Load() (*Config, error) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
