// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/tourline/internal/validation"
)

// Validate checks struct-tag constraints first, then cross-field rules that
// tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateServer,
		c.validateRelay,
		c.validateClient,
		c.validateNATS,
		c.validateRateLimits,
		c.validateSupervisor,
		c.validateLogging,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server timeouts
func (c *Config) validateServer() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateRelay validates keepalive timing
func (c *Config) validateRelay() error {
	if c.Relay.WriteWait <= 0 {
		return fmt.Errorf("RELAY_WRITE_WAIT must be positive")
	}
	if c.Relay.PongWait <= 0 {
		return fmt.Errorf("RELAY_PONG_WAIT must be positive")
	}
	if c.Relay.PingPeriod <= 0 || c.Relay.PingPeriod >= c.Relay.PongWait {
		return fmt.Errorf("RELAY_PING_PERIOD must be positive and shorter than RELAY_PONG_WAIT (%v)", c.Relay.PongWait)
	}
	if c.Relay.InboundRate > 0 && c.Relay.InboundBurst < 1 {
		return fmt.Errorf("RELAY_INBOUND_BURST must be at least 1 when RELAY_INBOUND_RATE is set")
	}
	return nil
}

// validateClient validates the client defaults
func (c *Config) validateClient() error {
	if err := validateWebSocketURL(c.Client.ServerURL); err != nil {
		return fmt.Errorf("RELAY_SERVER_URL is invalid: %w", err)
	}
	if c.Client.SampleInterval < minSampleInterval {
		return fmt.Errorf("CLIENT_SAMPLE_INTERVAL must be at least %v", minSampleInterval)
	}
	if c.Client.DialTimeout <= 0 {
		return fmt.Errorf("CLIENT_DIAL_TIMEOUT must be positive")
	}
	return nil
}

const minSampleInterval = 100 * time.Millisecond

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.EmbeddedServer && c.NATS.Port < 1 {
		return fmt.Errorf("NATS_PORT must be set when NATS_EMBEDDED=true")
	}
	if c.NATS.BreakerTimeout <= 0 {
		return fmt.Errorf("NATS_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateRateLimits validates HTTP rate limiting bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateSupervisor rejects negative durations
func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureBackoff < 0 || c.Supervisor.ShutdownTimeout < 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_BACKOFF and SUPERVISOR_SHUTDOWN_TIMEOUT must not be negative")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports whether the relay accepts any origin in
// production. The WebSocket upgrade shares the CORS origin list, so a
// wildcard lets any page open a relay connection.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.hasWildcardCORS()
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}
