// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package relay

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/tourline/internal/config"
)

// Options tunes connection keepalive, buffering and inbound limiting.
type Options struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
	SendBufferSize int

	// InboundRate is events per second per connection; 0 disables limiting.
	InboundRate  float64
	InboundBurst int

	// AllowedOrigins is checked against the Origin header on upgrade.
	// "*" allows any origin. Requests without an Origin header (native
	// apps, the tour-tracker CLI) are always allowed.
	AllowedOrigins []string
}

// DefaultOptions returns the relay defaults.
func DefaultOptions() Options {
	const pongWait = 60 * time.Second
	return Options{
		WriteWait:      10 * time.Second,
		PongWait:       pongWait,
		PingPeriod:     (pongWait * 9) / 10,
		MaxMessageSize: 4096,
		SendBufferSize: 256,
		InboundRate:    10,
		InboundBurst:   20,
		AllowedOrigins: []string{"*"},
	}
}

// OptionsFromConfig maps the relay and security config sections to Options.
func OptionsFromConfig(relayCfg config.RelayConfig, security config.SecurityConfig) Options {
	return Options{
		WriteWait:      relayCfg.WriteWait,
		PongWait:       relayCfg.PongWait,
		PingPeriod:     relayCfg.PingPeriod,
		MaxMessageSize: relayCfg.MaxMessageSize,
		SendBufferSize: relayCfg.SendBufferSize,
		InboundRate:    relayCfg.InboundRate,
		InboundBurst:   relayCfg.InboundBurst,
		AllowedOrigins: security.CORSOrigins,
	}
}

// newLimiter returns nil when limiting is disabled.
func (o Options) newLimiter() *rate.Limiter {
	if o.InboundRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(o.InboundRate), o.InboundBurst)
}
