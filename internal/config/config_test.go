// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

package config

import "testing"

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 3858, "0.0.0.0:3858"},
		{"", 80, ":80"},
		{"::1", 8080, "[::1]:8080"},
	}

	for _, tt := range tests {
		s := ServerConfig{Host: tt.host, Port: tt.port}
		if got := s.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidateWebSocketURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"ws://localhost:3858/ws", false},
		{"wss://relay.example.com", false},
		{"wss://10.0.0.5:443/relay/ws", false},
		{"http://localhost:3858", true},
		{"ws://", true},
		{"localhost:3858", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateWebSocketURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateWebSocketURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNATSURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"nats://localhost:4222", false},
		{"tls://nats.example.com:4222", false},
		{"ws://127.0.0.1:8080", false},
		{"http://localhost:4222", true},
		{"nats://", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateNATSURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateNATSURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		origins []string
		want    bool
	}{
		{"wildcard in development", "development", []string{"*"}, false},
		{"wildcard in production", "production", []string{"*"}, true},
		{"explicit origins in production", "prod", []string{"https://tours.example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Server.Environment = tt.env
			cfg.Security.CORSOrigins = tt.origins
			if got := cfg.ShouldWarnAboutCORS(); got != tt.want {
				t.Errorf("ShouldWarnAboutCORS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_RelayBurstRequiredWithRate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Relay.InboundRate = 5
	cfg.Relay.InboundBurst = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when inbound rate set without burst")
	}

	cfg.Relay.InboundRate = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("rate limiting disabled should validate, got %v", err)
	}
}

func TestValidate_EmbeddedNATSNeedsPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.NATS.Enabled = true
	cfg.NATS.EmbeddedServer = true
	cfg.NATS.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for embedded NATS without port")
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		cfg := defaultConfig()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("level %q should be valid: %v", level, err)
		}
	}
}
