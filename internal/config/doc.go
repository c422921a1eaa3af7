// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

/*
Package config provides centralized configuration management for Tourline.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML
file, then environment variables. The result is validated with struct tags
(go-playground/validator via internal/validation) and cross-field rules.

# Configuration File

The first existing file wins: $CONFIG_PATH, config.yaml, config.yml,
/etc/tourline/config.yaml, /etc/tourline/config.yml.

	server:
	  port: 3858
	relay:
	  pong_wait: 60s
	  ping_period: 54s
	nats:
	  enabled: true
	  embedded_server: true

# Environment Variables

Server:
  - PORT / HTTP_PORT: listen port (default: 3858)
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_TIMEOUT, SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging, production

Relay:
  - RELAY_PATH: upgrade route (default: /ws)
  - RELAY_WRITE_WAIT, RELAY_PONG_WAIT, RELAY_PING_PERIOD
  - RELAY_MAX_MESSAGE_SIZE, RELAY_SEND_BUFFER_SIZE
  - RELAY_INBOUND_RATE, RELAY_INBOUND_BURST: per-connection event limit

Client:
  - RELAY_SERVER_URL: relay endpoint (default: ws://127.0.0.1:3858/ws)
  - CLIENT_SAMPLE_INTERVAL (default: 5s), CLIENT_DIAL_TIMEOUT

NATS event tap:
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_HOST, NATS_PORT, NATS_STORE_DIR
  - NATS_SUBJECT_PREFIX, NATS_MAX_RECONNECTS, NATS_RECONNECT_WAIT
  - NATS_BREAKER_MAX_FAILURES, NATS_BREAKER_TIMEOUT

Security:
  - CORS_ORIGINS: comma-separated (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Supervisor:
  - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY
  - SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT
*/
package config
