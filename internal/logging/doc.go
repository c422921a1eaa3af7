// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

// Package logging provides centralized zerolog-based structured logging for Tourline.
//
// Both halves of the system log through this package: the relay server (hub,
// connection pumps, HTTP layer, supervisor) and the location sharing client
// (controller, position tracker).
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("group_id", groupID).Msg("group created")
//	logging.Ctx(ctx).Warn().Err(err).Msg("dropped malformed payload")
//
// # Context Fields
//
// Ctx adds correlation_id, request_id and connection_id when the context
// carries them. The relay tags every connection context with its connection
// ID so read/write pump logs can be grepped per client.
//
// # Adapters
//
//   - SlogHandler: slog.Handler over zerolog, used by sutureslog
//   - WatermillAdapter: watermill.LoggerAdapter over zerolog, used by the event tap
//
// # Configuration
//
// Environment Variables (via internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
package logging
