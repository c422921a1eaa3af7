// Tourline - Live Tour Location Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tourline

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the relay (inbound wire payloads)
// and the config loader (cross-section bounds). Field names in errors follow
// the struct's json tag, falling back to the koanf tag, so messages read the
// way the payload or YAML file spells them.
//
// # Quick Start
//
//	type LocationUpdate struct {
//	    GroupID  string   `json:"groupId" validate:"required,notblank"`
//	    Location Location `json:"location" validate:"required"`
//	}
//
//	if verr := validation.ValidateStruct(&update); verr != nil {
//	    // verr.Fields() == []string{"groupId"}
//	}
//
// # Custom Tags
//
//   - notblank: string must contain at least one non-whitespace character
//
// Built-in tags used across Tourline: required, latitude, longitude, min, max,
// gte, lte, oneof, hostname, ip, url.
package validation
