// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package config loads and validates Sentinel's layered configuration.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML
// file (sentinel.yaml in the working directory or /etc/sentinel/, or
// the path in SENTINEL_CONFIG_PATH), then SENTINEL_* environment
// variables. A config that fails validation refuses to start the
// process; there is no partial fallback.
package config
