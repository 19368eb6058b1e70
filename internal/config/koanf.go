// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where the config file is searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"sentinel.yaml",
	"sentinel.yml",
	"/etc/sentinel/config.yaml",
	"/etc/sentinel/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "SENTINEL_CONFIG_PATH"

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. SENTINEL_* environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("SENTINEL_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Env vars arrive as plain strings; comma-separated lists must become
	// slices before unmarshaling.
	if raw, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitAndTrim(raw)); err != nil {
			return nil, fmt.Errorf("process cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf paths.
//
// Examples:
//   - SENTINEL_SERVER_PORT -> server.port
//   - SENTINEL_AUTH_LOGIN_WINDOW -> auth.login_window
//   - SENTINEL_REDIS_ENABLED -> redis.enabled
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "SENTINEL_"))

	// Section prefixes become the first path segment; the remainder keeps
	// its underscores because koanf keys use snake_case within a section.
	for _, section := range []string{
		"server", "auth", "content", "scorer", "audit", "redis", "logging", "maintain",
	} {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}

	return key
}

// splitAndTrim splits a comma-separated value into trimmed parts.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
