// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8675, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Auth.LoginPerIPMax)
	assert.Equal(t, 5, cfg.Auth.LoginPerIdentMax)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginWindow)
	assert.Equal(t, 10000, cfg.Audit.MaxEntries)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Audit.ArchiveEnabled)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SENTINEL_SERVER_PORT", "9000")
	t.Setenv("SENTINEL_AUTH_LOGIN_PER_IP_MAX", "50")
	t.Setenv("SENTINEL_LOGGING_LEVEL", "debug")
	t.Setenv("SENTINEL_SERVER_CORS_ORIGINS", "https://indievault.example, https://admin.indievault.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Auth.LoginPerIPMax)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t,
		[]string{"https://indievault.example", "https://admin.indievault.example"},
		cfg.Server.CORSOrigins)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sentinel.yaml")
	content := []byte("server:\n  port: 8123\naudit:\n  max_entries: 500\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Audit.MaxEntries)
	// Untouched settings keep their defaults.
	assert.Equal(t, 3, cfg.Auth.RegistrationMax)
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sentinel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8123\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SENTINEL_SERVER_PORT", "9001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SENTINEL_SERVER_PORT", "server.port"},
		{"SENTINEL_SERVER_GLOBAL_RATE_LIMIT", "server.global_rate_limit"},
		{"SENTINEL_AUTH_LOGIN_WINDOW", "auth.login_window"},
		{"SENTINEL_REDIS_ENABLED", "redis.enabled"},
		{"SENTINEL_LOGGING_LEVEL", "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, envTransformFunc(tt.input))
		})
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }},
		{"identity limit above ip limit", func(c *Config) { c.Auth.LoginPerIdentMax = 100 }},
		{"zero login window", func(c *Config) { c.Auth.LoginWindow = 0 }},
		{"zero audit cap", func(c *Config) { c.Audit.MaxEntries = 0 }},
		{"archive without path", func(c *Config) {
			c.Audit.ArchiveEnabled = true
			c.Audit.ArchivePath = ""
		}},
		{"redis without addr", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
