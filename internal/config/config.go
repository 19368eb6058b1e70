// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package config

import (
	"time"

	"github.com/indievault/sentinel/internal/logging"
)

// Config is the root configuration, loaded from defaults, an optional
// YAML file, and environment variable overrides in that order.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Content  ContentConfig  `koanf:"content"`
	Scorer   ScorerConfig   `koanf:"scorer"`
	Audit    AuditConfig    `koanf:"audit"`
	Redis    RedisConfig    `koanf:"redis"` // Optional: shared rate-limit state across replicas
	Logging  LoggingConfig  `koanf:"logging"`
	Maintain MaintainConfig `koanf:"maintain"`
}

// LoggingConfig holds the log settings. Converted to the logging
// package's Config at startup.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ToLogging converts to the logging package's configuration.
func (c LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		Level:  c.Level,
		Format: c.Format,
		Caller: c.Caller,
	}
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed origins for browser callers.
	CORSOrigins []string `koanf:"cors_origins"`

	// GlobalRateLimit caps requests per client IP per minute at the HTTP
	// edge, before any domain policy runs. Zero disables it.
	GlobalRateLimit int `koanf:"global_rate_limit"`
}

// AuthConfig tunes the authentication rate limits.
type AuthConfig struct {
	LoginPerIPMax      int           `koanf:"login_per_ip_max"`
	LoginPerIdentMax   int           `koanf:"login_per_identity_max"`
	LoginWindow        time.Duration `koanf:"login_window"`
	RegistrationMax    int           `koanf:"registration_max"`
	RegistrationWindow time.Duration `koanf:"registration_window"`
}

// ContentConfig tunes the content guard.
type ContentConfig struct {
	// SweepInterval is how often stale windows and elapsed cooldowns are
	// reclaimed.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// ScorerConfig tunes the spam scorer.
type ScorerConfig struct {
	CheckURLs bool `koanf:"check_urls"`
	MaxLinks  int  `koanf:"max_links"`
	MinLength int  `koanf:"min_length"`
}

// AuditConfig tunes the audit log and its optional on-disk archive.
type AuditConfig struct {
	MaxEntries int `koanf:"max_entries"`

	// RetentionDays drives the periodic purge; zero disables purging.
	RetentionDays int `koanf:"retention_days"`

	ArchiveEnabled   bool          `koanf:"archive_enabled"`
	ArchivePath      string        `koanf:"archive_path"`
	ArchiveRetention time.Duration `koanf:"archive_retention"`
}

// RedisConfig enables the shared rate-limit store. Disabled by default;
// the in-memory store is the authority for single-instance deployments.
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// MaintainConfig tunes the background maintenance services.
type MaintainConfig struct {
	SweepInterval time.Duration `koanf:"sweep_interval"`
	PurgeInterval time.Duration `koanf:"purge_interval"`
}

// defaultConfig returns a Config with all defaults applied. These are
// layered first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8675,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			GlobalRateLimit: 300,
		},
		Auth: AuthConfig{
			LoginPerIPMax:      20,
			LoginPerIdentMax:   5,
			LoginWindow:        15 * time.Minute,
			RegistrationMax:    3,
			RegistrationWindow: 15 * time.Minute,
		},
		Content: ContentConfig{
			SweepInterval: 10 * time.Minute,
		},
		Scorer: ScorerConfig{
			CheckURLs: true,
			MaxLinks:  3,
			MinLength: 10,
		},
		Audit: AuditConfig{
			MaxEntries:       10000,
			RetentionDays:    30,
			ArchiveEnabled:   false,
			ArchivePath:      "/data/sentinel/audit",
			ArchiveRetention: 90 * 24 * time.Hour,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "127.0.0.1:6379",
			DB:      0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Maintain: MaintainConfig{
			SweepInterval: 10 * time.Minute,
			PurgeInterval: time.Hour,
		},
	}
}
