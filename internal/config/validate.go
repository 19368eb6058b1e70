// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package config

import "fmt"

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateScorer(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	return c.validateRedis()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SENTINEL_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SENTINEL_SERVER_TIMEOUT must be positive")
	}
	if c.Server.GlobalRateLimit < 0 {
		return fmt.Errorf("SENTINEL_SERVER_GLOBAL_RATE_LIMIT must not be negative")
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.LoginPerIPMax <= 0 || c.Auth.LoginPerIdentMax <= 0 {
		return fmt.Errorf("login rate limits must be positive")
	}
	if c.Auth.LoginPerIdentMax > c.Auth.LoginPerIPMax {
		return fmt.Errorf("per-identity login limit (%d) must not exceed per-IP limit (%d)",
			c.Auth.LoginPerIdentMax, c.Auth.LoginPerIPMax)
	}
	if c.Auth.LoginWindow <= 0 || c.Auth.RegistrationWindow <= 0 {
		return fmt.Errorf("auth rate-limit windows must be positive")
	}
	if c.Auth.RegistrationMax <= 0 {
		return fmt.Errorf("SENTINEL_AUTH_REGISTRATION_MAX must be positive")
	}
	return nil
}

func (c *Config) validateScorer() error {
	if c.Scorer.MaxLinks < 0 {
		return fmt.Errorf("SENTINEL_SCORER_MAX_LINKS must not be negative")
	}
	if c.Scorer.MinLength < 0 {
		return fmt.Errorf("SENTINEL_SCORER_MIN_LENGTH must not be negative")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.MaxEntries <= 0 {
		return fmt.Errorf("SENTINEL_AUDIT_MAX_ENTRIES must be positive")
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("SENTINEL_AUDIT_RETENTION_DAYS must not be negative")
	}
	if c.Audit.ArchiveEnabled && c.Audit.ArchivePath == "" {
		return fmt.Errorf("SENTINEL_AUDIT_ARCHIVE_PATH is required when the archive is enabled")
	}
	return nil
}

func (c *Config) validateRedis() error {
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("SENTINEL_REDIS_ADDR is required when SENTINEL_REDIS_ENABLED=true")
	}
	return nil
}
