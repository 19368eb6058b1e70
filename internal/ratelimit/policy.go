// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package ratelimit

import (
	"strings"
	"time"
)

// Policy defines a single fixed-window limit.
type Policy struct {
	// MaxRequests is the number of requests allowed per window.
	// Zero always denies.
	MaxRequests int `json:"max_requests" koanf:"max_requests" validate:"gte=0"`

	// Window is the fixed window length.
	Window time.Duration `json:"window" koanf:"window" validate:"gt=0"`
}

// Decision is the outcome of a limiter check.
// Policy denials are ordinary values, never errors.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool `json:"allowed"`

	// Remaining is the quota left in the current window after this check.
	Remaining int `json:"remaining"`

	// ResetAt is when the current window ends and quota replenishes.
	ResetAt time.Time `json:"reset_at"`
}

// NormalizeIdentity canonicalizes a login identity (email address) so that
// case and padding variants share one limiter key.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// LoginIPKey returns the limiter key for the broad per-IP login limit.
func LoginIPKey(ip string) string {
	return "login-ip:" + ip
}

// LoginIdentityKey returns the limiter key for the narrow per-IP-plus-identity
// login limit.
func LoginIdentityKey(ip, identity string) string {
	return "login-id:" + ip + "|" + NormalizeIdentity(identity)
}

// RegistrationKey returns the limiter key for registration throttling.
func RegistrationKey(ip, identity string) string {
	return "register:" + ip + "|" + NormalizeIdentity(identity)
}
