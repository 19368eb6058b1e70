// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package ratelimit

import (
	"context"
	"time"

	"github.com/indievault/sentinel/internal/metrics"
)

// AuthPolicies holds the authentication-path limits.
type AuthPolicies struct {
	// LoginPerIP is the broad limit on login attempts per client IP.
	LoginPerIP Policy `json:"login_per_ip" koanf:"login_per_ip"`

	// LoginPerIdentity is the narrow limit per IP and normalized identity.
	LoginPerIdentity Policy `json:"login_per_identity" koanf:"login_per_identity"`

	// Registration limits registration attempts per IP and identity.
	Registration Policy `json:"registration" koanf:"registration"`
}

// DefaultAuthPolicies returns the production login and registration limits.
func DefaultAuthPolicies() AuthPolicies {
	return AuthPolicies{
		LoginPerIP:       Policy{MaxRequests: 20, Window: 15 * time.Minute},
		LoginPerIdentity: Policy{MaxRequests: 5, Window: 15 * time.Minute},
		Registration:     Policy{MaxRequests: 3, Window: 15 * time.Minute},
	}
}

// AuthLimiter throttles the authentication endpoints.
// Login composes two independent checks: a broad per-IP limit catching
// distributed guessing from one address, and a narrow per-IP-plus-identity
// limit catching brute force against one account. Both must pass.
type AuthLimiter struct {
	limiter  *Limiter
	policies AuthPolicies
}

// NewAuthLimiter creates an auth limiter over the shared limiter.
func NewAuthLimiter(limiter *Limiter, policies AuthPolicies) *AuthLimiter {
	return &AuthLimiter{
		limiter:  limiter,
		policies: policies,
	}
}

// CheckLogin evaluates both login limits for ip and identity.
// The returned decision is the first denial, or the narrow-limit decision
// when both pass (it carries the tighter remaining count).
func (a *AuthLimiter) CheckLogin(ctx context.Context, ip, identity string) (Decision, error) {
	broad, err := a.limiter.Check(ctx, LoginIPKey(ip), a.policies.LoginPerIP)
	if err != nil {
		return Decision{}, err
	}
	metrics.RecordRateLimitCheck("login_ip", broad.Allowed)
	if !broad.Allowed {
		return broad, nil
	}

	narrow, err := a.limiter.Check(ctx, LoginIdentityKey(ip, identity), a.policies.LoginPerIdentity)
	if err != nil {
		return Decision{}, err
	}
	metrics.RecordRateLimitCheck("login_identity", narrow.Allowed)

	return narrow, nil
}

// CheckRegistration evaluates the registration limit for ip and identity.
func (a *AuthLimiter) CheckRegistration(ctx context.Context, ip, identity string) (Decision, error) {
	decision, err := a.limiter.Check(ctx, RegistrationKey(ip, identity), a.policies.Registration)
	if err != nil {
		return Decision{}, err
	}
	metrics.RecordRateLimitCheck("registration", decision.Allowed)

	return decision, nil
}
