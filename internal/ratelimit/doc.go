// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package ratelimit implements identifier-keyed fixed-window rate limiting.
//
// # Overview
//
// A Limiter evaluates a Policy (max requests per window) against an opaque
// string key. Checks use a single atomic increment-and-compare so that
// concurrent callers can never over-admit: the underlying Store owns the
// read-check-then-write sequence under one lock.
//
//	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore())
//	decision, _ := limiter.Check(ctx, "login-ip:203.0.113.9", ratelimit.Policy{
//	    MaxRequests: 20,
//	    Window:      15 * time.Minute,
//	})
//	if !decision.Allowed {
//	    // reject with Retry-After derived from decision.ResetAt
//	}
//
// Check consumes quota. Peek evaluates the same policy without mutating
// state and exists for status display only.
//
// # Stores
//
// MemoryStore keeps counters in a mutex-guarded map and is the default.
// State is process-local; running multiple instances behind a load balancer
// fragments limits per instance. RedisStore provides shared counters with
// atomic INCR semantics for multi-instance deployments.
//
// # Authentication policies
//
// AuthLimiter composes the login and registration policies: a broad per-IP
// limit and a narrow per-IP-plus-identity limit, both of which must pass.
package ratelimit
