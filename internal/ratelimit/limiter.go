// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/indievault/sentinel/internal/logging"
	"github.com/indievault/sentinel/internal/metrics"
)

// Limiter evaluates fixed-window policies against keyed counters.
// Check consumes quota; Peek does not.
type Limiter struct {
	store Store
	now   func() time.Time
}

// NewLimiter creates a limiter backed by the given store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{
		store: store,
		now:   time.Now,
	}
}

// Check evaluates the policy for key and consumes quota when admitted.
func (l *Limiter) Check(ctx context.Context, key string, policy Policy) (Decision, error) {
	decision, err := l.store.Increment(ctx, key, policy, l.now())
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check %q: %w", key, err)
	}
	return decision, nil
}

// Peek evaluates the policy for key without consuming quota.
// Intended for status display only.
func (l *Limiter) Peek(ctx context.Context, key string, policy Policy) (Decision, error) {
	decision, err := l.store.Peek(ctx, key, policy, l.now())
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit peek %q: %w", key, err)
	}
	return decision, nil
}

// Sweep removes stale counter entries. Run periodically from a background
// task, never from the hot path.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	start := l.now()
	removed, err := l.store.Sweep(ctx, start)
	if err != nil {
		return 0, fmt.Errorf("rate limit sweep: %w", err)
	}

	metrics.RecordSweep("ratelimit", removed, time.Since(start))
	if removed > 0 {
		logging.Debug().Int("removed", removed).Msg("Swept stale rate limit entries")
	}

	return removed, nil
}
