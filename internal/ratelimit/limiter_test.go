// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a limiter pinned to base plus an adjustable offset.
func fixedClock(l *Limiter, base time.Time) *time.Duration {
	offset := new(time.Duration)
	l.now = func() time.Time { return base.Add(*offset) }
	return offset
}

func TestCheck_WindowCorrectness(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	offset := fixedClock(limiter, base)

	ctx := context.Background()
	policy := Policy{MaxRequests: 5, Window: 15 * time.Minute}

	for i := 0; i < 5; i++ {
		decision, err := limiter.Check(ctx, "k", policy)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "check %d should be allowed", i+1)
		assert.Equal(t, 4-i, decision.Remaining)
		assert.Equal(t, base.Add(15*time.Minute), decision.ResetAt)
	}

	// Sixth check within the same window is denied, reset pinned to the
	// first check's window start.
	decision, err := limiter.Check(ctx, "k", policy)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, base.Add(15*time.Minute), decision.ResetAt)

	// Just past the window boundary a fresh window opens.
	*offset = 15*time.Minute + time.Millisecond
	decision, err = limiter.Check(ctx, "k", policy)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 4, decision.Remaining)
}

func TestCheck_ZeroMaxAlwaysDenies(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	decision, err := limiter.Check(context.Background(), "k", Policy{MaxRequests: 0, Window: time.Minute})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
}

func TestCheck_IndependentKeys(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	ctx := context.Background()
	policy := Policy{MaxRequests: 1, Window: time.Hour}

	first, err := limiter.Check(ctx, "a", policy)
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	exhausted, err := limiter.Check(ctx, "a", policy)
	require.NoError(t, err)
	assert.False(t, exhausted.Allowed)

	other, err := limiter.Check(ctx, "b", policy)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys must not share counters")
}

func TestPeek_DoesNotConsumeQuota(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	ctx := context.Background()
	policy := Policy{MaxRequests: 2, Window: time.Minute}

	for i := 0; i < 10; i++ {
		decision, err := limiter.Peek(ctx, "k", policy)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 2, decision.Remaining)
	}

	decision, err := limiter.Check(ctx, "k", policy)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	probe, err := limiter.Peek(ctx, "k", policy)
	require.NoError(t, err)
	assert.Equal(t, 1, probe.Remaining)
}

func TestCheck_ConcurrentAdmitsBounded(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	policy := Policy{MaxRequests: 50, Window: time.Hour}

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.Check(context.Background(), "hot", policy)
			if err != nil {
				t.Error(err)
				return
			}
			if decision.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), admitted.Load(), "at most MaxRequests admits under concurrency")
}

func TestSweep_RemovesStaleEntries(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	offset := fixedClock(limiter, base)

	ctx := context.Background()
	policy := Policy{MaxRequests: 5, Window: time.Minute}

	_, err := limiter.Check(ctx, "old", policy)
	require.NoError(t, err)

	// Within the stale factor nothing is removed.
	*offset = 2 * time.Minute
	removed, err := limiter.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, 1, store.Len())

	// Past staleWindowFactor windows the entry is collected.
	*offset = 4 * time.Minute
	removed, err = limiter.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Zero(t, store.Len())
}

func TestNormalizeIdentity(t *testing.T) {
	assert.Equal(t, "e@x.com", NormalizeIdentity("  E@X.Com "))
	assert.Equal(t, "", NormalizeIdentity("   "))
}

func TestAuthLimiter_LoginComposesBothLimits(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	auth := NewAuthLimiter(limiter, AuthPolicies{
		LoginPerIP:       Policy{MaxRequests: 20, Window: 15 * time.Minute},
		LoginPerIdentity: Policy{MaxRequests: 5, Window: 15 * time.Minute},
		Registration:     Policy{MaxRequests: 3, Window: 15 * time.Minute},
	})

	ctx := context.Background()

	// Five attempts for one identity pass; the sixth hits the narrow limit
	// long before the broad per-IP limit.
	for i := 0; i < 5; i++ {
		decision, err := auth.CheckLogin(ctx, "203.0.113.9", "E@x.com")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
	decision, err := auth.CheckLogin(ctx, "203.0.113.9", "e@X.COM")
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "identity variants share the normalized key")

	// A different identity from the same IP still passes the narrow limit.
	decision, err = auth.CheckLogin(ctx, "203.0.113.9", "other@x.com")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestAuthLimiter_BroadIPLimit(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	auth := NewAuthLimiter(limiter, AuthPolicies{
		LoginPerIP:       Policy{MaxRequests: 3, Window: 15 * time.Minute},
		LoginPerIdentity: Policy{MaxRequests: 5, Window: 15 * time.Minute},
	})

	ctx := context.Background()
	identities := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"}

	for i, identity := range identities[:3] {
		decision, err := auth.CheckLogin(ctx, "198.51.100.7", identity)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "attempt %d", i+1)
	}

	// Fourth distinct identity trips the broad per-IP limit.
	decision, err := auth.CheckLogin(ctx, "198.51.100.7", identities[3])
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestAuthLimiter_Registration(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	auth := NewAuthLimiter(limiter, DefaultAuthPolicies())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		decision, err := auth.CheckRegistration(ctx, "203.0.113.9", "new@x.com")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}

	decision, err := auth.CheckRegistration(ctx, "203.0.113.9", "new@x.com")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}
