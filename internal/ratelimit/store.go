// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// staleWindowFactor is how many window lengths an untouched entry survives
// before the sweep removes it. Generous on purpose: the sweep is garbage
// collection, not a correctness mechanism.
const staleWindowFactor = 3

// Store owns the key-to-window-counter state and the concurrency discipline
// around it. Increment is a single atomic increment-and-compare so two
// concurrent callers cannot both observe headroom and over-admit.
type Store interface {
	// Increment evaluates the policy for key at now, consuming quota when
	// the request is admitted.
	Increment(ctx context.Context, key string, policy Policy, now time.Time) (Decision, error)

	// Peek evaluates the policy for key without mutating state.
	Peek(ctx context.Context, key string, policy Policy, now time.Time) (Decision, error)

	// Sweep removes entries stale beyond a generous multiple of their
	// window and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// windowEntry tracks one count within one fixed window.
// The count only increments within [windowStart, windowStart+window); past
// that the entry is logically expired and reset on next access.
type windowEntry struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

func (e *windowEntry) expired(now time.Time) bool {
	return now.Sub(e.windowStart) >= e.window
}

// MemoryStore implements Store with a mutex-guarded map.
// Suitable for single-instance deployments; state is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*windowEntry),
	}
}

// Increment evaluates and consumes quota for key under one lock.
func (s *MemoryStore) Increment(_ context.Context, key string, policy Policy, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.expired(now) {
		entry = &windowEntry{windowStart: now, window: policy.Window}
		s.entries[key] = entry
	}

	decision := Decision{
		ResetAt: entry.windowStart.Add(entry.window),
	}

	if entry.count < policy.MaxRequests {
		entry.count++
		decision.Allowed = true
	}
	decision.Remaining = remaining(policy.MaxRequests, entry.count)

	return decision, nil
}

// Peek evaluates the policy for key without consuming quota.
func (s *MemoryStore) Peek(_ context.Context, key string, policy Policy, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.expired(now) {
		// Fresh window: nothing is persisted on a probe.
		return Decision{
			Allowed:   policy.MaxRequests > 0,
			Remaining: policy.MaxRequests,
			ResetAt:   now.Add(policy.Window),
		}, nil
	}

	return Decision{
		Allowed:   entry.count < policy.MaxRequests,
		Remaining: remaining(policy.MaxRequests, entry.count),
		ResetAt:   entry.windowStart.Add(entry.window),
	}, nil
}

// Sweep removes entries untouched for staleWindowFactor windows.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if now.Sub(entry.windowStart) >= time.Duration(staleWindowFactor)*entry.window {
			delete(s.entries, key)
			removed++
		}
	}

	return removed, nil
}

// Len returns the number of tracked keys (for tests and diagnostics).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func remaining(maxRequests, count int) int {
	if count >= maxRequests {
		return 0
	}
	return maxRequests - count
}
