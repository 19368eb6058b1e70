// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package contentguard

import (
	"sort"
	"sync"
	"time"

	"github.com/indievault/sentinel/internal/logging"
	"github.com/indievault/sentinel/internal/metrics"
)

// Denial reasons carried on Decision.Reason.
const (
	ReasonCooldown      = "cooldown"
	ReasonTierExhausted = "tier_exhausted"
	ReasonUnknownType   = "unknown_content_type"
)

// Decision is the outcome of a guard check or record.
type Decision struct {
	// Allowed reports whether the action may proceed.
	Allowed bool `json:"allowed"`

	// Reason classifies a denial; empty when allowed.
	Reason string `json:"reason,omitempty"`

	// Tier names the first-listed exhausted tier on a tier denial.
	Tier string `json:"tier,omitempty"`

	// WaitSeconds is the whole seconds remaining on a cooldown denial,
	// rounded up.
	WaitSeconds int `json:"wait_seconds,omitempty"`

	// ResetAt is when the exhausted tier's window ends.
	// Zero unless Reason is ReasonTierExhausted.
	ResetAt time.Time `json:"reset_at"`
}

// TierStatus describes one tier's headroom for status display.
type TierStatus struct {
	Name      string    `json:"name"`
	Max       int       `json:"max"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// TypeStatus describes a subject's standing for one content type.
type TypeStatus struct {
	ContentType ContentType  `json:"content_type"`
	CanPost     bool         `json:"can_post"`
	Tiers       []TierStatus `json:"tiers"`
}

// tierWindow tracks one subject's count within one tier's fixed window.
type tierWindow struct {
	count       int
	windowStart time.Time
}

// Guard enforces the policy table. One mutex guards both the tier windows
// and the cooldown table so Check and Record see a consistent snapshot.
type Guard struct {
	policies PolicyTable

	mu        sync.Mutex
	windows   map[string]*tierWindow // key: contentType|tier|subject
	cooldowns map[string]time.Time   // key: contentType|subject -> last action

	now func() time.Time
}

// New creates a guard over the given policy table.
func New(policies PolicyTable) *Guard {
	return &Guard{
		policies:  policies,
		windows:   make(map[string]*tierWindow),
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Check evaluates the cooldown and every tier for the subject without
// consuming quota. All tiers are evaluated even after one fails, but the
// denial reports the first-listed tier so the caller can surface the
// shortest-window limit.
func (g *Guard) Check(subjectID string, contentType ContentType) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	decision := g.evaluate(subjectID, contentType, g.now())
	metrics.ContentGuardChecks.WithLabelValues(string(contentType), outcomeLabel(decision)).Inc()

	return decision
}

// Record consumes quota after the guarded action succeeded. It re-validates
// under the same lock Check uses; when a concurrent request consumed the
// last slot between Check and Record, the denial is returned and nothing is
// incremented.
func (g *Guard) Record(subjectID string, contentType ContentType) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	decision := g.evaluate(subjectID, contentType, now)
	if !decision.Allowed {
		logging.Warn().
			Str("subject", subjectID).
			Str("content_type", string(contentType)).
			Str("reason", decision.Reason).
			Msg("Record lost race to concurrent request")
		return decision
	}

	policy := g.policies[contentType]
	for _, tier := range policy.Tiers {
		window := g.window(subjectID, contentType, tier, now)
		window.count++
	}
	g.cooldowns[cooldownKey(subjectID, contentType)] = now

	metrics.ContentGuardRecords.WithLabelValues(string(contentType)).Inc()

	return decision
}

// Limits returns the subject's standing for every configured content type,
// sorted by type name. Read-only: nothing is created or mutated.
func (g *Guard) Limits(subjectID string) []TypeStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	statuses := make([]TypeStatus, 0, len(g.policies))

	for contentType, policy := range g.policies {
		status := TypeStatus{
			ContentType: contentType,
			CanPost:     g.evaluate(subjectID, contentType, now).Allowed,
			Tiers:       make([]TierStatus, 0, len(policy.Tiers)),
		}

		for _, tier := range policy.Tiers {
			ts := TierStatus{
				Name:      tier.Name,
				Max:       tier.Policy.MaxRequests,
				Remaining: tier.Policy.MaxRequests,
				ResetAt:   now.Add(tier.Policy.Window),
			}
			if window, ok := g.windows[windowKey(subjectID, contentType, tier)]; ok {
				if now.Sub(window.windowStart) < tier.Policy.Window {
					ts.Remaining = tier.Policy.MaxRequests - window.count
					if ts.Remaining < 0 {
						ts.Remaining = 0
					}
					ts.ResetAt = window.windowStart.Add(tier.Policy.Window)
				}
			}
			status.Tiers = append(status.Tiers, ts)
		}

		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ContentType < statuses[j].ContentType
	})

	return statuses
}

// Sweep removes expired windows and elapsed cooldowns, returning how many
// entries were dropped. Takes the hot-path lock briefly; run from a
// background task.
func (g *Guard) Sweep() int {
	start := time.Now()

	g.mu.Lock()
	now := g.now()
	removed := 0

	for key, window := range g.windows {
		tierWindowLen, ok := g.windowLength(key)
		if !ok || now.Sub(window.windowStart) >= staleFactor*tierWindowLen {
			delete(g.windows, key)
			removed++
		}
	}
	for key, lastAction := range g.cooldowns {
		cooldown, ok := g.cooldownLength(key)
		if !ok || now.Sub(lastAction) >= cooldown {
			delete(g.cooldowns, key)
			removed++
		}
	}
	g.mu.Unlock()

	metrics.RecordSweep("contentguard", removed, time.Since(start))
	if removed > 0 {
		logging.Debug().Int("removed", removed).Msg("Swept stale content guard entries")
	}

	return removed
}

// staleFactor is how many window lengths an expired tier window survives
// before the sweep removes it.
const staleFactor = 3

// evaluate runs the cooldown check then every tier check. Callers hold g.mu.
func (g *Guard) evaluate(subjectID string, contentType ContentType, now time.Time) Decision {
	policy, ok := g.policies[contentType]
	if !ok {
		return Decision{Reason: ReasonUnknownType}
	}

	// Cooldown precedes the window tiers.
	if lastAction, ok := g.cooldowns[cooldownKey(subjectID, contentType)]; ok {
		elapsed := now.Sub(lastAction)
		if elapsed < policy.Cooldown {
			wait := policy.Cooldown - elapsed
			return Decision{
				Reason:      ReasonCooldown,
				WaitSeconds: int((wait + time.Second - 1) / time.Second),
			}
		}
	}

	var denial *Decision
	for _, tier := range policy.Tiers {
		window, ok := g.windows[windowKey(subjectID, contentType, tier)]
		if !ok || now.Sub(window.windowStart) >= tier.Policy.Window {
			continue // fresh window, has headroom
		}
		if window.count >= tier.Policy.MaxRequests && denial == nil {
			denial = &Decision{
				Reason:  ReasonTierExhausted,
				Tier:    tier.Name,
				ResetAt: window.windowStart.Add(tier.Policy.Window),
			}
		}
	}
	if denial != nil {
		return *denial
	}

	return Decision{Allowed: true}
}

// window returns the live window for a tier, resetting it when expired.
// Callers hold g.mu.
func (g *Guard) window(subjectID string, contentType ContentType, tier Tier, now time.Time) *tierWindow {
	key := windowKey(subjectID, contentType, tier)
	window, ok := g.windows[key]
	if !ok || now.Sub(window.windowStart) >= tier.Policy.Window {
		window = &tierWindow{windowStart: now}
		g.windows[key] = window
	}
	return window
}

// windowLength recovers the tier window length from a windows-map key.
// Callers hold g.mu.
func (g *Guard) windowLength(key string) (time.Duration, bool) {
	contentType, tierName, ok := splitWindowKey(key)
	if !ok {
		return 0, false
	}
	policy, ok := g.policies[contentType]
	if !ok {
		return 0, false
	}
	for _, tier := range policy.Tiers {
		if tier.Name == tierName {
			return tier.Policy.Window, true
		}
	}
	return 0, false
}

// cooldownLength recovers the cooldown for a cooldowns-map key.
// Callers hold g.mu.
func (g *Guard) cooldownLength(key string) (time.Duration, bool) {
	contentType, ok := splitCooldownKey(key)
	if !ok {
		return 0, false
	}
	policy, ok := g.policies[contentType]
	if !ok {
		return 0, false
	}
	return policy.Cooldown, true
}

func outcomeLabel(d Decision) string {
	if d.Allowed {
		return "allowed"
	}
	return d.Reason
}
