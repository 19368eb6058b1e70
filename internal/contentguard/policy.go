// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package contentguard

import (
	"time"

	"github.com/indievault/sentinel/internal/ratelimit"
)

// ContentType identifies a guarded category of user-generated content.
type ContentType string

const (
	TypeThread        ContentType = "thread"
	TypePost          ContentType = "post"
	TypeReview        ContentType = "review"
	TypeDevlogComment ContentType = "devlog_comment"
	TypeReport        ContentType = "report"
	TypeTip           ContentType = "tip"
	TypeBetaFeedback  ContentType = "beta_feedback"
)

// Tier is one named window/threshold pair within a content type's policy set.
type Tier struct {
	// Name labels the tier in decisions and status output ("hourly", "daily").
	Name string `json:"name" koanf:"name"`

	// Policy is the tier's fixed-window limit.
	Policy ratelimit.Policy `json:"policy" koanf:"policy"`
}

// TypePolicy is the full policy set for one content type.
// Tiers are evaluated in order; a denial reports the first-listed tier that
// failed, so list the shortest window first.
type TypePolicy struct {
	Tiers    []Tier        `json:"tiers" koanf:"tiers"`
	Cooldown time.Duration `json:"cooldown" koanf:"cooldown"`
}

// PolicyTable maps content types to their policy sets. It is process-wide
// static configuration, never mutated after startup.
type PolicyTable map[ContentType]TypePolicy

// DefaultPolicyTable returns the production posting limits.
func DefaultPolicyTable() PolicyTable {
	return PolicyTable{
		TypeThread: {
			Tiers: []Tier{
				{Name: "hourly", Policy: ratelimit.Policy{MaxRequests: 3, Window: time.Hour}},
				{Name: "daily", Policy: ratelimit.Policy{MaxRequests: 10, Window: 24 * time.Hour}},
			},
			Cooldown: 60 * time.Second,
		},
		TypePost: {
			Tiers: []Tier{
				{Name: "15min", Policy: ratelimit.Policy{MaxRequests: 10, Window: 15 * time.Minute}},
				{Name: "hourly", Policy: ratelimit.Policy{MaxRequests: 50, Window: time.Hour}},
			},
			Cooldown: 10 * time.Second,
		},
		TypeReview: {
			Tiers: []Tier{
				{Name: "daily", Policy: ratelimit.Policy{MaxRequests: 5, Window: 24 * time.Hour}},
			},
			Cooldown: 30 * time.Second,
		},
		TypeDevlogComment: {
			Tiers: []Tier{
				{Name: "hourly", Policy: ratelimit.Policy{MaxRequests: 15, Window: time.Hour}},
			},
			Cooldown: 10 * time.Second,
		},
		TypeReport: {
			Tiers: []Tier{
				{Name: "daily", Policy: ratelimit.Policy{MaxRequests: 10, Window: 24 * time.Hour}},
			},
			Cooldown: 30 * time.Second,
		},
		TypeTip: {
			Tiers: []Tier{
				{Name: "daily", Policy: ratelimit.Policy{MaxRequests: 20, Window: 24 * time.Hour}},
			},
			Cooldown: 5 * time.Second,
		},
		TypeBetaFeedback: {
			Tiers: []Tier{
				{Name: "daily", Policy: ratelimit.Policy{MaxRequests: 20, Window: 24 * time.Hour}},
			},
			Cooldown: 30 * time.Second,
		},
	}
}

// Types returns the content types present in the table. Order is not
// significant; callers needing stable output sort the result.
func (t PolicyTable) Types() []ContentType {
	types := make([]ContentType, 0, len(t))
	for ct := range t {
		types = append(types, ct)
	}
	return types
}
