// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package contentguard enforces per-content-type posting limits.
//
// Two independent layers gate every action:
//
//  1. A cooldown: a minimum elapsed time between consecutive actions of the
//     same type by the same subject. This stops rapid-fire double submits
//     that window counters alone would admit at window boundaries.
//  2. Tiered fixed windows: every tier in the content type's policy set
//     (e.g. threads: 3/hour AND 10/day) must have headroom.
//
// Check and Record are deliberately split so a request that fails
// validation downstream of the rate check does not burn the subject's
// quota. Record re-validates under the same lock Check uses, so two
// concurrent requests from one subject can never both consume the last
// slot:
//
//	if d := guard.Check(userID, contentguard.TypeThread); !d.Allowed {
//	    // reject: d.Reason, d.WaitSeconds / d.ResetAt
//	}
//	// ... validate, persist the thread ...
//	if d := guard.Record(userID, contentguard.TypeThread); !d.Allowed {
//	    // lost the race to a concurrent request; reject the same way
//	}
package contentguard
