// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package abusescore scores free-text content against a weighted rule set.
//
// Score is a pure function: no I/O, no hidden state, deterministic for a
// given input and the static rule tables. Rules are additive and order
// independent; the total is capped at 100:
//
//	result := abusescore.Score(text, abusescore.DefaultOptions())
//	if result.IsSpam {
//	    // block and audit
//	}
//
// Classification is a best-effort heuristic gate, not a classifier:
// scores of 30-49 are flagged suspicious but not blocked (benefit of the
// doubt, logged for forensics), 50+ is spam.
//
// IsDefiniteAbuse is a cheap short-circuit for hot paths that cannot
// afford the full scoring pass.
package abusescore
