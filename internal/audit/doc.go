// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package audit provides the capped, queryable security audit log.
//
// Every rate-limit decision, spam classification, and authentication
// outcome is recorded here for forensics. Entries are append-only: once
// created they are never mutated, and the only removals are the
// capacity-bound batch eviction of the oldest entries and the explicit
// older-than-cutoff purge. Query results are therefore always a
// consistent snapshot at call time.
//
// Record never fails from the caller's perspective: logging must not
// break the feature it observes, so internal faults (for example a
// failing archive write) degrade to a structured log line and the
// in-memory entry still lands.
//
//	log := audit.NewLog(audit.Config{MaxEntries: 10000})
//	log.Record(audit.EventLoginFailure, audit.Context{
//	    SubjectID: userID,
//	    IP:        clientIP,
//	    Endpoint:  "/api/v1/auth/login",
//	})
//
// Severity is derived from the event type via a static, total table;
// unmapped types default to info.
//
// The optional Badger archive mirrors entries to disk for post-restart
// forensics. The in-memory log remains the authority; losing rate-limit
// and audit state on restart is an accepted trade-off.
package audit
