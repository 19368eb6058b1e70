// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package supervisor builds the suture service tree that owns every
// long-running goroutine in the process.
//
// Two layers hang off the root: api (the HTTP server) and maintenance
// (the sweepers that reclaim stale limiter windows, elapsed cooldowns,
// and expired audit entries). Failure isolation is the point: a
// panicking sweeper restarts with backoff without taking the API down,
// and shutdown is a single context cancellation that drains the whole
// tree.
package supervisor
