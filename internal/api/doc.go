// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package api exposes the mitigation core over HTTP using the Chi
// router.
//
// The platform's application servers are the only intended callers:
// they consult Sentinel before handling a login, registration, or
// content submission, then report the outcome back. Sentinel never
// sees credentials or content bodies beyond the text being scored;
// subjects and IPs are opaque strings supplied by the caller.
//
// The transport-level httprate limit in front of every route is
// defense in depth against a runaway caller. It is coarse and
// per-client-IP, unrelated to the domain policies the handlers
// enforce.
package api
