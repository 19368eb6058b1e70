// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package api

import (
	"net/http"

	"github.com/indievault/sentinel/internal/abusescore"
	"github.com/indievault/sentinel/internal/audit"
	"github.com/indievault/sentinel/internal/contentguard"
	"github.com/indievault/sentinel/internal/logging"
	"github.com/indievault/sentinel/internal/ratelimit"
)

// Handler serves the mitigation endpoints.
type Handler struct {
	auth       *ratelimit.AuthLimiter
	guard      *contentguard.Guard
	scorerOpts abusescore.Options
	audit      *audit.Log
}

// NewHandler wires the core components into the HTTP surface.
func NewHandler(auth *ratelimit.AuthLimiter, guard *contentguard.Guard, scorerOpts abusescore.Options, auditLog *audit.Log) *Handler {
	return &Handler{
		auth:       auth,
		guard:      guard,
		scorerOpts: scorerOpts,
		audit:      auditLog,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// LoginCheck evaluates the login throttle for an IP and identity.
// Denials are data, not HTTP errors: the caller gets a 200 with
// allowed=false and decides how to respond to its user.
func (h *Handler) LoginCheck(w http.ResponseWriter, r *http.Request) {
	var req LoginCheckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	decision, err := h.auth.CheckLogin(r.Context(), req.IP, req.Identity)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "rate limit check failed", err)
		return
	}

	if !decision.Allowed {
		h.audit.Record(audit.EventLoginRateLimited, audit.Context{
			SubjectID: ratelimit.NormalizeIdentity(req.Identity),
			IP:        req.IP,
			Endpoint:  r.URL.Path,
			Details:   map[string]any{"reset_at": decision.ResetAt},
		})
	}

	respondJSON(w, r, http.StatusOK, decision)
}

// RegistrationCheck evaluates the registration throttle.
func (h *Handler) RegistrationCheck(w http.ResponseWriter, r *http.Request) {
	var req RegistrationCheckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	decision, err := h.auth.CheckRegistration(r.Context(), req.IP, req.Identity)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "rate limit check failed", err)
		return
	}

	if !decision.Allowed {
		h.audit.Record(audit.EventRegistrationRateLimit, audit.Context{
			SubjectID: ratelimit.NormalizeIdentity(req.Identity),
			IP:        req.IP,
			Endpoint:  r.URL.Path,
			Details:   map[string]any{"reset_at": decision.ResetAt},
		})
	}

	respondJSON(w, r, http.StatusOK, decision)
}

// ContentCheck is the read-only preflight for a content submission.
// Nothing is consumed; the caller must follow up with ContentRecord
// after the submission actually persists.
func (h *Handler) ContentCheck(w http.ResponseWriter, r *http.Request) {
	var req ContentActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	decision := h.guard.Check(req.SubjectID, contentguard.ContentType(req.ContentType))
	if decision.Reason == contentguard.ReasonUnknownType {
		respondError(w, r, http.StatusBadRequest, "UNKNOWN_CONTENT_TYPE",
			"no policy for content type "+sanitizeLogValue(req.ContentType), nil)
		return
	}

	respondJSON(w, r, http.StatusOK, decision)
}

// ContentRecord consumes quota for a persisted submission. The decision
// is re-validated, so a caller that skipped ContentCheck, or lost a race
// since calling it, still cannot exceed policy.
func (h *Handler) ContentRecord(w http.ResponseWriter, r *http.Request) {
	var req ContentActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contentType := contentguard.ContentType(req.ContentType)
	decision := h.guard.Record(req.SubjectID, contentType)
	if decision.Reason == contentguard.ReasonUnknownType {
		respondError(w, r, http.StatusBadRequest, "UNKNOWN_CONTENT_TYPE",
			"no policy for content type "+sanitizeLogValue(req.ContentType), nil)
		return
	}

	h.audit.Record(contentEventType(decision), audit.Context{
		SubjectID: req.SubjectID,
		IP:        req.IP,
		Endpoint:  r.URL.Path,
		Details: map[string]any{
			"content_type": req.ContentType,
			"reason":       decision.Reason,
		},
		Success: decision.Allowed,
	})

	respondJSON(w, r, http.StatusOK, decision)
}

// contentEventType maps a guard decision to its audit event.
func contentEventType(decision contentguard.Decision) audit.EventType {
	switch {
	case decision.Allowed:
		return audit.EventContentPosted
	case decision.Reason == contentguard.ReasonCooldown:
		return audit.EventContentCooldown
	default:
		return audit.EventContentRateLimited
	}
}

// ContentLimits reports a subject's standing across every content type.
func (h *Handler) ContentLimits(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subject_id")
	if subjectID == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "subject_id is required", nil)
		return
	}

	respondJSON(w, r, http.StatusOK, h.guard.Limits(subjectID))
}

// ScoreText runs the spam scorer over submitted text and audits any
// classification above clean.
func (h *Handler) ScoreText(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result := abusescore.Score(req.Text, h.scorerOpts)

	if eventType, flagged := scoreEventType(result.Category); flagged {
		h.audit.Record(eventType, audit.Context{
			SubjectID: req.SubjectID,
			IP:        req.IP,
			Endpoint:  r.URL.Path,
			Details: map[string]any{
				"score":   result.Score,
				"reasons": result.Reasons,
			},
		})
		logging.Debug().
			Int("score", result.Score).
			Str("category", string(result.Category)).
			Msg("Text flagged by scorer")
	}

	respondJSON(w, r, http.StatusOK, result)
}

// scoreEventType maps a scorer category to its audit event; clean text
// is not audited.
func scoreEventType(category abusescore.Category) (audit.EventType, bool) {
	switch category {
	case abusescore.CategoryDefiniteAbuse:
		return audit.EventAbuseDetected, true
	case abusescore.CategoryLikelyAbuse:
		return audit.EventSpamBlocked, true
	case abusescore.CategorySuspicious:
		return audit.EventSpamSuspicious, true
	default:
		return "", false
	}
}

// RecordEvent records a platform-observed audit event, such as a login
// success or a submitted abuse report. Unknown event types are accepted
// and default to info severity.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry := h.audit.Record(audit.EventType(req.Type), audit.Context{
		SubjectID: req.SubjectID,
		SessionID: req.SessionID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		Endpoint:  req.Endpoint,
		Details:   req.Details,
		Success:   req.Success,
	})

	respondJSON(w, r, http.StatusCreated, entry)
}
