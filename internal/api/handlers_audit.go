// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/indievault/sentinel/internal/audit"
)

// maxQueryLimit caps how many entries one audit query may return.
const maxQueryLimit = 1000

// AuditEvents queries the audit log, newest first.
//
// Query parameters: limit, subject_id, type, severity, since (RFC3339).
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.Filter{
		Limit:     clampLimit(getIntParam(q.Get("limit"), 100)),
		SubjectID: q.Get("subject_id"),
		Type:      audit.EventType(q.Get("type")),
		Severity:  audit.Severity(q.Get("severity")),
	}

	if since := q.Get("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
				"since must be RFC3339", err)
			return
		}
		filter.Since = parsed
	}

	respondJSON(w, r, http.StatusOK, h.audit.Query(filter))
}

// AuditSummary aggregates the trailing window (default 24 hours).
func (h *Handler) AuditSummary(w http.ResponseWriter, r *http.Request) {
	hours := getIntParam(r.URL.Query().Get("hours"), 24)
	respondJSON(w, r, http.StatusOK, h.audit.Summary(hours))
}

// AuditSuspicious reports the suspicious-event count for one IP over
// the trailing window (default 24 hours).
func (h *Handler) AuditSuspicious(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ip := q.Get("ip")
	if ip == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "ip is required", nil)
		return
	}

	hours := getIntParam(q.Get("hours"), 24)
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	respondJSON(w, r, http.StatusOK, map[string]any{
		"ip":           ip,
		"window_hours": hours,
		"count":        h.audit.SuspiciousActivityCount(ip, since),
	})
}

// AuditExport streams the filtered log in json (default) or cef format
// for SIEM ingestion.
func (h *Handler) AuditExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.Filter{
		Limit:    clampLimit(getIntParam(q.Get("limit"), maxQueryLimit)),
		Type:     audit.EventType(q.Get("type")),
		Severity: audit.Severity(q.Get("severity")),
	}
	entries := h.audit.Query(filter)

	format := q.Get("format")
	switch format {
	case "", "json":
		data, err := (&audit.JSONExporter{}).Export(entries)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "export failed", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-export.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "cef":
		data, err := audit.NewCEFExporter().Export(entries)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "export failed", err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-export.cef"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
			"format must be json or cef", nil)
	}
}

// getIntParam parses an integer query parameter with a default.
func getIntParam(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
