// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/indievault/sentinel/internal/logging"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is the structured error payload.
//
// Common codes: VALIDATION_ERROR, UNKNOWN_CONTENT_TYPE, NOT_FOUND,
// INTERNAL_ERROR.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// respondJSON writes the envelope with proper headers.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	response := &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: requestIDFrom(r),
		},
	}
	writeEnvelope(w, status, response)
}

// respondError writes an error envelope. The wrapped err, if any, goes
// to the log only; clients see just code and message.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	response := &APIResponse{
		Status: "error",
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: requestIDFrom(r),
		},
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
	writeEnvelope(w, status, response)
}

func writeEnvelope(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Err(err).Msg("Failed to write JSON response")
	}
}

// sanitizeLogValue strips control characters so attacker-controlled
// strings cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			b.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
