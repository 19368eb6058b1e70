// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New()

// LoginCheckRequest asks whether a login attempt may proceed.
type LoginCheckRequest struct {
	IP       string `json:"ip" validate:"required"`
	Identity string `json:"identity" validate:"required"`
}

// RegistrationCheckRequest asks whether a registration may proceed.
type RegistrationCheckRequest struct {
	IP       string `json:"ip" validate:"required"`
	Identity string `json:"identity" validate:"required"`
}

// ContentActionRequest asks about, or records, a content submission.
type ContentActionRequest struct {
	SubjectID   string `json:"subject_id" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	IP          string `json:"ip"`
}

// ScoreRequest submits text for spam scoring.
type ScoreRequest struct {
	Text      string `json:"text" validate:"required"`
	SubjectID string `json:"subject_id"`
	IP        string `json:"ip"`
}

// EventRequest records a platform-originated audit event, for outcomes
// only the caller can observe (a successful login, a submitted report).
type EventRequest struct {
	Type      string         `json:"type" validate:"required"`
	SubjectID string         `json:"subject_id"`
	SessionID string         `json:"session_id"`
	IP        string         `json:"ip"`
	UserAgent string         `json:"user_agent"`
	Endpoint  string         `json:"endpoint"`
	Details   map[string]any `json:"details"`
	Success   bool           `json:"success"`
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return false
	}
	return true
}
