// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package audit

import "time"

// EventType categorizes audit events.
type EventType string

const (
	// Authentication events
	EventLoginSuccess          EventType = "login.success"
	EventLoginFailure          EventType = "login.failure"
	EventLoginRateLimited      EventType = "login.rate_limited"
	EventRegistrationSuccess   EventType = "registration.success"
	EventRegistrationRateLimit EventType = "registration.rate_limited"

	// Content events
	EventContentPosted      EventType = "content.posted"
	EventContentRateLimited EventType = "content.rate_limited"
	EventContentCooldown    EventType = "content.cooldown"

	// Abuse scoring events
	EventSpamSuspicious EventType = "spam.suspicious"
	EventSpamBlocked    EventType = "spam.blocked"
	EventAbuseDetected  EventType = "abuse.detected"

	// Moderation and administrative events
	EventReportSubmitted EventType = "report.submitted"
	EventAuditPurged     EventType = "audit.purged"
	EventAdminAction     EventType = "admin.action"
)

// Severity is the four-level classification assigned per event type.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// severityTable statically maps every event type to its severity.
// The mapping is total over the constants above; unmapped types default
// to info in SeverityOf.
var severityTable = map[EventType]Severity{
	EventLoginSuccess:          SeverityInfo,
	EventLoginFailure:          SeverityWarning,
	EventLoginRateLimited:      SeverityWarning,
	EventRegistrationSuccess:   SeverityInfo,
	EventRegistrationRateLimit: SeverityWarning,

	EventContentPosted:      SeverityInfo,
	EventContentRateLimited: SeverityWarning,
	EventContentCooldown:    SeverityInfo,

	EventSpamSuspicious: SeverityWarning,
	EventSpamBlocked:    SeverityError,
	EventAbuseDetected:  SeverityCritical,

	EventReportSubmitted: SeverityInfo,
	EventAuditPurged:     SeverityWarning,
	EventAdminAction:     SeverityWarning,
}

// suspiciousTypes are the event types counted by SuspiciousActivityCount
// and the per-IP aggregation in Summary.
var suspiciousTypes = map[EventType]struct{}{
	EventLoginFailure:          {},
	EventLoginRateLimited:      {},
	EventRegistrationRateLimit: {},
	EventContentRateLimited:    {},
	EventSpamBlocked:           {},
	EventAbuseDetected:         {},
}

// SeverityOf returns the static severity for an event type.
// Pure: the same type always yields the same severity.
func SeverityOf(eventType EventType) Severity {
	if severity, ok := severityTable[eventType]; ok {
		return severity
	}
	return SeverityInfo
}

// IsSuspicious reports whether an event type counts toward per-IP
// suspicious-activity aggregation.
func IsSuspicious(eventType EventType) bool {
	_, ok := suspiciousTypes[eventType]
	return ok
}

// Entry is one immutable audit record.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Severity  Severity       `json:"severity"`
	SubjectID string         `json:"subject_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	IP        string         `json:"ip"`
	UserAgent string         `json:"user_agent,omitempty"`
	Endpoint  string         `json:"endpoint,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Success   bool           `json:"success"`
}

// Context carries the caller-supplied request context for a new entry.
// The request-handling layer fills this in; Sentinel treats subject and
// IP as opaque inputs.
type Context struct {
	SubjectID string
	SessionID string
	IP        string
	UserAgent string
	Endpoint  string
	Details   map[string]any
	Success   bool
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	// Limit caps the number of returned entries; 0 means no cap.
	Limit int

	// SubjectID matches entries for one subject.
	SubjectID string

	// Type matches one event type.
	Type EventType

	// Severity matches one severity level.
	Severity Severity

	// Since excludes entries older than this time.
	Since time.Time
}

// IPCount pairs an IP with its suspicious-event count.
type IPCount struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

// Summary is the rolling aggregation served to the reporting surface.
type Summary struct {
	WindowHours    int               `json:"window_hours"`
	TotalEvents    int               `json:"total_events"`
	ByType         map[EventType]int `json:"by_type"`
	BySeverity     map[Severity]int  `json:"by_severity"`
	SuspiciousIPs  []IPCount         `json:"suspicious_ips"`
	RecentCritical []Entry           `json:"recent_critical"`
}
