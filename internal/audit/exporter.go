// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package audit

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// JSONExporter exports entries as indented JSON.
type JSONExporter struct{}

// Export renders entries for download or offline analysis.
func (e *JSONExporter) Export(entries []Entry) ([]byte, error) {
	return json.MarshalIndent(entries, "", "  ")
}

// CEFExporter exports entries in Common Event Format for SIEM ingestion.
type CEFExporter struct {
	DeviceVendor  string
	DeviceProduct string
	DeviceVersion string
}

// NewCEFExporter creates a CEF exporter with Sentinel defaults.
func NewCEFExporter() *CEFExporter {
	return &CEFExporter{
		DeviceVendor:  "IndieVault",
		DeviceProduct: "Sentinel",
		DeviceVersion: "1.0",
	}
}

// Export renders entries, one CEF line each.
// CEF: Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension
func (e *CEFExporter) Export(entries []Entry) ([]byte, error) {
	lines := make([]string, 0, len(entries))

	for idx := range entries {
		entry := &entries[idx]
		line := fmt.Sprintf("CEF:0|%s|%s|%s|%s|%s|%d|%s",
			cefEscape(e.DeviceVendor),
			cefEscape(e.DeviceProduct),
			cefEscape(e.DeviceVersion),
			cefEscape(string(entry.Type)),
			cefEscape(string(entry.Type)),
			cefSeverity(entry.Severity),
			e.extension(entry),
		)
		lines = append(lines, line)
	}

	return []byte(strings.Join(lines, "\n")), nil
}

// cefSeverity maps our severity to the CEF 0-10 scale.
func cefSeverity(severity Severity) int {
	switch severity {
	case SeverityInfo:
		return 3
	case SeverityWarning:
		return 5
	case SeverityError:
		return 7
	case SeverityCritical:
		return 10
	default:
		return 0
	}
}

// extension builds the CEF extension key-value string.
func (e *CEFExporter) extension(entry *Entry) string {
	parts := []string{
		fmt.Sprintf("rt=%d", entry.Timestamp.UnixMilli()),
		"src=" + cefEscape(entry.IP),
		"outcome=" + cefOutcome(entry.Success),
		"externalId=" + cefEscape(entry.ID),
	}

	if entry.SubjectID != "" {
		parts = append(parts, "suid="+cefEscape(entry.SubjectID))
	}
	if entry.Endpoint != "" {
		parts = append(parts, "request="+cefEscape(entry.Endpoint))
	}
	if entry.UserAgent != "" {
		parts = append(parts, "requestClientApplication="+cefEscape(entry.UserAgent))
	}

	return strings.Join(parts, " ")
}

func cefOutcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// cefEscape escapes the characters CEF reserves.
func cefEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "=", "\\=")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
