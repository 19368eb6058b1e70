// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package contentguard

import "strings"

// sep separates key segments. A unit separator cannot appear in content
// type or tier names and keeps subject IDs (which may contain any
// printable character) unambiguous.
const sep = "\x1f"

func windowKey(subjectID string, contentType ContentType, tier Tier) string {
	return string(contentType) + sep + tier.Name + sep + subjectID
}

func cooldownKey(subjectID string, contentType ContentType) string {
	return string(contentType) + sep + subjectID
}

// splitWindowKey extracts the content type and tier name from a window key.
func splitWindowKey(key string) (ContentType, string, bool) {
	parts := strings.SplitN(key, sep, 3)
	if len(parts) != 3 {
		return "", "", false
	}
	return ContentType(parts[0]), parts[1], true
}

// splitCooldownKey extracts the content type from a cooldown key.
func splitCooldownKey(key string) (ContentType, bool) {
	parts := strings.SplitN(key, sep, 2)
	if len(parts) != 2 {
		return "", false
	}
	return ContentType(parts[0]), true
}
