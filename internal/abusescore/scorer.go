// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package abusescore

import (
	"strings"
	"time"
	"unicode"

	"github.com/indievault/sentinel/internal/metrics"
)

// Category classifies a scored text.
type Category string

const (
	CategoryClean         Category = "clean"
	CategorySuspicious    Category = "suspicious"
	CategoryLikelyAbuse   Category = "likely_abuse"
	CategoryDefiniteAbuse Category = "definite_abuse"
)

// Classification thresholds.
const (
	thresholdSuspicious    = 30
	thresholdLikelyAbuse   = 50
	thresholdDefiniteAbuse = 70
)

// Options tunes a scoring pass.
type Options struct {
	// CheckURLs enables the link-count, shortener, and blocklist rules.
	CheckURLs bool `json:"check_urls" koanf:"check_urls"`

	// MaxLinks is the number of URLs tolerated before penalizing.
	MaxLinks int `json:"max_links" koanf:"max_links"`

	// MinLength penalizes content shorter than this many characters.
	MinLength int `json:"min_length" koanf:"min_length"`
}

// DefaultOptions returns the production scoring options.
func DefaultOptions() Options {
	return Options{
		CheckURLs: true,
		MaxLinks:  3,
		MinLength: 10,
	}
}

// Result is the outcome of a scoring pass. Immutable, derived entirely
// from the input text and the static rule tables.
type Result struct {
	// Score is the additive rule total, capped at 100.
	Score int `json:"score"`

	// Reasons lists one human-readable tag per triggered rule,
	// deduplicated.
	Reasons []string `json:"reasons"`

	// Category is the threshold classification of Score.
	Category Category `json:"category"`

	// IsSpam reports whether the content should be blocked
	// (likely_abuse or definite_abuse).
	IsSpam bool `json:"is_spam"`
}

// Score evaluates text against the weighted rule set. Pure and
// deterministic; absent or empty text degrades to a minimum-length
// violation rather than an error.
func Score(text string, opts Options) Result {
	start := time.Now()

	score := 0
	reasons := make([]string, 0, 4)
	addReason := func(tag string) {
		for _, r := range reasons {
			if r == tag {
				return
			}
		}
		reasons = append(reasons, tag)
	}

	lower := strings.ToLower(text)

	// Keyword phrases, capped contribution.
	keywordScore := 0
	for _, phrase := range spamPhrases {
		if strings.Contains(lower, phrase) {
			keywordScore += keywordWeight
			addReason(ReasonPromotionalPhrase)
		}
	}
	if keywordScore > keywordCap {
		keywordScore = keywordCap
	}
	score += keywordScore

	// URL rules.
	if opts.CheckURLs {
		urls := urlPattern.FindAllString(text, -1)
		if len(urls) > opts.MaxLinks {
			score += linkCountWeight
			addReason(ReasonTooManyLinks)
		}
		for _, url := range urls {
			host := extractHost(url)
			if matchesHost(host, shortenerHosts) {
				score += shortenerWeight
				addReason(ReasonLinkShortener)
			}
			if matchesHost(host, blockedHosts) {
				score += blockedHostWeight
				addReason(ReasonBlockedDomain)
			}
		}
	}

	// Structural anomalies.
	if hasRepeatRun(text, repeatRunThreshold) {
		score += repeatRunWeight
		addReason(ReasonRepeatedChars)
	}
	if excessiveUppercase(text) {
		score += uppercaseWeight
		addReason(ReasonExcessiveCaps)
	}
	if duplicatedFragments(lower) {
		score += duplicationWeight
		addReason(ReasonDuplicateContent)
	}
	if len(strings.TrimSpace(text)) < opts.MinLength {
		score += tooShortWeight
		addReason(ReasonTooShort)
	}
	if countEmoji(text) > emojiThreshold {
		score += emojiWeight
		addReason(ReasonExcessiveEmoji)
	}

	// Contact-information bait.
	if phonePattern.MatchString(text) {
		score += phoneWeight
		addReason(ReasonPhoneNumber)
	}
	if len(emailPattern.FindAllString(text, -1)) > 1 {
		score += multiEmailWeight
		addReason(ReasonMultipleEmails)
	}

	if score > maxScore {
		score = maxScore
	}

	result := Result{
		Score:    score,
		Reasons:  reasons,
		Category: classify(score),
	}
	result.IsSpam = result.Category == CategoryLikelyAbuse || result.Category == CategoryDefiniteAbuse

	metrics.ScorerClassifications.WithLabelValues(string(result.Category)).Inc()
	metrics.ScorerDuration.Observe(time.Since(start).Seconds())

	return result
}

// IsDefiniteAbuse is the fast path for hot call sites: it short-circuits
// on the most unambiguous phrases and an extreme link count without
// running the full rule set.
func IsDefiniteAbuse(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range definitePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return strings.Count(lower, "http://")+strings.Count(lower, "https://") >= 6
}

// classify maps a score to its category.
func classify(score int) Category {
	switch {
	case score >= thresholdDefiniteAbuse:
		return CategoryDefiniteAbuse
	case score >= thresholdLikelyAbuse:
		return CategoryLikelyAbuse
	case score >= thresholdSuspicious:
		return CategorySuspicious
	default:
		return CategoryClean
	}
}

// extractHost pulls the host from a matched URL, lowercased, port stripped.
func extractHost(url string) string {
	m := hostPattern.FindStringSubmatch(strings.ToLower(url))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// matchesHost reports whether host equals or is a subdomain of any entry.
func matchesHost(host string, entries []string) bool {
	for _, entry := range entries {
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// hasRepeatRun reports a run of at least n identical consecutive runes.
func hasRepeatRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run >= n {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// excessiveUppercase reports whether the text's letters form a sequence
// longer than 20 characters that is more than 70% uppercase.
func excessiveUppercase(text string) bool {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters > 20 && float64(upper) > 0.7*float64(letters)
}

// duplicatedFragments reports near-duplicate sentence fragments: at least
// three fragments longer than ten characters whose unique normalized set
// covers less than half the total.
func duplicatedFragments(lower string) bool {
	raw := fragmentSplit.Split(lower, -1)
	fragments := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if len(f) > 10 {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) < 3 {
		return false
	}

	unique := make(map[string]struct{}, len(fragments))
	for _, f := range fragments {
		unique[strings.Join(strings.Fields(f), " ")] = struct{}{}
	}
	return float64(len(unique)) < 0.5*float64(len(fragments))
}

// countEmoji counts code points in the common emoji ranges.
func countEmoji(text string) int {
	count := 0
	for _, r := range text {
		switch {
		case r >= 0x1F300 && r <= 0x1FAFF, // pictographs, emoticons, symbols
			r >= 0x2600 && r <= 0x27BF, // misc symbols and dingbats
			r >= 0xFE00 && r <= 0xFE0F, // variation selectors
			r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
			count++
		}
	}
	return count
}
