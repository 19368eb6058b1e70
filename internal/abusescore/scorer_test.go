// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package abusescore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_CleanContent(t *testing.T) {
	result := Score("Really enjoyed the new update, the boss fight mechanics feel much tighter now.", DefaultOptions())

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, CategoryClean, result.Category)
	assert.False(t, result.IsSpam)
	assert.Empty(t, result.Reasons)
}

func TestScore_SpamCampaign(t *testing.T) {
	// Keyword hits ("buy now", "click here": +20), 4 links > 3 (+25),
	// 4 shortener hits (+80) -> capped at 100.
	text := "BUY NOW!!! click here http://bit.ly/x http://bit.ly/y http://bit.ly/z http://bit.ly/w"
	result := Score(text, Options{CheckURLs: true, MaxLinks: 3, MinLength: 10})

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, CategoryDefiniteAbuse, result.Category)
	assert.True(t, result.IsSpam)
	assert.Contains(t, result.Reasons, ReasonPromotionalPhrase)
	assert.Contains(t, result.Reasons, ReasonTooManyLinks)
	assert.Contains(t, result.Reasons, ReasonLinkShortener)
}

func TestScore_Idempotent(t *testing.T) {
	text := "FREE MONEY click here http://bit.ly/abc"
	first := Score(text, DefaultOptions())
	second := Score(text, DefaultOptions())

	assert.Equal(t, first, second)
}

func TestScore_EmptyTextIsMinLengthViolation(t *testing.T) {
	result := Score("", DefaultOptions())

	assert.Equal(t, tooShortWeight, result.Score)
	assert.Equal(t, CategoryClean, result.Category)
	assert.Equal(t, []string{ReasonTooShort}, result.Reasons)
}

func TestScore_KeywordContributionCapped(t *testing.T) {
	// Six distinct phrases would be +60 uncapped; the keyword rule caps
	// its contribution at 40.
	text := "buy now free money make money fast work from home no credit check hot singles and a lot of other words to stay long enough"
	result := Score(text, Options{CheckURLs: false, MaxLinks: 3, MinLength: 10})

	assert.Equal(t, keywordCap, result.Score)
	assert.Equal(t, []string{ReasonPromotionalPhrase}, result.Reasons)
}

func TestScore_BlockedDomain(t *testing.T) {
	result := Score("check your stats at https://grabify.link/abc123 right now", DefaultOptions())

	assert.GreaterOrEqual(t, result.Score, blockedHostWeight)
	assert.Contains(t, result.Reasons, ReasonBlockedDomain)
}

func TestScore_ShortenerSubdomain(t *testing.T) {
	result := Score("grab the demo from https://promo.bit.ly/game before it expires", DefaultOptions())

	assert.Contains(t, result.Reasons, ReasonLinkShortener)
}

func TestScore_RepeatedCharacters(t *testing.T) {
	result := Score("this game is greaaaaaat and I mean it sincerely", DefaultOptions())

	assert.Equal(t, repeatRunWeight, result.Score)
	assert.Equal(t, []string{ReasonRepeatedChars}, result.Reasons)
}

func TestScore_ExcessiveUppercase(t *testing.T) {
	result := Score("THIS ENTIRE REVIEW IS WRITTEN IN SCREAMING CAPITALS", DefaultOptions())

	assert.Contains(t, result.Reasons, ReasonExcessiveCaps)

	// Mostly lowercase text with >20 letters stays quiet.
	calm := Score("This review has plenty of letters but a normal tone throughout.", DefaultOptions())
	assert.NotContains(t, calm.Reasons, ReasonExcessiveCaps)
}

func TestScore_DuplicatedFragments(t *testing.T) {
	text := "best deal on game keys. best deal on game keys. best deal on game keys."
	result := Score(text, DefaultOptions())

	assert.Contains(t, result.Reasons, ReasonDuplicateContent)
	assert.Equal(t, CategorySuspicious, result.Category)
	assert.False(t, result.IsSpam, "suspicious content gets the benefit of the doubt")
}

func TestScore_ExcessiveEmoji(t *testing.T) {
	text := "wow amazing " + strings.Repeat("\U0001F389", 11)
	result := Score(text, DefaultOptions())

	assert.Contains(t, result.Reasons, ReasonExcessiveEmoji)

	few := Score("nice one \U0001F389\U0001F389", DefaultOptions())
	assert.NotContains(t, few.Reasons, ReasonExcessiveEmoji)
}

func TestScore_ContactBait(t *testing.T) {
	result := Score("selling accounts, text +1 (555) 123-4567 or mail a@x.com and b@y.com today", DefaultOptions())

	assert.Contains(t, result.Reasons, ReasonPhoneNumber)
	assert.Contains(t, result.Reasons, ReasonMultipleEmails)

	// A single email address is unremarkable.
	one := Score("reach the team at support@indievault.example for refund questions", DefaultOptions())
	assert.NotContains(t, one.Reasons, ReasonMultipleEmails)
}

func TestScore_URLsIgnoredWhenDisabled(t *testing.T) {
	text := "http://bit.ly/a http://bit.ly/b http://bit.ly/c http://bit.ly/d plus padding words"
	result := Score(text, Options{CheckURLs: false, MaxLinks: 3, MinLength: 10})

	assert.NotContains(t, result.Reasons, ReasonTooManyLinks)
	assert.NotContains(t, result.Reasons, ReasonLinkShortener)
}

func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  Category
	}{
		{0, CategoryClean},
		{29, CategoryClean},
		{30, CategorySuspicious},
		{49, CategorySuspicious},
		{50, CategoryLikelyAbuse},
		{69, CategoryLikelyAbuse},
		{70, CategoryDefiniteAbuse},
		{100, CategoryDefiniteAbuse},
	}

	for _, tt := range tests {
		if got := classify(tt.score); got != tt.want {
			t.Errorf("classify(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestIsDefiniteAbuse(t *testing.T) {
	assert.True(t, IsDefiniteAbuse("CRYPTO GIVEAWAY don't miss out"))
	assert.True(t, IsDefiniteAbuse("Free Robux here"))
	assert.True(t, IsDefiniteAbuse(strings.Repeat("https://x.example/p ", 6)))
	assert.False(t, IsDefiniteAbuse("the new patch finally fixes the save corruption bug"))
	assert.False(t, IsDefiniteAbuse(""))
}
