// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

package abusescore

import "regexp"

// Rule weights. Additive, capped at maxScore overall.
const (
	maxScore           = 100
	keywordWeight      = 10
	keywordCap         = 40
	linkCountWeight    = 25
	shortenerWeight    = 20
	blockedHostWeight  = 30
	repeatRunWeight    = 15
	uppercaseWeight    = 20
	duplicationWeight  = 30
	tooShortWeight     = 10
	emojiWeight        = 15
	phoneWeight        = 15
	multiEmailWeight   = 20
	repeatRunThreshold = 6
	emojiThreshold     = 10
)

// spamPhrases are promotional, phishing, and scam phrases matched
// case-insensitively. Each distinct hit adds keywordWeight, capped at
// keywordCap.
var spamPhrases = []string{
	"buy now",
	"click here",
	"limited time offer",
	"act now",
	"free money",
	"make money fast",
	"work from home",
	"100% free",
	"no credit check",
	"congratulations you won",
	"claim your prize",
	"claim your reward",
	"crypto giveaway",
	"double your bitcoin",
	"double your money",
	"guaranteed income",
	"hot singles",
	"cheap followers",
	"buy followers",
	"verify your account",
	"account suspended",
	"urgent action required",
	"wire transfer",
	"free gift card",
	"free robux",
	"cd keys cheap",
}

// definitePhrases short-circuit the fast path. Only phrases with no
// plausible legitimate use in game-community discussion belong here.
var definitePhrases = []string{
	"crypto giveaway",
	"double your bitcoin",
	"hot singles",
	"claim your prize",
	"free robux",
	"cheap followers",
}

// shortenerHosts are known URL shorteners. Shortened links in
// user-generated content hide destinations and dominate spam campaigns.
var shortenerHosts = []string{
	"bit.ly",
	"tinyurl.com",
	"goo.gl",
	"t.co",
	"ow.ly",
	"is.gd",
	"buff.ly",
	"cutt.ly",
	"rb.gy",
	"shorturl.at",
}

// blockedHosts is the static domain blocklist: IP grabbers and
// known-malicious landing hosts.
var blockedHosts = []string{
	"grabify.link",
	"iplogger.org",
	"iplogger.com",
	"2no.co",
	"yip.su",
	"blasze.com",
	"ps3cfw.com",
}

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"')]+`)
	hostPattern  = regexp.MustCompile(`^https?://([^/:?#]+)`)
	phonePattern = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// fragmentSplit separates sentence-like fragments for the
	// duplicate-content detector.
	fragmentSplit = regexp.MustCompile(`[.!?]+`)
)

// Human-readable reason tags, one per rule.
const (
	ReasonPromotionalPhrase = "promotional phrase"
	ReasonTooManyLinks      = "too many links"
	ReasonLinkShortener     = "link shortener"
	ReasonBlockedDomain     = "blocklisted domain"
	ReasonRepeatedChars     = "repeated characters"
	ReasonExcessiveCaps     = "excessive uppercase"
	ReasonDuplicateContent  = "duplicated content"
	ReasonTooShort          = "content too short"
	ReasonExcessiveEmoji    = "excessive emoji"
	ReasonPhoneNumber       = "phone number"
	ReasonMultipleEmails    = "multiple email addresses"
)
