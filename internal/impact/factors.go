// Package impact implements the Business Impact Scorer (spec.md 4.4): six
// 0-100 factor axes combined through a named weight profile into a 0-100
// final score and a 1-5 priority rank.
package impact

import (
	"regexp"
	"strings"
	"time"
)

var (
	crisisKeywords = []string{
		"tsunami", "earthquake", "flood", "cyclone", "landslide", "drought",
		"disaster", "catastrophe", "calamity",
		"state of emergency", "martial law", "curfew", "evacuation",
		"death toll", "casualties", "fatalities", "missing",
		"currency crash", "bank collapse", "default", "bankruptcy",
		"market crash", "hyperinflation", "economic crisis",
		"terrorism", "attack", "explosion", "war", "conflict",
	}
	highSeverityKeywords = []string{
		"impeachment", "resignation", "dissolution", "no confidence",
		"constitutional crisis", "political crisis",
		"recession", "layoffs", "factory closure", "strike",
		"fuel shortage", "power cut", "blackout",
		"major reform", "sweeping changes", "landmark decision",
		"historic", "unprecedented",
	}
	mediumSeverityKeywords = []string{
		"new policy", "regulation", "circular", "gazette",
		"amendment", "revision", "tender", "procurement",
		"quarterly results", "merger", "acquisition", "expansion",
		"investment", "partnership", "contract",
	}

	numberPattern = regexp.MustCompile(`\b\d+(?:,\d{3})*(?:\.\d+)?\s*(?:million|billion|percent|%)?\b`)

	nationalKeywords = []string{"nationwide", "national", "country-wide", "island-wide", "entire country"}
	regionalKeywords = []string{"province", "provincial", "multiple districts", "region"}
	localKeywords     = []string{"district", "divisional", "local", "municipality", "town", "village"}
	internationalKeywords = []string{"international", "global", "world", "imf", "world bank", "foreign", "bilateral", "multilateral"}

	breakingKeywords  = []string{"breaking", "just in", "developing", "urgent", "alert"}
	recentKeywords    = []string{"today", "tonight", "this morning", "hours ago", "just now"}
	nearTermKeywords  = []string{"yesterday", "tomorrow", "this week"}
	viralKeywords     = []string{"trending", "viral", "widespread", "massive response"}

	// sourceCredibility is the flat credibility lookup (spec.md 4.4: "flat
	// lookup with partial-substring fallback; default 30").
	sourceCredibility = map[string]float64{
		"government": 100, "dmc": 100, "central_bank": 100, "cbsl": 100,
		"president": 95, "prime_minister": 95, "ministry": 90,
		"reuters": 85, "afp": 85,
		"daily_mirror": 80, "daily_news": 80, "ada_derana": 80,
		"hiru_news": 75, "newsfirst": 75, "lankadeepa": 75,
		"news_outlet": 65, "local_media": 60,
		"social_media": 40, "twitter": 35, "facebook": 30, "unverified": 20,
	}
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func matchCount(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// severity scores event severity from title+body, with a title-match boost
// and a numeric-density fallback (spec.md 4.4).
func severity(fullText, title string) float64 {
	crisis := matchCount(fullText, crisisKeywords)
	high := matchCount(fullText, highSeverityKeywords)
	medium := matchCount(fullText, mediumSeverityKeywords)

	switch {
	case crisis > 0 || containsAny(title, crisisKeywords):
		boost := min(float64(crisis)*5, 15)
		return min(85+boost, 100)
	case high > 0 || containsAny(title, highSeverityKeywords):
		boost := min(float64(high)*5, 15)
		return min(65+boost, 80)
	case medium > 0:
		boost := min(float64(medium)*3, 10)
		return min(45+boost, 60)
	default:
		if numberPattern.MatchString(fullText) {
			return 30
		}
		return 15
	}
}

// credibility resolves a source identifier to a 0-100 score via direct and
// partial-substring lookup, defaulting to 30 for unknown sources.
func credibility(source string) float64 {
	key := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(source, " ", "_"), "-", "_"))
	if score, ok := sourceCredibility[key]; ok {
		return score
	}
	for known, score := range sourceCredibility {
		if strings.Contains(key, known) || strings.Contains(known, key) {
			return score
		}
	}
	return 30
}

// geographicScope classifies scope from keyword and district-mention
// evidence (spec.md 4.4: international > national (>=5 district mentions or
// "nationwide") > regional > local).
func geographicScope(fullText string, districtsMentioned int) float64 {
	switch {
	case containsAny(fullText, internationalKeywords):
		return 100
	case containsAny(fullText, nationalKeywords) || districtsMentioned >= 5:
		return 90
	case containsAny(fullText, regionalKeywords) || districtsMentioned >= 2:
		return 60
	default:
		return 30
	}
}

// temporalUrgency scores recency: a breaking-news title always wins at 100;
// otherwise age-banded from publishedAt. Text-level recency cues act as a
// floor only for articles up to three days old; 3-7 days scores a flat 45
// and anything older is capped at 25.
func temporalUrgency(fullText, title string, publishedAt, now time.Time) float64 {
	if containsAny(title, breakingKeywords) {
		return 100
	}

	score := 50.0
	if containsAny(fullText, recentKeywords) {
		score = 85
	}
	if containsAny(fullText, nearTermKeywords) && score < 85 {
		score = 70
	}

	if !publishedAt.IsZero() {
		age := now.Sub(publishedAt)
		switch {
		case age <= 6*time.Hour:
			score = maxF(score, 95)
		case age <= 24*time.Hour:
			score = maxF(score, 80)
		case age <= 3*24*time.Hour:
			score = maxF(score, 60)
		case age <= 7*24*time.Hour:
			score = 45
		default:
			score = min(score, 25)
		}
	}
	return score
}

// volumeMomentum steps on mention_count with a boost for viral keywords.
func volumeMomentum(mentionCount int, fullText string) float64 {
	var score float64
	switch {
	case mentionCount >= 50:
		score = 100
	case mentionCount >= 20:
		score = 80
	case mentionCount >= 10:
		score = 60
	case mentionCount >= 5:
		score = 45
	case mentionCount >= 2:
		score = 30
	default:
		score = 20
	}
	if containsAny(fullText, viralKeywords) {
		score = min(score+20, 100)
	}
	return score
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
