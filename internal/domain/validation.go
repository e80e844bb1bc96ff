package domain

import "time"

// ClaimKind is the closed set of claim shapes ClaimExtractor recognizes.
type ClaimKind string

const (
	ClaimNumeric     ClaimKind = "numeric"
	ClaimAttribution ClaimKind = "attribution"
	ClaimEvent       ClaimKind = "event"
)

// Claim is a bounded, typed statement extracted from article text, carrying
// a fingerprint used to match it against claims from other articles.
type Claim struct {
	Kind        ClaimKind
	Subject     string
	Predicate   string
	Value       string // numeric value/unit, attributed quote, or event description
	Fingerprint string // lemmatised-key tuple, used for cross-article matching
	ArticleID   string
	SourceID    string
}

// CorroborationLevel classifies how strongly an article's claims are
// corroborated by other sources (spec.md 4.3).
type CorroborationLevel string

const (
	CorroborationNone     CorroborationLevel = "none"
	CorroborationWeak     CorroborationLevel = "weak"
	CorroborationModerate CorroborationLevel = "moderate"
	CorroborationStrong   CorroborationLevel = "strong"
	CorroborationVerified CorroborationLevel = "verified"
)

// CorroborationResult is the output of CorroborationEngine for one article.
type CorroborationResult struct {
	Level          CorroborationLevel
	MatchCount     int
	SourceCount    int
	HasOfficial    bool
	MatchedClaims  []Claim
	Contradictions []Claim
}

// Weight returns the numeric corroboration_weight used by TrustCalculator.
func (r CorroborationResult) Weight() float64 {
	switch r.Level {
	case CorroborationVerified:
		return 1.0
	case CorroborationStrong:
		return 0.85
	case CorroborationModerate:
		return 0.6
	case CorroborationWeak:
		return 0.35
	default:
		return 0.0
	}
}

// TrustLevel is the qualitative band over a TrustScore.
type TrustLevel string

const (
	TrustVerified   TrustLevel = "verified"
	TrustHigh       TrustLevel = "high"
	TrustModerate   TrustLevel = "moderate"
	TrustLow        TrustLevel = "low"
	TrustUnverified TrustLevel = "unverified"
)

// TrustLevelFor classifies a 0-100 trust score (spec.md 4.3).
func TrustLevelFor(score float64) TrustLevel {
	switch {
	case score >= 85:
		return TrustVerified
	case score >= 70:
		return TrustHigh
	case score >= 55:
		return TrustModerate
	case score >= 40:
		return TrustLow
	default:
		return TrustUnverified
	}
}

// CrossValidationResult is the combined output of the Cross-Source
// Validator for one article.
type CrossValidationResult struct {
	Score             float64
	TrustLevel        TrustLevel
	SourceReputation  float64
	Claims            []Claim
	Corroboration     CorroborationResult
	Contradictions    []Claim
	EvaluatedAt       time.Time
}
