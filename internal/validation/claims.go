package validation

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/aristath/newsintel/internal/domain"
)

// Bounded, closed pattern set for claim extraction (spec.md 4.3): numeric
// claims (a value with a unit or percent sign), attribution claims ("X
// said that ..." / "according to Y"), and event claims (a small closed set
// of disaster/protest/policy verbs with a subject).
var (
	numericClaimRe = regexp.MustCompile(`(?i)\b([A-Z][\w\s]{2,40}?)\s+(?:rose|fell|increased|decreased|reached|hit|dropped|climbed|surged|declined)\s+(?:to|by)?\s*([\d.,]+\s*%?|\$?[\d.,]+\s*(?:million|billion|trillion|percent|%)?)`)

	attributionRe = regexp.MustCompile(`(?i)\b([A-Z][\w\s]{2,40}?)\s+said\s+that\s+(.{5,120}?)[.\n]`)
	accordingToRe = regexp.MustCompile(`(?i)according\s+to\s+([A-Z][\w\s]{2,40}?),?\s+(.{5,120}?)[.\n]`)

	eventVerbs = []string{"protested", "announced", "banned", "declared", "launched", "seized", "collapsed", "erupted", "resigned", "arrested"}
	eventRe    = regexp.MustCompile(`(?i)\b([A-Z][\w\s]{2,40}?)\s+(` + strings.Join(eventVerbs, "|") + `)\b\s*(.{0,80}?)[.\n]`)
)

// ClaimExtractor pulls bounded typed claims out of article text.
type ClaimExtractor struct{}

// NewClaimExtractor builds a ClaimExtractor. It is stateless and safe for
// concurrent use (spec.md 5: "claim extraction is read-only and
// parallel-safe").
func NewClaimExtractor() *ClaimExtractor { return &ClaimExtractor{} }

// Extract returns every claim found in text, tagged with articleID/sourceID
// and a cross-article matching fingerprint.
func (e *ClaimExtractor) Extract(text, articleID, sourceID string) []domain.Claim {
	var claims []domain.Claim

	for _, m := range numericClaimRe.FindAllStringSubmatch(text, -1) {
		subject, value := normalizeClaimText(m[1]), normalizeClaimText(m[2])
		claims = append(claims, newClaim(domain.ClaimNumeric, subject, "changed_by", value, articleID, sourceID))
	}
	for _, m := range attributionRe.FindAllStringSubmatch(text, -1) {
		subject, value := normalizeClaimText(m[1]), normalizeClaimText(m[2])
		claims = append(claims, newClaim(domain.ClaimAttribution, subject, "said_that", value, articleID, sourceID))
	}
	for _, m := range accordingToRe.FindAllStringSubmatch(text, -1) {
		subject, value := normalizeClaimText(m[1]), normalizeClaimText(m[2])
		claims = append(claims, newClaim(domain.ClaimAttribution, subject, "according_to", value, articleID, sourceID))
	}
	for _, m := range eventRe.FindAllStringSubmatch(text, -1) {
		subject, verb, rest := normalizeClaimText(m[1]), strings.ToLower(m[2]), normalizeClaimText(m[3])
		claims = append(claims, newClaim(domain.ClaimEvent, subject, verb, rest, articleID, sourceID))
	}

	return claims
}

func newClaim(kind domain.ClaimKind, subject, predicate, value, articleID, sourceID string) domain.Claim {
	return domain.Claim{
		Kind:        kind,
		Subject:     subject,
		Predicate:   predicate,
		Value:       value,
		Fingerprint: fingerprint(kind, subject, predicate),
		ArticleID:   articleID,
		SourceID:    sourceID,
	}
}

// fingerprint builds the lemmatised-key tuple spec.md 4.3 describes: a
// stable key over (kind, normalized subject, predicate) so the same
// underlying claim made by different sources with different phrasing still
// matches. "Lemmatised" here means the light stemming in normalizeClaimText
// (lowercasing, whitespace collapse, trailing-s trim) rather than a full
// morphological analyzer, which the bounded claim patterns don't need.
func fingerprint(kind domain.ClaimKind, subject, predicate string) string {
	sum := md5.Sum([]byte(string(kind) + "|" + lemmatizeKey(subject) + "|" + predicate))
	return hex.EncodeToString(sum[:])
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalizeClaimText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func lemmatizeKey(s string) string {
	s = strings.ToLower(normalizeClaimText(s))
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.TrimSuffix(w, "s")
	}
	return strings.Join(words, " ")
}
