package enrichment

import (
	"strings"
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

// QualityInput is the minimal surface QualityScorer needs, combining the
// raw article with features L1/L2 have already computed so this stage
// never re-tokenizes.
type QualityInput struct {
	Title        string
	Body         string
	SourceID     string
	PublishDate  time.Time
	ScrapeTime   time.Time
	Features     domain.ArticleFeatures
	SourceTrust  float64 // 0-100, from the reputation tracker if available
}

// QualityScorer computes a 0-100 composite across five weighted dimensions
// (spec.md 4.5): completeness, internal consistency, recency, source
// trust, and readability.
type QualityScorer struct {
	weights map[string]float64
}

func NewQualityScorer() *QualityScorer {
	return &QualityScorer{
		weights: map[string]float64{
			"completeness": 0.25,
			"consistency":  0.2,
			"recency":      0.15,
			"source_trust": 0.2,
			"readability":  0.2,
		},
	}
}

func (s *QualityScorer) Score(in QualityInput, now time.Time) (float64, domain.QualityBand) {
	completeness := completenessScore(in)
	consistency := consistencyScore(in)
	recency := recencyScore(in, now)
	sourceTrust := in.SourceTrust
	if sourceTrust == 0 {
		sourceTrust = 50
	}
	readability := readabilityScore(in.Features.ReadabilityInput)

	total := completeness*s.weights["completeness"] +
		consistency*s.weights["consistency"] +
		recency*s.weights["recency"] +
		sourceTrust*s.weights["source_trust"] +
		readability*s.weights["readability"]

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total, domain.QualityBandFor(total)
}

// completenessScore rewards articles with a real title, a substantial
// body, and a known source ID.
func completenessScore(in QualityInput) float64 {
	score := 0.0
	if strings.TrimSpace(in.Title) != "" {
		score += 25
	}
	wordCount := in.Features.TokenCount
	switch {
	case wordCount >= 300:
		score += 50
	case wordCount >= 100:
		score += 35
	case wordCount >= 30:
		score += 15
	}
	if strings.TrimSpace(in.SourceID) != "" {
		score += 25
	}
	return min(score, 100)
}

// consistencyScore penalizes titles that share almost no vocabulary with
// the body, a cheap proxy for clickbait/mismatched headlines.
func consistencyScore(in QualityInput) float64 {
	titleWords := uniqueWords(in.Title)
	if len(titleWords) == 0 {
		return 50
	}
	bodyLower := strings.ToLower(in.Body)
	overlap := 0
	for w := range titleWords {
		if strings.Contains(bodyLower, w) {
			overlap++
		}
	}
	ratio := float64(overlap) / float64(len(titleWords))
	return min(40+ratio*60, 100)
}

func uniqueWords(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?:;\"'()")
		if len(w) < 4 {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// recencyScore decays from 100 (scraped within the hour of publication) to
// a 20-point floor for articles over a week stale.
func recencyScore(in QualityInput, now time.Time) float64 {
	if in.PublishDate.IsZero() {
		return 50
	}
	age := now.Sub(in.PublishDate)
	switch {
	case age <= time.Hour:
		return 100
	case age <= 6*time.Hour:
		return 90
	case age <= 24*time.Hour:
		return 75
	case age <= 3*24*time.Hour:
		return 55
	case age <= 7*24*time.Hour:
		return 35
	default:
		return 20
	}
}

// readabilityScore maps a Flesch Reading Ease-style computation from
// word/sentence/syllable counts onto a 0-100 quality contribution, treating
// both very terse and very dense text as lower quality than a moderate
// read.
func readabilityScore(in domain.ReadabilityInput) float64 {
	if in.Words == 0 || in.Sentences == 0 {
		return 50
	}
	wordsPerSentence := float64(in.Words) / float64(in.Sentences)
	syllablesPerWord := float64(in.Syllables) / float64(in.Words)

	flesch := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	if flesch < 0 {
		flesch = 0
	}
	if flesch > 100 {
		flesch = 100
	}

	// Articles in the 40-70 Flesch band (fairly readable, not choppy) score
	// highest; push scores outside that band down gently.
	switch {
	case flesch >= 40 && flesch <= 70:
		return 80 + (flesch-40)/30*20
	case flesch < 40:
		return max(flesch, 10)
	default:
		return 90
	}
}
