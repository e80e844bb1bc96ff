package enrichment

import (
	"context"
	"strings"
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

// Pipeline composes the L2 sub-stages: classification, sentiment, entity
// extraction, and quality scoring. Sub-stages run sequentially within one
// article (classification feeds nothing downstream here, but callers may
// run Pipeline.Enrich concurrently across articles).
type Pipeline struct {
	classifier *HybridClassifier
	sentiment  *Analyzer
	entities   *EntityExtractor
	quality    *QualityScorer

	minIndicatorConfidence float64
}

// NewPipeline wires the four sub-stages. ml may be nil (falls back to
// StubMLClassifier); deepSentiment may be nil (lexicon-only).
func NewPipeline(ml MLClassifier, deepSentiment SentimentBackend) *Pipeline {
	return &Pipeline{
		classifier: NewHybridClassifier(ml, 0.3),
		sentiment:  NewAnalyzer(NewLexiconBackend(), deepSentiment),
		entities:   NewEntityExtractor(),
		quality:    NewQualityScorer(),
	}
}

// Enrich runs every sub-stage against a raw article and produces the
// EnrichedArticle the rest of the pipeline persists and consumes.
func (p *Pipeline) Enrich(ctx context.Context, raw domain.RawArticle, features domain.ArticleFeatures, sourceTrust float64, now time.Time) domain.EnrichedArticle {
	predictions := p.classifier.Classify(raw.Title, raw.Body, domain.PESTELEconomic)

	category, confidences := dominantCategory(predictions)
	sentimentResult := p.sentiment.AnalyzeArticle(ctx, raw.Title, raw.Body)
	entityList := p.entities.Extract(raw.Title + ". " + raw.Body)

	qualityScore, qualityBand := p.quality.Score(QualityInput{
		Title:       raw.Title,
		Body:        raw.Body,
		SourceID:    raw.SourceID,
		PublishDate: raw.PublishDate,
		ScrapeTime:  raw.ScrapeTime,
		Features:    features,
		SourceTrust: sourceTrust,
	}, now)

	urgency := urgencyFromSentimentAndIndicators(sentimentResult, predictions)

	return domain.EnrichedArticle{
		RawArticle:          raw,
		PESTELCategory:      category,
		CategoryConfidences: confidences,
		UrgencyLevel:        urgency,
		BusinessRelevance:   businessRelevance(predictions),
		Sentiment:           sentimentResult,
		Entities:            entityList,
		QualityScore:        qualityScore,
		QualityBand:         qualityBand,
		Metadata:            map[string]any{"indicator_count": len(predictions)},
	}
}

// dominantCategory picks the PESTEL category of the single highest-
// confidence indicator prediction, and rolls every prediction's confidence
// up into its category (summed, capped at 1).
func dominantCategory(predictions []IndicatorPrediction) (domain.PESTELCategory, map[domain.PESTELCategory]float64) {
	confidences := make(map[domain.PESTELCategory]float64)
	if len(predictions) == 0 {
		return domain.PESTELEconomic, confidences
	}

	best := predictions[0]
	for _, p := range predictions {
		cat := PESTELForIndicator[p.Indicator]
		confidences[cat] = min(confidences[cat]+p.Confidence, 1)
		if p.Confidence > best.Confidence {
			best = p
		}
	}
	return PESTELForIndicator[best.Indicator], confidences
}

// businessRelevance is the mean confidence across the returned top-4
// indicator predictions, a cheap proxy the rest of L2/L3 uses to gate
// low-signal articles.
func businessRelevance(predictions []IndicatorPrediction) float64 {
	if len(predictions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range predictions {
		sum += p.Confidence
	}
	return sum / float64(len(predictions))
}

// urgencyFromSentimentAndIndicators derives an UrgencyLevel from sentiment
// intensity and indicator confidence, since no single sub-stage produces
// urgency directly.
func urgencyFromSentimentAndIndicators(sentiment domain.SentimentResult, predictions []IndicatorPrediction) domain.UrgencyLevel {
	var topConfidence float64
	for _, p := range predictions {
		if p.Confidence > topConfidence {
			topConfidence = p.Confidence
		}
	}

	intensity := sentiment.Score
	if intensity < 0 {
		intensity = -intensity
	}

	switch {
	case topConfidence >= 0.85 && intensity >= 0.5:
		return domain.UrgencyBreaking
	case topConfidence >= 0.65 || intensity >= 0.5:
		return domain.UrgencyHigh
	case topConfidence >= 0.3 || intensity >= 0.2:
		return domain.UrgencyModerate
	default:
		return domain.UrgencyLow
	}
}

// ComputeFeatures derives the cacheable ArticleFeatures L2 reuses across
// sub-stages from a raw article (spec.md 4.5: "the hybrid classifier and
// quality scorer avoid recomputing tokenization/keyword-hit work").
func ComputeFeatures(articleID, title, body string, now time.Time) domain.ArticleFeatures {
	tokens := strings.Fields(body)
	sentences := strings.FieldsFunc(body, func(r rune) bool { return r == '.' || r == '!' || r == '?' })

	numeric := 0
	for _, t := range tokens {
		if hasDigit(t) {
			numeric++
		}
	}
	var numericDensity float64
	if len(tokens) > 0 {
		numericDensity = float64(numeric) / float64(len(tokens))
	}

	sentenceCount := len(sentences)
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	return domain.ArticleFeatures{
		ArticleID:      articleID,
		TokenCount:     len(tokens),
		SentenceCount:  sentenceCount,
		KeywordHits:    map[string]int{},
		NumericDensity: numericDensity,
		ReadabilityInput: domain.ReadabilityInput{
			Words:     len(tokens),
			Sentences: sentenceCount,
			Syllables: estimateSyllables(tokens),
		},
		ComputedAt: now,
	}
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// estimateSyllables uses the common vowel-group heuristic (not linguistically
// exact, but stable and dependency-free, matching the readability formula's
// need for an approximate count).
func estimateSyllables(tokens []string) int {
	total := 0
	for _, t := range tokens {
		total += syllablesInWord(t)
	}
	return total
}

func syllablesInWord(word string) int {
	word = strings.ToLower(word)
	vowels := "aeiouy"
	count := 0
	prevWasVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevWasVowel {
			count++
		}
		prevWasVowel = isVowel
	}
	if count == 0 {
		count = 1
	}
	return count
}
