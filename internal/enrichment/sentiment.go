package enrichment

import (
	"context"
	"strings"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

// SentimentBackend scores a single piece of text to a raw [-1,1] sentiment
// score. Both the lexicon backend and the LLM-backed deep backend implement
// this so Analyzer can blend across them interchangeably.
type SentimentBackend interface {
	Score(ctx context.Context, text string) (float64, float64, error) // score, confidence
}

var positiveLexicon = map[string]float64{
	"growth": 0.5, "boost": 0.5, "recovery": 0.6, "surge": 0.5, "improve": 0.4,
	"gain": 0.4, "success": 0.6, "agreement": 0.4, "approve": 0.4, "progress": 0.4,
	"record high": 0.6, "stable": 0.3, "positive": 0.5, "rebound": 0.5, "relief": 0.4,
	"strengthen": 0.4, "investment": 0.3, "expansion": 0.4, "breakthrough": 0.6,
}

var negativeLexicon = map[string]float64{
	"crisis": -0.7, "collapse": -0.8, "shortage": -0.5, "decline": -0.4, "crash": -0.8,
	"protest": -0.4, "riot": -0.7, "death": -0.7, "casualties": -0.8, "disaster": -0.7,
	"recession": -0.6, "default": -0.7, "layoffs": -0.5, "closure": -0.4, "curfew": -0.6,
	"violence": -0.6, "attack": -0.7, "corruption": -0.5, "emergency": -0.5, "warning": -0.3,
	"delay": -0.3, "blackout": -0.5, "inflation": -0.4,
}

// LexiconBackend is a pure-Go keyword-weighted sentiment scorer, a stand-in
// for a VADER-style rule scorer where no direct library is available in
// this ecosystem; closed word lists, hand-verifiable, no external calls.
type LexiconBackend struct{}

func NewLexiconBackend() *LexiconBackend { return &LexiconBackend{} }

func (b *LexiconBackend) Score(_ context.Context, text string) (float64, float64, error) {
	lower := strings.ToLower(text)
	var sum float64
	var hits int
	for phrase, weight := range positiveLexicon {
		if strings.Contains(lower, phrase) {
			sum += weight
			hits++
		}
	}
	for phrase, weight := range negativeLexicon {
		if strings.Contains(lower, phrase) {
			sum += weight
			hits++
		}
	}
	if hits == 0 {
		return 0, 0.4, nil
	}
	score := sum / float64(hits)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	confidence := min(0.5+float64(hits)*0.08, 0.95)
	return score, confidence, nil
}

// DeepBackend delegates scoring to an LLM, used only when wired with a real
// repository.LLM; failures degrade to the zero value so Analyzer can fall
// back to the lexicon backend alone.
type DeepBackend struct {
	llm repository.LLM
}

func NewDeepBackend(llm repository.LLM) *DeepBackend {
	return &DeepBackend{llm: llm}
}

func (b *DeepBackend) Score(ctx context.Context, text string) (float64, float64, error) {
	result, err := b.llm.Invoke(ctx,
		"You score the sentiment of a news excerpt from -1 (very negative) to 1 (very positive). "+
			`Respond with JSON {"score": <float>, "confidence": <float 0-1>}.`,
		text,
	)
	if err != nil {
		return 0, 0, err
	}
	score, _ := result.JSON["score"].(float64)
	confidence, _ := result.JSON["confidence"].(float64)
	if confidence == 0 {
		confidence = 0.6
	}
	return score, confidence, nil
}

// Analyzer blends a fast lexicon backend with an optional deep backend at
// article level, weighting title 0.3 and body 0.7 (spec.md 4.5).
type Analyzer struct {
	fast SentimentBackend
	deep SentimentBackend // nil if no deep backend configured
}

func NewAnalyzer(fast SentimentBackend, deep SentimentBackend) *Analyzer {
	if fast == nil {
		fast = NewLexiconBackend()
	}
	return &Analyzer{fast: fast, deep: deep}
}

// AnalyzeArticle scores title and body independently, blends 0.3/0.7, and
// (if a deep backend is configured) blends the fast and deep results
// evenly, weighted by each result's own confidence.
func (a *Analyzer) AnalyzeArticle(ctx context.Context, title, body string) domain.SentimentResult {
	titleScore, titleConf := a.scoreWith(ctx, a.fast, title)
	bodyScore, bodyConf := a.scoreWith(ctx, a.fast, body)
	score := 0.3*titleScore + 0.7*bodyScore
	confidence := 0.3*titleConf + 0.7*bodyConf

	if a.deep != nil {
		deepTitle, deepTitleConf := a.scoreWith(ctx, a.deep, title)
		deepBody, deepBodyConf := a.scoreWith(ctx, a.deep, body)
		deepScore := 0.3*deepTitle + 0.7*deepBody
		deepConf := 0.3*deepTitleConf + 0.7*deepBodyConf

		if deepConf > 0 {
			totalWeight := confidence + deepConf
			if totalWeight > 0 {
				score = (score*confidence + deepScore*deepConf) / totalWeight
				confidence = totalWeight / 2
			}
		}
	}

	positive, negative, neutral := distribution(score)
	return domain.SentimentResult{
		Score:           score,
		ScoreNormalized: (score + 1) * 50,
		Label:           domain.LevelFromScore(score),
		Confidence:      confidence,
		Positive:        positive,
		Negative:        negative,
		Neutral:         neutral,
	}
}

func (a *Analyzer) scoreWith(ctx context.Context, backend SentimentBackend, text string) (float64, float64) {
	if strings.TrimSpace(text) == "" {
		return 0, 0
	}
	score, confidence, err := backend.Score(ctx, text)
	if err != nil {
		return 0, 0
	}
	return score, confidence
}

// distribution turns a single [-1,1] score into an approximate
// positive/negative/neutral probability triple summing to 1.
func distribution(score float64) (positive, negative, neutral float64) {
	switch {
	case score > 0:
		positive = score
		neutral = 1 - score
	case score < 0:
		negative = -score
		neutral = 1 + score
	default:
		neutral = 1
	}
	return positive, negative, neutral
}
