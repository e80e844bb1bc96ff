package validation

import (
	"context"
	"math"
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

// TrustCalculator combines source reputation, claim corroboration, and
// article freshness into the final CrossValidationResult (spec.md 4.3).
type TrustCalculator struct {
	reputation    *ReputationTracker
	claims        *ClaimExtractor
	corroboration *CorroborationEngine

	freshnessHalfLife time.Duration
}

// NewTrustCalculator wires the three subcomponents together. freshnessHalfLife
// controls how quickly freshness_weight decays (spec.md 4.3 leaves the exact
// curve unspecified; an exponential half-life is the natural fit for a decay
// weight bounded in [0, 1]).
func NewTrustCalculator(reputation *ReputationTracker, claims *ClaimExtractor, corroboration *CorroborationEngine, freshnessHalfLife time.Duration) *TrustCalculator {
	return &TrustCalculator{reputation: reputation, claims: claims, corroboration: corroboration, freshnessHalfLife: freshnessHalfLife}
}

// Evaluate extracts claims from text, checks them against the rolling
// corroboration cache, and computes the combined trust score:
// TrustScore = clamp(0, 100, 40*reputation + 40*corroboration_weight + 20*freshness_weight).
func (c *TrustCalculator) Evaluate(ctx context.Context, articleID, sourceID, text string, tier domain.ReputationTier, isOfficial bool, scrapedAt, now time.Time) (domain.CrossValidationResult, error) {
	rep, err := c.reputation.Get(ctx, sourceID, tier)
	if err != nil {
		return domain.CrossValidationResult{}, err
	}

	claims := c.claims.Extract(text, articleID, sourceID)
	corrob := c.corroboration.Evaluate(claims, sourceID, isOfficial, now)

	freshness := freshnessWeight(scrapedAt, now, c.freshnessHalfLife)
	score := clamp(40*rep.ReputationScore+40*corrob.Weight()+20*freshness, 0, 100)

	return domain.CrossValidationResult{
		Score:            score,
		TrustLevel:       domain.TrustLevelFor(score),
		SourceReputation: rep.ReputationScore,
		Claims:           claims,
		Corroboration:    corrob,
		Contradictions:   corrob.Contradictions,
		EvaluatedAt:      now,
	}, nil
}

// freshnessWeight decays exponentially from 1.0 at scrapedAt toward 0 as the
// article ages, reaching 0.5 at halfLife.
func freshnessWeight(scrapedAt, now time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 1.0
	}
	age := now.Sub(scrapedAt)
	if age <= 0 {
		return 1.0
	}
	return math.Pow(0.5, age.Hours()/halfLife.Hours())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
