package domain

import "time"

// ReputationTier is the qualitative grouping that seeds a source's
// quantitative reputation score.
type ReputationTier string

const (
	TierOfficial    ReputationTier = "official"
	TierOne         ReputationTier = "tier1"
	TierTwo         ReputationTier = "tier2"
	TierUnknown     ReputationTier = "unknown"
	TierBlacklisted ReputationTier = "blacklisted"
)

// BaseReputationScore returns the seed score for a tier (spec.md 4.3).
func BaseReputationScore(tier ReputationTier) float64 {
	switch tier {
	case TierOfficial:
		return 0.95
	case TierOne:
		return 0.80
	case TierTwo:
		return 0.65
	case TierUnknown:
		return 0.30
	case TierBlacklisted:
		return 0.0
	default:
		return 0.30
	}
}

// ReputationHistoryPoint is one entry in a source's append-only history.
type ReputationHistoryPoint struct {
	Timestamp time.Time
	Score     float64
}

// SourceReputation tracks a content source's trustworthiness over time.
// Owned by L1; mutated only by the L1 filter and the adaptive learning
// feedback loop, and only under the per-source serialization described in
// spec.md section 5.
type SourceReputation struct {
	SourceID        string
	Tier            ReputationTier
	ReputationScore float64 // in [0,1]
	QualityScore    float64 // in [0,1]
	AcceptedCount   int
	RejectedCount   int
	AutoDisabled    bool
	LastUpdated     time.Time
	History         []ReputationHistoryPoint
}

// TotalArticles returns accepted+rejected, which must equal the total
// number of validation signals recorded for the source (invariant 2).
func (r *SourceReputation) TotalArticles() int {
	return r.AcceptedCount + r.RejectedCount
}

// TierMaxReputation returns the ceiling a tier's reputation score may climb
// to under positive reinforcement; a source never outgrows its tier via
// confirmations alone.
func TierMaxReputation(tier ReputationTier) float64 {
	switch tier {
	case TierOfficial:
		return 1.0
	case TierOne:
		return 0.92
	case TierTwo:
		return 0.78
	case TierUnknown:
		return 0.55
	case TierBlacklisted:
		return 0.05
	default:
		return 0.55
	}
}

// AutoDisableThreshold is the single reconciled reputation floor below
// which a source is auto-disabled once it has enough observations.
//
// spec.md section 9 flags this as ambiguous in the source (hard-coded in
// one place, tier-derived in another). Decision (recorded in DESIGN.md):
// the threshold is a flat 0.40 regardless of tier, matching the worked
// example in spec.md section 8 scenario 3; tier only affects how high a
// source's score can climb back via TierMaxReputation.
const AutoDisableThreshold = 0.40

// AutoDisableMinObservations is the minimum number of recorded observations
// before a reputation below the threshold triggers auto-disable.
const AutoDisableMinObservations = 20
