package domain

// ScoringProfile names a weight set used by the Business Impact Scorer to
// combine its six factor axes (spec.md 4.4).
type ScoringProfile string

const (
	ProfileBalanced           ScoringProfile = "balanced"
	ProfileUrgencyFocused     ScoringProfile = "urgency_focused"
	ProfileBusinessFocused    ScoringProfile = "business_focused"
	ProfileCredibilityFocused ScoringProfile = "credibility_focused"
	ProfileComprehensive      ScoringProfile = "comprehensive"
)

// ImpactFactors holds the six 0-100 factor axes before weighting.
type ImpactFactors struct {
	Severity       float64
	Credibility    float64
	GeographicScope float64
	TemporalUrgency float64
	VolumeMomentum  float64
	SectorRelevance float64
}

// ImpactWeights is a named weight profile over the six factor axes. Weights
// need not sum to 1.0 exactly; FinalScore normalizes by the weight sum so
// profiles can emphasize an axis without a manual renormalization step.
type ImpactWeights struct {
	Severity        float64
	Credibility     float64
	GeographicScope float64
	TemporalUrgency float64
	VolumeMomentum  float64
	SectorRelevance float64
}

// Sum returns the total weight, used to normalize FinalScore.
func (w ImpactWeights) Sum() float64 {
	return w.Severity + w.Credibility + w.GeographicScope + w.TemporalUrgency + w.VolumeMomentum + w.SectorRelevance
}

// WeightsForProfile returns the named weight profile (spec.md 4.4).
func WeightsForProfile(p ScoringProfile) ImpactWeights {
	switch p {
	case ProfileUrgencyFocused:
		return ImpactWeights{Severity: 0.20, Credibility: 0.10, GeographicScope: 0.10, TemporalUrgency: 0.35, VolumeMomentum: 0.15, SectorRelevance: 0.10}
	case ProfileBusinessFocused:
		return ImpactWeights{Severity: 0.20, Credibility: 0.10, GeographicScope: 0.15, TemporalUrgency: 0.10, VolumeMomentum: 0.10, SectorRelevance: 0.35}
	case ProfileCredibilityFocused:
		return ImpactWeights{Severity: 0.15, Credibility: 0.40, GeographicScope: 0.10, TemporalUrgency: 0.10, VolumeMomentum: 0.10, SectorRelevance: 0.15}
	case ProfileComprehensive:
		return ImpactWeights{Severity: 0.20, Credibility: 0.20, GeographicScope: 0.15, TemporalUrgency: 0.15, VolumeMomentum: 0.10, SectorRelevance: 0.20}
	case ProfileBalanced:
		fallthrough
	default:
		return ImpactWeights{Severity: 0.20, Credibility: 0.15, GeographicScope: 0.15, TemporalUrgency: 0.20, VolumeMomentum: 0.10, SectorRelevance: 0.20}
	}
}

// ImpactScore is the full output of the Business Impact Scorer for one
// article.
type ImpactScore struct {
	ArticleID        string
	Factors          ImpactFactors
	Profile          ScoringProfile
	Confidence       float64
	FinalScore       float64 // 0-100
	PriorityRank     int     // 1 (critical) .. 5
	CascadeEffects   map[string]float64 // sector_id -> cascaded impact
}

// PriorityRankFor classifies a 0-100 final score into a 1-5 rank, where 1 is
// the highest priority (spec.md 4.4).
func PriorityRankFor(score float64) int {
	switch {
	case score >= 85:
		return 1
	case score >= 70:
		return 2
	case score >= 50:
		return 3
	case score >= 30:
		return 4
	default:
		return 5
	}
}

// EventType is the closed set of event types that modulate sector impact
// via a static multiplier matrix (spec.md 4.4).
type EventType string

const (
	EventFuelShortage    EventType = "fuel_shortage"
	EventPowerCrisis     EventType = "power_crisis"
	EventCurrencyCrisis  EventType = "currency_crisis"
	EventNaturalDisaster EventType = "natural_disaster"
	EventPolicyChange    EventType = "policy_change"
)
