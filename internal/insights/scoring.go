package insights

import "github.com/aristath/newsintel/internal/domain"

// categoryBaseImpact are the category base impacts (0-10) from spec.md 4.7.
var categoryBaseImpact = map[string]float64{
	"operational":  7.0,
	"financial":    8.0,
	"competitive":  6.0,
	"reputational": 6.5,
	"compliance":   5.5,
	"strategic":    7.5,
}

type thresholdInfo struct {
	IndicatorID string
	Operator    Operator
	Threshold   float64
}

// BuildThresholdIndex indexes rule/pattern catalogs by risk code so the
// scorer can re-derive breach severity without carrying threshold/operator
// on DetectedRisk itself. Rule-catalog entries take priority over pattern
// entries sharing a code.
func BuildThresholdIndex(rules []RiskRuleDef, patterns []HistoricalPattern) map[string]thresholdInfo {
	idx := make(map[string]thresholdInfo, len(rules)+len(patterns))
	for _, p := range patterns {
		idx[p.Code] = thresholdInfo{p.IndicatorID, p.Operator, p.Threshold}
	}
	for _, r := range rules {
		idx[r.Code] = thresholdInfo{r.IndicatorID, r.Operator, r.Threshold}
	}
	return idx
}

// RiskScorer computes probability/impact/urgency/confidence and the
// resulting final_score + severity for a detected risk (spec.md 4.7).
type RiskScorer struct {
	thresholds map[string]thresholdInfo
}

func NewRiskScorer(rules []RiskRuleDef, patterns []HistoricalPattern) *RiskScorer {
	return &RiskScorer{thresholds: BuildThresholdIndex(rules, patterns)}
}

func (s *RiskScorer) Score(risk domain.DetectedRisk, profile domain.CompanyProfile, snap IndicatorSnapshot) domain.DetectedRisk {
	risk.Probability = s.probability(risk, snap)
	risk.Impact = s.impact(risk, profile)
	risk.Urgency = s.urgency(risk, snap)
	risk.Confidence = s.confidence(risk)
	risk.FinalScore = domain.FinalScoreOf(risk.Probability, risk.Impact, risk.Urgency, risk.Confidence)
	risk.SeverityLevel = domain.SeverityFor(risk.FinalScore)
	risk.RequiresImmediateAction = (risk.SeverityLevel == domain.SeverityCritical || risk.SeverityLevel == domain.SeverityHigh) &&
		risk.Urgency >= 4
	return risk
}

func (s *RiskScorer) probability(risk domain.DetectedRisk, snap IndicatorSnapshot) float64 {
	p := risk.Probability

	info, ok := s.thresholds[risk.Code]
	if ok {
		severeBreaches, moderateBreaches := 0, 0
		for indicatorID, value := range risk.TriggeringIndicators {
			if indicatorID != info.IndicatorID {
				continue
			}
			severe, moderate := breach(value, info.Threshold, info.Operator)
			switch {
			case severe:
				severeBreaches++
			case moderate:
				moderateBreaches++
			}
		}
		p += float64(severeBreaches)*0.10 + float64(moderateBreaches)*0.05
	}

	falling := 0
	for _, t := range snap.Trends {
		if t.Direction == domain.TrendFalling || t.Direction == domain.TrendStrongFalling {
			falling++
		}
	}
	if falling > 3 {
		p += 0.05
	}

	return minF(1.0, p)
}

func (s *RiskScorer) impact(risk domain.DetectedRisk, profile domain.CompanyProfile) float64 {
	base, ok := categoryBaseImpact[risk.Category]
	if !ok {
		base = risk.Impact
	}

	base *= domain.ScaleMultiplier(profile.Scale)

	debtModifier := profile.DebtModifier
	if debtModifier == 0 {
		debtModifier = 1.0
	}
	base *= debtModifier

	return minF(10.0, base)
}

func (s *RiskScorer) urgency(risk domain.DetectedRisk, snap IndicatorSnapshot) int {
	urgency := risk.Urgency

	rapidDecline := 0
	for indicatorID := range risk.TriggeringIndicators {
		if t, ok := snap.Trends[indicatorID]; ok &&
			(t.Direction == domain.TrendFalling || t.Direction == domain.TrendStrongFalling) {
			rapidDecline++
		}
	}
	if rapidDecline >= 2 && urgency < 5 {
		urgency++
	}

	if urgency < 1 {
		return 1
	}
	if urgency > 5 {
		return 5
	}
	return urgency
}

func (s *RiskScorer) confidence(risk domain.DetectedRisk) float64 {
	confidence := domain.ConfidenceFor(risk.DetectionMethod)
	if risk.Confidence > confidence {
		confidence = risk.Confidence
	}

	switch len(risk.TriggeringIndicators) {
	case 0:
		// no adjustment
	case 1:
		confidence -= 0.05
	default:
		if len(risk.TriggeringIndicators) >= 3 {
			confidence += 0.05
		}
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// OpportunityScorer computes probability/impact/urgency/confidence for a
// detected opportunity, reusing the same final_score/severity machinery as
// risks (spec.md 4.7 scores opportunities and risks through one model).
type OpportunityScorer struct {
	windowDays map[string]int
}

func NewOpportunityScorer(rules []OpportunityRuleDef) *OpportunityScorer {
	idx := make(map[string]int, len(rules))
	for _, r := range rules {
		idx[r.Code] = r.WindowDays
	}
	return &OpportunityScorer{windowDays: idx}
}

func (s *OpportunityScorer) Score(opp domain.DetectedOpportunity) domain.DetectedOpportunity {
	opp.Probability = opp.Feasibility
	opp.Impact = opp.Value
	opp.Urgency = urgencyFromWindow(s.windowDays[opp.Code])
	opp.Confidence = domain.ConfidenceFor(opp.DetectionMethod)
	opp.FinalScore = domain.FinalScoreOf(opp.Probability, opp.Impact, opp.Urgency, opp.Confidence)
	opp.SeverityLevel = domain.SeverityFor(opp.FinalScore)
	return opp
}

// urgencyFromWindow maps an opportunity's window of availability to the
// same 1-5 urgency scale risks use: the shorter the window, the higher the
// urgency, and a non-positive or over-60-day window scores 2.
func urgencyFromWindow(days int) int {
	switch {
	case days <= 0:
		return 2
	case days <= 14:
		return 5
	case days <= 30:
		return 4
	case days <= 60:
		return 3
	default:
		return 2
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
