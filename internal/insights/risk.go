// Package insights implements Layer 4: converting a company's indicator
// snapshot into scored, narrated risks and opportunities (spec.md 4.7).
package insights

import (
	"strings"

	"github.com/aristath/newsintel/internal/domain"
)

// IndicatorSnapshot is the per-company view of current indicator values and
// their trends that risk/opportunity detectors fire against.
type IndicatorSnapshot struct {
	Values map[string]domain.IndicatorValue
	Trends map[string]domain.TrendResult
}

// Operator is the comparison a rule uses against an indicator value.
type Operator string

const (
	OpLessThan    Operator = "<"
	OpGreaterThan Operator = ">"
)

func breach(value, threshold float64, op Operator) (severe, moderate bool) {
	switch op {
	case OpLessThan:
		return value < threshold*0.8, value < threshold
	case OpGreaterThan:
		return value > threshold*1.2, value > threshold
	default:
		return false, false
	}
}

// RiskRuleDef is one catalog entry for the rule-based risk detector.
type RiskRuleDef struct {
	Code            string
	Title           string
	Description     string
	Category        string // operational, financial, competitive, reputational, compliance, strategic
	IndicatorID     string
	Operator        Operator
	Threshold       float64
	BaseProbability float64
	BaseUrgency     int
}

// HistoricalPattern is one precedent the pattern-based risk detector matches
// against the same indicator thresholds, carrying a lessons-learned note for
// narrative historical context.
type HistoricalPattern struct {
	Code            string
	Title           string
	Description     string
	Category        string
	IndicatorID     string
	Operator        Operator
	Threshold       float64
	BaseProbability float64
	BaseUrgency     int
	HistoricalDate  string
	LessonsLearned  string
}

// DefaultRiskRules is the built-in rule catalog covering the six risk
// categories over the closed indicator-label ontology.
var DefaultRiskRules = []RiskRuleDef{
	{Code: "SUPPLY_CHAIN_RISK", Title: "Supply chain disruption", Description: "Transport and logistics indicators show sustained disruption.", Category: "operational", IndicatorID: "OPS_TRANSPORT", Operator: OpLessThan, Threshold: 50, BaseProbability: 0.60, BaseUrgency: 3},
	{Code: "CURRENCY_RISK", Title: "Currency volatility", Description: "Currency stability indicator has deteriorated.", Category: "financial", IndicatorID: "ECO_CURRENCY", Operator: OpLessThan, Threshold: 45, BaseProbability: 0.55, BaseUrgency: 3},
	{Code: "INFLATION_RISK", Title: "Input cost inflation", Description: "Inflation pressure indicator is elevated.", Category: "financial", IndicatorID: "ECO_INFLATION", Operator: OpGreaterThan, Threshold: 60, BaseProbability: 0.55, BaseUrgency: 2},
	{Code: "UNREST_RISK", Title: "Political instability", Description: "Political unrest indicator is elevated.", Category: "strategic", IndicatorID: "POL_UNREST", Operator: OpGreaterThan, Threshold: 55, BaseProbability: 0.50, BaseUrgency: 3},
	{Code: "CONSUMER_DEMAND_RISK", Title: "Weakening consumer demand", Description: "Consumer confidence indicator is low.", Category: "competitive", IndicatorID: "ECO_CONSUMER_CONF", Operator: OpLessThan, Threshold: 45, BaseProbability: 0.45, BaseUrgency: 2},
	{Code: "POWER_RELIABILITY_RISK", Title: "Power supply reliability", Description: "Power stability indicator shows sustained shortfalls.", Category: "operational", IndicatorID: "TEC_POWER", Operator: OpLessThan, Threshold: 50, BaseProbability: 0.50, BaseUrgency: 3},
	{Code: "HEALTHCARE_CAPACITY_RISK", Title: "Healthcare capacity strain", Description: "Healthcare system indicator is under strain.", Category: "compliance", IndicatorID: "SOC_HEALTHCARE", Operator: OpLessThan, Threshold: 45, BaseProbability: 0.40, BaseUrgency: 2},
}

// DefaultHistoricalPatterns is the built-in precedent catalog for the
// pattern-based detector.
var DefaultHistoricalPatterns = []HistoricalPattern{
	{Code: "SUPPLY_CHAIN_RISK", Title: "Supply chain disruption echoes 2022 fuel crisis", Description: "Transport disruption levels resemble the 2022 fuel-queue period.", Category: "operational", IndicatorID: "OPS_TRANSPORT", Operator: OpLessThan, Threshold: 50, BaseProbability: 0.55, BaseUrgency: 3, HistoricalDate: "2022-05", LessonsLearned: "Companies that pre-booked freight capacity absorbed the disruption with far less revenue loss than those that waited."},
	{Code: "CURRENCY_RISK", Title: "Currency volatility echoes 2022 devaluation", Description: "Currency indicator deterioration resembles the 2022 rupee devaluation.", Category: "financial", IndicatorID: "ECO_CURRENCY", Operator: OpLessThan, Threshold: 45, BaseProbability: 0.50, BaseUrgency: 3, HistoricalDate: "2022-03", LessonsLearned: "Firms with hedged USD exposure fared significantly better through the prior devaluation cycle."},
}

// RuleDetector fires DefaultRiskRules (or an injected catalog) against an
// indicator snapshot.
type RuleDetector struct {
	rules []RiskRuleDef
}

func NewRuleDetector(rules []RiskRuleDef) *RuleDetector {
	if rules == nil {
		rules = DefaultRiskRules
	}
	return &RuleDetector{rules: rules}
}

func (d *RuleDetector) Detect(companyID string, snap IndicatorSnapshot) []domain.DetectedRisk {
	var out []domain.DetectedRisk
	for _, rule := range d.rules {
		v, ok := snap.Values[rule.IndicatorID]
		if !ok {
			continue
		}
		severe, moderate := breach(v.Value, rule.Threshold, rule.Operator)
		if !severe && !moderate {
			continue
		}
		out = append(out, domain.DetectedRisk{
			Code:                 rule.Code,
			CompanyID:            companyID,
			Title:                rule.Title,
			Description:          rule.Description,
			Category:             rule.Category,
			Probability:          rule.BaseProbability,
			Urgency:              rule.BaseUrgency,
			DetectionMethod:       domain.DetectionRuleBased,
			TriggeringIndicators: map[string]float64{rule.IndicatorID: v.Value},
		})
	}
	return out
}

// PatternDetector fires DefaultHistoricalPatterns (or an injected catalog)
// against an indicator snapshot, attaching historical-precedent reasoning.
type PatternDetector struct {
	patterns []HistoricalPattern
}

func NewPatternDetector(patterns []HistoricalPattern) *PatternDetector {
	if patterns == nil {
		patterns = DefaultHistoricalPatterns
	}
	return &PatternDetector{patterns: patterns}
}

func (d *PatternDetector) Detect(companyID string, snap IndicatorSnapshot) []domain.DetectedRisk {
	var out []domain.DetectedRisk
	for _, p := range d.patterns {
		v, ok := snap.Values[p.IndicatorID]
		if !ok {
			continue
		}
		severe, moderate := breach(v.Value, p.Threshold, p.Operator)
		if !severe && !moderate {
			continue
		}
		out = append(out, domain.DetectedRisk{
			Code:                 p.Code,
			CompanyID:            companyID,
			Title:                p.Title,
			Description:          p.Description,
			Category:             p.Category,
			Probability:          p.BaseProbability,
			Urgency:              p.BaseUrgency,
			DetectionMethod:       domain.DetectionPattern,
			TriggeringIndicators: map[string]float64{p.IndicatorID: v.Value},
			Reasoning:            strings.TrimSpace(p.HistoricalDate + ": " + p.LessonsLearned),
		})
	}
	return out
}

// MergeRisks unions rule-based and pattern-based detections, de-duplicating
// by Code: when both methods fire for the same code the result is tagged
// DetectionCombined and keeps the union of triggering indicators and the
// higher base probability; the pattern detector's historical reasoning is
// preserved either way.
func MergeRisks(rule, pattern []domain.DetectedRisk) []domain.DetectedRisk {
	byCode := make(map[string]domain.DetectedRisk)
	order := make([]string, 0, len(rule)+len(pattern))

	add := func(r domain.DetectedRisk) {
		existing, ok := byCode[r.Code]
		if !ok {
			byCode[r.Code] = r
			order = append(order, r.Code)
			return
		}
		merged := existing
		merged.DetectionMethod = domain.DetectionCombined
		if r.Probability > merged.Probability {
			merged.Probability = r.Probability
		}
		if r.Urgency > merged.Urgency {
			merged.Urgency = r.Urgency
		}
		if merged.TriggeringIndicators == nil {
			merged.TriggeringIndicators = map[string]float64{}
		}
		for k, v := range r.TriggeringIndicators {
			merged.TriggeringIndicators[k] = v
		}
		if merged.Reasoning == "" {
			merged.Reasoning = r.Reasoning
		}
		byCode[r.Code] = merged
	}

	for _, r := range rule {
		add(r)
	}
	for _, r := range pattern {
		add(r)
	}

	out := make([]domain.DetectedRisk, 0, len(order))
	for _, code := range order {
		out = append(out, byCode[code])
	}
	return out
}
