package insights

import "github.com/aristath/newsintel/internal/domain"

// OpportunityRuleDef is one catalog entry for the rule-based opportunity
// detector: fires when a favorable indicator crosses a threshold.
type OpportunityRuleDef struct {
	Code        string
	Title       string
	Description string
	Category    string
	IndicatorID string
	Operator    Operator
	Threshold   float64
	BaseValue   float64 // potential_value, 0-10
	Feasibility float64 // base feasibility, 0-1, before scale modifier
	WindowDays  int
}

// DefaultOpportunityRules is the built-in catalog, mirroring the risk
// catalog's indicator coverage from the favorable side.
var DefaultOpportunityRules = []OpportunityRuleDef{
	{Code: "TOURISM_UPSWING", Title: "Tourism demand upswing", Description: "Tourism indicator shows sustained strength, favoring hospitality-adjacent expansion.", Category: "market", IndicatorID: "ECO_TOURISM", Operator: OpGreaterThan, Threshold: 65, BaseValue: 7.5, Feasibility: 0.65, WindowDays: 90},
	{Code: "CONSUMER_CONFIDENCE_UPSWING", Title: "Consumer confidence rebound", Description: "Consumer confidence indicator is strong, favoring discretionary-spend offerings.", Category: "market", IndicatorID: "ECO_CONSUMER_CONF", Operator: OpGreaterThan, Threshold: 65, BaseValue: 6.5, Feasibility: 0.70, WindowDays: 60},
	{Code: "CURRENCY_STABILITY_WINDOW", Title: "Currency stability window", Description: "Currency indicator is stable, favoring import/export commitments and FX hedging decisions.", Category: "financial", IndicatorID: "ECO_CURRENCY", Operator: OpGreaterThan, Threshold: 70, BaseValue: 6.0, Feasibility: 0.75, WindowDays: 45},
	{Code: "SUPPLY_CHAIN_EASING", Title: "Supply chain easing", Description: "Transport and logistics indicator has normalized, favoring inventory rebuild.", Category: "operational", IndicatorID: "OPS_TRANSPORT", Operator: OpGreaterThan, Threshold: 70, BaseValue: 5.5, Feasibility: 0.80, WindowDays: 30},
}

// scaleFeasibilityMultiplier adjusts opportunity feasibility by company
// scale: larger companies have more slack (capital, headcount, supplier
// relationships) to execute on an opportunity window.
func scaleFeasibilityMultiplier(s domain.CompanyScale) float64 {
	switch s {
	case domain.ScaleSmall:
		return 0.85
	case domain.ScaleMedium:
		return 1.0
	case domain.ScaleLarge:
		return 1.10
	case domain.ScaleEnterprise:
		return 1.15
	default:
		return 1.0
	}
}

// OpportunityDetector fires DefaultOpportunityRules (or an injected catalog)
// against an indicator snapshot.
type OpportunityDetector struct {
	rules []OpportunityRuleDef
}

func NewOpportunityDetector(rules []OpportunityRuleDef) *OpportunityDetector {
	if rules == nil {
		rules = DefaultOpportunityRules
	}
	return &OpportunityDetector{rules: rules}
}

func (d *OpportunityDetector) Detect(profile domain.CompanyProfile, snap IndicatorSnapshot) []domain.DetectedOpportunity {
	var out []domain.DetectedOpportunity
	for _, rule := range d.rules {
		v, ok := snap.Values[rule.IndicatorID]
		if !ok {
			continue
		}
		fires := false
		switch rule.Operator {
		case OpGreaterThan:
			fires = v.Value > rule.Threshold
		case OpLessThan:
			fires = v.Value < rule.Threshold
		}
		if !fires {
			continue
		}

		feasibility := rule.Feasibility * scaleFeasibilityMultiplier(profile.Scale)
		if feasibility > 1.0 {
			feasibility = 1.0
		}

		out = append(out, domain.DetectedOpportunity{
			Code:                 rule.Code,
			CompanyID:            profile.CompanyID,
			Title:                rule.Title,
			Description:          rule.Description,
			Category:             rule.Category,
			Feasibility:          feasibility,
			Value:                rule.BaseValue,
			DetectionMethod:       domain.DetectionRuleBased,
			TriggeringIndicators: map[string]float64{rule.IndicatorID: v.Value},
		})
	}
	return out
}
