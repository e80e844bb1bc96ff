package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestBreach_SevereAndModerateBandsForLessThanOperator(t *testing.T) {
	severe, moderate := breach(35, 50, OpLessThan)
	assert.True(t, severe)
	assert.True(t, moderate) // severe implies moderate's raw condition also holds

	severe, moderate = breach(45, 50, OpLessThan)
	assert.False(t, severe)
	assert.True(t, moderate)

	severe, moderate = breach(55, 50, OpLessThan)
	assert.False(t, severe)
	assert.False(t, moderate)
}

func TestRuleDetector_FiresOnlyWhenIndicatorBreachesThreshold(t *testing.T) {
	d := NewRuleDetector(nil)
	snap := IndicatorSnapshot{Values: map[string]domain.IndicatorValue{
		"OPS_TRANSPORT": {IndicatorID: "OPS_TRANSPORT", Value: 35},
		"ECO_CURRENCY":  {IndicatorID: "ECO_CURRENCY", Value: 80}, // well above threshold, no fire
	}}

	risks := d.Detect("co-1", snap)
	var codes []string
	for _, r := range risks {
		codes = append(codes, r.Code)
		assert.Equal(t, domain.DetectionRuleBased, r.DetectionMethod)
	}
	assert.Contains(t, codes, "SUPPLY_CHAIN_RISK")
	assert.NotContains(t, codes, "CURRENCY_RISK")
}

func TestPatternDetector_AttachesHistoricalReasoning(t *testing.T) {
	d := NewPatternDetector(nil)
	snap := IndicatorSnapshot{Values: map[string]domain.IndicatorValue{
		"OPS_TRANSPORT": {IndicatorID: "OPS_TRANSPORT", Value: 35},
	}}

	risks := d.Detect("co-1", snap)
	assert.Len(t, risks, 1)
	assert.Equal(t, domain.DetectionPattern, risks[0].DetectionMethod)
	assert.NotEmpty(t, risks[0].Reasoning)
}

func TestMergeRisks_BothMethodsFiringTagsCombinedAndUnionsIndicators(t *testing.T) {
	rule := []domain.DetectedRisk{{
		Code: "SUPPLY_CHAIN_RISK", Probability: 0.60, Urgency: 3,
		DetectionMethod: domain.DetectionRuleBased,
		TriggeringIndicators: map[string]float64{"OPS_TRANSPORT": 35},
	}}
	pattern := []domain.DetectedRisk{{
		Code: "SUPPLY_CHAIN_RISK", Probability: 0.55, Urgency: 3,
		DetectionMethod:       domain.DetectionPattern,
		TriggeringIndicators: map[string]float64{"OPS_TRANSPORT": 35},
		Reasoning:             "2022-05: lessons learned",
	}}

	merged := MergeRisks(rule, pattern)
	assert.Len(t, merged, 1)
	assert.Equal(t, domain.DetectionCombined, merged[0].DetectionMethod)
	assert.Equal(t, 0.60, merged[0].Probability) // higher of the two kept
	assert.Equal(t, "2022-05: lessons learned", merged[0].Reasoning)
}

func TestMergeRisks_OnlyOneMethodFiringKeepsItsOwnMethod(t *testing.T) {
	rule := []domain.DetectedRisk{{Code: "SUPPLY_CHAIN_RISK", DetectionMethod: domain.DetectionRuleBased}}
	merged := MergeRisks(rule, nil)
	assert.Len(t, merged, 1)
	assert.Equal(t, domain.DetectionRuleBased, merged[0].DetectionMethod)
}
