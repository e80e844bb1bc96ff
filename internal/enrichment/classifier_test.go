package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestRuleClassifier_MatchesPoliticalUnrestKeywords(t *testing.T) {
	c := NewRuleClassifier()
	preds := c.Classify("Protest turns violent as curfew declared", "Police used tear gas to disperse the protest near parliament.")

	var found bool
	for _, p := range preds {
		if p.Indicator == IndicatorPoliticalUnrest {
			found = true
			assert.GreaterOrEqual(t, p.Confidence, 0.65)
		}
	}
	assert.True(t, found, "expected POL_UNREST prediction, got %v", preds)
}

func TestRuleClassifier_NoKeywordsYieldsNoPredictions(t *testing.T) {
	c := NewRuleClassifier()
	preds := c.Classify("Local bakery wins award", "A neighborhood bakery received a community award this week.")
	assert.Empty(t, preds)
}

func TestHybridClassifier_RuleOnlyWhenMLUnfitted(t *testing.T) {
	hc := NewHybridClassifier(nil, 0.3)
	preds := hc.Classify("Fuel shortage worsens nationwide", "Supply chain disruption and fuel shortage hit transport sector hard.", domain.PESTELEconomic)

	assert.NotEmpty(t, preds)
	for _, p := range preds {
		assert.Equal(t, "rule_only", p.Method)
		assert.Zero(t, p.MLConfidence)
	}
}

func TestHybridClassifier_TopFourLimit(t *testing.T) {
	hc := NewHybridClassifier(nil, 0.0)
	title := "Crisis: curfew, inflation, currency collapse, supply chain shortage, cyclone, power cut, hospital outbreak"
	body := "protest riot unrest strike; price hike cost of living; exchange rate depreciation; " +
		"consumer confidence retail sales; supply chain shortage import restriction; tourist arrival tourism; " +
		"cyclone flood monsoon; port congestion railway; power cut load shedding; hospital outbreak epidemic"

	preds := hc.Classify(title, body, domain.PESTELEconomic)
	assert.LessOrEqual(t, len(preds), 4)
	for i := 1; i < len(preds); i++ {
		assert.GreaterOrEqual(t, preds[i-1].Confidence, preds[i].Confidence)
	}
}

type fakeMLClassifier struct {
	fitted bool
	result map[IndicatorLabel]float64
}

func (f fakeMLClassifier) Classify(string, string, domain.PESTELCategory) map[IndicatorLabel]float64 {
	return f.result
}
func (f fakeMLClassifier) Fitted() bool { return f.fitted }

func TestHybridClassifier_BlendsRuleAndMLWhenBothFire(t *testing.T) {
	ml := fakeMLClassifier{fitted: true, result: map[IndicatorLabel]float64{IndicatorInflation: 0.9}}
	hc := NewHybridClassifier(ml, 0.0)

	preds := hc.Classify("Inflation hits record high", "Inflation and cost of living continue to climb across the country.", domain.PESTELEconomic)

	var inflation *IndicatorPrediction
	for i := range preds {
		if preds[i].Indicator == IndicatorInflation {
			inflation = &preds[i]
		}
	}
	if assert.NotNil(t, inflation) {
		assert.Equal(t, "hybrid", inflation.Method)
		// rule_conf is high (>0.8) since "inflation" matches in both title
		// and body and "cost of living" matches in body, so the
		// rule-confidence weight override of 0.9 applies.
		assert.Greater(t, inflation.RuleConfidence, 0.8)
		expected := inflation.RuleConfidence*0.9 + 0.9*0.1
		assert.InDelta(t, expected, inflation.Confidence, 0.001)
	}
}
