package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestCategoryScores_ConfidenceWeightedMean(t *testing.T) {
	defs := map[string]domain.IndicatorDefinition{
		"A": {IndicatorID: "A", PESTELCategory: domain.PESTELEconomic},
		"B": {IndicatorID: "B", PESTELCategory: domain.PESTELEconomic},
	}
	values := map[string]domain.IndicatorValue{
		"A": {IndicatorID: "A", Value: 80, Confidence: 1.0},
		"B": {IndicatorID: "B", Value: 20, Confidence: 0.5},
	}
	// weighted mean = (80*1.0 + 20*0.5) / (1.0+0.5) = 90/1.5 = 60
	scores := CategoryScores(defs, values)
	assert.InDelta(t, 60.0, scores[domain.PESTELEconomic], 0.001)
}

func TestNAI_CategoryWeightedRollup(t *testing.T) {
	scores := map[domain.PESTELCategory]float64{
		domain.PESTELEconomic: 80, // weight 1.2
		domain.PESTELSocial:   40, // weight 0.9
	}
	// (80*1.2 + 40*0.9) / (1.2+0.9) = (96+36)/2.1 = 62.857...
	value, band := NAI(scores)
	assert.InDelta(t, 62.857, value, 0.01)
	assert.Equal(t, domain.NAIBandFor(value), band)
}

func TestNAIBandFor_Bands(t *testing.T) {
	assert.Equal(t, domain.NAIVeryHigh, domain.NAIBandFor(85))
	assert.Equal(t, domain.NAIHigh, domain.NAIBandFor(70))
	assert.Equal(t, domain.NAICritical, domain.NAIBandFor(10))
}
