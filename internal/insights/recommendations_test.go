package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestRecommendationEngine_ForRisk_ImmediateActionYieldsPriorityOne(t *testing.T) {
	e := NewRecommendationEngine()
	recs := e.ForRisk(domain.DetectedRisk{Title: "X", RequiresImmediateAction: true})
	if assert.NotEmpty(t, recs) {
		assert.Equal(t, domain.RecommendationImmediate, recs[0].Category)
		assert.Equal(t, 1, recs[0].Priority)
	}
}

func TestRecommendationEngine_ForRisk_LowUrgencyYieldsLongTerm(t *testing.T) {
	e := NewRecommendationEngine()
	recs := e.ForRisk(domain.DetectedRisk{Title: "X", Urgency: 1})
	if assert.NotEmpty(t, recs) {
		assert.Equal(t, domain.RecommendationLongTerm, recs[0].Category)
	}
}

func TestRecommendationEngine_ForOpportunity_HighUrgencyYieldsImmediate(t *testing.T) {
	e := NewRecommendationEngine()
	recs := e.ForOpportunity(domain.DetectedOpportunity{Title: "X", Urgency: 5, Feasibility: 0.9})
	if assert.NotEmpty(t, recs) {
		assert.Equal(t, domain.RecommendationImmediate, recs[0].Category)
		assert.Equal(t, 1, recs[0].Priority)
	}
}
