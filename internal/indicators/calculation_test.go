package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestCalculate_FrequencyCountZeroMatchesIsNeutralBaseline(t *testing.T) {
	def := domain.IndicatorDefinition{IndicatorID: "IND1", CalculationType: domain.CalcFrequencyCount}
	value := Calculate(def, nil, nil, time.Now())
	assert.Equal(t, 50.0, value.Value)
	assert.Equal(t, 0, value.ArticleCount)
}

func TestCalculate_FrequencyCountScalesWithMatchesAndCapsAt100(t *testing.T) {
	def := domain.IndicatorDefinition{IndicatorID: "IND1", CalculationType: domain.CalcFrequencyCount}
	matched := []MatchedArticle{
		{ArticleID: "a1", Matches: 3, MatchScore: 1.0},
		{ArticleID: "a2", Matches: 4, MatchScore: 1.0},
		{ArticleID: "a3", Matches: 5, MatchScore: 1.0},
	}
	// total matches = 12, 50 + min(50, 12*5=60) = 100
	value := Calculate(def, matched, nil, time.Now())
	assert.Equal(t, 100.0, value.Value)
}

func TestCalculate_SentimentAggregateRescales(t *testing.T) {
	def := domain.IndicatorDefinition{IndicatorID: "IND2", CalculationType: domain.CalcSentimentAggregate}
	matched := []MatchedArticle{
		{ArticleID: "a1", Sentiment: 0.5, MatchScore: 1.0, Matches: 3},
		{ArticleID: "a2", Sentiment: -0.1, MatchScore: 0.8, Matches: 2},
	}
	// mean sentiment = 0.2, rescaled (0.2+1)*50 = 60
	value := Calculate(def, matched, nil, time.Now())
	assert.InDelta(t, 60.0, value.Value, 0.001)
	assert.NotNil(t, value.SentimentScore)
	assert.InDelta(t, 0.2, *value.SentimentScore, 0.001)
}

func TestCalculate_CompositeRollsUpSiblingValues(t *testing.T) {
	def := domain.IndicatorDefinition{
		IndicatorID:     "ECO_COMPOSITE",
		CalculationType: domain.CalcComposite,
		CompositeOf:     map[string]float64{"ECO_A": 0.6, "ECO_B": 0.4},
	}
	siblings := map[string]domain.IndicatorValue{
		"ECO_A": {IndicatorID: "ECO_A", Value: 80},
		"ECO_B": {IndicatorID: "ECO_B", Value: 40},
	}
	// (80*0.6 + 40*0.4) / 1.0 = 64
	value := Calculate(def, nil, siblings, time.Now())
	assert.InDelta(t, 64.0, value.Value, 0.001)
}

func TestCalculate_ConfidenceFormula(t *testing.T) {
	def := domain.IndicatorDefinition{IndicatorID: "IND3", CalculationType: domain.CalcFrequencyCount}
	matched := []MatchedArticle{
		{ArticleID: "a1", MatchScore: 1.0, Matches: 3},
		{ArticleID: "a2", MatchScore: 0.8, Matches: 2},
		{ArticleID: "a3", MatchScore: 0.4, Matches: 1},
	}
	// avg_match_score = (1.0+0.8+0.4)/3 = 0.7333; article_factor = min(1, 3/5) = 0.6
	// confidence = 0.6 * 0.7333 = 0.44
	value := Calculate(def, matched, nil, time.Now())
	assert.InDelta(t, 0.44, value.Confidence, 0.001)
}
