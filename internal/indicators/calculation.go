package indicators

import (
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

// Calculate produces one IndicatorValue for an active indicator from its
// matched articles this run. siblingValues supplies sibling indicator values for
// composite/ratio/weighted_average calculation types (spec.md 4.6: "defined
// by the indicator's metadata").
func Calculate(def domain.IndicatorDefinition, matched []MatchedArticle, siblingValues map[string]domain.IndicatorValue, now time.Time) domain.IndicatorValue {
	value := domain.IndicatorValue{
		IndicatorID:  def.IndicatorID,
		Timestamp:    now,
		ArticleCount: len(matched),
	}

	switch def.CalculationType {
	case domain.CalcFrequencyCount:
		value.Value = frequencyCount(matched)
	case domain.CalcSentimentAggregate:
		v, raw := sentimentAggregate(matched)
		value.Value = v
		value.SentimentScore = raw
	case domain.CalcNumericExtraction:
		value.Value = numericExtraction(matched)
	case domain.CalcComposite, domain.CalcRatio, domain.CalcWeightedAverage:
		value.Value = compositeValue(def, siblingValues)
	default:
		value.Value = 50
	}

	value.RawCount = totalMatches(matched)
	value.Confidence = confidenceFor(matched)
	value.SourceArticles = articleIDs(matched)
	return value
}

// frequencyCount implements `50 + min(50, matches*5)`, neutral-baselined so
// zero matches still emits a defined (not missing) value.
func frequencyCount(matched []MatchedArticle) float64 {
	total := totalMatches(matched)
	return 50 + minF(50, float64(total)*5)
}

// sentimentAggregate rescales the mean matched-article sentiment from
// [-1,1] to [0,100].
func sentimentAggregate(matched []MatchedArticle) (float64, *float64) {
	if len(matched) == 0 {
		return 50, nil
	}
	var sum float64
	for _, m := range matched {
		sum += m.Sentiment
	}
	mean := sum / float64(len(matched))
	rescaled := (mean + 1) * 50
	return rescaled, &mean
}

// numericExtraction averages explicitly extracted numeric values from
// matched articles (e.g. a percentage or index figure mentioned in text),
// falling back to the neutral baseline when none carried a parsed number.
func numericExtraction(matched []MatchedArticle) float64 {
	var sum float64
	var count int
	for _, m := range matched {
		if m.HasNumeric {
			sum += m.NumericValue
			count++
		}
	}
	if count == 0 {
		return 50
	}
	avg := sum / float64(count)
	if avg < 0 {
		avg = 0
	}
	if avg > 100 {
		avg = 100
	}
	return avg
}

// compositeValue rolls up an indicator's CompositeOf map (indicator_id ->
// relative weight) against already-computed sibling values this run.
func compositeValue(def domain.IndicatorDefinition, siblingValues map[string]domain.IndicatorValue) float64 {
	if len(def.CompositeOf) == 0 {
		return 50
	}
	var weightedSum, weightSum float64
	for indicatorID, weight := range def.CompositeOf {
		sibling, ok := siblingValues[indicatorID]
		if !ok {
			continue
		}
		weightedSum += sibling.Value * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return 50
	}
	return weightedSum / weightSum
}

func totalMatches(matched []MatchedArticle) int {
	total := 0
	for _, m := range matched {
		total += m.Matches
	}
	return total
}

// confidenceFor implements `min(1, article_count/5) * avg_match_score`.
func confidenceFor(matched []MatchedArticle) float64 {
	if len(matched) == 0 {
		return 0
	}
	var sumScore float64
	for _, m := range matched {
		sumScore += m.MatchScore
	}
	avgScore := sumScore / float64(len(matched))
	articleFactor := minF(1, float64(len(matched))/5)
	return articleFactor * avgScore
}

func articleIDs(matched []MatchedArticle) []string {
	ids := make([]string, 0, len(matched))
	for _, m := range matched {
		ids = append(ids, m.ArticleID)
	}
	return ids
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
