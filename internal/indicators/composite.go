package indicators

import "github.com/aristath/newsintel/internal/domain"

// CategoryScores groups indicator values by PESTEL category and computes
// each category's confidence-weighted mean (spec.md 4.6: "weighted by
// confidence within category").
func CategoryScores(defs map[string]domain.IndicatorDefinition, values map[string]domain.IndicatorValue) map[domain.PESTELCategory]float64 {
	sums := make(map[domain.PESTELCategory]float64)
	weights := make(map[domain.PESTELCategory]float64)

	for id, def := range defs {
		v, ok := values[id]
		if !ok {
			continue
		}
		weight := v.Confidence
		if weight == 0 {
			weight = 0.01 // avoid losing the indicator entirely when confidence underflows
		}
		sums[def.PESTELCategory] += v.Value * weight
		weights[def.PESTELCategory] += weight
	}

	out := make(map[domain.PESTELCategory]float64, len(sums))
	for cat, sum := range sums {
		w := weights[cat]
		if w == 0 {
			continue
		}
		out[cat] = sum / w
	}
	return out
}

// NAI computes the National Activity Index: category scores rolled up
// across the six PESTEL categories using domain.CategoryWeight, then
// classified into its interpretation band.
func NAI(categoryScores map[domain.PESTELCategory]float64) (float64, domain.NAIBand) {
	var weightedSum, weightSum float64
	for cat, score := range categoryScores {
		w := domain.CategoryWeight(cat)
		weightedSum += score * w
		weightSum += w
	}
	if weightSum == 0 {
		return 50, domain.NAIBandFor(50)
	}
	value := weightedSum / weightSum
	return value, domain.NAIBandFor(value)
}
