package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/newsintel/internal/domain"
)

// forecastConfidenceDecayPerDay is the single linear confidence-decay rate
// applied per day-ahead, picked from the source's observed 0.06-0.10/day
// range (spec.md 9).
const forecastConfidenceDecayPerDay = 0.08

// Forecaster produces day-ahead ForecastPoints from an indicator's recent
// series using four models combined into an inverse-MSE-weighted ensemble
// (spec.md 4.6).
type Forecaster struct {
	backtestFraction float64
}

func NewForecaster() *Forecaster {
	return &Forecaster{backtestFraction: 0.3}
}

// Forecast produces horizonDays ForecastPoints, each clipped to [0,100]
// with an interval that widens as sqrt(daysAhead) * residual stddev.
func (f *Forecaster) Forecast(series []domain.IndicatorValue, horizonDays int) []domain.ForecastPoint {
	values := valuesOf(series)
	if len(values) < 4 {
		return flatForecast(values, horizonDays)
	}

	models := map[domain.ForecastMethod]func(int) float64{
		domain.ForecastLinear:               linearForecast(values),
		domain.ForecastExponentialSmoothing: exponentialSmoothingForecast(values),
		domain.ForecastHoltLinear:           holtLinearForecast(values),
		domain.ForecastWeightedAverage:      weightedAverageForecast(values),
	}

	mses := backtestMSE(values, models, f.backtestFraction)
	weights := inverseMSEWeights(mses)
	resid := residualStdDev(values, models[domain.ForecastLinear])
	baseConfidence := ensembleConfidence(weights)

	points := make([]domain.ForecastPoint, 0, horizonDays)
	for day := 1; day <= horizonDays; day++ {
		var ensembleValue float64
		for method, model := range models {
			ensembleValue += model(day) * weights[method]
		}
		ensembleValue = clip(ensembleValue)

		interval := math.Sqrt(float64(day)) * resid
		// Confidence decays linearly with day_ahead at a fixed 0.08/day rate
		// on top of the agreement-derived base (spec.md 9 flags the source's
		// decay rate as varying 0.06-0.10 across methods; 0.08 is picked here
		// as the single rate every ForecastPoint uses), floored at 0.1.
		confidence := math.Max(baseConfidence-forecastConfidenceDecayPerDay*float64(day-1), 0.1)

		points = append(points, domain.ForecastPoint{
			DaysAhead:     day,
			ForecastValue: ensembleValue,
			LowerBound:    clip(ensembleValue - interval),
			UpperBound:    clip(ensembleValue + interval),
			Confidence:    confidence,
			Method:        domain.ForecastEnsemble,
		})
	}
	return points
}

func valuesOf(series []domain.IndicatorValue) []float64 {
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v.Value
	}
	return out
}

func flatForecast(values []float64, horizonDays int) []domain.ForecastPoint {
	last := 50.0
	if len(values) > 0 {
		last = values[len(values)-1]
	}
	points := make([]domain.ForecastPoint, 0, horizonDays)
	for day := 1; day <= horizonDays; day++ {
		points = append(points, domain.ForecastPoint{
			DaysAhead: day, ForecastValue: clip(last), LowerBound: clip(last - 5), UpperBound: clip(last + 5),
			Confidence: 0.3, Method: domain.ForecastWeightedAverage,
		})
	}
	return points
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// linearForecast fits simple linear regression and projects forward.
func linearForecast(values []float64) func(int) float64 {
	xs := make([]float64, len(values))
	for i := range values {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, values, nil, false)
	last := float64(len(values) - 1)
	return func(day int) float64 {
		return alpha + beta*(last+float64(day))
	}
}

// exponentialSmoothingForecast optimises alpha by grid-search MSE
// minimization over the held-in series, then projects the last smoothed
// level forward flat (simple exponential smoothing has no trend term).
func exponentialSmoothingForecast(values []float64) func(int) float64 {
	alpha := optimizeAlpha(values)
	level := values[0]
	for _, v := range values[1:] {
		level = alpha*v + (1-alpha)*level
	}
	return func(int) float64 { return level }
}

func optimizeAlpha(values []float64) float64 {
	bestAlpha, bestMSE := 0.3, math.Inf(1)
	for a := 0.05; a <= 0.95; a += 0.05 {
		mse := smoothingMSE(values, a)
		if mse < bestMSE {
			bestMSE = mse
			bestAlpha = a
		}
	}
	return bestAlpha
}

func smoothingMSE(values []float64, alpha float64) float64 {
	if len(values) < 2 {
		return 0
	}
	level := values[0]
	var sse float64
	for _, v := range values[1:] {
		sse += (v - level) * (v - level)
		level = alpha*v + (1-alpha)*level
	}
	return sse / float64(len(values)-1)
}

// holtLinearForecast jointly grid-searches (alpha, beta) for Holt's linear
// trend method, then projects level + h*trend forward.
func holtLinearForecast(values []float64) func(int) float64 {
	_, _, level, trend := optimizeHolt(values)
	return func(day int) float64 {
		return level + float64(day)*trend
	}
}

func optimizeHolt(values []float64) (bestAlpha, bestBeta, finalLevel, finalTrend float64) {
	bestMSE := math.Inf(1)
	for a := 0.1; a <= 0.9; a += 0.2 {
		for b := 0.1; b <= 0.9; b += 0.2 {
			mse, level, trend := holtMSE(values, a, b)
			if mse < bestMSE {
				bestMSE = mse
				bestAlpha, bestBeta, finalLevel, finalTrend = a, b, level, trend
			}
		}
	}
	return
}

func holtMSE(values []float64, alpha, beta float64) (mse, level, trend float64) {
	if len(values) < 3 {
		return 0, values[len(values)-1], 0
	}
	level = values[0]
	trend = values[1] - values[0]
	var sse float64
	for _, v := range values[1:] {
		prevLevel := level
		level = alpha*v + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		sse += (v - (prevLevel + trend)) * (v - (prevLevel + trend))
	}
	return sse / float64(len(values)-1), level, trend
}

// weightedAverageForecast is a dampened-trend weighted moving average:
// recent points carry more weight, and the implied trend decays toward
// zero over the forecast horizon.
func weightedAverageForecast(values []float64) func(int) float64 {
	window := values
	if len(window) > 10 {
		window = window[len(window)-10:]
	}
	var weightedSum, weightSum float64
	for i, v := range window {
		w := float64(i + 1)
		weightedSum += v * w
		weightSum += w
	}
	avg := weightedSum / weightSum

	trend := 0.0
	if len(window) >= 2 {
		trend = (window[len(window)-1] - window[0]) / float64(len(window)-1)
	}
	const dampening = 0.8
	return func(day int) float64 {
		factor := 0.0
		mult := dampening
		for i := 0; i < day; i++ {
			factor += mult
			mult *= dampening
		}
		return avg + trend*factor
	}
}

// backtestMSE walk-forward backtests each model over the final
// backtestFraction of the series.
func backtestMSE(values []float64, models map[domain.ForecastMethod]func(int) float64, fraction float64) map[domain.ForecastMethod]float64 {
	splitIdx := int(float64(len(values)) * (1 - fraction))
	if splitIdx < 2 {
		splitIdx = len(values) / 2
	}
	if splitIdx < 1 {
		splitIdx = 1
	}

	mses := make(map[domain.ForecastMethod]float64, len(models))
	for method := range models {
		var sse float64
		var count int
		for i := splitIdx; i < len(values); i++ {
			trainModel := buildModel(method, values[:i])
			predicted := trainModel(1)
			actual := values[i]
			sse += (predicted - actual) * (predicted - actual)
			count++
		}
		if count == 0 {
			mses[method] = 1
			continue
		}
		mses[method] = sse / float64(count)
	}
	return mses
}

func buildModel(method domain.ForecastMethod, values []float64) func(int) float64 {
	switch method {
	case domain.ForecastLinear:
		return linearForecast(values)
	case domain.ForecastExponentialSmoothing:
		return exponentialSmoothingForecast(values)
	case domain.ForecastHoltLinear:
		return holtLinearForecast(values)
	default:
		return weightedAverageForecast(values)
	}
}

// inverseMSEWeights turns model backtest MSEs into normalized weights:
// lower error, higher weight.
func inverseMSEWeights(mses map[domain.ForecastMethod]float64) map[domain.ForecastMethod]float64 {
	weights := make(map[domain.ForecastMethod]float64, len(mses))
	var sum float64
	for method, mse := range mses {
		inv := 1.0 / math.Max(mse, 0.01)
		weights[method] = inv
		sum += inv
	}
	if sum == 0 {
		return weights
	}
	for method := range weights {
		weights[method] /= sum
	}
	return weights
}

// ensembleConfidence is higher when models agree (weights cluster tightly)
// and lower when they disagree (spec.md 4.6: "agreement between models
// determines confidence").
func ensembleConfidence(weights map[domain.ForecastMethod]float64) float64 {
	if len(weights) == 0 {
		return 0.3
	}
	mean := 1.0 / float64(len(weights))
	var variance float64
	for _, w := range weights {
		variance += (w - mean) * (w - mean)
	}
	variance /= float64(len(weights))
	// High variance (one model dominates) => models disagree => lower
	// confidence; low variance (near-uniform weights) => high agreement.
	agreement := 1 - math.Min(variance*float64(len(weights))*4, 1)
	confidence := 0.5 + agreement*0.45
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// residualStdDev is the standard deviation of the linear model's in-sample
// residuals, the sigma term in the interval-widening formula.
func residualStdDev(values []float64, linear func(int) float64) float64 {
	xs := make([]float64, len(values))
	for i := range values {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, values, nil, false)
	residuals := make([]float64, len(values))
	for i, v := range values {
		residuals[i] = v - (alpha + beta*xs[i])
	}
	return stat.StdDev(residuals, nil)
}
