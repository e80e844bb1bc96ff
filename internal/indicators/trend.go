package indicators

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/newsintel/internal/domain"
)

// TrendDetector computes TrendResult over a rolling window of an
// indicator's time series (spec.md 4.6).
type TrendDetector struct {
	windowDays     int
	momentumDays   int
	changePointZ   float64
	seasonalityLag int
}

// NewTrendDetector builds a detector with the spec's defaults: a 30-day
// analysis window, 14-day RSI-style momentum, a 2-sigma change-point
// threshold, and a lag-7 (weekly) seasonality check.
func NewTrendDetector() *TrendDetector {
	return &TrendDetector{windowDays: 30, momentumDays: 14, changePointZ: 2.0, seasonalityLag: 7}
}

// Detect runs regression, momentum, change-point and seasonality analysis
// over series, which must be ordered oldest-to-newest.
func (d *TrendDetector) Detect(indicatorID string, series []domain.IndicatorValue) domain.TrendResult {
	result := domain.TrendResult{IndicatorID: indicatorID, WindowDays: d.windowDays}
	if len(series) < 2 {
		result.Direction = domain.TrendStable
		return result
	}

	windowed := lastN(series, d.windowDays)
	xs, ys := seriesToXY(windowed)

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	rSquared := stat.RSquared(xs, ys, nil, alpha, beta)
	pValue := approxPValue(xs, ys, alpha, beta, rSquared)

	result.Slope = beta
	result.RSquared = rSquared
	result.PValue = pValue
	result.Volatility = stat.StdDev(ys, nil)
	result.Momentum = momentum(lastN(series, d.momentumDays))
	result.IsSignificant = rSquared >= 0.3 && pValue < 0.05
	result.Direction = classifyDirection(beta, rSquared, pValue, result.Momentum)
	result.ChangePoints = changePoints(windowed, d.changePointZ)
	result.SeasonalityDetected = hasWeeklySeasonality(ys, d.seasonalityLag)

	return result
}

func lastN(series []domain.IndicatorValue, n int) []domain.IndicatorValue {
	if len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}

func seriesToXY(series []domain.IndicatorValue) ([]float64, []float64) {
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, v := range series {
		xs[i] = float64(i)
		ys[i] = v.Value
	}
	return xs, ys
}

// approxPValue derives a rough two-sided p-value for the regression slope
// from its t-statistic, using the normal approximation since gonum's stat
// package does not expose a t-distribution CDF directly usable here.
func approxPValue(xs, ys []float64, alpha, beta, rSquared float64) float64 {
	n := len(xs)
	if n < 3 {
		return 1.0
	}
	var sse float64
	for i := range xs {
		predicted := alpha + beta*xs[i]
		residual := ys[i] - predicted
		sse += residual * residual
	}
	dof := float64(n - 2)
	if dof <= 0 {
		return 1.0
	}
	mse := sse / dof
	_, varX := stat.MeanVariance(xs, nil)
	if varX == 0 {
		return 1.0
	}
	if mse == 0 {
		// Exact fit: a nonzero slope has unbounded t, a zero slope none.
		if beta == 0 {
			return 1.0
		}
		return 0
	}
	seBeta := math.Sqrt(mse / (varX * float64(n-1)))
	if seBeta == 0 {
		return 1.0
	}
	t := math.Abs(beta / seBeta)
	// Normal-approximation two-sided p-value; conservative for small n but
	// monotonic in |t|, which is all classifyDirection needs.
	p := 2 * (1 - normalCDF(t))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// momentum computes an RSI-style oscillator over the window: average gain
// vs average loss between consecutive points, rescaled to [-100,100].
func momentum(window []domain.IndicatorValue) float64 {
	if len(window) < 2 {
		return 0
	}
	var gainSum, lossSum float64
	for i := 1; i < len(window); i++ {
		delta := window[i].Value - window[i-1].Value
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}
	n := float64(len(window) - 1)
	avgGain := gainSum / n
	avgLoss := lossSum / n
	if avgGain+avgLoss == 0 {
		return 0
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	rsi := 100 - 100/(1+rs)
	// Rescale RSI's [0,100] (50 = no momentum) onto [-100,100].
	return (rsi - 50) * 2
}

// classifyDirection maps (slope, r-squared, p-value, momentum) onto the
// seven-level TrendDirection enum.
func classifyDirection(slope, rSquared, pValue, momentum float64) domain.TrendDirection {
	significant := rSquared >= 0.3 && pValue < 0.05
	strength := math.Abs(slope)

	switch {
	case !significant && math.Abs(momentum) < 10:
		return domain.TrendStable
	case slope > 0:
		switch {
		case significant && strength > 1.0:
			return domain.TrendStrongRising
		case significant || momentum > 20:
			return domain.TrendRising
		default:
			return domain.TrendWeakRising
		}
	case slope < 0:
		switch {
		case significant && strength > 1.0:
			return domain.TrendStrongFalling
		case significant || momentum < -20:
			return domain.TrendFalling
		default:
			return domain.TrendWeakFalling
		}
	default:
		return domain.TrendStable
	}
}

// changePoints flags indices whose rolling z-score exceeds the threshold,
// a cheap structural-break detector (spec.md 4.6: "rolling z-score,
// threshold 2 sigma").
func changePoints(series []domain.IndicatorValue, threshold float64) []time.Time {
	if len(series) < 5 {
		return nil
	}
	var points []time.Time
	window := 5
	for i := window; i < len(series); i++ {
		recent := series[i-window : i]
		var sum float64
		for _, v := range recent {
			sum += v.Value
		}
		mean := sum / float64(window)
		var variance float64
		for _, v := range recent {
			variance += (v.Value - mean) * (v.Value - mean)
		}
		stddev := math.Sqrt(variance / float64(window))
		if stddev == 0 {
			continue
		}
		z := (series[i].Value - mean) / stddev
		if math.Abs(z) >= threshold {
			points = append(points, series[i].Timestamp)
		}
	}
	return points
}

// hasWeeklySeasonality checks the lag-7 autocorrelation of the series
// against a significance floor.
func hasWeeklySeasonality(ys []float64, lag int) bool {
	if len(ys) <= lag+1 {
		return false
	}
	mean := stat.Mean(ys, nil)
	var num, den float64
	for i := 0; i < len(ys); i++ {
		den += (ys[i] - mean) * (ys[i] - mean)
	}
	for i := lag; i < len(ys); i++ {
		num += (ys[i] - mean) * (ys[i-lag] - mean)
	}
	if den == 0 {
		return false
	}
	autocorr := num / den
	return autocorr >= 0.4
}
