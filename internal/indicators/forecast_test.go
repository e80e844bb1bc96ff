package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestForecaster_ProducesOneClippedPointPerDay(t *testing.T) {
	f := NewForecaster()
	now := time.Now()
	values := make([]float64, 30)
	for i := range values {
		values[i] = 40 + float64(i)*0.5
	}
	series := buildSeries(now.Add(-30*24*time.Hour), values)

	points := f.Forecast(series, 7)
	assert.Len(t, points, 7)
	for i, p := range points {
		assert.Equal(t, i+1, p.DaysAhead)
		assert.GreaterOrEqual(t, p.ForecastValue, 0.0)
		assert.LessOrEqual(t, p.ForecastValue, 100.0)
		assert.LessOrEqual(t, p.LowerBound, p.ForecastValue)
		assert.GreaterOrEqual(t, p.UpperBound, p.ForecastValue)
		assert.Equal(t, domain.ForecastEnsemble, p.Method)
	}
}

func TestForecaster_ConfidenceDecaysWithDaysAhead(t *testing.T) {
	f := NewForecaster()
	now := time.Now()
	values := make([]float64, 30)
	for i := range values {
		values[i] = 50 + float64(i%5)
	}
	series := buildSeries(now.Add(-30*24*time.Hour), values)

	points := f.Forecast(series, 10)
	assert.Greater(t, points[0].Confidence, points[9].Confidence)
}

func TestForecaster_IntervalWidensWithDaysAhead(t *testing.T) {
	f := NewForecaster()
	now := time.Now()
	values := make([]float64, 30)
	for i := range values {
		values[i] = 50 + float64(i%7)*3
	}
	series := buildSeries(now.Add(-30*24*time.Hour), values)

	points := f.Forecast(series, 10)
	firstWidth := points[0].UpperBound - points[0].LowerBound
	lastWidth := points[9].UpperBound - points[9].LowerBound
	assert.GreaterOrEqual(t, lastWidth, firstWidth)
}

func TestForecaster_ShortSeriesFallsBackToFlatForecast(t *testing.T) {
	f := NewForecaster()
	now := time.Now()
	series := buildSeries(now, []float64{50, 52})

	points := f.Forecast(series, 3)
	assert.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, domain.ForecastWeightedAverage, p.Method)
	}
}

func TestInverseMSEWeights_LowerErrorGetsHigherWeight(t *testing.T) {
	weights := inverseMSEWeights(map[domain.ForecastMethod]float64{
		domain.ForecastLinear:          1.0,
		domain.ForecastHoltLinear:      4.0,
	})
	assert.Greater(t, weights[domain.ForecastLinear], weights[domain.ForecastHoltLinear])
}
