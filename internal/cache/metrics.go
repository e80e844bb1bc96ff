package cache

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instrumentation for the smart cache, grouped
// the way the wider pack's telemetry registries are (one struct, vectors
// labeled by the dimension that varies, a constructor that registers
// everything at once).
type Metrics struct {
	Hits     *prometheus.CounterVec
	Misses   *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	CheckDur *prometheus.HistogramVec
}

// NewMetrics builds and registers the cache metrics against reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the global
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsintel_cache_hits_total",
			Help: "Smart cache hits by reason.",
		}, []string{"reason"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsintel_cache_misses_total",
			Help: "Smart cache misses by reason.",
		}, []string{"reason"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsintel_cache_detector_errors_total",
			Help: "Change detector failures by source type.",
		}, []string{"method"}),
		CheckDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsintel_cache_check_duration_seconds",
			Help:    "Time spent running change detection, by source type.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}
	reg.MustRegister(m.Hits, m.Misses, m.Errors, m.CheckDur)
	return m
}

func (m *Metrics) recordHit(reason string) {
	if m == nil {
		return
	}
	m.Hits.WithLabelValues(reason).Inc()
}

func (m *Metrics) recordMiss(reason string) {
	if m == nil {
		return
	}
	m.Misses.WithLabelValues(reason).Inc()
}

func (m *Metrics) recordError(method string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(method).Inc()
}
