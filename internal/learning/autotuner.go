package learning

import "time"

// TunedParameters is one source's adjusted operating parameters, applied
// atomically by the Orchestrator at the end of a learning cycle.
type TunedParameters struct {
	SourceID           string
	TTL                time.Duration
	QualityThreshold   float64
	DetectionThreshold float64
}

// AutoTuner derives per-source TTL, quality-threshold, and
// detection-threshold adjustments from observed hit/miss rates and
// downstream acceptance (spec.md 4.8). No auto_tuner.py exists anywhere
// in the retrieval pack to port formulas from; this is authored directly
// from the spec's one-line description plus the parameter names the
// Python integration test (test_adaptive_learning.py) exercises via
// get_optimal_parameters (timeout_ms, max_retries, concurrency,
// quality_threshold), narrowed to the three the spec calls out.
type AutoTuner struct {
	metrics  *MetricsTracker
	feedback *FeedbackLoop

	baseTTL                time.Duration
	baseQualityThreshold   float64
	baseDetectionThreshold float64
}

// NewAutoTuner builds a tuner over shared MetricsTracker/FeedbackLoop
// state. Base values seed sources with no history yet.
func NewAutoTuner(metrics *MetricsTracker, feedback *FeedbackLoop, baseTTL time.Duration, baseQualityThreshold, baseDetectionThreshold float64) *AutoTuner {
	return &AutoTuner{
		metrics:                metrics,
		feedback:               feedback,
		baseTTL:                baseTTL,
		baseQualityThreshold:   baseQualityThreshold,
		baseDetectionThreshold: baseDetectionThreshold,
	}
}

// Tune computes adjusted parameters for one source. A source that scrapes
// reliably and whose articles are consistently used downstream earns a
// shorter TTL (poll more often, the content is worth it) and a lower
// quality bar (the source already tends to clear it); an unreliable or
// low-acceptance source gets a longer TTL (back off) and a higher bar.
func (a *AutoTuner) Tune(sourceID string) TunedParameters {
	params := TunedParameters{
		SourceID:           sourceID,
		TTL:                a.baseTTL,
		QualityThreshold:   a.baseQualityThreshold,
		DetectionThreshold: a.baseDetectionThreshold,
	}

	snap, haveMetrics := a.metrics.Snapshot(sourceID)
	if haveMetrics {
		switch {
		case snap.ScrapeSuccessRate < 0.5:
			params.TTL = scaleDuration(a.baseTTL, 2.0)
		case snap.ScrapeSuccessRate > 0.95 && snap.DownstreamRate > 0.7:
			params.TTL = scaleDuration(a.baseTTL, 0.5)
		}

		if snap.ValidationRate < 0.5 {
			params.QualityThreshold = clamp01(a.baseQualityThreshold + 0.15)
		} else if snap.ValidationRate > 0.9 && snap.DownstreamRate > 0.7 {
			params.QualityThreshold = clamp01(a.baseQualityThreshold - 0.10)
		}
	}

	if a.feedback != nil {
		if agg, ok := a.feedback.Aggregation(sourceID); ok {
			overall := agg.Overall()
			switch {
			case overall < 0.4:
				params.DetectionThreshold = clamp01(a.baseDetectionThreshold + 0.10)
			case overall > 0.75:
				params.DetectionThreshold = clamp01(a.baseDetectionThreshold - 0.05)
			}
		}
	}

	return params
}

// TuneAll computes tuned parameters for every source the MetricsTracker
// has observed.
func (a *AutoTuner) TuneAll() []TunedParameters {
	sources := a.metrics.Sources()
	out := make([]TunedParameters, 0, len(sources))
	for _, id := range sources {
		out = append(out, a.Tune(id))
	}
	return out
}

func scaleDuration(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
