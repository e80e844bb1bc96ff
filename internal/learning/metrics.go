package learning

import (
	"sync"
	"time"
)

// ScrapeOutcome is one scrape attempt's result, recorded by L1's scraper
// capability (mirrors record_scrape_result's parameter shape in the
// Python adaptive-learning integration test).
type ScrapeOutcome struct {
	SourceID      string
	ScraperType   string
	Success       bool
	ArticlesCount int
	LatencyMS     float64
	ErrorType     string
}

// ValidationOutcome is one article's pass/fail result through
// deduplication and quality filtering.
type ValidationOutcome struct {
	ArticleID string
	SourceID  string
	Valid     bool
	Issues    int
}

// ArticleOutcome is a downstream usage observation: whether an article
// already accepted into the pipeline was actually used by L3/L4.
type ArticleOutcome struct {
	ArticleID      string
	SourceID       string
	UsedDownstream bool
	QualityRating  float64
	FeedbackType   string
}

// sourceMetrics is the rolling counters kept per source.
type sourceMetrics struct {
	scrapesOK      int
	scrapesFailed  int
	articlesTotal  int
	latencySumMS   float64
	validAccepted  int
	validRejected  int
	usedDownstream int
	discarded      int
	qualitySum     float64
	qualityCount   int
	lastErrorType  string
	lastUpdated    time.Time
}

// SourceSnapshot is a read-only view of a source's accumulated metrics,
// the input the AutoTuner reasons over.
type SourceSnapshot struct {
	SourceID         string
	ScrapeSuccessRate float64
	AvgLatencyMS     float64
	ValidationRate   float64
	DownstreamRate   float64
	AvgQuality       float64
	LastErrorType    string
	LastUpdated      time.Time
}

// MetricsTracker accumulates raw pipeline outcomes per source. It never
// touches reputation directly; it is read by the AutoTuner and exposed
// for dashboards. Grounded on the integration shape exercised by the
// Python adaptive-learning test script's record_* calls; no dedicated
// metrics_tracker.py exists in the retrieval pack to port formulas from,
// so the counters themselves (success rate, average latency, acceptance
// rate) are the obvious ones implied by that script's field names.
type MetricsTracker struct {
	mu      sync.Mutex
	sources map[string]*sourceMetrics
}

// NewMetricsTracker builds an empty tracker.
func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{sources: make(map[string]*sourceMetrics)}
}

func (m *MetricsTracker) entry(sourceID string) *sourceMetrics {
	sm, ok := m.sources[sourceID]
	if !ok {
		sm = &sourceMetrics{}
		m.sources[sourceID] = sm
	}
	return sm
}

// RecordScrape records one scrape attempt.
func (m *MetricsTracker) RecordScrape(o ScrapeOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := m.entry(o.SourceID)
	if o.Success {
		sm.scrapesOK++
		sm.articlesTotal += o.ArticlesCount
	} else {
		sm.scrapesFailed++
		sm.lastErrorType = o.ErrorType
	}
	sm.latencySumMS += o.LatencyMS
	sm.lastUpdated = time.Now()
}

// RecordValidation records one article's quality/dedup validation result.
func (m *MetricsTracker) RecordValidation(o ValidationOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := m.entry(o.SourceID)
	if o.Valid {
		sm.validAccepted++
	} else {
		sm.validRejected++
	}
	sm.lastUpdated = time.Now()
}

// RecordArticleOutcome records whether an accepted article was actually
// used by a downstream layer (L3/L4), and at what quality rating.
func (m *MetricsTracker) RecordArticleOutcome(o ArticleOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := m.entry(o.SourceID)
	if o.UsedDownstream {
		sm.usedDownstream++
	} else {
		sm.discarded++
	}
	sm.qualitySum += o.QualityRating
	sm.qualityCount++
	sm.lastUpdated = time.Now()
}

// Snapshot returns the current accumulated metrics for a source, or
// false if nothing has been recorded for it yet.
func (m *MetricsTracker) Snapshot(sourceID string) (SourceSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.sources[sourceID]
	if !ok {
		return SourceSnapshot{}, false
	}

	scrapes := sm.scrapesOK + sm.scrapesFailed
	validations := sm.validAccepted + sm.validRejected
	downstream := sm.usedDownstream + sm.discarded

	snap := SourceSnapshot{SourceID: sourceID, LastErrorType: sm.lastErrorType, LastUpdated: sm.lastUpdated}
	if scrapes > 0 {
		snap.ScrapeSuccessRate = float64(sm.scrapesOK) / float64(scrapes)
		snap.AvgLatencyMS = sm.latencySumMS / float64(scrapes)
	} else {
		snap.ScrapeSuccessRate = 1.0
	}
	if validations > 0 {
		snap.ValidationRate = float64(sm.validAccepted) / float64(validations)
	} else {
		snap.ValidationRate = 1.0
	}
	if downstream > 0 {
		snap.DownstreamRate = float64(sm.usedDownstream) / float64(downstream)
	} else {
		snap.DownstreamRate = 0.5
	}
	if sm.qualityCount > 0 {
		snap.AvgQuality = sm.qualitySum / float64(sm.qualityCount)
	} else {
		snap.AvgQuality = 0.5
	}
	return snap, true
}

// Sources returns every source ID with at least one recorded metric.
func (m *MetricsTracker) Sources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sources))
	for id := range m.sources {
		out = append(out, id)
	}
	return out
}
