package domain

import "time"

// FeedbackType is the closed set of ~20 signal kinds the learning system
// understands, spanning usage, quality, relevance, accuracy, and manual
// corrections (spec.md 3, 4.8).
type FeedbackType string

const (
	// Usage
	FeedbackArticleUsed       FeedbackType = "article_used"
	FeedbackArticleDiscarded  FeedbackType = "article_discarded"
	FeedbackArticleViewed     FeedbackType = "article_viewed"
	FeedbackInsightActedOn    FeedbackType = "insight_acted_on"
	FeedbackInsightIgnored    FeedbackType = "insight_ignored"

	// Quality
	FeedbackQualityRejected   FeedbackType = "quality_rejected"
	FeedbackContentCorrupted  FeedbackType = "content_corrupted"
	FeedbackLowQualityScore   FeedbackType = "low_quality_score"
	FeedbackHighQualityScore  FeedbackType = "high_quality_score"

	// Relevance
	FeedbackRelevantMatch     FeedbackType = "relevant_match"
	FeedbackIrrelevantMatch   FeedbackType = "irrelevant_match"
	FeedbackTopicMismatch     FeedbackType = "topic_mismatch"

	// Accuracy / validation
	FeedbackCorroborated      FeedbackType = "corroborated"
	FeedbackContradicted      FeedbackType = "contradicted"
	FeedbackSourceUnreliable  FeedbackType = "source_unreliable"
	FeedbackSourceReliable    FeedbackType = "source_reliable"
	FeedbackForecastAccurate  FeedbackType = "forecast_accurate"
	FeedbackForecastInaccurate FeedbackType = "forecast_inaccurate"

	// Manual
	FeedbackManualOverride    FeedbackType = "manual_override"
	FeedbackManualFlag        FeedbackType = "manual_flag"
	FeedbackManualCorrection  FeedbackType = "manual_correction"
)

// FeedbackSeverity indicates how strongly a signal should move a source's
// reputation or a parameter adjustment.
type FeedbackSeverity string

const (
	SeverityInfo     FeedbackSeverity = "info"
	SeverityWarning  FeedbackSeverity = "warning"
	SeverityCriticalFeedback FeedbackSeverity = "critical"
)

// Layer identifies the pipeline stage a signal originated from.
type Layer string

const (
	LayerIngestion   Layer = "L1"
	LayerEnrichment  Layer = "L2"
	LayerIndicators  Layer = "L3"
	LayerInsights    Layer = "L4"
	LayerPresentation Layer = "L5"
	LayerLearning    Layer = "learning"
)

// FeedbackSignal is a typed event emitted retrograde from any layer back to
// L1's adaptive learning subsystem. Retention is 30 days (spec.md 3).
type FeedbackSignal struct {
	FeedbackType  FeedbackType
	Severity      FeedbackSeverity
	SourceLayer   Layer
	ArticleID     string // empty when not article-scoped
	SourceID      string // empty when not source-scoped
	QualityRating float64
	Timestamp     time.Time
	Details       map[string]any
}

// FeedbackRetention is how long a signal remains relevant for aggregation.
const FeedbackRetention = 30 * 24 * time.Hour
