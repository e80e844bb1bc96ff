package learning

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/domain"
)

func TestAutoTuner_Tune_UnreliableSourceGetsLongerTTLAndHigherQualityBar(t *testing.T) {
	metrics := NewMetricsTracker()
	for i := 0; i < 10; i++ {
		metrics.RecordScrape(ScrapeOutcome{SourceID: "flaky", Success: i < 3})
	}
	for i := 0; i < 10; i++ {
		metrics.RecordValidation(ValidationOutcome{SourceID: "flaky", Valid: i < 2})
	}

	tuner := NewAutoTuner(metrics, nil, 15*time.Minute, 0.5, 0.5)
	params := tuner.Tune("flaky")

	assert.Equal(t, 30*time.Minute, params.TTL)
	assert.InDelta(t, 0.65, params.QualityThreshold, 1e-9)
}

func TestAutoTuner_Tune_ReliableHighAcceptanceSourceGetsShorterTTLAndLowerBar(t *testing.T) {
	metrics := NewMetricsTracker()
	for i := 0; i < 20; i++ {
		metrics.RecordScrape(ScrapeOutcome{SourceID: "solid", Success: true})
	}
	for i := 0; i < 20; i++ {
		metrics.RecordValidation(ValidationOutcome{SourceID: "solid", Valid: true})
	}
	for i := 0; i < 20; i++ {
		metrics.RecordArticleOutcome(ArticleOutcome{SourceID: "solid", UsedDownstream: true, QualityRating: 0.9})
	}

	tuner := NewAutoTuner(metrics, nil, 15*time.Minute, 0.5, 0.5)
	params := tuner.Tune("solid")

	assert.Equal(t, 7*time.Minute+30*time.Second, params.TTL)
	assert.InDelta(t, 0.4, params.QualityThreshold, 1e-9)
}

func TestAutoTuner_Tune_UnknownSourceFallsBackToBaseParameters(t *testing.T) {
	tuner := NewAutoTuner(NewMetricsTracker(), nil, 15*time.Minute, 0.5, 0.3)
	params := tuner.Tune("ghost")
	assert.Equal(t, 15*time.Minute, params.TTL)
	assert.Equal(t, 0.5, params.QualityThreshold)
	assert.Equal(t, 0.3, params.DetectionThreshold)
}

func TestAutoTuner_Tune_LowOverallFeedbackRaisesDetectionThreshold(t *testing.T) {
	repo := newFakeReputationRepo()
	feedback := NewFeedbackLoop(repo, 100, zerolog.Nop())
	for i := 0; i < 6; i++ {
		feedback.Receive(context.Background(), domain.FeedbackSignal{FeedbackType: domain.FeedbackArticleDiscarded, SourceID: "noisy"})
	}

	tuner := NewAutoTuner(NewMetricsTracker(), feedback, time.Hour, 0.5, 0.5)
	params := tuner.Tune("noisy")
	assert.InDelta(t, 0.6, params.DetectionThreshold, 1e-9)
}

func TestAutoTuner_TuneAll_CoversEveryObservedSource(t *testing.T) {
	metrics := NewMetricsTracker()
	metrics.RecordScrape(ScrapeOutcome{SourceID: "x", Success: true})
	metrics.RecordScrape(ScrapeOutcome{SourceID: "y", Success: true})

	tuner := NewAutoTuner(metrics, nil, time.Hour, 0.5, 0.5)
	all := tuner.TuneAll()
	assert.Len(t, all, 2)
}
