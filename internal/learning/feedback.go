// Package learning implements the adaptive learning subsystem (spec.md
// 4.8): a MetricsTracker that records raw pipeline outcomes, a FeedbackLoop
// that aggregates typed signals into per-source rates and nudges
// reputation, an AutoTuner that derives per-source operating parameters
// from those rates, and an Orchestrator that runs the two periodically.
// None of these may ever break the main pipeline: every entry point here
// logs and swallows its own failures rather than propagating them.
package learning

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

// Handler reacts to a feedback signal of a registered type. A handler
// error is logged and swallowed; it never reaches the caller of Receive.
type Handler func(ctx context.Context, signal domain.FeedbackSignal) error

type usageCounts struct{ used, discarded, viewed int }
type qualityCounts struct{ rejected, corrupted, lowScore, highScore int }
type relevanceCounts struct{ relevant, irrelevant, mismatch int }
type accuracyCounts struct {
	corroborated, contradicted           int
	sourceReliable, sourceUnreliable     int
	forecastAccurate, forecastInaccurate int
}

// FeedbackAggregation is the running per-source summary a FeedbackLoop
// maintains, grounded on feedback_loop.py's FeedbackAggregation dataclass.
type FeedbackAggregation struct {
	SourceID      string
	Usage         usageCounts
	Quality       qualityCounts
	Relevance     relevanceCounts
	Accuracy      accuracyCounts
	ManualCount   int
	FeedbackCount int
	LastUpdated   time.Time
}

// UsageRate is used/(used+discarded), defaulting to 0.5 (neutral) when
// nothing has been observed yet.
func (a *FeedbackAggregation) UsageRate() float64 {
	return rate(a.Usage.used, a.Usage.discarded)
}

// RelevanceRate is relevant/(relevant+irrelevant+mismatch).
func (a *FeedbackAggregation) RelevanceRate() float64 {
	return rate(a.Relevance.relevant, a.Relevance.irrelevant+a.Relevance.mismatch)
}

// AccuracyRate folds corroboration, source-reliability, and forecast
// signals into one rate, mirroring the source's verified+corroborated
// vs. disputed+contradicted ratio.
func (a *FeedbackAggregation) AccuracyRate() float64 {
	good := a.Accuracy.corroborated + a.Accuracy.sourceReliable + a.Accuracy.forecastAccurate
	bad := a.Accuracy.contradicted + a.Accuracy.sourceUnreliable + a.Accuracy.forecastInaccurate
	return rate(good, bad)
}

// Overall is the weighted combination spec.md 4.8 defines:
// 0.4*usage + 0.3*relevance + 0.3*accuracy.
func (a *FeedbackAggregation) Overall() float64 {
	return 0.4*a.UsageRate() + 0.3*a.RelevanceRate() + 0.3*a.AccuracyRate()
}

func rate(good, bad int) float64 {
	total := good + bad
	if total == 0 {
		return 0.5
	}
	return float64(good) / float64(total)
}

// reputationUpdateThreshold is the default pending-signal count that
// triggers a reputation nudge (spec.md 4.8, config.LearningConfig).
const reputationUpdateThreshold = 10

// reputationAdjustmentCap is the 0.02 in (positive_ratio - 0.5) * 2 * 0.02
// and also the +-2% cap on that adjustment.
const reputationAdjustmentCap = 0.02

// FeedbackLoop accepts FeedbackSignals, keeps a per-source running
// aggregation, and periodically nudges source reputation. Grounded on
// feedback_loop.py's FeedbackLoop class.
type FeedbackLoop struct {
	repo      repository.SourceReputationRepo
	threshold int
	log       zerolog.Logger

	mu           sync.Mutex
	aggregations map[string]*FeedbackAggregation
	pending      map[string][]domain.FeedbackSignal
	sourceLocks  map[string]*sync.Mutex
	handlers     map[domain.FeedbackType][]Handler
}

// NewFeedbackLoop builds a loop backed by repo. threshold <= 0 uses the
// spec default of 10.
func NewFeedbackLoop(repo repository.SourceReputationRepo, threshold int, log zerolog.Logger) *FeedbackLoop {
	if threshold <= 0 {
		threshold = reputationUpdateThreshold
	}
	return &FeedbackLoop{
		repo:         repo,
		threshold:    threshold,
		log:          log.With().Str("component", "feedback_loop").Logger(),
		aggregations: make(map[string]*FeedbackAggregation),
		pending:      make(map[string][]domain.FeedbackSignal),
		sourceLocks:  make(map[string]*sync.Mutex),
		handlers:     make(map[domain.FeedbackType][]Handler),
	}
}

// RegisterHandler adds a handler invoked whenever a signal of type t is
// received, in addition to aggregation bookkeeping.
func (f *FeedbackLoop) RegisterHandler(t domain.FeedbackType, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[t] = append(f.handlers[t], h)
}

func (f *FeedbackLoop) lockFor(sourceID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.sourceLocks[sourceID]
	if !ok {
		l = &sync.Mutex{}
		f.sourceLocks[sourceID] = l
	}
	return l
}

// Receive records one signal: updates the per-source aggregation, runs
// any registered handlers (errors logged and swallowed, never returned),
// and triggers a reputation update once enough signals have buffered.
//
// Feedback-handler errors are deliberately NOT turned into a secondary
// FeedbackSignal (spec.md 9 leaves this open): a handler that fails on
// its own output would re-enter this same path and risk an amplifying
// loop. Logging is enough to surface the failure to an operator without
// letting learning machinery feed itself.
func (f *FeedbackLoop) Receive(ctx context.Context, signal domain.FeedbackSignal) {
	if signal.Timestamp.IsZero() {
		signal.Timestamp = time.Now()
	}

	f.runHandlers(ctx, signal)

	if signal.SourceID == "" {
		return
	}

	lock := f.lockFor(signal.SourceID)
	lock.Lock()
	defer lock.Unlock()

	f.mu.Lock()
	agg, ok := f.aggregations[signal.SourceID]
	if !ok {
		agg = &FeedbackAggregation{SourceID: signal.SourceID}
		f.aggregations[signal.SourceID] = agg
	}
	f.mu.Unlock()

	applySignal(agg, signal)
	agg.FeedbackCount++
	agg.LastUpdated = signal.Timestamp

	f.mu.Lock()
	f.pending[signal.SourceID] = append(f.pending[signal.SourceID], signal)
	pendingCount := len(f.pending[signal.SourceID])
	f.mu.Unlock()

	if pendingCount >= f.threshold {
		f.triggerReputationUpdate(ctx, signal.SourceID)
	}
}

// ReceiveBatch records multiple signals in order.
func (f *FeedbackLoop) ReceiveBatch(ctx context.Context, signals []domain.FeedbackSignal) {
	for _, s := range signals {
		f.Receive(ctx, s)
	}
}

func (f *FeedbackLoop) runHandlers(ctx context.Context, signal domain.FeedbackSignal) {
	f.mu.Lock()
	handlers := append([]Handler(nil), f.handlers[signal.FeedbackType]...)
	f.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, signal); err != nil {
			f.log.Error().Err(err).Str("feedback_type", string(signal.FeedbackType)).
				Str("source_id", signal.SourceID).Msg("feedback handler failed")
		}
	}
}

func applySignal(agg *FeedbackAggregation, s domain.FeedbackSignal) {
	switch s.FeedbackType {
	case domain.FeedbackArticleUsed:
		agg.Usage.used++
	case domain.FeedbackArticleDiscarded:
		agg.Usage.discarded++
	case domain.FeedbackArticleViewed:
		agg.Usage.viewed++
	case domain.FeedbackQualityRejected:
		agg.Quality.rejected++
	case domain.FeedbackContentCorrupted:
		agg.Quality.corrupted++
	case domain.FeedbackLowQualityScore:
		agg.Quality.lowScore++
	case domain.FeedbackHighQualityScore:
		agg.Quality.highScore++
	case domain.FeedbackRelevantMatch:
		agg.Relevance.relevant++
	case domain.FeedbackIrrelevantMatch:
		agg.Relevance.irrelevant++
	case domain.FeedbackTopicMismatch:
		agg.Relevance.mismatch++
	case domain.FeedbackCorroborated:
		agg.Accuracy.corroborated++
	case domain.FeedbackContradicted:
		agg.Accuracy.contradicted++
	case domain.FeedbackSourceReliable:
		agg.Accuracy.sourceReliable++
	case domain.FeedbackSourceUnreliable:
		agg.Accuracy.sourceUnreliable++
	case domain.FeedbackForecastAccurate:
		agg.Accuracy.forecastAccurate++
	case domain.FeedbackForecastInaccurate:
		agg.Accuracy.forecastInaccurate++
	case domain.FeedbackManualOverride, domain.FeedbackManualFlag, domain.FeedbackManualCorrection:
		agg.ManualCount++
	}
}

// positive classifies a feedback type as a vote in favour of the source
// (true), against it (false), or neutral (ok=false).
func positive(t domain.FeedbackType) (isPositive, ok bool) {
	switch t {
	case domain.FeedbackArticleUsed, domain.FeedbackInsightActedOn, domain.FeedbackHighQualityScore,
		domain.FeedbackRelevantMatch, domain.FeedbackCorroborated, domain.FeedbackSourceReliable,
		domain.FeedbackForecastAccurate:
		return true, true
	case domain.FeedbackArticleDiscarded, domain.FeedbackInsightIgnored, domain.FeedbackLowQualityScore,
		domain.FeedbackQualityRejected, domain.FeedbackContentCorrupted, domain.FeedbackIrrelevantMatch,
		domain.FeedbackTopicMismatch, domain.FeedbackContradicted, domain.FeedbackSourceUnreliable,
		domain.FeedbackForecastInaccurate:
		return false, true
	default:
		return false, false
	}
}

// triggerReputationUpdate applies the pending signals' positive/negative
// ratio as a reputation nudge, then clears the pending buffer. Must be
// called with the source's lock held.
func (f *FeedbackLoop) triggerReputationUpdate(ctx context.Context, sourceID string) {
	f.mu.Lock()
	batch := f.pending[sourceID]
	f.pending[sourceID] = nil
	f.mu.Unlock()

	var pos, neg int
	for _, s := range batch {
		if isPos, ok := positive(s.FeedbackType); ok {
			if isPos {
				pos++
			} else {
				neg++
			}
		}
	}

	total := pos + neg
	ratio := 0.5
	if total > 0 {
		ratio = float64(pos) / float64(total)
	}
	adjustment := (ratio - 0.5) * 2 * reputationAdjustmentCap
	if adjustment > reputationAdjustmentCap {
		adjustment = reputationAdjustmentCap
	}
	if adjustment < -reputationAdjustmentCap {
		adjustment = -reputationAdjustmentCap
	}

	if f.repo == nil {
		return
	}

	rep, found, err := f.repo.Get(ctx, sourceID)
	if err != nil {
		f.log.Error().Err(err).Str("source_id", sourceID).Msg("load reputation for learning update failed")
		return
	}
	if !found {
		rep = domain.SourceReputation{
			SourceID:        sourceID,
			Tier:            domain.TierUnknown,
			ReputationScore: domain.BaseReputationScore(domain.TierUnknown),
		}
	}

	rep.ReputationScore += adjustment
	if rep.ReputationScore < 0 {
		rep.ReputationScore = 0
	}
	if ceiling := domain.TierMaxReputation(rep.Tier); rep.ReputationScore > ceiling {
		rep.ReputationScore = ceiling
	}
	rep.LastUpdated = time.Now()

	if rep.ReputationScore < domain.AutoDisableThreshold && rep.TotalArticles() >= domain.AutoDisableMinObservations {
		rep.AutoDisabled = true
	}

	if err := f.repo.Update(ctx, rep); err != nil {
		f.log.Error().Err(err).Str("source_id", sourceID).Msg("learning reputation update failed")
		return
	}
	_ = f.repo.AppendHistory(ctx, sourceID, domain.ReputationHistoryPoint{Timestamp: rep.LastUpdated, Score: rep.ReputationScore})

	f.log.Debug().Str("source_id", sourceID).Float64("adjustment", adjustment).
		Float64("score", rep.ReputationScore).Msg("applied learning reputation adjustment")
}

// Aggregation returns a copy of a source's current aggregation, or false
// if nothing has been observed yet.
func (f *FeedbackLoop) Aggregation(sourceID string) (FeedbackAggregation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg, ok := f.aggregations[sourceID]
	if !ok {
		return FeedbackAggregation{}, false
	}
	return *agg, true
}

// LowPerforming returns source IDs whose overall score is below
// threshold and which have accumulated at least minSignals feedback
// events, the minimum needed for the rate to be meaningful.
func (f *FeedbackLoop) LowPerforming(threshold float64, minSignals int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id, agg := range f.aggregations {
		if agg.FeedbackCount >= minSignals && agg.Overall() < threshold {
			out = append(out, id)
		}
	}
	return out
}
