package learning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/newsintel/internal/domain"
)

type fakeReputationRepo struct {
	mu      sync.Mutex
	reps    map[string]domain.SourceReputation
	history map[string][]domain.ReputationHistoryPoint
}

func newFakeReputationRepo() *fakeReputationRepo {
	return &fakeReputationRepo{reps: map[string]domain.SourceReputation{}, history: map[string][]domain.ReputationHistoryPoint{}}
}

func (r *fakeReputationRepo) Get(_ context.Context, sourceID string) (domain.SourceReputation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reps[sourceID]
	return rep, ok, nil
}

func (r *fakeReputationRepo) Update(_ context.Context, rep domain.SourceReputation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reps[rep.SourceID] = rep
	return nil
}

func (r *fakeReputationRepo) AppendHistory(_ context.Context, sourceID string, point domain.ReputationHistoryPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[sourceID] = append(r.history[sourceID], point)
	return nil
}

func (r *fakeReputationRepo) History(_ context.Context, sourceID string, _, _ time.Time) ([]domain.ReputationHistoryPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[sourceID], nil
}

func TestFeedbackAggregation_RatesDefaultToNeutralWithNoSignals(t *testing.T) {
	agg := &FeedbackAggregation{}
	assert.Equal(t, 0.5, agg.UsageRate())
	assert.Equal(t, 0.5, agg.RelevanceRate())
	assert.Equal(t, 0.5, agg.AccuracyRate())
	assert.Equal(t, 0.5, agg.Overall())
}

func TestFeedbackAggregation_OverallWeightsUsageRelevanceAccuracy(t *testing.T) {
	agg := &FeedbackAggregation{}
	agg.Usage.used = 8
	agg.Usage.discarded = 2
	agg.Relevance.relevant = 6
	agg.Relevance.irrelevant = 4
	agg.Accuracy.corroborated = 9
	agg.Accuracy.contradicted = 1

	// usage=0.8, relevance=0.6, accuracy=0.9 -> 0.4*0.8 + 0.3*0.6 + 0.3*0.9 = 0.77
	assert.InDelta(t, 0.77, agg.Overall(), 1e-9)
}

func TestFeedbackLoop_Receive_TenSignalsTriggerReputationUpdate(t *testing.T) {
	repo := newFakeReputationRepo()
	loop := NewFeedbackLoop(repo, 10, zerolog.Nop())

	for i := 0; i < 10; i++ {
		loop.Receive(context.Background(), domain.FeedbackSignal{
			FeedbackType: domain.FeedbackArticleUsed,
			SourceID:     "src-1",
		})
	}

	rep, ok, err := repo.Get(context.Background(), "src-1")
	require.NoError(t, err)
	require.True(t, ok)
	// all positive -> ratio 1.0 -> adjustment = (1-0.5)*2*0.02 = +0.02
	assert.InDelta(t, domain.BaseReputationScore(domain.TierUnknown)+0.02, rep.ReputationScore, 1e-9)

	history, _ := repo.History(context.Background(), "src-1", time.Time{}, time.Time{})
	assert.Len(t, history, 1)
}

func TestFeedbackLoop_Receive_AllNegativeSignalsApplyNegativeAdjustment(t *testing.T) {
	repo := newFakeReputationRepo()
	loop := NewFeedbackLoop(repo, 10, zerolog.Nop())

	for i := 0; i < 10; i++ {
		loop.Receive(context.Background(), domain.FeedbackSignal{
			FeedbackType: domain.FeedbackArticleDiscarded,
			SourceID:     "src-2",
		})
	}

	rep, ok, _ := repo.Get(context.Background(), "src-2")
	require.True(t, ok)
	assert.InDelta(t, domain.BaseReputationScore(domain.TierUnknown)-0.02, rep.ReputationScore, 1e-9)
}

func TestFeedbackLoop_Receive_FewerThanThresholdSignalsDoNotTriggerUpdate(t *testing.T) {
	repo := newFakeReputationRepo()
	loop := NewFeedbackLoop(repo, 10, zerolog.Nop())

	for i := 0; i < 5; i++ {
		loop.Receive(context.Background(), domain.FeedbackSignal{FeedbackType: domain.FeedbackArticleUsed, SourceID: "src-3"})
	}

	_, ok, _ := repo.Get(context.Background(), "src-3")
	assert.False(t, ok)
}

func TestFeedbackLoop_HandlerErrorIsSwallowedNotPropagated(t *testing.T) {
	repo := newFakeReputationRepo()
	loop := NewFeedbackLoop(repo, 10, zerolog.Nop())

	called := false
	loop.RegisterHandler(domain.FeedbackQualityRejected, func(context.Context, domain.FeedbackSignal) error {
		called = true
		return assert.AnError
	})

	assert.NotPanics(t, func() {
		loop.Receive(context.Background(), domain.FeedbackSignal{FeedbackType: domain.FeedbackQualityRejected, SourceID: "src-4"})
	})
	assert.True(t, called)
}

func TestFeedbackLoop_LowPerforming_RequiresMinimumSignalCount(t *testing.T) {
	repo := newFakeReputationRepo()
	loop := NewFeedbackLoop(repo, 100, zerolog.Nop())

	for i := 0; i < 3; i++ {
		loop.Receive(context.Background(), domain.FeedbackSignal{FeedbackType: domain.FeedbackArticleDiscarded, SourceID: "src-low"})
	}
	assert.Empty(t, loop.LowPerforming(0.5, 5))

	for i := 0; i < 5; i++ {
		loop.Receive(context.Background(), domain.FeedbackSignal{FeedbackType: domain.FeedbackArticleDiscarded, SourceID: "src-low"})
	}
	assert.Contains(t, loop.LowPerforming(0.5, 5), "src-low")
}
