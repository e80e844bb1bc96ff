package validation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/newsintel/internal/domain"
)

// fakeReputationRepo is an in-memory repository.SourceReputationRepo used
// only by this package's tests.
type fakeReputationRepo struct {
	mu      sync.Mutex
	reps    map[string]domain.SourceReputation
	history map[string][]domain.ReputationHistoryPoint
}

func newFakeReputationRepo() *fakeReputationRepo {
	return &fakeReputationRepo{reps: make(map[string]domain.SourceReputation), history: make(map[string][]domain.ReputationHistoryPoint)}
}

func (f *fakeReputationRepo) Get(_ context.Context, sourceID string) (domain.SourceReputation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep, ok := f.reps[sourceID]
	return rep, ok, nil
}

func (f *fakeReputationRepo) Update(_ context.Context, rep domain.SourceReputation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reps[rep.SourceID] = rep
	return nil
}

func (f *fakeReputationRepo) AppendHistory(_ context.Context, sourceID string, point domain.ReputationHistoryPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[sourceID] = append(f.history[sourceID], point)
	return nil
}

func (f *fakeReputationRepo) History(_ context.Context, sourceID string, _, _ time.Time) ([]domain.ReputationHistoryPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[sourceID], nil
}

func TestReputationTracker_GetInitializesAtTierBase(t *testing.T) {
	tracker := NewReputationTracker(newFakeReputationRepo())
	rep, err := tracker.Get(context.Background(), "src-1", domain.TierOne)
	require.NoError(t, err)
	assert.Equal(t, domain.BaseReputationScore(domain.TierOne), rep.ReputationScore)
}

func TestReputationTracker_RecordConfirmationIncreasesScoreAndCapsAtTierCeiling(t *testing.T) {
	repo := newFakeReputationRepo()
	require.NoError(t, repo.Update(context.Background(), domain.SourceReputation{
		SourceID: "src-1", Tier: domain.TierOne, ReputationScore: domain.TierMaxReputation(domain.TierOne) - 0.01,
	}))
	tracker := NewReputationTracker(repo)

	rep, err := tracker.RecordConfirmation(context.Background(), "src-1", []string{"src-2", "src-3"}, true)
	require.NoError(t, err)
	assert.LessOrEqual(t, rep.ReputationScore, domain.TierMaxReputation(domain.TierOne))
	assert.Equal(t, 1, rep.AcceptedCount)
}

func TestReputationTracker_RecordContradictionDecreasesScore(t *testing.T) {
	repo := newFakeReputationRepo()
	require.NoError(t, repo.Update(context.Background(), domain.SourceReputation{SourceID: "src-1", Tier: domain.TierOne, ReputationScore: 0.80}))
	tracker := NewReputationTracker(repo)

	rep, err := tracker.RecordContradiction(context.Background(), "src-1", []string{"src-2", "src-3", "src-4"})
	require.NoError(t, err)
	assert.InDelta(t, 0.72, rep.ReputationScore, 1e-9)
	assert.Equal(t, 1, rep.RejectedCount)
	assert.False(t, rep.AutoDisabled)
}

func TestReputationTracker_AutoDisablesBelowThresholdWithEnoughObservations(t *testing.T) {
	repo := newFakeReputationRepo()
	require.NoError(t, repo.Update(context.Background(), domain.SourceReputation{
		SourceID: "src-1", Tier: domain.TierUnknown, ReputationScore: 0.41, RejectedCount: 19,
	}))
	tracker := NewReputationTracker(repo)

	rep, err := tracker.RecordContradiction(context.Background(), "src-1", []string{"src-2", "src-3", "src-4"})
	require.NoError(t, err)
	assert.True(t, rep.ReputationScore < domain.AutoDisableThreshold)
	assert.True(t, rep.AutoDisabled)
}

func TestReputationTracker_StaysEnabledBelowThresholdWithTooFewObservations(t *testing.T) {
	repo := newFakeReputationRepo()
	require.NoError(t, repo.Update(context.Background(), domain.SourceReputation{
		SourceID: "src-1", Tier: domain.TierUnknown, ReputationScore: 0.35, RejectedCount: 2,
	}))
	tracker := NewReputationTracker(repo)

	rep, err := tracker.RecordContradiction(context.Background(), "src-1", []string{"src-2"})
	require.NoError(t, err)
	assert.False(t, rep.AutoDisabled)
}
