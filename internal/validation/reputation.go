// Package validation implements the Cross-Source Validator (spec.md 4.3):
// reputation tracking, claim extraction, corroboration classification, and
// the combining trust score.
package validation

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

// ReputationTracker maintains per-source reputation, applying the
// confirmation/contradiction adjustment formulas and auto-disable rule
// from spec.md 4.3. Writes for a given source are serialized by a
// per-source lock (spec.md 5: "reputation writes are serialized per
// source"), so concurrent articles from the same source never race.
type ReputationTracker struct {
	repo repository.SourceReputationRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReputationTracker builds a tracker backed by repo.
func NewReputationTracker(repo repository.SourceReputationRepo) *ReputationTracker {
	return &ReputationTracker{repo: repo, locks: make(map[string]*sync.Mutex)}
}

func (t *ReputationTracker) lockFor(sourceID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[sourceID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[sourceID] = l
	}
	return l
}

// Get returns a source's reputation, initializing one at the tier's base
// score if none exists yet.
func (t *ReputationTracker) Get(ctx context.Context, sourceID string, tier domain.ReputationTier) (domain.SourceReputation, error) {
	rep, ok, err := t.repo.Get(ctx, sourceID)
	if err != nil {
		return domain.SourceReputation{}, err
	}
	if ok {
		return rep, nil
	}
	return domain.SourceReputation{
		SourceID:        sourceID,
		Tier:            tier,
		ReputationScore: domain.BaseReputationScore(tier),
		LastUpdated:     time.Now(),
	}, nil
}

// RecordConfirmation applies a positive reputation adjustment when
// corroborators confirm the source's claims (spec.md 4.3):
// +min(0.02*len(corroborators), 0.05) + (0.01 if was_first), capped at the
// tier's ceiling.
func (t *ReputationTracker) RecordConfirmation(ctx context.Context, sourceID string, corroborators []string, wasFirst bool) (domain.SourceReputation, error) {
	lock := t.lockFor(sourceID)
	lock.Lock()
	defer lock.Unlock()

	rep, err := t.Get(ctx, sourceID, domain.TierUnknown)
	if err != nil {
		return domain.SourceReputation{}, err
	}

	delta := math.Min(0.02*float64(len(corroborators)), 0.05)
	if wasFirst {
		delta += 0.01
	}
	rep.ReputationScore = math.Min(rep.ReputationScore+delta, domain.TierMaxReputation(rep.Tier))
	rep.AcceptedCount++
	rep.LastUpdated = time.Now()

	return t.commit(ctx, rep)
}

// RecordContradiction applies a negative reputation adjustment when other
// sources contradict this source's claims (spec.md 4.3):
// -min(0.03*len(contradictors), 0.08). Auto-disables the source once its
// score drops below domain.AutoDisableThreshold with at least
// domain.AutoDisableMinObservations recorded.
func (t *ReputationTracker) RecordContradiction(ctx context.Context, sourceID string, contradictors []string) (domain.SourceReputation, error) {
	lock := t.lockFor(sourceID)
	lock.Lock()
	defer lock.Unlock()

	rep, err := t.Get(ctx, sourceID, domain.TierUnknown)
	if err != nil {
		return domain.SourceReputation{}, err
	}

	delta := math.Min(0.03*float64(len(contradictors)), 0.08)
	rep.ReputationScore = math.Max(rep.ReputationScore-delta, 0)
	rep.RejectedCount++
	rep.LastUpdated = time.Now()

	if rep.ReputationScore < domain.AutoDisableThreshold && rep.TotalArticles() >= domain.AutoDisableMinObservations {
		rep.AutoDisabled = true
	}

	return t.commit(ctx, rep)
}

func (t *ReputationTracker) commit(ctx context.Context, rep domain.SourceReputation) (domain.SourceReputation, error) {
	if err := t.repo.Update(ctx, rep); err != nil {
		return domain.SourceReputation{}, fmt.Errorf("update reputation: %w", err)
	}
	if err := t.repo.AppendHistory(ctx, rep.SourceID, domain.ReputationHistoryPoint{Timestamp: rep.LastUpdated, Score: rep.ReputationScore}); err != nil {
		return domain.SourceReputation{}, fmt.Errorf("append reputation history: %w", err)
	}
	return rep, nil
}
