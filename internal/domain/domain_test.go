package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeverityForClosedBelowBoundaries(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityFor(40))
	assert.Equal(t, SeverityHigh, SeverityFor(39.999))
	assert.Equal(t, SeverityHigh, SeverityFor(30))
	assert.Equal(t, SeverityMedium, SeverityFor(29.999))
	assert.Equal(t, SeverityMedium, SeverityFor(15))
	assert.Equal(t, SeverityLow, SeverityFor(14.999))
}

func TestFinalScoreOf(t *testing.T) {
	got := FinalScoreOf(0.80, 7.0, 4, 0.85)
	assert.InDelta(t, 19.04, got, 1e-9)
}

func TestNAIBandFor(t *testing.T) {
	assert.Equal(t, NAINeutral, NAIBandFor(48.06))
	assert.Equal(t, NAIVeryHigh, NAIBandFor(80))
	assert.Equal(t, NAICritical, NAIBandFor(19.99))
}

func TestPrimaryScorePrefersHigherCredibilityAndFreshness(t *testing.T) {
	now := time.Now()
	fresh := ClusterMember{CredibilityScore: 0.9, WordCount: 500, ScrapedAt: now}
	stale := ClusterMember{CredibilityScore: 0.9, WordCount: 500, ScrapedAt: now.Add(-20 * time.Hour)}
	assert.Greater(t, PrimaryScore(fresh, 500, now), PrimaryScore(stale, 500, now))
}

func TestLevelFromScoreThresholds(t *testing.T) {
	assert.Equal(t, SentimentVeryPositive, LevelFromScore(0.5))
	assert.Equal(t, SentimentPositive, LevelFromScore(0.05))
	assert.Equal(t, SentimentNeutral, LevelFromScore(0.0))
	assert.Equal(t, SentimentNegative, LevelFromScore(-0.05))
	assert.Equal(t, SentimentVeryNegative, LevelFromScore(-0.5))
}

func TestAutoDisableThresholdMatchesScenario(t *testing.T) {
	rep := &SourceReputation{SourceID: "x", ReputationScore: 0.39, AcceptedCount: 5, RejectedCount: 16}
	assert.True(t, rep.TotalArticles() >= AutoDisableMinObservations)
	assert.Less(t, rep.ReputationScore, AutoDisableThreshold)
}
