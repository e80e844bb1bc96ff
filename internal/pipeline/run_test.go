package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/enrichment"
	"github.com/aristath/newsintel/internal/indicators"
	"github.com/aristath/newsintel/internal/insights"
	"github.com/aristath/newsintel/internal/kvstore"
)

type fakeEnrichedStore struct {
	mu    sync.Mutex
	saved []domain.EnrichedArticle
}

func (s *fakeEnrichedStore) Save(_ context.Context, a domain.EnrichedArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, a)
	return nil
}

type fakeValueRepo struct {
	mu     sync.Mutex
	values []domain.IndicatorValue
}

func (r *fakeValueRepo) Append(_ context.Context, v domain.IndicatorValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
	return nil
}

func (r *fakeValueRepo) Range(_ context.Context, indicatorID string, _, _ time.Time) ([]domain.IndicatorValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.IndicatorValue
	for _, v := range r.values {
		if v.IndicatorID == indicatorID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeValueRepo) Latest(_ context.Context, indicatorID string) (domain.IndicatorValue, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest domain.IndicatorValue
	found := false
	for _, v := range r.values {
		if v.IndicatorID == indicatorID && (!found || v.Timestamp.After(latest.Timestamp)) {
			latest = v
			found = true
		}
	}
	return latest, found, nil
}

type emptyArticleSource struct{}

func (emptyArticleSource) Candidates(_ context.Context, _ time.Time) ([]indicators.MatchedArticle, error) {
	return nil, nil
}

func (emptyArticleSource) Body(_ context.Context, _ string) (string, error) { return "", nil }

func TestOrchestrator_Run_IntakeAndEnrichProduceEnrichedArticlesPersistedToStore(t *testing.T) {
	dd, scorer := newTestIntakeDeps()
	pipeline := enrichment.NewPipeline(nil, nil)
	store := &fakeEnrichedStore{}
	now := time.Now()

	o := &Orchestrator{
		Dedup:          dd,
		Scorer:         scorer,
		Enrichment:     pipeline,
		Store:          store,
		Limiter:        NewSourceLimiter(5),
		NetworkTimeout: time.Second,
		LLMTimeout:     time.Second,
		DistrictCount:  3,
		Credibility:    constantCredibility(0.8),
	}

	articles := []domain.RawArticle{
		{ArticleID: "a1", SourceID: "src-1", Title: "Fuel shortage worsens", Body: "long petrol queues reported nationwide", URL: "https://example.com/a1", PublishDate: now, ScrapeTime: now},
		{ArticleID: "a2", SourceID: "src-1", Title: "Fuel shortage worsens", Body: "long petrol queues reported nationwide", URL: "https://example.com/a1", PublishDate: now, ScrapeTime: now}, // exact duplicate (same URL)
	}

	outcome, err := o.Run(context.Background(), articles, nil, now.Add(-time.Hour), nil, nil, now)
	require.NoError(t, err)

	assert.Len(t, outcome.Accepted, 1)
	assert.Equal(t, 1, outcome.Duplicates)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "a1", store.saved[0].ArticleID)
}

func TestOrchestrator_Run_NoIndicatorDefsSkipsAggregation(t *testing.T) {
	dd, scorer := newTestIntakeDeps()
	pipeline := enrichment.NewPipeline(nil, nil)
	repo := &fakeValueRepo{}
	aggregator := indicators.NewAggregator(repo, emptyArticleSource{})

	o := &Orchestrator{
		Dedup: dd, Scorer: scorer, Enrichment: pipeline, Aggregator: aggregator,
		Limiter: NewSourceLimiter(5), NetworkTimeout: time.Second, LLMTimeout: time.Second,
		DistrictCount: 1, Credibility: constantCredibility(0.8),
	}

	now := time.Now()
	outcome, err := o.Run(context.Background(), nil, nil, now.Add(-time.Hour), nil, nil, now)
	require.NoError(t, err)
	assert.Empty(t, outcome.Indicators.Values)
}

func TestOrchestrator_Run_GeneratesOneInsightBundlePerCompany(t *testing.T) {
	dd, scorer := newTestIntakeDeps()
	pipeline := enrichment.NewPipeline(nil, nil)
	engine := insights.NewEngine(nil, nil, nil, insights.NewSnapshotCache(kvstore.NewMemory()))

	o := &Orchestrator{
		Dedup: dd, Scorer: scorer, Enrichment: pipeline, Insights: engine,
		Limiter: NewSourceLimiter(5), NetworkTimeout: time.Second, LLMTimeout: time.Second,
		DistrictCount: 1, Credibility: constantCredibility(0.8),
	}

	companies := []domain.CompanyProfile{{CompanyID: "co-1"}, {CompanyID: "co-2"}}
	now := time.Now()

	outcome, err := o.Run(context.Background(), nil, nil, now.Add(-time.Hour), companies, nil, now)
	require.NoError(t, err)
	require.Len(t, outcome.Insights, 2)
	assert.Equal(t, "co-1", outcome.Insights["co-1"].CompanyID)
	assert.Equal(t, "co-2", outcome.Insights["co-2"].CompanyID)
}
