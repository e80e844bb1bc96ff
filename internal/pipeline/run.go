package pipeline

import (
	"context"
	"time"

	"github.com/aristath/newsintel/internal/cache"
	"github.com/aristath/newsintel/internal/dedup"
	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/enrichment"
	"github.com/aristath/newsintel/internal/impact"
	"github.com/aristath/newsintel/internal/indicators"
	"github.com/aristath/newsintel/internal/insights"
	"github.com/aristath/newsintel/internal/learning"
)

// EnrichedArticleStore persists L2 output so L3's Aggregator can read it
// back through its own ArticleSource on the next cycle; a narrow local
// interface, the same pattern internal/indicators uses for ValueRepo.
type EnrichedArticleStore interface {
	Save(ctx context.Context, article domain.EnrichedArticle) error
}

// RunOutcome summarizes one end-to-end pipeline run across all four
// content layers.
type RunOutcome struct {
	Accepted      []domain.EnrichedArticle
	Duplicates    int
	Rejected      int
	Indicators    indicators.RunResult
	Insights      map[string]domain.InsightBundle // keyed by company_id
}

// Orchestrator wires L1 (dedup+impact) -> L2 (enrichment) -> L3
// (indicator aggregation) -> L4 (insights) under the concurrency model
// spec.md section 5 describes. It holds no business logic of its own.
type Orchestrator struct {
	Dedup      *dedup.Deduplicator
	Scorer     *impact.Scorer
	Enrichment *enrichment.Pipeline
	Aggregator *indicators.Aggregator
	Insights   *insights.Engine
	Store      EnrichedArticleStore
	Feedback   *learning.FeedbackLoop

	// Cache gates intake per source on the Smart Cache's needs_scraping
	// decision (spec.md 4.1). May be left nil, in which case every
	// article passes through unfiltered.
	Cache *cache.Manager

	Limiter        *SourceLimiter
	NetworkTimeout time.Duration
	LLMTimeout     time.Duration
	DistrictCount  int

	Credibility CredibilityLookup
}

// Run executes one pipeline cycle: L1+L2 over the given raw articles,
// then one L3 aggregation cycle over every active indicator definition,
// then one L4 insight-generation pass per company profile. Cancelling ctx
// propagates to every in-flight stage (spec.md 5); articles already
// persisted through Store remain (the pipeline is at-least-once, not
// atomic).
func (o *Orchestrator) Run(ctx context.Context, articles []domain.RawArticle, defs []domain.IndicatorDefinition, since time.Time, companies []domain.CompanyProfile, snapshots map[string]insights.IndicatorSnapshot, now time.Time) (RunOutcome, error) {
	toProcess := CacheStage(ctx, o.Cache, articles)

	intakeResults := IntakeStage(ctx, o.Limiter, o.NetworkTimeout, o.Dedup, o.Scorer, o.Credibility, o.DistrictCount, o.Feedback, toProcess, now)

	var accepted []IntakeResult
	duplicates := 0
	for _, r := range intakeResults {
		if r.Accept {
			accepted = append(accepted, r)
		} else {
			duplicates++
		}
	}
	rejected := len(toProcess) - len(intakeResults)

	enriched := EnrichStage(ctx, o.Limiter, o.LLMTimeout, o.Enrichment, o.Credibility, accepted, now)

	if o.Store != nil {
		for _, e := range enriched {
			if err := o.Store.Save(ctx, e); err != nil {
				if o.Feedback != nil {
					o.Feedback.Receive(ctx, domain.FeedbackSignal{
						FeedbackType: domain.FeedbackContentCorrupted,
						Severity:     domain.SeverityCriticalFeedback,
						SourceLayer:  domain.LayerEnrichment,
						ArticleID:    e.ArticleID,
						SourceID:     e.SourceID,
						Timestamp:    now,
					})
				}
			}
		}
	}

	CacheCommit(ctx, o.Cache, toProcess)

	var runResult indicators.RunResult
	if o.Aggregator != nil && len(defs) > 0 {
		var err error
		runResult, err = o.Aggregator.Run(ctx, defs, since, now)
		if err != nil {
			return RunOutcome{}, err
		}
	}

	bundles := make(map[string]domain.InsightBundle, len(companies))
	if o.Insights != nil {
		for _, profile := range companies {
			snap := snapshots[profile.CompanyID]
			bundles[profile.CompanyID] = o.Insights.Generate(ctx, profile, snap, now)
		}
	}

	return RunOutcome{
		Accepted:   enriched,
		Duplicates: duplicates,
		Rejected:   rejected,
		Indicators: runResult,
		Insights:   bundles,
	}, nil
}
