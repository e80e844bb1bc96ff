package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aristath/newsintel/internal/dedup"
	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/enrichment"
	"github.com/aristath/newsintel/internal/impact"
	"github.com/aristath/newsintel/internal/learning"
)

// CredibilityLookup resolves a source's current credibility. IntakeStage
// passes it to dedup's CheckDuplicate and EnrichStage uses it as source
// trust; callers typically back this with internal/validation's
// reputation tracker.
type CredibilityLookup func(sourceID string) float64

// IntakeStage runs L1 (dedup + impact scoring) for a batch of raw
// articles, bounded by a per-source concurrency limiter and fanned out
// with errgroup (spec.md 5: "parallelised up to a per-source concurrency
// parameter... errgroup-based fan-out within a layer"). Ordering across
// article_ids within this stage is not guaranteed (spec.md 5); results
// are collected in the order completions arrive, not input order.
//
// A per-article error does not abort the batch: it is logged as a
// FeedbackSignal and the article is dropped, matching spec.md 7's
// partial-failure semantics ("a single article's failure in any stage is
// logged... and the article is dropped from that run; other articles in
// the same batch continue").
func IntakeStage(ctx context.Context, limiter *SourceLimiter, networkTimeout time.Duration, dd *dedup.Deduplicator, scorer *impact.Scorer, credibility CredibilityLookup, districtCount int, feedback *learning.FeedbackLoop, articles []domain.RawArticle, now time.Time) []IntakeResult {
	out := make(chan IntakeResult, len(articles))
	eg, egCtx := errgroup.WithContext(ctx)

	for _, raw := range articles {
		raw := raw
		eg.Go(func() error {
			release, err := limiter.Acquire(egCtx, raw.SourceID)
			if err != nil {
				return nil // context cancelled; stop fanning out new work
			}
			defer release()

			callCtx, cancel := context.WithTimeout(egCtx, networkTimeout)
			defer cancel()

			cred := credibility(raw.SourceID)
			result, err := Intake(callCtx, dd, scorer, cred, districtCount, raw, now)
			if err != nil {
				if feedback != nil {
					feedback.Receive(egCtx, domain.FeedbackSignal{
						FeedbackType: domain.FeedbackContentCorrupted,
						Severity:     domain.SeverityWarning,
						SourceLayer:  domain.LayerIngestion,
						ArticleID:    raw.ArticleID,
						SourceID:     raw.SourceID,
						Timestamp:    now,
					})
				}
				return nil // dropped, batch continues
			}
			out <- result
			return nil
		})
	}

	_ = eg.Wait()
	close(out)

	results := make([]IntakeResult, 0, len(articles))
	for r := range out {
		results = append(results, r)
	}
	return results
}

// EnrichStage runs L2 enrichment for every accepted intake result, again
// fanned out with a per-source limiter. Each article still carries its
// own feature computation and sentiment/classification work through in
// one goroutine, so for a single article_id, L1 -> L2 observe strict
// order: EnrichStage only receives a result after IntakeStage has
// already accepted it (spec.md 5's per-article_id ordering guarantee).
func EnrichStage(ctx context.Context, limiter *SourceLimiter, llmTimeout time.Duration, pipeline *enrichment.Pipeline, sourceTrust CredibilityLookup, accepted []IntakeResult, now time.Time) []domain.EnrichedArticle {
	out := make(chan domain.EnrichedArticle, len(accepted))
	eg, egCtx := errgroup.WithContext(ctx)

	for _, intake := range accepted {
		intake := intake
		eg.Go(func() error {
			release, err := limiter.Acquire(egCtx, intake.Article.SourceID)
			if err != nil {
				return nil
			}
			defer release()

			callCtx, cancel := context.WithTimeout(egCtx, llmTimeout)
			defer cancel()

			features := enrichment.ComputeFeatures(intake.Article.ArticleID, intake.Article.Title, intake.Article.Body, now)
			enriched := pipeline.Enrich(callCtx, intake.Article, features, sourceTrust(intake.Article.SourceID), now)
			out <- enriched
			return nil
		})
	}

	_ = eg.Wait()
	close(out)

	results := make([]domain.EnrichedArticle, 0, len(accepted))
	for e := range out {
		results = append(results, e)
	}
	return results
}
