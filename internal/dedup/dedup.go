// Package dedup implements the Semantic Deduplicator (spec.md 4.2):
// exact URL-hash matching, a combined title/body embedding, a rolling
// inner-product similarity search, and cluster membership management with
// primary-article re-election.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/dedup/index"
	"github.com/aristath/newsintel/internal/repository"
)

const defaultTopK = 10

// Thresholds holds the four similarity bands (spec.md 4.2).
type Thresholds struct {
	Exact   float64
	Near    float64
	Related float64
}

// DefaultThresholds mirrors config.DedupConfig's defaults.
var DefaultThresholds = Thresholds{Exact: 0.95, Near: 0.85, Related: 0.70}

// Deduplicator is the L1 semantic deduplication stage.
type Deduplicator struct {
	index      *index.Index
	embedder   repository.Embedder
	clusters   *ClusterManager
	thresholds Thresholds

	mu      sync.Mutex
	byURL   map[string]string // sourceID|urlHash -> articleID
}

// New builds a Deduplicator. windowHours/maxArticles size the rolling
// similarity index (spec.md 4.2: 48h / 50k by default).
func New(embedder repository.Embedder, clusters *ClusterManager, thresholds Thresholds, windowHours, maxArticles int) *Deduplicator {
	return &Deduplicator{
		index:      index.New(embeddingDim, windowHours, maxArticles),
		embedder:   embedder,
		clusters:   clusters,
		thresholds: thresholds,
		byURL:      make(map[string]string),
	}
}

func urlHash(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func urlKey(sourceID, url string) string {
	return sourceID + "|" + urlHash(url)
}

// CheckDuplicate classifies a new article against the rolling window and
// updates cluster membership accordingly (spec.md 4.2).
func (d *Deduplicator) CheckDuplicate(ctx context.Context, articleID, title, body, url, sourceID string, credibility float64, scrapedAt time.Time, wordCount int) (domain.DuplicateCheckResult, error) {
	d.mu.Lock()
	if matchID, ok := d.byURL[urlKey(sourceID, url)]; ok && matchID != articleID {
		d.mu.Unlock()
		return d.routeMatch(ctx, domain.DuplicateExact, 1.0, matchID, sourceID, articleID, title, sourceID, credibility, scrapedAt, wordCount)
	}
	d.byURL[urlKey(sourceID, url)] = articleID
	d.mu.Unlock()

	vec, _, err := combinedEmbedding(ctx, d.embedder, title, body)
	if err != nil {
		return domain.DuplicateCheckResult{}, fmt.Errorf("compute embedding: %w", err)
	}

	if d.index.Len() == 0 {
		d.index.Add(articleID, sourceID, vec, scrapedAt)
		return domain.DuplicateCheckResult{Status: domain.DuplicateUnique, DuplicateType: domain.DuplicateUnique}, nil
	}

	matches := d.index.Search(vec, defaultTopK, map[string]struct{}{articleID: {}})
	d.index.Add(articleID, sourceID, vec, scrapedAt)

	if len(matches) == 0 {
		return domain.DuplicateCheckResult{Status: domain.DuplicateUnique, DuplicateType: domain.DuplicateUnique}, nil
	}

	best := matches[0]
	dtype := classify(best.Score, d.thresholds)
	if dtype == domain.DuplicateUnique {
		return domain.DuplicateCheckResult{Status: domain.DuplicateUnique, SimilarityScore: best.Score, DuplicateType: domain.DuplicateUnique}, nil
	}

	return d.routeMatch(ctx, dtype, best.Score, best.ArticleID, best.SourceID, articleID, title, sourceID, credibility, scrapedAt, wordCount)
}

func classify(score float64, t Thresholds) domain.DuplicateType {
	switch {
	case score >= t.Exact:
		return domain.DuplicateExact
	case score >= t.Near:
		return domain.DuplicateNear
	case score >= t.Related:
		return domain.DuplicateRelated
	default:
		return domain.DuplicateUnique
	}
}

// routeMatch implements the "cluster action" step of spec.md 4.2: add the
// new article to the matched article's existing cluster, or create a new
// one containing both.
func (d *Deduplicator) routeMatch(ctx context.Context, dtype domain.DuplicateType, score float64, matchedID, matchedSourceID, articleID, title, sourceID string, credibility float64, scrapedAt time.Time, wordCount int) (domain.DuplicateCheckResult, error) {
	member := domain.ClusterMember{
		ArticleID:         articleID,
		SourceID:          sourceID,
		SimilarityToPrime: score,
		CredibilityScore:  credibility,
		ScrapedAt:         scrapedAt,
		WordCount:         wordCount,
	}

	existing, ok, err := d.clusters.ClusterForArticle(ctx, matchedID)
	if err != nil {
		return domain.DuplicateCheckResult{}, err
	}
	if ok {
		if _, err := d.clusters.AddToCluster(ctx, existing.ClusterID, member); err != nil {
			return domain.DuplicateCheckResult{}, err
		}
		return domain.DuplicateCheckResult{
			Status:           dtype,
			SimilarityScore:  score,
			MatchedArticleID: matchedID,
			ClusterID:        existing.ClusterID,
			DuplicateType:    dtype,
		}, nil
	}

	matchedMember := domain.ClusterMember{
		ArticleID:        matchedID,
		SourceID:         matchedSourceID,
		CredibilityScore: credibility,
		ScrapedAt:        scrapedAt,
	}
	cluster, err := d.clusters.CreateCluster(ctx, matchedMember, title)
	if err != nil {
		return domain.DuplicateCheckResult{}, err
	}
	if _, err := d.clusters.AddToCluster(ctx, cluster.ClusterID, member); err != nil {
		return domain.DuplicateCheckResult{}, err
	}
	return domain.DuplicateCheckResult{
		Status:           dtype,
		SimilarityScore:  score,
		MatchedArticleID: matchedID,
		ClusterID:        cluster.ClusterID,
		DuplicateType:    dtype,
	}, nil
}
