// Package repository declares the narrow interfaces the core pipeline
// requires from its environment: the four storage repositories, the
// scraper/embedding/LLM capabilities, per spec.md section 6. Concrete
// implementations (internal/relstore, internal/kvstore, internal/docstore)
// satisfy these for local development and tests; production deployments
// may supply their own.
package repository

import (
	"context"
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

// IndicatorDefinitionRepo persists versioned indicator definitions.
type IndicatorDefinitionRepo interface {
	Get(ctx context.Context, indicatorID string) (domain.IndicatorDefinition, error)
	ListActive(ctx context.Context) ([]domain.IndicatorDefinition, error)
	Upsert(ctx context.Context, def domain.IndicatorDefinition) error
}

// IndicatorValueRepo is the time-series store for IndicatorValue, expected
// to support efficient range queries by indicator_id + time window (spec.md
// section 6, 1-day chunked hypertable in the persisted layout).
type IndicatorValueRepo interface {
	Append(ctx context.Context, v domain.IndicatorValue) error
	Range(ctx context.Context, indicatorID string, from, to time.Time) ([]domain.IndicatorValue, error)
	Latest(ctx context.Context, indicatorID string) (domain.IndicatorValue, bool, error)
}

// IndicatorEventRepo persists indicator-level events (7-day chunks).
type IndicatorEventRepo interface {
	Append(ctx context.Context, e domain.IndicatorEvent) error
	Range(ctx context.Context, indicatorID string, from, to time.Time) ([]domain.IndicatorEvent, error)
	Acknowledge(ctx context.Context, eventID string) error
}

// SourceReputationRepo persists per-source reputation plus its append-only
// history sub-table. Must support ACID transactions for reputation updates
// (spec.md section 6); Update is expected to run inside one.
type SourceReputationRepo interface {
	Get(ctx context.Context, sourceID string) (domain.SourceReputation, bool, error)
	Update(ctx context.Context, rep domain.SourceReputation) error
	AppendHistory(ctx context.Context, sourceID string, point domain.ReputationHistoryPoint) error
	History(ctx context.Context, sourceID string, from, to time.Time) ([]domain.ReputationHistoryPoint, error)
}

// BusinessInsightRepo persists structured fields of DetectedRisk /
// DetectedOpportunity (the narrative/reasoning bodies live in the document
// store, keyed the same way).
type BusinessInsightRepo interface {
	SaveRisks(ctx context.Context, companyID string, risks []domain.DetectedRisk) error
	SaveOpportunities(ctx context.Context, companyID string, opps []domain.DetectedOpportunity) error
	LatestBundle(ctx context.Context, companyID string) (domain.InsightBundle, bool, error)
}

// DocumentStore holds unstructured payloads (raw article body, enrichment
// features, reasoning documents, narratives), queried by article_id or
// insight_id.
type DocumentStore interface {
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

// KVCache is the generic key/value cache contract used by the smart cache,
// cluster manager, LLM key-rotation manager, and insight bundle cache.
type KVCache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	ListPush(ctx context.Context, key string, value []byte, maxLen int) error
	ListRange(ctx context.Context, key string) ([][]byte, error)
}

// ScrapeError taxonomy for the scraper capability; callers classify with
// internal/errors sentinel kinds.
type Scraper interface {
	Fetch(ctx context.Context, sourceID, url string) ([]domain.RawArticle, error)
	Head(ctx context.Context, url string, cond ConditionalRequest) (ConditionalResponse, error)
}

// ConditionalRequest carries RFC 7232 conditional-GET/HEAD headers.
type ConditionalRequest struct {
	IfNoneMatch     string
	IfModifiedSince string
	RangeBytes      int // 0 means no Range header
}

// ConditionalResponse is the subset of an HTTP response the change
// detectors need.
type ConditionalResponse struct {
	StatusCode   int
	ETag         string
	LastModified string
	Body         []byte // populated only when a body was requested/returned
}

// Embedder produces unit-normalized 384-dim embeddings for deduplication.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is the capability surface for LLM-backed enrichment/narrative stages.
// Retry/rotation across API keys is handled internally by the
// implementation (internal/llmkey).
type LLM interface {
	Invoke(ctx context.Context, system, user string) (LLMResult, error)
}

// LLMResult carries either structured JSON or raw text, plus provenance of
// which path produced it (a real call vs. the deterministic fallback).
type LLMResult struct {
	JSON   map[string]any
	Text   string
	Source string // "model" or "fallback"
}
