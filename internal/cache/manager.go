// Package cache implements the Smart Cache with Change Detection component
// (spec.md 4.1): a four-level cascade (TTL, conditional HTTP headers,
// content signature, RSS-specialized) that decides whether a source needs
// re-scraping, backed by a Redis-shaped KVCache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

const keyPrefix = "cache:source"

// Manager is the Smart Cache. It owns no network client of its own; the
// conditional-HTTP and content-signature detectors borrow the pipeline's
// Scraper capability instead, keeping the manager's contract purely
// cache-and-decide.
type Manager struct {
	kv        repository.KVCache
	ttls      ttlResolver
	detectors map[domain.SourceType][]ChangeDetector
	metrics   *Metrics
	log       zerolog.Logger
}

// ttlResolver lets callers pass either config.SourceTTLs or the built-in
// domain.TTLForSourceType table without this package importing config
// (which would create an import cycle with config's domain dependency).
type ttlResolver interface {
	ForType(domain.SourceType) time.Duration
}

type defaultTTLResolver struct{}

func (defaultTTLResolver) ForType(t domain.SourceType) time.Duration { return domain.TTLForSourceType(t) }

// NewManager builds a cache Manager. ttls may be nil, in which case the
// built-in default TTL table is used. detectors maps a source type to its
// ordered cascade of change-detection strategies, run level-by-level; the
// first one that does not error decides the outcome, whatever its
// confidence.
func NewManager(kv repository.KVCache, ttls ttlResolver, detectors map[domain.SourceType][]ChangeDetector, metrics *Metrics, log zerolog.Logger) *Manager {
	if ttls == nil {
		ttls = defaultTTLResolver{}
	}
	return &Manager{kv: kv, ttls: ttls, detectors: detectors, metrics: metrics, log: log}
}

func entryKey(sourceID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, sourceID)
}

func articlesKey(sourceID string) string {
	return fmt.Sprintf("%s:%s:articles", keyPrefix, sourceID)
}

// Decision is the result of NeedsScraping.
type Decision struct {
	NeedsScraping bool
	Reason        string
	Confidence    float64
}

// NeedsScraping runs the change-detection cascade for sourceID and returns
// whether the caller should re-scrape. force bypasses the cascade entirely
// (spec.md 4.1: an explicit force_refresh always wins).
func (m *Manager) NeedsScraping(ctx context.Context, sourceID, url string, sourceType domain.SourceType, force bool) Decision {
	if force {
		m.recordMiss(ReasonForced)
		return Decision{NeedsScraping: true, Reason: ReasonForced, Confidence: 1.0}
	}

	entry, ok, err := m.getEntry(ctx, sourceID)
	if err != nil || !ok {
		m.recordMiss(ReasonNoCachedEntry)
		return Decision{NeedsScraping: true, Reason: ReasonNoCachedEntry, Confidence: 1.0}
	}

	// TTL expiry is the cheapest, coarsest level of the cascade: once it
	// has lapsed the cache is already known stale, and it wins outright
	// regardless of what the remaining levels would say (spec.md 8.2: at
	// 1000s, past a 900s TTL, the result is ttl_expired "regardless of
	// headers"). It short-circuits on its own rather than joining the
	// loop below.
	if time.Now().After(entry.ExpiresAt) {
		m.recordMiss(ReasonTTLExpired)
		return Decision{NeedsScraping: true, Reason: ReasonTTLExpired, Confidence: 1.0}
	}

	// TTL still fresh: the remaining cascade levels still run, since a
	// conditional-HTTP or content-signature check can invalidate a
	// not-yet-expired entry early (spec.md 8.2: at 600s, inside a 900s
	// TTL, a HEAD 304 is still what decides the outcome).
	for _, d := range m.detectors[sourceType] {
		start := time.Now()
		res, derr := d.DetectChange(ctx, url, entry)
		m.observeCheckDuration(sourceType, start)
		if derr != nil {
			m.recordError(sourceType)
			continue
		}
		if !res.Changed {
			m.recordHit(res.Reason)
			return Decision{NeedsScraping: false, Reason: res.Reason, Confidence: res.Confidence}
		}
		m.recordMiss(res.Reason)
		return Decision{NeedsScraping: true, Reason: res.Reason, Confidence: res.Confidence}
	}

	if len(m.detectors[sourceType]) > 0 {
		// Every configured detector errored: fail open on the side of
		// re-scraping rather than trust a cache state nothing could
		// confirm, the failure-semantics rule from spec.md 4.1.
		m.recordMiss(ReasonDetectorError)
		return Decision{NeedsScraping: true, Reason: ReasonDetectorError, Confidence: 0.5}
	}

	m.recordHit(ReasonTTLFresh)
	return Decision{NeedsScraping: false, Reason: ReasonTTLFresh, Confidence: 1.0}
}

// CacheArticles stores the freshest known state for sourceID: the raw
// article count (used by the RSS detector) plus whatever change-detection
// fingerprints the caller already captured during the fetch that just
// happened (etag/last-modified/content signature), with a TTL resolved
// from the source type.
func (m *Manager) CacheArticles(ctx context.Context, sourceID, url string, sourceType domain.SourceType, articleCount int, etag, lastModified, contentSig string) error {
	ttl := m.ttls.ForType(sourceType)
	entry := domain.CacheEntry{
		SourceID:         sourceID,
		URL:              url,
		ETag:             etag,
		LastModified:     lastModified,
		ContentSignature: contentSig,
		ArticleCount:     articleCount,
		CachedAt:         time.Now(),
		ExpiresAt:        time.Now().Add(ttl),
	}
	buf, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return m.kv.Set(ctx, entryKey(sourceID), buf, ttl)
}

// GetCachedArticles returns the raw article payloads cached for sourceID
// by the last PutCachedArticles call, if present.
func (m *Manager) GetCachedArticles(ctx context.Context, sourceID string) ([]domain.RawArticle, bool, error) {
	raw, ok, err := m.kv.Get(ctx, articlesKey(sourceID))
	if err != nil || !ok {
		return nil, false, err
	}
	var articles []domain.RawArticle
	if err := msgpack.Unmarshal(raw, &articles); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached articles: %w", err)
	}
	return articles, true, nil
}

// PutCachedArticles stores the article payloads for a source alongside its
// change-detection entry, using the same TTL.
func (m *Manager) PutCachedArticles(ctx context.Context, sourceID string, sourceType domain.SourceType, articles []domain.RawArticle) error {
	buf, err := msgpack.Marshal(articles)
	if err != nil {
		return fmt.Errorf("marshal cached articles: %w", err)
	}
	return m.kv.Set(ctx, articlesKey(sourceID), buf, m.ttls.ForType(sourceType))
}

// Invalidate drops all cached state for a source, forcing the next
// NeedsScraping call to report a miss.
func (m *Manager) Invalidate(ctx context.Context, sourceID string) error {
	if err := m.kv.Delete(ctx, entryKey(sourceID)); err != nil {
		return err
	}
	return m.kv.Delete(ctx, articlesKey(sourceID))
}

func (m *Manager) getEntry(ctx context.Context, sourceID string) (domain.CacheEntry, bool, error) {
	raw, ok, err := m.kv.Get(ctx, entryKey(sourceID))
	if err != nil || !ok {
		return domain.CacheEntry{}, false, err
	}
	var entry domain.CacheEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return entry, true, nil
}

func (m *Manager) recordHit(reason string)  { m.metrics.recordHit(reason) }
func (m *Manager) recordMiss(reason string) { m.metrics.recordMiss(reason) }
func (m *Manager) recordError(sourceType domain.SourceType) {
	m.metrics.recordError(string(sourceType))
}
func (m *Manager) observeCheckDuration(sourceType domain.SourceType, start time.Time) {
	if m.metrics == nil {
		return
	}
	m.metrics.CheckDur.WithLabelValues(string(sourceType)).Observe(time.Since(start).Seconds())
}
