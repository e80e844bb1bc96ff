package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

type fakeScraper struct {
	resp repository.ConditionalResponse
	err  error
}

func (f *fakeScraper) Fetch(context.Context, string, string) ([]domain.RawArticle, error) {
	return nil, nil
}

func (f *fakeScraper) Head(context.Context, string, repository.ConditionalRequest) (repository.ConditionalResponse, error) {
	return f.resp, f.err
}

func TestHTTPHeaderDetector_304ReturnsUnchangedWithFullConfidence(t *testing.T) {
	d := &HTTPHeaderDetector{Scraper: &fakeScraper{resp: repository.ConditionalResponse{StatusCode: 304}}}
	res, err := d.DetectChange(context.Background(), "https://example.com", domain.CacheEntry{ETag: "v1"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, ReasonNotModified304, res.Reason)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestHTTPHeaderDetector_MatchingETagReturnsUnchanged(t *testing.T) {
	d := &HTTPHeaderDetector{Scraper: &fakeScraper{resp: repository.ConditionalResponse{StatusCode: 200, ETag: "v1"}}}
	res, err := d.DetectChange(context.Background(), "https://example.com", domain.CacheEntry{ETag: "v1"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, ReasonETagMatch, res.Reason)
}

func TestHTTPHeaderDetector_MismatchedETagReturnsChanged(t *testing.T) {
	d := &HTTPHeaderDetector{Scraper: &fakeScraper{resp: repository.ConditionalResponse{StatusCode: 200, ETag: "v2"}}}
	res, err := d.DetectChange(context.Background(), "https://example.com", domain.CacheEntry{ETag: "v1"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, ReasonETagMismatch, res.Reason)
}

func TestNormalizeSampleStripsVolatileSubstrings(t *testing.T) {
	a := NormalizeSample("Published 2026-07-31T10:00:00 session=abc123def token stays stable")
	b := NormalizeSample("Published 2026-07-31T11:45:02 session=xyz987ghi token stays stable")
	assert.Equal(t, a, b)
}

func TestContentSignatureDetector_MatchingSignatureReturnsUnchanged(t *testing.T) {
	sample := "Quarterly results show steady growth across all divisions."
	d := &ContentSignatureDetector{Scraper: &fakeScraper{resp: repository.ConditionalResponse{Body: []byte(sample)}}}
	cached := domain.CacheEntry{ContentSignature: Signature(sample)}
	res, err := d.DetectChange(context.Background(), "https://example.com", cached)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, ReasonSignatureMatch, res.Reason)
}

func TestContentSignatureDetector_DifferentContentReturnsChanged(t *testing.T) {
	d := &ContentSignatureDetector{Scraper: &fakeScraper{resp: repository.ConditionalResponse{Body: []byte("new content entirely")}}}
	cached := domain.CacheEntry{ContentSignature: Signature("old content entirely")}
	res, err := d.DetectChange(context.Background(), "https://example.com", cached)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, ReasonSignatureChanged, res.Reason)
}

func TestRSSDetector_SameBuildDateAndCountReturnsUnchanged(t *testing.T) {
	meta := RSSFeedMeta{LastBuildDate: "Fri, 31 Jul 2026 10:00:00 GMT", FirstItemGUID: "guid-1", ItemCount: 20}
	d := &RSSDetector{FetchFeedMeta: func(context.Context, string) (RSSFeedMeta, error) { return meta, nil }}
	cached := domain.CacheEntry{
		ArticleCount:     meta.ItemCount,
		ContentSignature: Signature(meta.LastBuildDate + "|" + meta.FirstItemGUID),
	}
	res, err := d.DetectChange(context.Background(), "https://example.com/feed", cached)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, ReasonRSSUnchanged, res.Reason)
}

func TestRSSDetector_NewItemCountReturnsChanged(t *testing.T) {
	meta := RSSFeedMeta{LastBuildDate: "Fri, 31 Jul 2026 10:00:00 GMT", FirstItemGUID: "guid-new", ItemCount: 21}
	d := &RSSDetector{FetchFeedMeta: func(context.Context, string) (RSSFeedMeta, error) { return meta, nil }}
	cached := domain.CacheEntry{
		ArticleCount:     20,
		ContentSignature: Signature("Fri, 31 Jul 2026 09:00:00 GMT|guid-1"),
	}
	res, err := d.DetectChange(context.Background(), "https://example.com/feed", cached)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, ReasonRSSChanged, res.Reason)
}
