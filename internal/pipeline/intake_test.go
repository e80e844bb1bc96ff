package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/newsintel/internal/dedup"
	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/impact"
	"github.com/aristath/newsintel/internal/kvstore"
)

const testEmbeddingDim = 384

// fixedEmbedder returns a vector keyed by exact text match; distinct texts
// get orthogonal unit vectors so CheckDuplicate sees them as dissimilar.
type fixedEmbedder struct{ seen map[string]int }

func newFixedEmbedder() *fixedEmbedder { return &fixedEmbedder{seen: make(map[string]int)} }

func (f *fixedEmbedder) vectorFor(text string) []float32 {
	idx, ok := f.seen[text]
	if !ok {
		idx = len(f.seen)
		f.seen[text] = idx
	}
	v := make([]float32, testEmbeddingDim)
	v[idx%testEmbeddingDim] = 1
	return v
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return f.vectorFor(text), nil
}

func (f *fixedEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func newTestIntakeDeps() (*dedup.Deduplicator, *impact.Scorer) {
	cm := dedup.NewClusterManager(kvstore.NewMemory())
	dd := dedup.New(newFixedEmbedder(), cm, dedup.DefaultThresholds, 48, 50000)
	scorer := impact.NewScorer(domain.ProfileBalanced)
	return dd, scorer
}

func TestIntake_UniqueArticleIsAcceptedAndScored(t *testing.T) {
	dd, scorer := newTestIntakeDeps()
	raw := domain.RawArticle{
		ArticleID:  "a1",
		SourceID:   "src-1",
		Title:      "Fuel shortage hits capital",
		Body:       "A severe fuel shortage has caused long petrol queues across the capital.",
		URL:        "https://example.com/a1",
		ScrapeTime: time.Now(),
		PublishDate: time.Now(),
	}

	result, err := Intake(context.Background(), dd, scorer, 0.8, 5, raw, time.Now())
	require.NoError(t, err)
	assert.True(t, result.Accept)
	assert.Equal(t, domain.DuplicateUnique, result.Duplicate.Status)
	assert.Equal(t, "a1", result.Impact.ArticleID)
}

func TestIntake_ExactDuplicateURLIsRejected(t *testing.T) {
	dd, scorer := newTestIntakeDeps()
	ctx := context.Background()
	now := time.Now()

	first := domain.RawArticle{
		ArticleID: "a1", SourceID: "src-1", Title: "t1", Body: "b1",
		URL: "https://example.com/same", ScrapeTime: now, PublishDate: now,
	}
	_, err := Intake(ctx, dd, scorer, 0.8, 5, first, now)
	require.NoError(t, err)

	second := domain.RawArticle{
		ArticleID: "a2", SourceID: "src-1", Title: "t2", Body: "b2",
		URL: "https://example.com/same", ScrapeTime: now, PublishDate: now,
	}
	result, err := Intake(ctx, dd, scorer, 0.8, 5, second, now)
	require.NoError(t, err)
	assert.False(t, result.Accept)
	assert.Equal(t, domain.DuplicateExact, result.Duplicate.Status)
}

func TestClassifyEventType_MatchesKeywordsCaseInsensitively(t *testing.T) {
	assert.Equal(t, domain.EventFuelShortage, classifyEventType("FUEL SHORTAGE warning", ""))
	assert.Equal(t, domain.EventPowerCrisis, classifyEventType("", "nationwide power cut reported"))
	assert.Equal(t, domain.EventNaturalDisaster, classifyEventType("Cyclone approaches coast", ""))
}

func TestClassifyEventType_NoKeywordMatchDefaultsToPolicyChange(t *testing.T) {
	assert.Equal(t, domain.EventPolicyChange, classifyEventType("Parliament debates new budget", "routine session"))
}

func TestWordCount_CountsWhitespaceSeparatedTokens(t *testing.T) {
	assert.Equal(t, 4, wordCount("one two   three\nfour"))
	assert.Equal(t, 0, wordCount(""))
}
