package dedup

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"

	"github.com/aristath/newsintel/internal/repository"
)

const embeddingDim = 384

var errEmbeddingShapeMismatch = errors.New("embedder returned unexpected batch shape")

// combinedEmbedding produces the weighted title/body embedding spec.md 4.2
// describes: normalize(weighted_avg(embed(title)*0.4, embed(body)*0.6)).
// When the embedder capability fails (model unavailable, dependency down),
// it falls back to a deterministic hashed bag-of-words vector so
// deduplication degrades instead of stalling the pipeline — the Go
// equivalent of the source's "numpy cosine scan over in-memory metadata"
// fallback, since there is no separate index implementation to fall back
// to here (this substitute index is always a linear scan).
func combinedEmbedding(ctx context.Context, embedder repository.Embedder, title, body string) ([]float32, bool, error) {
	titleVec, bodyVec, err := embedBoth(ctx, embedder, title, body)
	usedFallback := false
	if err != nil {
		titleVec = hashEmbed(title)
		bodyVec = hashEmbed(body)
		usedFallback = true
	}

	combined := make([]float32, embeddingDim)
	for i := 0; i < embeddingDim; i++ {
		combined[i] = titleVec[i]*0.4 + bodyVec[i]*0.6
	}
	return normalize(combined), usedFallback, nil
}

func embedBoth(ctx context.Context, embedder repository.Embedder, title, body string) ([]float32, []float32, error) {
	vecs, err := embedder.EmbedBatch(ctx, []string{title, body})
	if err != nil || len(vecs) != 2 {
		return nil, nil, errOrDependencyUnavailable(err)
	}
	return padOrTrim(vecs[0]), padOrTrim(vecs[1]), nil
}

func errOrDependencyUnavailable(err error) error {
	if err != nil {
		return err
	}
	return errEmbeddingShapeMismatch
}

func padOrTrim(v []float32) []float32 {
	out := make([]float32, embeddingDim)
	copy(out, v)
	return out
}

// hashEmbed builds a deterministic hashed bag-of-words vector: each
// whitespace token is hashed into one of embeddingDim buckets (feature
// hashing). The raw counts are returned; combinedEmbedding normalizes the
// blended vector. Not a learned embedding, but a stable, dependency-free
// similarity signal for degraded operation.
func hashEmbed(text string) []float32 {
	v := make([]float32, embeddingDim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		bucket := int(h.Sum32()) % embeddingDim
		if bucket < 0 {
			bucket += embeddingDim
		}
		v[bucket]++
	}
	return v
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, f := range v {
		sumSq += float64(f) * float64(f)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
