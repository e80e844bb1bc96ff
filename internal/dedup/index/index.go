// Package index implements the rolling-window vector similarity index used
// by the Semantic Deduplicator (spec.md 4.2). A real cgo FAISS binding is
// not available to a pure-Go module, so this substitutes an exact
// inner-product search over gonum/mat vectors — correct for the documented
// scale (at most 50k entries), with the same "flat below 100k, retrain on
// bulk eviction" maintenance policy the spec describes for FAISS.
package index

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Match is one similarity search result.
type Match struct {
	ArticleID string
	SourceID  string
	Score     float64
	ScrapedAt time.Time
}

type entry struct {
	articleID string
	sourceID  string
	scrapedAt time.Time
	vec       *mat.VecDense
}

// Index is a single-writer, many-readers rolling-window inner-product
// index over unit-normalized embeddings (cosine similarity ≡ inner
// product once vectors are normalized).
type Index struct {
	mu                    sync.RWMutex
	dim                   int
	windowHours           int
	maxArticles           int
	entries               []entry
	byID                  map[string]int
	evictionsSinceRebuild int
}

// New builds an empty index for embeddings of the given dimension, with a
// rolling window of windowHours and a hard cap of maxArticles entries
// (spec.md 4.2: 48h / 50k by default).
func New(dim, windowHours, maxArticles int) *Index {
	return &Index{
		dim:         dim,
		windowHours: windowHours,
		maxArticles: maxArticles,
		byID:        make(map[string]int),
	}
}

// Add inserts an embedding into the index, evicting stale/excess entries
// afterward per the rolling-window policy, and rebuilding once 100
// evictions have accrued since the last rebuild (spec.md 4.2).
func (x *Index) Add(articleID, sourceID string, vec []float32, scrapedAt time.Time) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.byID[articleID]; exists {
		return
	}

	v := make([]float64, len(vec))
	for i, f := range vec {
		v[i] = float64(f)
	}
	x.entries = append(x.entries, entry{
		articleID: articleID,
		sourceID:  sourceID,
		scrapedAt: scrapedAt,
		vec:       mat.NewVecDense(len(v), v),
	})
	x.byID[articleID] = len(x.entries) - 1

	x.evictOldLocked()
}

// Len reports the current number of entries in the index.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// evictOldLocked removes entries outside the rolling window, or the
// oldest entries if over the hard cap, and rebuilds after 100 accrued
// evictions. Caller must hold x.mu.
func (x *Index) evictOldLocked() {
	var toEvict int
	if len(x.entries) > x.maxArticles {
		toEvict = len(x.entries) - x.maxArticles
	} else {
		cutoff := time.Now().Add(-time.Duration(x.windowHours) * time.Hour)
		for _, e := range x.entries {
			if e.scrapedAt.Before(cutoff) {
				toEvict++
			} else {
				break
			}
		}
	}
	if toEvict == 0 {
		return
	}

	for _, e := range x.entries[:toEvict] {
		delete(x.byID, e.articleID)
	}
	x.entries = append([]entry(nil), x.entries[toEvict:]...)
	x.evictionsSinceRebuild += toEvict

	if x.evictionsSinceRebuild >= 100 {
		x.rebuildLocked()
	}
}

// rebuildLocked reindexes byID against the current (already-compacted)
// entries slice and resets the eviction counter. A true FAISS IVF rebuild
// retrains cluster centroids; the flat gonum substitute only needs its
// position index refreshed, since search is a linear scan either way.
func (x *Index) rebuildLocked() {
	x.byID = make(map[string]int, len(x.entries))
	for i, e := range x.entries {
		x.byID[e.articleID] = i
	}
	x.evictionsSinceRebuild = 0
}

// Search returns the top-K most similar entries to query, excluding any
// article ID in exclude. An empty index returns no matches, which the
// caller interprets as "unique" immediately (spec.md 4.2).
func (x *Index) Search(query []float32, topK int, exclude map[string]struct{}) []Match {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil
	}

	q := make([]float64, len(query))
	for i, f := range query {
		q[i] = float64(f)
	}
	qv := mat.NewVecDense(len(q), q)

	matches := make([]Match, 0, len(x.entries))
	for _, e := range x.entries {
		if _, skip := exclude[e.articleID]; skip {
			continue
		}
		score := mat.Dot(qv, e.vec)
		matches = append(matches, Match{
			ArticleID: e.articleID,
			SourceID:  e.sourceID,
			Score:     score,
			ScrapedAt: e.scrapedAt,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
