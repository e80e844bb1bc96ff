package pipeline

import (
	"context"

	"github.com/aristath/newsintel/internal/cache"
	"github.com/aristath/newsintel/internal/domain"
)

// CacheStage applies the Smart Cache's needs_scraping decision per source
// before intake runs, skipping any source batch the cache still considers
// fresh. This binary has no live repository.Scraper (raw articles arrive
// file-driven rather than from a live fetch), so no ChangeDetector is ever
// registered for these calls and the cascade collapses to its TTL level
// alone — still enough to avoid re-running intake over a source's batch
// before its TTL has elapsed. mgr may be nil, in which case every article
// passes through unfiltered.
func CacheStage(ctx context.Context, mgr *cache.Manager, articles []domain.RawArticle) []domain.RawArticle {
	if mgr == nil {
		return articles
	}

	bySource := make(map[string][]domain.RawArticle)
	var order []string
	for _, a := range articles {
		if _, ok := bySource[a.SourceID]; !ok {
			order = append(order, a.SourceID)
		}
		bySource[a.SourceID] = append(bySource[a.SourceID], a)
	}

	kept := make([]domain.RawArticle, 0, len(articles))
	for _, sourceID := range order {
		batch := bySource[sourceID]
		decision := mgr.NeedsScraping(ctx, sourceID, batch[0].URL, domain.SourceTypeNews, false)
		if !decision.NeedsScraping {
			continue
		}
		kept = append(kept, batch...)
	}
	return kept
}

// CacheCommit records the freshest cache state (article count and
// whatever revalidation header the article carried) for every source
// present in articles, so the next CacheStage call has something to
// compare against. mgr may be nil, in which case this is a no-op.
func CacheCommit(ctx context.Context, mgr *cache.Manager, articles []domain.RawArticle) {
	if mgr == nil {
		return
	}

	type sourceState struct {
		url   string
		etag  string
		count int
	}
	states := make(map[string]*sourceState)
	var order []string
	for _, a := range articles {
		st, ok := states[a.SourceID]
		if !ok {
			st = &sourceState{url: a.URL, etag: a.RawHTMLHeaders["ETag"]}
			states[a.SourceID] = st
			order = append(order, a.SourceID)
		}
		st.count++
	}

	for _, sourceID := range order {
		st := states[sourceID]
		_ = mgr.CacheArticles(ctx, sourceID, st.url, domain.SourceTypeNews, st.count, st.etag, "", "")
	}
}
