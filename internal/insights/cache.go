package insights

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aristath/newsintel/internal/domain"
	"github.com/aristath/newsintel/internal/repository"
)

// bundleTTL is the KV cache lifetime for a full InsightBundle (spec.md 4.7).
const bundleTTL = 15 * time.Minute

// SnapshotCache is a thin wrapper over the KV cache keyed by company_id,
// grounded on original_source's InsightService request-scoped cache but
// backed by the shared KV store rather than an in-process dict so it
// survives across pipeline runs.
type SnapshotCache struct {
	kv repository.KVCache
}

func NewSnapshotCache(kv repository.KVCache) *SnapshotCache {
	return &SnapshotCache{kv: kv}
}

func cacheKey(companyID string) string {
	return "insight_bundle:" + companyID
}

func (c *SnapshotCache) Get(ctx context.Context, companyID string) (domain.InsightBundle, bool) {
	raw, ok, err := c.kv.Get(ctx, cacheKey(companyID))
	if err != nil || !ok {
		return domain.InsightBundle{}, false
	}
	var bundle domain.InsightBundle
	if json.Unmarshal(raw, &bundle) != nil {
		return domain.InsightBundle{}, false
	}
	return bundle, true
}

func (c *SnapshotCache) Put(ctx context.Context, bundle domain.InsightBundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, cacheKey(bundle.CompanyID), raw, bundleTTL)
}
