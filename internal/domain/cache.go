package domain

import "time"

// CacheEntry is the metadata the smart cache keeps about the last known
// state of a source URL, used for change detection and TTL bookkeeping.
type CacheEntry struct {
	SourceID         string
	URL              string
	ETag             string
	LastModified     string
	ContentSignature string // MD5 of a normalized content sample
	ArticleCount     int
	CachedAt         time.Time
	ExpiresAt        time.Time
}

// TTLForSourceType returns the cache TTL for a source type, per spec.md 4.1.
// Callers that have an explicit override (config.SourceTTLs) should prefer
// that; this is the built-in default table.
func TTLForSourceType(t SourceType) time.Duration {
	switch t {
	case SourceTypeNews:
		return 15 * time.Minute
	case SourceTypeGovernment:
		return 2 * time.Hour
	case SourceTypeAPI:
		return 30 * time.Minute
	case SourceTypeSocial:
		return 5 * time.Minute
	case SourceTypeFinancial:
		return 30 * time.Minute
	default:
		return 30 * time.Minute
	}
}
