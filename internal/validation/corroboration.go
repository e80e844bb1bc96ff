package validation

import (
	"sync"
	"time"

	"github.com/aristath/newsintel/internal/domain"
)

// fingerprintEntry records one sighting of a claim fingerprint for the
// rolling corroboration cache.
type fingerprintEntry struct {
	claim    domain.Claim
	seenAt   time.Time
	official bool
}

// CorroborationEngine maintains a rolling cache of claim fingerprints seen
// across recently processed articles and classifies how strongly a new
// article's claims are corroborated by others (spec.md 4.3). It is
// read-mostly and safe for concurrent use; the only shared mutable state is
// the fingerprint cache itself, guarded by mu.
type CorroborationEngine struct {
	window time.Duration

	mu      sync.Mutex
	entries map[string][]fingerprintEntry
}

// NewCorroborationEngine builds an engine with the given rolling window
// (e.g. 48h, matching the Semantic Deduplicator's window).
func NewCorroborationEngine(window time.Duration) *CorroborationEngine {
	return &CorroborationEngine{window: window, entries: make(map[string][]fingerprintEntry)}
}

// Evaluate records claims' fingerprints and classifies corroboration level
// against everything else already in the window, excluding claims from the
// same source (a source cannot corroborate itself).
func (e *CorroborationEngine) Evaluate(claims []domain.Claim, sourceID string, isOfficial bool, now time.Time) domain.CorroborationResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.evictLocked(now)

	var (
		matched      []domain.Claim
		matchSources = make(map[string]struct{})
		hasOfficial  bool
	)

	for _, c := range claims {
		for _, prior := range e.entries[c.Fingerprint] {
			if prior.claim.SourceID == sourceID {
				continue
			}
			matched = append(matched, prior.claim)
			matchSources[prior.claim.SourceID] = struct{}{}
			if prior.official {
				hasOfficial = true
			}
		}
	}

	for _, c := range claims {
		e.entries[c.Fingerprint] = append(e.entries[c.Fingerprint], fingerprintEntry{claim: c, seenAt: now, official: isOfficial})
	}

	result := domain.CorroborationResult{
		MatchCount:    len(matched),
		SourceCount:   len(matchSources),
		HasOfficial:   hasOfficial,
		MatchedClaims: matched,
	}
	result.Level = classifyCorroboration(result)
	return result
}

// classifyCorroboration applies spec.md 4.3's exact bands: weak (1 match) |
// moderate (2-3 matches across >=2 sources) | strong (>=4 matches across
// >=3 sources) | verified (>=4 matches including at least one official
// source).
func classifyCorroboration(r domain.CorroborationResult) domain.CorroborationLevel {
	switch {
	case r.MatchCount >= 4 && r.HasOfficial:
		return domain.CorroborationVerified
	case r.MatchCount >= 4 && r.SourceCount >= 3:
		return domain.CorroborationStrong
	case r.MatchCount >= 2 && r.MatchCount <= 3 && r.SourceCount >= 2:
		return domain.CorroborationModerate
	case r.MatchCount == 1:
		return domain.CorroborationWeak
	default:
		return domain.CorroborationNone
	}
}

func (e *CorroborationEngine) evictLocked(now time.Time) {
	cutoff := now.Add(-e.window)
	for fp, entries := range e.entries {
		kept := entries[:0]
		for _, ent := range entries {
			if ent.seenAt.After(cutoff) {
				kept = append(kept, ent)
			}
		}
		if len(kept) == 0 {
			delete(e.entries, fp)
			continue
		}
		e.entries[fp] = kept
	}
}
