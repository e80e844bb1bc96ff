package pipeline

import (
	"context"
	"sync"
)

// SourceLimiter bounds per-source concurrency independently of any other
// source's in-flight work (spec.md 5: "within a layer, items are
// parallelised up to a per-source concurrency parameter, default 5,
// auto-tuned"). internal/learning.AutoTuner computes the per-source
// override; SetConcurrency applies it for slots acquired afterward.
type SourceLimiter struct {
	mu       sync.Mutex
	slots    map[string]chan struct{}
	override map[string]int
	base     int
}

// NewSourceLimiter builds a limiter with a default per-source concurrency.
func NewSourceLimiter(defaultConcurrency int) *SourceLimiter {
	if defaultConcurrency < 1 {
		defaultConcurrency = 1
	}
	return &SourceLimiter{
		slots:    make(map[string]chan struct{}),
		override: make(map[string]int),
		base:     defaultConcurrency,
	}
}

// SetConcurrency overrides one source's limit. It drops the source's
// current slot channel, so the next Acquire builds a fresh one of the new
// size even while slots are held; those held slots are released to the
// old channel and do not count against the new limit.
func (l *SourceLimiter) SetConcurrency(sourceID string, n int) {
	if n < 1 {
		n = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.override[sourceID] = n
	delete(l.slots, sourceID) // next Acquire rebuilds with the new size
}

func (l *SourceLimiter) slotsFor(sourceID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[sourceID]
	if !ok {
		n := l.base
		if override, ok := l.override[sourceID]; ok {
			n = override
		}
		ch = make(chan struct{}, n)
		l.slots[sourceID] = ch
	}
	return ch
}

// Acquire blocks until a slot for sourceID is available or ctx is
// cancelled. The returned release func must be called exactly once to
// free the slot; it closes over the specific channel instance acquired,
// so a concurrent SetConcurrency rebuild never strands an in-flight slot.
func (l *SourceLimiter) Acquire(ctx context.Context, sourceID string) (release func(), err error) {
	slots := l.slotsFor(sourceID)
	select {
	case slots <- struct{}{}:
		return func() { <-slots }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}
