package learning

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/newsintel/internal/config"
)

type fakeKVCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeKVCache() *fakeKVCache { return &fakeKVCache{data: make(map[string][]byte)} }

func (k *fakeKVCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = value
	return nil
}

func (k *fakeKVCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.data[key]
	return v, ok, nil
}

func (k *fakeKVCache) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}

func (k *fakeKVCache) Incr(context.Context, string) (int64, error)          { return 0, nil }
func (k *fakeKVCache) ScanPrefix(context.Context, string) ([]string, error) { return nil, nil }
func (k *fakeKVCache) ListPush(context.Context, string, []byte, int) error  { return nil }
func (k *fakeKVCache) ListRange(context.Context, string) ([][]byte, error)  { return nil, nil }

func TestOrchestrator_RunCycle_OffModeDoesNothing(t *testing.T) {
	metrics := NewMetricsTracker()
	metrics.RecordScrape(ScrapeOutcome{SourceID: "s1", Success: true})
	tuner := NewAutoTuner(metrics, nil, time.Hour, 0.5, 0.5)
	kv := newFakeKVCache()

	o := NewOrchestrator(tuner, kv, config.LearningOff, zerolog.Nop())
	require.NoError(t, o.RunCycle(context.Background()))

	_, ok, _ := kv.Get(context.Background(), tunedParamsKey("s1"))
	assert.False(t, ok)
}

func TestOrchestrator_RunCycle_ShadowModeComputesButDoesNotPersist(t *testing.T) {
	metrics := NewMetricsTracker()
	metrics.RecordScrape(ScrapeOutcome{SourceID: "s1", Success: true})
	tuner := NewAutoTuner(metrics, nil, time.Hour, 0.5, 0.5)
	kv := newFakeKVCache()

	o := NewOrchestrator(tuner, kv, config.LearningShadow, zerolog.Nop())
	require.NoError(t, o.RunCycle(context.Background()))

	_, ok, _ := kv.Get(context.Background(), tunedParamsKey("s1"))
	assert.False(t, ok)
}

func TestOrchestrator_RunCycle_ActiveModePersistsTunedParameters(t *testing.T) {
	metrics := NewMetricsTracker()
	metrics.RecordScrape(ScrapeOutcome{SourceID: "s1", Success: true})
	tuner := NewAutoTuner(metrics, nil, time.Hour, 0.5, 0.5)
	kv := newFakeKVCache()

	o := NewOrchestrator(tuner, kv, config.LearningActive, zerolog.Nop())
	require.NoError(t, o.RunCycle(context.Background()))

	params, ok, err := Lookup(context.Background(), kv, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "s1", params.SourceID)
}

func TestLookup_MissingSourceReturnsFalse(t *testing.T) {
	kv := newFakeKVCache()
	_, ok, err := Lookup(context.Background(), kv, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
