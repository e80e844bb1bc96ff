package llmkey

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/newsintel/internal/repository"
)

type fakeCaller struct {
	calls     int32
	failKeys  map[string]bool
	response  repository.LLMResult
}

func (f *fakeCaller) Call(_ context.Context, apiKey, _, _ string) (repository.LLMResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.failKeys[apiKey] {
		return repository.LLMResult{}, errors.New("simulated provider failure")
	}
	return f.response, nil
}

func TestManager_UsesFirstHealthyKey(t *testing.T) {
	caller := &fakeCaller{response: repository.LLMResult{Text: "ok"}}
	m := NewManager([]Config{
		{APIKey: "key-a", RequestsPerSecond: 100, Burst: 10},
		{APIKey: "key-b", RequestsPerSecond: 100, Burst: 10},
	}, caller, nil, zerolog.Nop())

	result, err := m.Invoke(context.Background(), "sys", "user")
	assert.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
	assert.Equal(t, "model", result.Source)
}

func TestManager_FallsBackWhenKeyFailsAndNoOtherKeyAvailable(t *testing.T) {
	caller := &fakeCaller{failKeys: map[string]bool{"key-a": true}}
	fallbackCalled := false
	fallback := func(system, user string) repository.LLMResult {
		fallbackCalled = true
		return repository.LLMResult{Text: "fallback text"}
	}

	m := NewManager([]Config{
		{APIKey: "key-a", RequestsPerSecond: 100, Burst: 10},
	}, caller, fallback, zerolog.Nop())

	result, err := m.Invoke(context.Background(), "sys", "user")
	assert.NoError(t, err)
	assert.True(t, fallbackCalled)
	assert.Equal(t, "fallback", result.Source)
	assert.Equal(t, "fallback text", result.Text)
}

func TestManager_SkipsToSecondKeyWhenFirstFails(t *testing.T) {
	caller := &fakeCaller{failKeys: map[string]bool{"key-a": true}, response: repository.LLMResult{Text: "from-b"}}
	m := NewManager([]Config{
		{APIKey: "key-a", RequestsPerSecond: 100, Burst: 10},
		{APIKey: "key-b", RequestsPerSecond: 100, Burst: 10},
	}, caller, nil, zerolog.Nop())

	result, err := m.Invoke(context.Background(), "sys", "user")
	assert.NoError(t, err)
	assert.Equal(t, "from-b", result.Text)
}

func TestManager_NoKeysAndNoFallbackReturnsError(t *testing.T) {
	m := NewManager(nil, &fakeCaller{}, nil, zerolog.Nop())
	_, err := m.Invoke(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrAllKeysExhausted)
}

func TestManager_RotatesStartingKeyAcrossCalls(t *testing.T) {
	var seenKeys []string
	caller := &recordingCaller{seen: &seenKeys}
	m := NewManager([]Config{
		{APIKey: "key-a", RequestsPerSecond: 100, Burst: 10},
		{APIKey: "key-b", RequestsPerSecond: 100, Burst: 10},
	}, caller, nil, zerolog.Nop())

	_, _ = m.Invoke(context.Background(), "sys", "user")
	_, _ = m.Invoke(context.Background(), "sys", "user")

	assert.Equal(t, []string{"key-a", "key-b"}, seenKeys)
}

type recordingCaller struct {
	seen *[]string
}

func (c *recordingCaller) Call(_ context.Context, apiKey, _, _ string) (repository.LLMResult, error) {
	*c.seen = append(*c.seen, apiKey)
	return repository.LLMResult{Text: "ok"}, nil
}
