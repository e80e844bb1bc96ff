// Package llmkey rotates across a pool of LLM API keys, rate-limiting each
// key individually, tripping a circuit breaker per key on repeated
// failures, and falling back to a deterministic rule-based result when
// every key is exhausted or broken (spec.md 4.5/4.7: "LLM-backed stages
// share a single API-key rotation manager").
package llmkey

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/aristath/newsintel/internal/repository"
)

// ErrAllKeysExhausted is returned by Invoke when every key is rate-limited
// or circuit-broken and no fallback function is configured.
var ErrAllKeysExhausted = errors.New("llmkey: all keys rate-limited or circuit-broken")

// Caller is the underlying transport a key makes its call through, e.g. an
// OpenAI/Anthropic HTTP client wrapper. Kept minimal so Manager has no
// dependency on any particular provider SDK.
type Caller interface {
	Call(ctx context.Context, apiKey, system, user string) (repository.LLMResult, error)
}

// FallbackFunc produces a deterministic result when no key is usable.
type FallbackFunc func(system, user string) repository.LLMResult

type keySlot struct {
	apiKey  string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// Manager rotates round-robin across a fixed pool of API keys, applying a
// per-key token-bucket rate limit and circuit breaker, and falling back to
// a rule-based result when the whole pool is unavailable.
type Manager struct {
	mu       sync.Mutex
	slots    []*keySlot
	next     int
	caller   Caller
	fallback FallbackFunc
	log      zerolog.Logger
}

// Config describes one key's rate limit.
type Config struct {
	APIKey            string
	RequestsPerSecond float64
	Burst             int
}

// NewManager builds a Manager over the given keys. Each key gets its own
// circuit breaker tripping after 5 consecutive failures with a 30s
// cooldown before probing again.
func NewManager(configs []Config, caller Caller, fallback FallbackFunc, log zerolog.Logger) *Manager {
	slots := make([]*keySlot, 0, len(configs))
	for i, cfg := range configs {
		settings := gobreaker.Settings{
			Name:    "llmkey",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}
		slots = append(slots, &keySlot{
			apiKey:  cfg.APIKey,
			limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), maxInt(cfg.Burst, 1)),
			breaker: gobreaker.NewCircuitBreaker(settings),
		})
		_ = i
	}
	return &Manager{
		slots:    slots,
		caller:   caller,
		fallback: fallback,
		log:      log.With().Str("component", "llmkey").Logger(),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Invoke tries each key in round-robin order, skipping keys whose rate
// limiter has no tokens available right now or whose breaker is open, and
// returns the first successful result. If every key is unusable it falls
// back to FallbackFunc (tagged LLMResult.Source="fallback") or, absent
// one, returns ErrAllKeysExhausted.
func (m *Manager) Invoke(ctx context.Context, system, user string) (repository.LLMResult, error) {
	order := m.rotationOrder()

	for _, slot := range order {
		if !slot.limiter.Allow() {
			continue
		}

		result, err := slot.breaker.Execute(func() (interface{}, error) {
			return m.caller.Call(ctx, slot.apiKey, system, user)
		})
		if err != nil {
			m.log.Warn().Err(err).Msg("llm key call failed, trying next key")
			continue
		}
		typed := result.(repository.LLMResult)
		typed.Source = "model"
		return typed, nil
	}

	if m.fallback != nil {
		m.log.Warn().Msg("all llm keys exhausted, using rule-based fallback")
		result := m.fallback(system, user)
		result.Source = "fallback"
		return result, nil
	}
	return repository.LLMResult{}, ErrAllKeysExhausted
}

// rotationOrder returns the key pool starting from the next round-robin
// position, advancing that position for the following call.
func (m *Manager) rotationOrder() []*keySlot {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.slots)
	if n == 0 {
		return nil
	}
	ordered := make([]*keySlot, n)
	for i := 0; i < n; i++ {
		ordered[i] = m.slots[(m.next+i)%n]
	}
	m.next = (m.next + 1) % n
	return ordered
}
