package kvstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process repository.KVCache, used by tests and by callers
// running the pipeline without a Redis instance.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	expiry map[string]time.Time
	lists  map[string][][]byte
}

// NewMemory builds an empty in-memory KV cache.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
		expiry: make(map[string]time.Time),
		lists:  make(map[string][][]byte),
	}
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	if ttl > 0 {
		m.expiry[key] = time.Now().Add(ttl)
	} else {
		delete(m.expiry, key)
	}
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.expiry[key]; ok && time.Now().After(exp) {
		delete(m.values, key)
		delete(m.expiry, key)
		return nil, false, nil
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	delete(m.expiry, key)
	delete(m.lists, key)
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if v, ok := m.values[key]; ok {
		n, _ = strconv.ParseInt(string(v), 10, 64)
	}
	n++
	m.values[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *Memory) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) ListPush(_ context.Context, key string, value []byte, maxLen int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([][]byte{value}, m.lists[key]...)
	if maxLen > 0 && len(m.lists[key]) > maxLen {
		m.lists[key] = m.lists[key][:maxLen]
	}
	return nil
}

func (m *Memory) ListRange(_ context.Context, key string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.lists[key]))
	copy(out, m.lists[key])
	return out, nil
}
