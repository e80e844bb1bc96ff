package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutThenGetRoundTrips(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "article-1", []byte("hello world")))

	payload, ok, err := m.Get(ctx, "article-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello world", string(payload))
}

func TestMemory_GetMissingKeyReturnsFalse(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_DeleteRemovesKey(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Put(ctx, "k", []byte("v")))
	require.NoError(t, m.Delete(ctx, "k"))

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_PutCopiesPayloadSoCallerMutationDoesNotLeak(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	payload := []byte("original")
	require.NoError(t, m.Put(ctx, "k", payload))
	payload[0] = 'X'

	stored, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "original", string(stored))
}
