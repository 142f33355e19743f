package retrieval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorag/internal/domain"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := NewResultCache(4, time.Minute, nil)
	key := CacheKey("oil level", 3, 0.6)

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, []domain.ScoredCandidate{candidate("check oil", 0.9)})
	got, ok := c.Get(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "check oil", got[0].Chunk.Content)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCacheTTLExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewResultCache(4, time.Minute, clock)
	key := CacheKey("oil level", 3, 0.6)

	c.Set(key, []domain.ScoredCandidate{candidate("check oil", 0.9)})
	_, ok := c.Get(key)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(key)
	assert.False(t, ok)
	// The expired entry is removed, not served stale later.
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewResultCache(2, time.Minute, nil)
	c.Set("a", []domain.ScoredCandidate{candidate("a", 0.1)})
	c.Set("b", []domain.ScoredCandidate{candidate("b", 0.2)})

	// Touch "a" so "b" becomes the eviction victim.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", []domain.ScoredCandidate{candidate("c", 0.3)})

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCacheReturnsCopy(t *testing.T) {
	c := NewResultCache(4, time.Minute, nil)
	c.Set("k", []domain.ScoredCandidate{candidate("original", 0.9)})

	got, ok := c.Get("k")
	require.True(t, ok)
	got[0].Chunk.Content = "mutated"

	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "original", again[0].Chunk.Content)
}

func TestCacheClear(t *testing.T) {
	c := NewResultCache(4, time.Minute, nil)
	c.Set("k", []domain.ScoredCandidate{candidate("x", 0.9)})
	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheKeyDistinguishesParameters(t *testing.T) {
	assert.NotEqual(t, CacheKey("q", 3, 0.6), CacheKey("q", 5, 0.6))
	assert.NotEqual(t, CacheKey("q", 3, 0.6), CacheKey("q", 3, 0.7))
}
