package retrieval

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"motorag/internal/domain"
)

// Clock supplies the current time; injected so expiry is testable.
type Clock func() time.Time

// ResultCache is a bounded LRU cache with TTL for search results, keyed by
// query parameters. Thread-safe.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lruList *list.List
	maxSize int
	ttl     time.Duration
	now     Clock
	hits    uint64
	misses  uint64
}

type cacheEntry struct {
	candidates []domain.ScoredCandidate
	insertedAt time.Time
	element    *list.Element
}

// CacheStats reports cache occupancy and effectiveness.
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
}

// NewResultCache creates a cache holding at most maxSize entries for at most
// ttl each. A nil clock falls back to time.Now.
func NewResultCache(maxSize int, ttl time.Duration, now Clock) *ResultCache {
	if now == nil {
		now = time.Now
	}
	return &ResultCache{
		entries: make(map[string]*cacheEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
	}
}

// CacheKey derives the cache key for a search request.
func CacheKey(query string, topK int, floor float64) string {
	return fmt.Sprintf("%s|%d|%.4f", query, topK, floor)
}

// Get returns the cached candidates, or false on miss or expiry.
func (c *ResultCache) Get(key string) ([]domain.ScoredCandidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.insertedAt) > c.ttl {
		c.misses++
		if ok {
			c.removeLocked(key)
		}
		return nil, false
	}
	c.lruList.MoveToFront(entry.element)
	c.hits++
	out := make([]domain.ScoredCandidate, len(entry.candidates))
	copy(out, entry.candidates)
	return out, true
}

// Set stores candidates under key, evicting the least recently used entry
// when full.
func (c *ResultCache) Set(key string, candidates []domain.ScoredCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]domain.ScoredCandidate, len(candidates))
	copy(stored, candidates)
	if entry, ok := c.entries[key]; ok {
		entry.candidates = stored
		entry.insertedAt = c.now()
		c.lruList.MoveToFront(entry.element)
		return
	}
	if c.lruList.Len() >= c.maxSize {
		if back := c.lruList.Back(); back != nil {
			c.removeLocked(back.Value.(string))
		}
	}
	entry := &cacheEntry{candidates: stored, insertedAt: c.now()}
	entry.element = c.lruList.PushFront(key)
	c.entries[key] = entry
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.lruList.Init()
}

// Stats returns cache statistics.
func (c *ResultCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

func (c *ResultCache) removeLocked(key string) {
	if entry, ok := c.entries[key]; ok {
		c.lruList.Remove(entry.element)
		delete(c.entries, key)
	}
}
