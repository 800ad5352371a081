package embedding

import (
	"container/list"
	"context"
	"sync"
)

// CachedEmbedder wraps an Embedder with an LRU cache keyed by text. The
// index path embeds identical note bodies repeatedly across reindex sweeps;
// caching avoids re-billing the provider for unchanged content.
type CachedEmbedder struct {
	inner    Embedder
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key string
	vec []float32
}

// NewCachedEmbedder wraps inner with a cache of the given capacity.
func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	if capacity <= 0 {
		capacity = 1024
	}
	return &CachedEmbedder{
		inner:    inner,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Embed returns a cached vector when available, otherwise delegates to the
// wrapped embedder and stores the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if elem, ok := c.entries[text]; ok {
		c.lru.MoveToFront(elem)
		vec := elem.Value.(*cacheEntry).vec
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[text]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).vec = vec
		return vec, nil
	}
	c.entries[text] = c.lru.PushFront(&cacheEntry{key: text, vec: vec})
	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
	return vec, nil
}

// Dimensions returns the wrapped embedder's dimension.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}
