package repotest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/process-raci/internal/cache"
)

var _ cache.Store = (*Cache)(nil)

// Cache is an in-memory cache.Store that ignores ttl.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte
	Hits    int
}

func (c *Cache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	c.Hits++
	return json.Unmarshal(raw, dest)
}

func (c *Cache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string][]byte)
	}
	c.entries[key] = raw
	return nil
}

func (c *Cache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
