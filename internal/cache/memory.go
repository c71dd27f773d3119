package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dukerupert/artesania/internal/domain"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCatalogCache is an in-process cache. Entries are stored encoded so
// callers never share slices with each other.
type MemoryCatalogCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCatalogCache() *MemoryCatalogCache {
	return &MemoryCatalogCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCatalogCache) Get(_ context.Context, key string) (*domain.Catalog, bool, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(entry.data, &catalog); err != nil {
		return nil, false, err
	}
	return &catalog, true, nil
}

func (c *MemoryCatalogCache) Set(_ context.Context, key string, value *domain.Catalog, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCatalogCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
