package relay

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MetadataCache is a Keyserver that remembers samples for ttl.
type MetadataCache struct {
	ks  Keyserver
	ttl time.Duration
	now func() time.Time

	mu sync.Mutex
	m  map[string]*metadataCacheEntry
}

type metadataCacheEntry struct {
	md        *AddressMetadata
	expiresAt time.Time
}

var _ Keyserver = (*MetadataCache)(nil)

func NewMetadataCache(ks Keyserver, ttl time.Duration) *MetadataCache {
	return &MetadataCache{
		ks:  ks,
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]*metadataCacheEntry),
	}
}

// Sample returns the cached metadata for address, sampling the underlying
// keyserver only when the entry is missing or expired. Errors are not cached.
func (c *MetadataCache) Sample(ctx context.Context, address string) (*AddressMetadata, error) {
	if c == nil || c.ks == nil {
		return nil, fmt.Errorf("nil metadata cache")
	}

	c.mu.Lock()
	if e, ok := c.m[address]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.md, nil
	}
	c.mu.Unlock()

	md, err := c.ks.Sample(ctx, address)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.m[address] = &metadataCacheEntry{md: md, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return md, nil
}

// Invalidate drops address from the cache.
func (c *MetadataCache) Invalidate(address string) {
	c.mu.Lock()
	delete(c.m, address)
	c.mu.Unlock()
}
