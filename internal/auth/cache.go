package auth

import (
	"crypto/sha256"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a cached resolution may outlive a
// revocation in the backing registries. Deployments can shorten it via
// configuration; it is a staleness bound, not a correctness guarantee.
const DefaultCacheTTL = 300 * time.Second

// Cache is a time-boxed cache of successful credential resolutions. Keys
// are SHA-256 digests of the raw credential, so the cache never holds a
// live credential. Failed resolutions are never cached - a misconfigured
// client recovers as soon as the registry does.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration

	entries map[[sha256.Size]byte]cacheEntry
}

type cacheEntry struct {
	principal Principal
	storedAt  time.Time
}

// NewCache creates a resolution cache with the given TTL. A zero or
// negative TTL falls back to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache{
		ttl:     ttl,
		entries: make(map[[sha256.Size]byte]cacheEntry),
	}
}

// TTL returns the configured staleness bound.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached principal for a credential, if present and fresh.
// Expired entries are evicted lazily on read.
func (c *Cache) Get(credential string) (*Principal, bool) {
	key := sha256.Sum256([]byte(credential))

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Since(entry.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		if current, still := c.entries[key]; still && time.Since(current.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	principal := entry.principal
	return &principal, true
}

// Put stores a successful resolution. Concurrent writers for the same
// credential compute the same principal, so last-write-wins is fine.
func (c *Cache) Put(credential string, principal *Principal) {
	key := sha256.Sum256([]byte(credential))

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		principal: *principal,
		storedAt:  time.Now(),
	}
	c.mu.Unlock()
}

// Invalidate drops the entry for a credential, if present. Used on logout
// so revocation takes effect on this instance immediately rather than at
// the TTL bound.
func (c *Cache) Invalidate(credential string) {
	key := sha256.Sum256([]byte(credential))

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge removes all expired entries and returns the count. Lazy expiry
// keeps reads correct without this; Purge only bounds memory.
func (c *Cache) Purge() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
			count++
		}
	}

	return count
}

// Len returns the number of entries currently held, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
