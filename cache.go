package relgraph

import (
	"sync"
	"time"

	"github.com/pthm/relgraph/entity"
)

// cacheKey uniquely identifies a Check call. All fields are required to
// form a unique key; partial matches are not supported.
type cacheKey struct {
	subject          entity.Entity
	relation         string
	object           entity.Entity
	subjectPredicate entity.Predicate
}

// cacheEntry stores the result of a check.
type cacheEntry struct {
	allowed   bool
	expiresAt time.Time // zero means no expiry
}

// Cache stores Check results. Implementations must be safe for concurrent
// use from multiple goroutines, since Service.Check may be called from many
// readers at once.
type Cache interface {
	// Get retrieves a cached check result. found is false if the entry
	// doesn't exist or has expired.
	Get(t entity.RelationalTriple) (allowed bool, found bool)

	// Set stores a check result in the cache.
	Set(t entity.RelationalTriple, allowed bool)
}

// CacheImpl is the default in-memory Cache with optional TTL. It uses a
// sync.RWMutex for goroutine safety.
//
// The cache grows unbounded within its TTL window. Long-running services
// with a large, fast-changing graph should prefer a short TTL or call Clear
// after bulk writes.
type CacheImpl struct {
	mu    sync.RWMutex
	items map[cacheKey]cacheEntry
	ttl   time.Duration // 0 means no expiry
}

// CacheOption configures a CacheImpl.
type CacheOption func(*CacheImpl)

// WithTTL sets the time-to-live for cache entries. A TTL of 0 (default)
// means entries never expire within the cache's lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CacheImpl) {
		c.ttl = ttl
	}
}

// NewCache creates a new check-result cache.
func NewCache(opts ...CacheOption) *CacheImpl {
	c := &CacheImpl{items: make(map[cacheKey]cacheEntry)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func keyFor(t entity.RelationalTriple) cacheKey {
	pred := t.SubjectPredicate
	if pred == nil {
		pred = entity.SelfRef{}
	}
	return cacheKey{subject: t.Subject, relation: t.Relation, object: t.Object, subjectPredicate: pred}
}

// Get retrieves a cached check result.
func (c *CacheImpl) Get(t entity.RelationalTriple) (bool, bool) {
	key := keyFor(t)

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return false, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return false, false
	}
	return entry.allowed, true
}

// Set stores a check result in the cache.
func (c *CacheImpl) Set(t entity.RelationalTriple, allowed bool) {
	key := keyFor(t)
	entry := cacheEntry{allowed: allowed}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.items[key] = entry
	c.mu.Unlock()
}

// Size returns the number of entries currently cached.
func (c *CacheImpl) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all cached entries. Call this after a bulk write to avoid
// serving stale denials/allows.
func (c *CacheImpl) Clear() {
	c.mu.Lock()
	c.items = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
}

var _ Cache = (*CacheImpl)(nil)
