package cache

import (
	"sync"
	"time"

	"github.com/goosegrocer/backend/internal/domain"
)

// matchKey identifies one memoized match. Including the catalog version
// means a deal-ingestion write naturally invalidates older entries.
type matchKey struct {
	itemName string
	store    domain.Store
	version  int64
}

type cacheItem struct {
	result     domain.MatchResult
	expiration time.Time
}

// MatchCache is a thread-safe in-memory match cache with TTL support.
// It is safe to share read-only across concurrent comparison requests.
type MatchCache struct {
	data  map[matchKey]cacheItem
	ttl   time.Duration
	mutex sync.RWMutex
}

// NewMatchCache creates a new in-memory match cache. A zero ttl disables
// expiration.
func NewMatchCache(ttl time.Duration) *MatchCache {
	cache := &MatchCache{
		data: make(map[matchKey]cacheItem),
		ttl:  ttl,
	}

	if ttl > 0 {
		go cache.cleanupExpired()
	}

	return cache
}

// Get retrieves a memoized match for the given item, store and catalog version.
func (c *MatchCache) Get(itemName string, store domain.Store, version int64) (*domain.MatchResult, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[matchKey{itemName, store, version}]
	if !exists {
		return nil, false
	}

	if c.ttl > 0 && time.Now().After(item.expiration) {
		return nil, false
	}

	result := item.result
	return &result, true
}

// Set stores a match result for the given item, store and catalog version.
func (c *MatchCache) Set(itemName string, store domain.Store, version int64, result domain.MatchResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[matchKey{itemName, store, version}] = cacheItem{
		result:     result,
		expiration: time.Now().Add(c.ttl),
	}
}

// Size returns the current number of entries (for debugging/monitoring)
func (c *MatchCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all entries from the cache
func (c *MatchCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[matchKey]cacheItem)
}

// cleanupExpired removes expired entries periodically. Entries for stale
// catalog versions age out here rather than being evicted eagerly.
func (c *MatchCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
