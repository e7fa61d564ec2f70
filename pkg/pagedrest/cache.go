package pagedrest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrCacheMiss         = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
)

// CacheEntry is a cached GET response.
type CacheEntry struct {
	Key       string    `json:"key"        msgpack:"key"`
	Value     Response  `json:"value"      msgpack:"value"`
	ExpiresAt time.Time `json:"expires_at" msgpack:"expires_at"`
}

// Expired reports whether the entry is past its expiry at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Cache is a response cache backend.
//
// Set replaces any entry already stored under key, including its expiry.
// Get returns ErrCacheMiss or ErrCacheEntryExpired when nothing live is
// stored; other errors come from remote backends.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
	Close(ctx context.Context) error
}

type memoryItem struct {
	entry *CacheEntry
	timer *time.Timer
}

// MemoryCache is an in-process cache. Every entry owns a timer that removes
// it once ExpiresAt passes.
type MemoryCache struct {
	mutex   sync.Mutex
	items   map[string]*memoryItem
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
// A maxSize of zero or less means unbounded.
func NewMemoryCache(maxSize int) *MemoryCache {
	return &MemoryCache{
		items:   make(map[string]*memoryItem),
		maxSize: maxSize,
	}
}

// Get returns the live entry for key.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	// The timer may not have fired yet.
	if item.entry.Expired(time.Now()) {
		c.removeLocked(key, item)

		return nil, ErrCacheEntryExpired
	}

	return item.entry, nil
}

// Set stores entry under key, replacing and un-scheduling any previous entry.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if previous, ok := c.items[key]; ok {
		c.removeLocked(key, previous)
	} else if c.maxSize > 0 && len(c.items) >= c.maxSize {
		c.evictLocked()
	}

	item := &memoryItem{entry: entry}
	if !entry.ExpiresAt.IsZero() {
		item.timer = time.AfterFunc(time.Until(entry.ExpiresAt), func() {
			c.expire(key, item)
		})
	}

	c.items[key] = item

	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if item, ok := c.items[key]; ok {
		c.removeLocked(key, item)
	}

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, item := range c.items {
		c.removeLocked(key, item)
	}

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close stops all expiry timers.
func (c *MemoryCache) Close(ctx context.Context) error {
	return c.Clear(ctx)
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.items)
}

// Cleanup removes expired entries whose timers have not fired yet.
func (c *MemoryCache) Cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.entry.Expired(now) {
			c.removeLocked(key, item)
		}
	}
}

// expire is called by an entry's timer. A timer that lost the race with a
// newer Set for the same key must leave the newer entry alone.
func (c *MemoryCache) expire(key string, item *memoryItem) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if current, ok := c.items[key]; ok && current == item {
		delete(c.items, key)
	}
}

func (c *MemoryCache) removeLocked(key string, item *memoryItem) {
	if item.timer != nil {
		item.timer.Stop()
	}

	delete(c.items, key)
}

// evictLocked drops the entry closest to expiry.
func (c *MemoryCache) evictLocked() {
	var (
		victimKey  string
		victimItem *memoryItem
	)

	for key, item := range c.items {
		if victimItem == nil || item.entry.ExpiresAt.Before(victimItem.entry.ExpiresAt) {
			victimKey, victimItem = key, item
		}
	}

	if victimItem != nil {
		c.removeLocked(victimKey, victimItem)
	}
}

// CacheStats holds cache counters.
type CacheStats struct {
	Hits          int64 `json:"hits"          yaml:"hits"`
	Misses        int64 `json:"misses"        yaml:"misses"`
	Sets          int64 `json:"sets"          yaml:"sets"`
	Invalidations int64 `json:"invalidations" yaml:"invalidations"`
	Errors        int64 `json:"errors"        yaml:"errors"`
}

// GetHitRate returns hits / (hits + misses), or 0 with no lookups.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager wraps a Cache with TTL handling, statistics and logging.
// Backend errors never reach callers: a failed read is a miss and a failed
// write or delete is logged.
type CacheManager struct {
	cache  Cache
	logger Logger

	hits          atomic.Int64
	misses        atomic.Int64
	sets          atomic.Int64
	invalidations atomic.Int64
	errors        atomic.Int64
}

// NewCacheManager creates a cache manager. A nil cache disables caching and
// a nil logger discards log output.
func NewCacheManager(cache Cache, logger Logger) *CacheManager {
	if cache == nil {
		cache = NewNoOpCache()
	}

	if logger == nil {
		logger = NopLogger{}
	}

	return &CacheManager{
		cache:  cache,
		logger: logger,
	}
}

// Get returns the cached response for key.
func (m *CacheManager) Get(ctx context.Context, key string) (Response, bool) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.misses.Add(1)

		if !isCacheMiss(err) {
			m.errors.Add(1)
			m.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}

		return nil, false
	}

	m.hits.Add(1)
	m.logger.Debug("cache hit", map[string]interface{}{"key": key})

	return entry.Value, true
}

// Set stores value under key for ttl.
func (m *CacheManager) Set(ctx context.Context, key string, value Response, ttl time.Duration) {
	entry := &CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}

	err := m.cache.Set(ctx, key, entry)
	if err != nil {
		m.errors.Add(1)
		m.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})

		return
	}

	m.sets.Add(1)
}

// Invalidate removes the entry for key.
func (m *CacheManager) Invalidate(ctx context.Context, key string) {
	m.invalidations.Add(1)

	err := m.cache.Delete(ctx, key)
	if err != nil {
		m.errors.Add(1)
		m.logger.Warn("cache invalidation failed", map[string]interface{}{"key": key, "error": err.Error()})

		return
	}

	m.logger.Debug("cache invalidated", map[string]interface{}{"key": key})
}

// Clear removes every entry from the backend.
func (m *CacheManager) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// Close closes the backend.
func (m *CacheManager) Close(ctx context.Context) error {
	return m.cache.Close(ctx)
}

// GetStats returns a snapshot of the counters.
func (m *CacheManager) GetStats() CacheStats {
	return CacheStats{
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		Sets:          m.sets.Load(),
		Invalidations: m.invalidations.Load(),
		Errors:        m.errors.Load(),
	}
}
