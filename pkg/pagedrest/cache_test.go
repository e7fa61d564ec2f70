package pagedrest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("backend down")

func newEntry(value pagedrest.Response, ttl time.Duration) *pagedrest.CacheEntry {
	return &pagedrest.CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(10)
	ctx := context.Background()

	entry := newEntry(pagedrest.Response{"id": "1"}, time.Hour)

	err := cache.Set(ctx, "key1", entry)
	require.NoError(t, err)

	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, entry.Value, retrieved.Value)
	assert.True(t, cache.Has(ctx, "key1"))
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, pagedrest.ErrCacheMiss)
	assert.Contains(t, err.Error(), "key not found")
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(10)
	ctx := context.Background()

	err := cache.Set(ctx, "key1", newEntry(pagedrest.Response{"id": "1"}, -time.Hour))
	require.NoError(t, err)

	_, err = cache.Get(ctx, "key1")
	require.Error(t, err)
	assert.False(t, cache.Has(ctx, "key1"))
}

func TestMemoryCache_TimerRemovesEntry(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(0)
	ctx := context.Background()

	err := cache.Set(ctx, "key1", newEntry(pagedrest.Response{"id": "1"}, 20*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	assert.Eventually(t, func() bool {
		return cache.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryCache_ReplaceSupersedesExpiry(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(0)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key1", newEntry(pagedrest.Response{"v": "old"}, 20*time.Millisecond)))
	require.NoError(t, cache.Set(ctx, "key1", newEntry(pagedrest.Response{"v": "new"}, time.Hour)))

	// Well past the first entry's expiry.
	time.Sleep(100 * time.Millisecond)

	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "new", retrieved.Value["v"])
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryCache_Delete(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(10)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key1", newEntry(pagedrest.Response{}, time.Hour)))
	assert.True(t, cache.Has(ctx, "key1"))

	require.NoError(t, cache.Delete(ctx, "key1"))
	assert.False(t, cache.Has(ctx, "key1"))

	// Idempotent
	require.NoError(t, cache.Delete(ctx, "key1"))
}

func TestMemoryCache_Clear(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(10)
	ctx := context.Background()

	for i := range 3 {
		_ = cache.Set(ctx, string(rune('a'+i)), newEntry(pagedrest.Response{}, time.Hour))
	}

	assert.Equal(t, 3, cache.Len())

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, 0, cache.Len())
	assert.False(t, cache.Has(ctx, "a"))
}

func TestMemoryCache_MaxSize(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(2)
	ctx := context.Background()

	for i := range 3 {
		entry := newEntry(pagedrest.Response{}, time.Duration(i+1)*time.Hour)
		_ = cache.Set(ctx, string(rune('a'+i)), entry)
	}

	assert.Equal(t, 2, cache.Len())
	// The entry closest to expiry is evicted first
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_ReplaceDoesNotEvict(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(2)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", newEntry(pagedrest.Response{}, time.Hour))
	_ = cache.Set(ctx, "b", newEntry(pagedrest.Response{}, 2*time.Hour))
	_ = cache.Set(ctx, "b", newEntry(pagedrest.Response{"v": 2}, 3*time.Hour))

	assert.True(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))
}

func TestMemoryCache_Cleanup(t *testing.T) {
	t.Parallel()

	cache := pagedrest.NewMemoryCache(10)
	ctx := context.Background()

	_ = cache.Set(ctx, "expired", newEntry(pagedrest.Response{}, -time.Hour))
	_ = cache.Set(ctx, "valid", newEntry(pagedrest.Response{}, time.Hour))

	cache.Cleanup()

	assert.True(t, cache.Has(ctx, "valid"))
	assert.False(t, cache.Has(ctx, "expired"))
}

func TestCacheManager_SetAndGet(t *testing.T) {
	t.Parallel()

	manager := pagedrest.NewCacheManager(pagedrest.NewMemoryCache(10), nil)
	ctx := context.Background()

	value := pagedrest.Response{"items": []interface{}{1.0, 2.0}}

	manager.Set(ctx, "/api/v1/items", value, time.Hour)

	retrieved, ok := manager.Get(ctx, "/api/v1/items")
	require.True(t, ok)
	assert.Equal(t, value, retrieved)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestCacheManager_MissAndInvalidate(t *testing.T) {
	t.Parallel()

	manager := pagedrest.NewCacheManager(pagedrest.NewMemoryCache(10), nil)
	ctx := context.Background()

	_, ok := manager.Get(ctx, "nonexistent")
	assert.False(t, ok)

	manager.Set(ctx, "key", pagedrest.Response{}, time.Hour)
	manager.Invalidate(ctx, "key")
	manager.Invalidate(ctx, "key")

	_, ok = manager.Get(ctx, "key")
	assert.False(t, ok)

	stats := manager.GetStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(2), stats.Invalidations)
	assert.Equal(t, int64(0), stats.Errors)
}

func TestCacheManager_NilCacheDisablesCaching(t *testing.T) {
	t.Parallel()

	manager := pagedrest.NewCacheManager(nil, nil)
	ctx := context.Background()

	manager.Set(ctx, "key", pagedrest.Response{"a": 1}, time.Hour)

	_, ok := manager.Get(ctx, "key")
	assert.False(t, ok)
	assert.Equal(t, int64(0), manager.GetStats().Errors)
}

// failingCache returns errBackendDown from Get, Set and Delete.
type failingCache struct{ pagedrest.NoOpCache }

func (failingCache) Get(context.Context, string) (*pagedrest.CacheEntry, error) {
	return nil, errBackendDown
}

func (failingCache) Set(context.Context, string, *pagedrest.CacheEntry) error { return errBackendDown }
func (failingCache) Delete(context.Context, string) error                     { return errBackendDown }

func TestCacheManager_BackendErrorsAreCounted(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	manager := pagedrest.NewCacheManager(&failingCache{}, logger)
	ctx := context.Background()

	manager.Set(ctx, "key", pagedrest.Response{}, time.Hour)
	_, ok := manager.Get(ctx, "key")
	manager.Invalidate(ctx, "key")

	assert.False(t, ok)

	stats := manager.GetStats()
	assert.Equal(t, int64(3), stats.Errors)
	assert.Equal(t, int64(0), stats.Sets)
	assert.Equal(t, 3, logger.count("warn"))
}

func TestCacheStats_GetHitRate(t *testing.T) {
	t.Parallel()

	stats := &pagedrest.CacheStats{
		Hits:   75,
		Misses: 25,
	}
	assert.InDelta(t, 0.75, stats.GetHitRate(), 0.0001)

	emptyStats := &pagedrest.CacheStats{}
	assert.InDelta(t, 0.0, emptyStats.GetHitRate(), 0.0001)
}

type recordingLogger struct {
	logs []map[string]interface{}
}

func (l *recordingLogger) record(level, msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *recordingLogger) count(level string) int {
	n := 0

	for _, entry := range l.logs {
		if entry["level"] == level {
			n++
		}
	}

	return n
}
