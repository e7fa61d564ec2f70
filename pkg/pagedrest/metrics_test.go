package pagedrest_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCollector(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := pagedrest.NewCacheManager(pagedrest.NewMemoryCache(0), nil)
	defer func() { _ = manager.Close(ctx) }()

	manager.Set(ctx, "/api/v1/items", pagedrest.Response{"items": []interface{}{}}, time.Hour)
	_, _ = manager.Get(ctx, "/api/v1/items")
	_, _ = manager.Get(ctx, "/api/v1/other")
	manager.Invalidate(ctx, "/api/v1/items")

	collector := pagedrest.NewCacheCollector(manager, "pagedrest")
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(collector))

	assert.Equal(t, 5, testutil.CollectAndCount(collector))

	expected := `
# HELP pagedrest_cache_hits_total Total GET requests served from the response cache
# TYPE pagedrest_cache_hits_total counter
pagedrest_cache_hits_total 1
# HELP pagedrest_cache_misses_total Total GET requests not found in the response cache
# TYPE pagedrest_cache_misses_total counter
pagedrest_cache_misses_total 1
# HELP pagedrest_cache_invalidations_total Total cache invalidations caused by mutations
# TYPE pagedrest_cache_invalidations_total counter
pagedrest_cache_invalidations_total 1
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"pagedrest_cache_hits_total", "pagedrest_cache_misses_total", "pagedrest_cache_invalidations_total")
	assert.NoError(t, err)
}
