//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/pagedrest/pkg/pagedclient"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, config *TestConfig, cache *pagedrest.CacheConfig) pagedrest.Client {
	t.Helper()

	client, err := pagedclient.New(&pagedrest.Config{
		URL:      config.URL,
		User:     config.User,
		Password: config.Password,
		Cache:    cache,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close(context.Background()) })

	return client
}

// TestWorkflow_ListIsCached fetches a list twice and expects the second
// fetch to be served from the cache.
func TestWorkflow_ListIsCached(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := newClient(t, config, nil)
	ctx := context.Background()

	first, err := client.Get(ctx, config.ListPath, nil)
	require.NoError(t, err)

	missesAfterFirst := client.CacheStats().Misses

	second, err := client.Get(ctx, config.ListPath, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, missesAfterFirst, client.CacheStats().Misses)
	assert.Positive(t, client.CacheStats().Hits)
}

// TestWorkflow_SinglePageIsPrefix checks that the aggregated list starts with
// the first page.
func TestWorkflow_SinglePageIsPrefix(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := newClient(t, config, nil)
	ctx := context.Background()

	page, err := client.GetPage(ctx, config.ListPath, nil)
	require.NoError(t, err)

	all, err := client.Get(ctx, config.ListPath, nil)
	require.NoError(t, err)

	for key, value := range page {
		items, ok := value.([]interface{})
		if !ok {
			continue
		}

		merged, ok := all[key].([]interface{})
		require.True(t, ok, "field %s should remain an array", key)
		require.GreaterOrEqual(t, len(merged), len(items))
		assert.Equal(t, items, merged[:len(items)])
	}
}

// TestWorkflow_RemoteCaches runs the list workflow against Redis and NATS
// cache backends when they are configured.
func TestWorkflow_RemoteCaches(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	backends := map[string]*pagedrest.CacheConfig{}

	if config.RedisAddr != "" {
		backends["redis"] = &pagedrest.CacheConfig{
			Type:  pagedrest.CacheTypeRedis,
			Redis: &pagedrest.RedisCacheConfig{Addr: config.RedisAddr, Namespace: "pagedrest-it", Codec: codec.TypeMsgpack},
		}
	}

	if config.NATSURL != "" {
		backends["nats"] = &pagedrest.CacheConfig{
			Type: pagedrest.CacheTypeNATS,
			NATS: &pagedrest.NATSKVConfig{URL: config.NATSURL, Bucket: "pagedrest-it", Codec: codec.TypeCBOR},
		}
	}

	if len(backends) == 0 {
		t.Skip("no remote cache configured")
	}

	for name, cache := range backends {
		t.Run(name, func(t *testing.T) {
			client := newClient(t, config, cache)
			ctx := context.Background()

			require.NoError(t, client.ClearCache(ctx))

			_, err := client.GetPage(ctx, config.ListPath, nil)
			require.NoError(t, err)

			_, err = client.GetPage(ctx, config.ListPath, nil)
			require.NoError(t, err)

			stats := client.CacheStats()
			assert.Equal(t, int64(1), stats.Hits)
			assert.Equal(t, int64(0), stats.Errors)
		})
	}
}

// TestWorkflow_CLI runs the CLI binary end to end.
func TestWorkflow_CLI(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfMissingBinary(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("version", "--output", "json")
	require.NoError(t, err, stderr)
	assert.Contains(t, DecodeJSONOutput(t, stdout), "version")

	stdout, stderr, err = runner.Run("get", config.ListPath, "--output", "json")
	require.NoError(t, err, stderr)
	assert.NotEmpty(t, DecodeJSONOutput(t, stdout))

	_, _, err = runner.Run("get", config.ListPath, "--output", "xml")
	require.Error(t, err)
}
