package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/internal/http"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"golang.org/x/sync/singleflight"
)

// Transport issues authenticated HTTP calls. Paths include the API prefix;
// query values are appended to any query string already in the path.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) (*http.Response, error)
	Post(ctx context.Context, path string, body interface{}) (*http.Response, error)
	Put(ctx context.Context, path string, body interface{}) (*http.Response, error)
	Delete(ctx context.Context, path string, query url.Values) (*http.Response, error)
}

// Client implements the pagedrest.Client interface.
type Client struct {
	transport Transport
	cache     *pagedrest.CacheManager
	logger    pagedrest.Logger
	ttl       time.Duration
	inflight  singleflight.Group
}

var _ pagedrest.Client = (*Client)(nil)

// Option configures the client.
type Option func(*Client)

// WithCacheTTL overrides how long GET responses stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger pagedrest.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *pagedrest.Config) []http.Option {
	httpOpts := []http.Option{
		http.WithBasicAuth(config.User, config.Password),
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	return httpOpts
}

// New creates a client for baseURL from config. The cache backend is built
// from config.Cache and owned by the client.
func New(config *pagedrest.Config, baseURL string, opts ...Option) (*Client, error) {
	backend, err := pagedrest.NewCacheFromConfig(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	cache := pagedrest.NewCacheManager(backend, config.Logger)

	if config.MetricsRegisterer != nil {
		err = config.MetricsRegisterer.Register(pagedrest.NewCacheCollector(cache, constants.DefaultCacheNamespace))
		if err != nil {
			_ = cache.Close(context.Background())

			return nil, fmt.Errorf("registering cache metrics: %w", err)
		}
	}

	transport := http.NewClient(baseURL, createHTTPClientOptions(config)...)

	opts = append([]Option{WithLogger(config.Logger)}, opts...)

	return NewWithTransport(transport, cache, opts...), nil
}

// NewWithTransport creates a client over a custom transport and cache.
func NewWithTransport(transport Transport, cache *pagedrest.CacheManager, opts ...Option) *Client {
	client := &Client{
		transport: transport,
		cache:     cache,
		logger:    pagedrest.NopLogger{},
		ttl:       constants.DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.cache == nil {
		client.cache = pagedrest.NewCacheManager(pagedrest.NewMemoryCache(constants.DefaultCacheSize), client.logger)
	}

	return client
}

// GetPage implements pagedrest.Dispatcher.GetPage.
//
// Concurrent misses for one key share a single request, which is detached
// from any one caller's cancellation. Each caller stops waiting when its own
// ctx is done. Every caller receives its own copy of the top-level map.
func (c *Client) GetPage(ctx context.Context, path string, query url.Values) (pagedrest.Response, error) {
	key := buildPath(path, query)

	if cached, ok := c.cache.Get(ctx, key); ok {
		return maps.Clone(cached), nil
	}

	c.logger.Debug("cache miss", map[string]interface{}{"key": key})

	fetchCtx := context.WithoutCancel(ctx)

	results := c.inflight.DoChan(key, func() (interface{}, error) {
		resp, err := c.transport.Get(fetchCtx, constants.APIPrefix+path, query)
		if err != nil {
			return nil, fmt.Errorf("getting %s: %w", key, err)
		}

		page, err := decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("parsing %s response: %w", key, err)
		}

		c.cache.Set(fetchCtx, key, page, c.ttl)

		return page, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("getting %s: %w", key, ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}

		page, _ := result.Val.(pagedrest.Response)

		return maps.Clone(page), nil
	}
}

// Put implements pagedrest.Dispatcher.Put.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (pagedrest.Response, error) {
	return c.mutate(ctx, "put", path, nil, func() (*http.Response, error) {
		return c.transport.Put(ctx, constants.APIPrefix+path, body)
	})
}

// Post implements pagedrest.Dispatcher.Post.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (pagedrest.Response, error) {
	return c.mutate(ctx, "post", path, nil, func() (*http.Response, error) {
		return c.transport.Post(ctx, constants.APIPrefix+path, body)
	})
}

// Delete implements pagedrest.Dispatcher.Delete. With a query, both the
// query-qualified entry and the entry for the bare path are invalidated.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (pagedrest.Response, error) {
	return c.mutate(ctx, "delete", path, query, func() (*http.Response, error) {
		return c.transport.Delete(ctx, constants.APIPrefix+path, query)
	})
}

// mutate runs a non-GET call. The cache is invalidated once the call
// resolves, whether or not it succeeded.
func (c *Client) mutate(ctx context.Context, verb, path string, query url.Values, call func() (*http.Response, error)) (pagedrest.Response, error) {
	key := buildPath(path, query)

	keys := []string{key}
	if len(query) > 0 {
		keys = append(keys, buildPath(path, nil))
	}

	defer c.invalidate(context.WithoutCancel(ctx), keys...)

	resp, err := call()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", verb, key, err)
	}

	result, err := decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", key, err)
	}

	return result, nil
}

func (c *Client) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		c.inflight.Forget(key)
		c.cache.Invalidate(ctx, key)
	}
}

// CacheStats implements pagedrest.CacheClient.CacheStats.
func (c *Client) CacheStats() pagedrest.CacheStats {
	return c.cache.GetStats()
}

// ClearCache implements pagedrest.CacheClient.ClearCache.
func (c *Client) ClearCache(ctx context.Context) error {
	err := c.cache.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	return nil
}

// Close implements pagedrest.Client.Close.
func (c *Client) Close(ctx context.Context) error {
	err := c.cache.Close(ctx)
	if err != nil {
		return fmt.Errorf("closing cache: %w", err)
	}

	return nil
}

// buildPath returns the API path for path and query. It is also the cache
// key for the request.
func buildPath(path string, query url.Values) string {
	fullPath := constants.APIPrefix + path

	if len(query) == 0 {
		return fullPath
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return fullPath + separator + query.Encode()
}

// decode parses a JSON object body. An empty body decodes to an empty
// response.
func decode(body []byte) (pagedrest.Response, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return pagedrest.Response{}, nil
	}

	var value interface{}

	err := json.Unmarshal(body, &value)
	if err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	object, ok := value.(map[string]interface{})
	if !ok {
		return nil, pagedrest.ErrUnexpectedPayload
	}

	return object, nil
}
