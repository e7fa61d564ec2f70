package pagedrest

import (
	"context"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Response is a decoded JSON object returned by the API.
//
// List endpoints return a page of results in one or more array-valued fields
// and, when more pages exist, a continuation locator in the "nextPage" field.
// Responses served from the cache are shared; treat them as read-only.
type Response map[string]interface{}

// Dispatcher issues requests against API resource paths.
type Dispatcher interface {
	// Get fetches path and follows "nextPage" locators, merging array-valued
	// fields across pages. A failure fetching a later page is not returned:
	// the pages fetched so far are returned instead.
	Get(ctx context.Context, path string, query url.Values) (Response, error)

	// GetPage fetches a single page of path through the cache.
	GetPage(ctx context.Context, path string, query url.Values) (Response, error)

	// Put sends body to path and invalidates the cached entry for path.
	Put(ctx context.Context, path string, body interface{}) (Response, error)

	// Post sends body to path and invalidates the cached entry for path.
	Post(ctx context.Context, path string, body interface{}) (Response, error)

	// Delete deletes path and invalidates the cached entry for path.
	Delete(ctx context.Context, path string, query url.Values) (Response, error)
}

// CacheClient exposes the response cache of a client.
type CacheClient interface {
	CacheStats() CacheStats
	ClearCache(ctx context.Context) error
}

type Client interface {
	Dispatcher
	CacheClient

	// Close releases cache timers and remote cache connections.
	Close(ctx context.Context) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building a pagedrest.Client.
//
// # Base URL
//
// URL, when set, is used as is. Otherwise Production selects the production
// API and the sandbox is used by default.
//
// # Caching
//
// GET responses are cached for one hour, keyed by the full request path
// including the query string. PUT, POST and DELETE invalidate the entry for
// the path they target. Cache selects the backend; nil means an in-memory
// cache owned by the client.
type Config struct {
	// Required fields
	// User: basic-auth user name.
	User string
	// Password: basic-auth password.
	Password string

	// Optional configurations
	// Production: use the production API instead of the sandbox.
	Production bool
	// URL: overrides the base URL selected by Production.
	URL string
	// Logger: optional structured logger used by the transport and dispatcher.
	Logger Logger
	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
	// HTTPTimeout: per-request timeout. Defaults to 30 seconds.
	HTTPTimeout time.Duration
	// Cache: response cache backend. Nil selects DefaultCacheConfig().
	Cache *CacheConfig
	// MetricsRegisterer: when set, cache statistics are registered as
	// Prometheus counters.
	MetricsRegisterer prometheus.Registerer
}
