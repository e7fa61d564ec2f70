package pagedrest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest/codec"
	goredis "github.com/redis/go-redis/v9"
)

// Static errors for err113 compliance.
var (
	ErrRedisAddrRequired = errors.New("redis address or client is required")
)

// RedisCacheConfig configures the Redis cache.
type RedisCacheConfig struct {
	// Addr is host:port of the Redis server. Ignored when Client is set.
	Addr     string
	Username string
	Password string
	DB       int
	// Client is an existing client. The cache does not close it.
	Client goredis.UniversalClient
	// Namespace prefixes every key. Defaults to "pagedrest".
	Namespace string
	// Codec encodes entries. Defaults to JSON.
	Codec codec.Type
	// DialTimeout for new connections.
	DialTimeout time.Duration
}

// RedisCache stores entries in Redis with native key expiry.
type RedisCache struct {
	rdb         goredis.UniversalClient
	namespace   string
	codec       codec.Codec[CacheEntry]
	closeClient bool
}

// NewRedisCache creates a Redis cache. No connection is made until first use.
func NewRedisCache(config *RedisCacheConfig) (*RedisCache, error) {
	if config == nil || (config.Addr == "" && config.Client == nil) {
		return nil, ErrRedisAddrRequired
	}

	entryCodec, err := codec.New[CacheEntry](config.Codec)
	if err != nil {
		return nil, fmt.Errorf("creating redis cache codec: %w", err)
	}

	rdb := config.Client
	closeClient := false

	if rdb == nil {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:        config.Addr,
			Username:    config.Username,
			Password:    config.Password,
			DB:          config.DB,
			DialTimeout: config.DialTimeout,
		})
		closeClient = true
	}

	namespace := config.Namespace
	if namespace == "" {
		namespace = constants.DefaultCacheNamespace
	}

	return &RedisCache{
		rdb:         rdb,
		namespace:   namespace,
		codec:       entryCodec,
		closeClient: closeClient,
	}, nil
}

func (c *RedisCache) key(key string) string {
	return c.namespace + ":" + key
}

// Get retrieves an entry.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("reading redis key: %w", err)
	}

	entry, err := c.codec.Decode(data)
	if err != nil {
		_ = c.rdb.Del(ctx, c.key(key)).Err() // self-heal corrupt

		return nil, fmt.Errorf("decoding redis entry: %w", err)
	}

	if entry.Expired(time.Now()) {
		return nil, ErrCacheEntryExpired
	}

	return &entry, nil
}

// Set stores an entry; Redis replaces both the value and its TTL.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if !entry.ExpiresAt.IsZero() && ttl <= 0 {
		return c.Delete(ctx, key)
	}

	if entry.ExpiresAt.IsZero() {
		ttl = 0
	}

	data, err := c.codec.Encode(*entry)
	if err != nil {
		return fmt.Errorf("encoding redis entry: %w", err)
	}

	err = c.rdb.Set(ctx, c.key(key), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("writing redis key: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.rdb.Del(ctx, c.key(key)).Err()
	if err != nil {
		return fmt.Errorf("deleting redis key: %w", err)
	}

	return nil
}

// Clear removes every key under the namespace.
func (c *RedisCache) Clear(ctx context.Context) error {
	var cursor uint64

	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.namespace+":*", constants.DefaultRedisScanCount).Result()
		if err != nil {
			return fmt.Errorf("scanning redis keys: %w", err)
		}

		if len(keys) > 0 {
			err = c.rdb.Del(ctx, keys...).Err()
			if err != nil {
				return fmt.Errorf("deleting redis keys: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Has checks if a key exists.
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	n, err := c.rdb.Exists(ctx, c.key(key)).Result()

	return err == nil && n > 0
}

// Close releases the client when the cache created it.
func (c *RedisCache) Close(ctx context.Context) error {
	if !c.closeClient {
		return nil
	}

	err := c.rdb.Close()
	if err != nil && !errors.Is(err, goredis.ErrClosed) {
		return fmt.Errorf("closing redis client: %w", err)
	}

	return nil
}
