package pagedrest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest/codec"
	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired = errors.New("NATS URL or connection is required")
)

// NATSKVConfig configures the NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server. Ignored when Conn is set.
	URL string
	// Conn is an existing connection. The cache does not close it.
	Conn *nats.Conn
	// Bucket is the key-value bucket name. Created when missing.
	Bucket string
	// MaxAge bounds how long the bucket keeps any value. Defaults to the
	// cache TTL; per-entry expiry is still enforced on read.
	MaxAge time.Duration
	// Codec encodes entries. Defaults to JSON.
	Codec codec.Type
	// ConnectTimeout for dialing URL.
	ConnectTimeout time.Duration
}

// NATSKVCache stores entries in a JetStream key-value bucket.
type NATSKVCache struct {
	conn     *nats.Conn
	kv       nats.KeyValue
	codec    codec.Codec[CacheEntry]
	ownsConn bool
}

// NewNATSKVCache connects to NATS and opens (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil || (config.URL == "" && config.Conn == nil) {
		return nil, ErrNATSURLRequired
	}

	entryCodec, err := codec.New[CacheEntry](config.Codec)
	if err != nil {
		return nil, fmt.Errorf("creating NATS cache codec: %w", err)
	}

	conn := config.Conn
	ownsConn := false

	if conn == nil {
		timeout := config.ConnectTimeout
		if timeout <= 0 {
			timeout = constants.ShortHTTPTimeout
		}

		conn, err = nats.Connect(config.URL, nats.Name("pagedrest-cache"), nats.Timeout(timeout))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownsConn = true
	}

	kv, err := openBucket(conn, config)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, err
	}

	return &NATSKVCache{
		conn:     conn,
		kv:       kv,
		codec:    entryCodec,
		ownsConn: ownsConn,
	}, nil
}

func openBucket(conn *nats.Conn, config *NATSKVConfig) (nats.KeyValue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	kv, err := js.KeyValue(bucket)
	if err == nil {
		return kv, nil
	}

	if !errors.Is(err, nats.ErrBucketNotFound) {
		return nil, fmt.Errorf("opening NATS bucket %s: %w", bucket, err)
	}

	maxAge := config.MaxAge
	if maxAge <= 0 {
		maxAge = constants.DefaultCacheTTL
	}

	kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      bucket,
		Description: "pagedrest response cache",
		TTL:         maxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("creating NATS bucket %s: %w", bucket, err)
	}

	return kv, nil
}

// natsKey maps a request path to a valid KV key. Paths carry '?', '&' and
// '%', none of which NATS accepts.
func natsKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

// Get retrieves an entry from the bucket.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(natsKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("reading NATS key: %w", err)
	}

	entry, err := c.codec.Decode(kvEntry.Value())
	if err != nil {
		_ = c.Delete(ctx, key)

		return nil, fmt.Errorf("decoding NATS entry: %w", err)
	}

	if entry.Expired(time.Now()) {
		_ = c.Delete(ctx, key)

		return nil, ErrCacheEntryExpired
	}

	return &entry, nil
}

// Set stores an entry, replacing any previous revision.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := c.codec.Encode(*entry)
	if err != nil {
		return fmt.Errorf("encoding NATS entry: %w", err)
	}

	_, err = c.kv.Put(natsKey(key), data)
	if err != nil {
		return fmt.Errorf("writing NATS key: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(natsKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting NATS key: %w", err)
	}

	return nil
}

// Clear removes every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing NATS keys: %w", err)
	}

	for _, key := range keys {
		err = c.kv.Delete(key)
		if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
			return fmt.Errorf("deleting NATS key: %w", err)
		}
	}

	return nil
}

// Has checks if a live entry exists.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the connection when the cache opened it.
func (c *NATSKVCache) Close(ctx context.Context) error {
	if c.ownsConn {
		c.conn.Close()
	}

	return nil
}
