package pagedrest

import (
	"context"
	"errors"
	"fmt"
)

// ErrKeyNotFoundInAnyCache is returned when no layer of a chain holds a key.
var ErrKeyNotFoundInAnyCache = fmt.Errorf("%w in any cache", ErrCacheMiss)

// CacheChain layers caches, fastest first. Reads fall through the layers and
// backfill the faster ones; writes and deletes reach every layer.
type CacheChain struct {
	layers []Cache
}

// NewCacheChain creates a chain over layers.
func NewCacheChain(layers ...Cache) *CacheChain {
	return &CacheChain{layers: layers}
}

// Get returns the entry from the first layer holding it. A backend failure in
// any layer is returned only when no layer holds the key.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	var failures []error

	for i, layer := range c.layers {
		entry, err := layer.Get(ctx, key)
		if err != nil {
			if !isCacheMiss(err) {
				failures = append(failures, fmt.Errorf("cache layer %d: %w", i, err))
			}

			continue
		}

		for _, faster := range c.layers[:i] {
			_ = faster.Set(ctx, key, entry)
		}

		return entry, nil
	}

	if len(failures) > 0 {
		return nil, errors.Join(failures...)
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores entry in every layer.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.each(func(layer Cache) error { return layer.Set(ctx, key, entry) })
}

// Delete removes key from every layer.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	return c.each(func(layer Cache) error { return layer.Delete(ctx, key) })
}

// Clear empties every layer.
func (c *CacheChain) Clear(ctx context.Context) error {
	return c.each(func(layer Cache) error { return layer.Clear(ctx) })
}

// Has reports whether any layer holds key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, layer := range c.layers {
		if layer.Has(ctx, key) {
			return true
		}
	}

	return false
}

// Close closes every layer.
func (c *CacheChain) Close(ctx context.Context) error {
	return c.each(func(layer Cache) error { return layer.Close(ctx) })
}

// each applies fn to every layer, even after a failure.
func (c *CacheChain) each(fn func(Cache) error) error {
	var failures []error

	for i, layer := range c.layers {
		if err := fn(layer); err != nil {
			failures = append(failures, fmt.Errorf("cache layer %d: %w", i, err))
		}
	}

	return errors.Join(failures...)
}

func isCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss) || errors.Is(err, ErrCacheEntryExpired) || errors.Is(err, ErrCacheDisabled)
}
