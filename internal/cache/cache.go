// Package cache provides the cache backends used to store fetched resource
// representations. Entries are keyed by a digest of the resource name and the
// fully qualified resource URL, never by field values.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for all cache backends
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache
	Clear(ctx context.Context) error

	// Exists checks if a key exists in the cache
	Exists(ctx context.Context, key string) (bool, error)

	// CacheKey derives the key for a resource fetched from fullURL
	CacheKey(resourceName, fullURL string) string
}

// CacheConfig holds common configuration for cache backends
type CacheConfig struct {
	// DefaultTTL is the default time-to-live for cached items
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultCacheConfig returns a default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL: 5 * time.Minute,
		Prefix:     "restmap:",
	}
}

// ErrCacheMiss is returned when a key is not found in the cache
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	_, ok := err.(ErrCacheMiss)
	return ok
}

// NullCache never stores anything. Every Get is a miss.
type NullCache struct{}

// NewNullCache creates a cache that stores nothing
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get always reports a miss
func (NullCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss{Key: key}
}

// Set discards the value
func (NullCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op
func (NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear is a no-op
func (NullCache) Clear(ctx context.Context) error {
	return nil
}

// Exists always reports false
func (NullCache) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

// CacheKey derives the key for a resource fetched from fullURL
func (NullCache) CacheKey(resourceName, fullURL string) string {
	return GenerateResourceKey(resourceName, fullURL)
}
