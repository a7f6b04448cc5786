package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps fetched resource bodies in process.
//
// Bodies are copied on the way in and on the way out, so an Instance that
// decodes a cached body can never alias another reader's bytes. Expired
// entries are dropped lazily on read and by a periodic sweep that runs
// until Close.
type MemoryCache struct {
	mu      sync.RWMutex
	bodies  map[string]cachedBody
	ttl     time.Duration
	stop    context.CancelFunc
	stopped chan struct{}
}

type cachedBody struct {
	body     []byte
	deadline time.Time // zero for entries that never expire
}

func (c cachedBody) stale(now time.Time) bool {
	return !c.deadline.IsZero() && !now.Before(c.deadline)
}

const sweepInterval = time.Minute

// NewMemoryCache creates a memory cache with the default TTL
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(DefaultCacheConfig())
}

// NewMemoryCacheWithConfig creates a memory cache. The key prefix is ignored
// because the map is private to the cache.
func NewMemoryCacheWithConfig(config CacheConfig) *MemoryCache {
	return newMemoryCache(config.DefaultTTL, sweepInterval)
}

func newMemoryCache(ttl, every time.Duration) *MemoryCache {
	ctx, stop := context.WithCancel(context.Background())
	c := &MemoryCache{
		bodies:  make(map[string]cachedBody),
		ttl:     ttl,
		stop:    stop,
		stopped: make(chan struct{}),
	}
	go c.sweep(ctx, every)
	return c
}

// Get returns a copy of the body stored under key
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	entry, ok := c.bodies[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	if entry.stale(time.Now()) {
		c.dropIfStale(key)
		return nil, ErrCacheMiss{Key: key}
	}
	return clone(entry.body), nil
}

// Set stores a copy of body. A zero ttl uses the default; a negative ttl never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if ttl == 0 {
		ttl = c.ttl
	}
	entry := cachedBody{body: clone(body)}
	if ttl > 0 {
		entry.deadline = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.bodies[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete drops key. Dropping an absent key is not an error.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.bodies, key)
	c.mu.Unlock()
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.bodies = make(map[string]cachedBody)
	c.mu.Unlock()
	return nil
}

// Exists reports whether key holds a body that has not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.RLock()
	entry, ok := c.bodies[key]
	c.mu.RUnlock()
	return ok && !entry.stale(time.Now()), nil
}

// Len counts the entries that have not expired
func (c *MemoryCache) Len() int {
	now := time.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, entry := range c.bodies {
		if !entry.stale(now) {
			n++
		}
	}
	return n
}

// CacheKey derives the key for a resource fetched from fullURL
func (c *MemoryCache) CacheKey(resourceName, fullURL string) string {
	return GenerateResourceKey(resourceName, fullURL)
}

// Close stops the sweep and waits for it to exit. It is safe to call twice.
func (c *MemoryCache) Close() error {
	c.stop()
	<-c.stopped
	return nil
}

// dropIfStale re-checks under the write lock; a concurrent Set may have
// refreshed the entry since it was read.
func (c *MemoryCache) dropIfStale(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.bodies[key]; ok && entry.stale(time.Now()) {
		delete(c.bodies, key)
	}
}

func (c *MemoryCache) sweep(ctx context.Context, every time.Duration) {
	defer close(c.stopped)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.bodies {
				if entry.stale(now) {
					delete(c.bodies, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func clone(body []byte) []byte {
	if body == nil {
		return nil
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out
}
