package cache

import (
	"context"
	"time"
)

// ScopedCache prefixes every key, giving callers isolated views of one
// shared backend. Scoping a Redis cache keeps two paygraph deployments on
// the same server from colliding.
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScopedCache wraps inner so every key gets "prefix:" prepended.
// Scopes can be nested; prefixes accumulate.
func NewScopedCache(inner Cache, prefix string) *ScopedCache {
	return &ScopedCache{inner: inner, prefix: prefix + ":"}
}

func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the underlying backend.
func (c *ScopedCache) Close() error { return c.inner.Close() }

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
