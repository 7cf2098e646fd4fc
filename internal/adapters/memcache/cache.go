// Package memcache is an in-process ports.CacheService used when Valkey is
// not configured or unreachable.
package memcache

import (
	"context"
	"errors"
	"time"

	"github.com/bluele/gcache"

	"github.com/samirrijal/driverdash/internal/core/ports"
)

// Cache is an LRU cache with per-entry expiry.
type Cache struct {
	c gcache.Cache
}

// New creates a cache holding at most size entries.
func New(size int) *Cache {
	if size <= 0 {
		size = 1024
	}
	return &Cache{c: gcache.New(size).LRU().Build()}
}

// Get retrieves a value by key. A missing or expired key yields ports.ErrCacheMiss.
func (m *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, err := m.c.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return b, nil
}

// Set stores a copy of value for ttlSeconds; a non-positive TTL never expires.
func (m *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	if ttlSeconds <= 0 {
		return m.c.Set(key, buf)
	}
	return m.c.SetWithExpire(key, buf, time.Duration(ttlSeconds)*time.Second)
}

// Delete removes a key.
func (m *Cache) Delete(_ context.Context, key string) error {
	m.c.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (m *Cache) Len() int {
	return m.c.Len(true)
}

// Ping always succeeds; the cache lives in process.
func (m *Cache) Ping(context.Context) error { return nil }
