package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/driverdash/internal/core/ports"
)

const keyPrefix = "driverdash:"

// localTTL bounds how long a read stays in the client-side cache. The
// server invalidates tracked keys on write, so this only caps memory.
const localTTL = 5 * time.Second

// Cache implements ports.CacheService on Valkey with server-assisted
// client-side caching for reads.
type Cache struct {
	client valkey.Client
}

// New connects to addr.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &Cache{client: client}, nil
}

// Get reads key. Missing keys yield ports.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	resp := c.client.DoCache(ctx, c.client.B().Get().Key(keyPrefix+key).Cache(), localTTL)
	b, err := resp.AsBytes()
	switch {
	case valkey.IsValkeyNil(err):
		return nil, ports.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value for ttlSeconds; a non-positive TTL never expires.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	set := c.client.B().Set().Key(keyPrefix + key).Value(valkey.BinaryString(value))
	if ttlSeconds > 0 {
		return c.client.Do(ctx, set.Ex(time.Duration(ttlSeconds)*time.Second).Build()).Error()
	}
	return c.client.Do(ctx, set.Build()).Error()
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(keyPrefix+key).Build()).Error()
}

// Ping is used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
