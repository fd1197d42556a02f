package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// Cache implements ports.CacheService using Valkey (Redis-compatible).
// Keys are namespaced with prefix so several deployments can share a server.
type Cache struct {
	client valkey.Client
	prefix string
}

// New creates a new Valkey cache client.
func New(addr, prefix string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client, prefix: prefix}, nil
}

// Get retrieves a value by key. A missing key yields domain.ErrNotFound.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build())
	b, err := cmd.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set stores a value with a TTL in seconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		return c.client.Do(ctx, c.client.B().Set().Key(c.key(key)).Value(valkey.BinaryString(value)).Build()).Error()
	}
	cmd := c.client.Do(ctx,
		c.client.B().Set().Key(c.key(key)).Value(valkey.BinaryString(value)).Ex(time.Duration(ttlSeconds)*time.Second).Build(),
	)
	return cmd.Error()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	cmd := c.client.Do(ctx, c.client.B().Del().Key(c.key(key)).Build())
	return cmd.Error()
}

// Incr atomically increments a counter. The expiry is set only when the
// increment created the key, so later calls never extend it.
func (c *Cache) Incr(ctx context.Context, key string, ttlSeconds int) (int64, error) {
	k := c.key(key)
	n, err := c.client.Do(ctx, c.client.B().Incr().Key(k).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("valkey incr: %w", err)
	}
	if n == 1 && ttlSeconds > 0 {
		if err := c.client.Do(ctx, c.client.B().Expire().Key(k).Seconds(int64(ttlSeconds)).Build()).Error(); err != nil {
			return n, fmt.Errorf("valkey expire: %w", err)
		}
	}
	return n, nil
}

// Decr atomically decrements a counter.
func (c *Cache) Decr(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Do(ctx, c.client.B().Decr().Key(c.key(key)).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("valkey decr: %w", err)
	}
	return n, nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}
