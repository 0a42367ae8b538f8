package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Cache memoizes loader results in Redis under a caller-chosen key with a
// fixed TTL. A nil client degrades to calling the loader every time, which
// keeps the dashboard usable without Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// QueryKey derives a stable cache key from a logical table name and the SQL
// text behind it, so a query change invalidates its cached result.
func QueryKey(name, query string) string {
	sum := sha256.Sum256([]byte(query))
	return "tourdash:table:" + name + ":" + hex.EncodeToString(sum[:8])
}

// GetOrLoad returns the cached value for key, or runs loader and stores its
// result. Values round-trip through JSON in both directions so cache hits and
// misses hand back the same shape.
func (c *Cache) GetOrLoad(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("snapshot: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate drops the given keys, forcing the next GetOrLoad to reload.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
