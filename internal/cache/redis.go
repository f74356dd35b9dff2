package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache backs the Cache interface with Redis. Faults never propagate:
// a failed GET is a miss, failed SET/DEL are logged and dropped. Deletes are
// optionally broadcast through an Invalidator so sibling nodes running
// in-process caches drop the key too.
type RedisCache struct {
	client      *redis.Client
	invalidator *Invalidator
}

// NewRedisCache connects to Redis and returns a cache. The invalidator may
// be nil for single-node deployments.
func NewRedisCache(ctx context.Context, addr, password string, db int, invalidator *Invalidator) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	slog.Info("redis cache connected", "addr", addr, "db", db)
	return &RedisCache{client: client, invalidator: invalidator}, nil
}

// Get returns the cached value, or false on miss or fault.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("cache get fault", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Set stores the value best-effort.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Debug("cache set fault", "key", key, "error", err)
	}
}

// Delete removes a key best-effort and broadcasts the invalidation.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	c.drop(ctx, key)
	if c.invalidator != nil {
		c.invalidator.Publish(ctx, key)
	}
}

// drop removes a key without broadcasting. Received broadcasts are applied
// through here, otherwise every delete would echo back onto the wire.
func (c *RedisCache) drop(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Debug("cache delete fault", "key", key, "error", err)
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
