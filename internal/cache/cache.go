// Package cache provides the best-effort read-through cache wrapped around
// the dungeon's source-of-truth reads. A cache fault of any kind degrades
// silently to a direct computation; nothing here may surface an error to a
// gameplay caller.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Cache is a best-effort keyed byte cache. Get returns false on miss or any
// fault; Set and Delete log faults at debug level and swallow them.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// Lookup decodes a cached JSON value into T. A decode failure is treated as
// a miss and the stale entry is dropped.
func Lookup[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	if c == nil {
		return v, false
	}
	data, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		slog.Debug("dropping undecodable cache entry", "key", key, "error", err)
		c.Delete(ctx, key)
		var zero T
		return zero, false
	}
	return v, true
}

// Store encodes v as JSON and caches it best-effort.
func Store[T any](ctx context.Context, c Cache, key string, v T, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Debug("skipping cache store of unencodable value", "key", key, "error", err)
		return
	}
	c.Set(ctx, key, data, ttl)
}

// Invalidate deletes a set of keys best-effort. Nil caches are tolerated so
// components can run cacheless.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	if c == nil {
		return
	}
	for _, key := range keys {
		c.Delete(ctx, key)
	}
}
