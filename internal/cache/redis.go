// Package cache holds a small Redis wrapper used to absorb the polling
// load on the station-status endpoint. The cache is purely an
// optimization: a nil *StatusCache is valid and always misses.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StatusCache caches rendered responses under string keys with one TTL.
type StatusCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewStatusCache wraps an existing Redis client.
func NewStatusCache(rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *StatusCache {
	return &StatusCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached bytes for key, if fresh.
func (c *StatusCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Status cache read failed")
		}
		return nil, false
	}
	return data, true
}

// Set stores bytes under key for the configured TTL, best-effort.
func (c *StatusCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Status cache write failed")
	}
}

// Invalidate drops keys, best-effort. It is called after writes that
// change station occupancy.
func (c *StatusCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Status cache invalidation failed")
	}
}
