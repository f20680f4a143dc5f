package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amjido-01/cegnal/internal/domain"
)

// DirectoryCache caches zone directory reads per user and scope. A cache
// failure must never fail a request, so implementations degrade silently.
type DirectoryCache interface {
	Get(ctx context.Context, userID, scope string) ([]domain.Zone, bool)
	Set(ctx context.Context, userID, scope string, zones []domain.Zone)
	Invalidate(ctx context.Context, userID string)
}

// Directory scopes. ScopeMine is the default when no filter is given.
const (
	ScopeAll  = "all"
	ScopeMine = "mine"
)

// RedisDirectoryCache is the Redis-backed directory cache with a bounded
// freshness window.
type RedisDirectoryCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisDirectoryCache creates a directory cache with the given TTL.
func NewRedisDirectoryCache(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisDirectoryCache {
	return &RedisDirectoryCache{client: client, ttl: ttl, logger: logger}
}

func directoryKey(userID, scope string) string {
	return fmt.Sprintf("cegnal:zones:%s:%s", userID, scope)
}

// Get returns the cached directory, if present.
func (c *RedisDirectoryCache) Get(ctx context.Context, userID, scope string) ([]domain.Zone, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, directoryKey(userID, scope)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("zone cache read failed", "error", err)
		}
		return nil, false
	}
	var zones []domain.Zone
	if err := json.Unmarshal(raw, &zones); err != nil {
		c.logger.Warn("zone cache entry corrupt, dropping", "key", directoryKey(userID, scope))
		c.client.Del(ctx, directoryKey(userID, scope))
		return nil, false
	}
	return zones, true
}

// Set stores the directory for the freshness window.
func (c *RedisDirectoryCache) Set(ctx context.Context, userID, scope string, zones []domain.Zone) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(zones)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, directoryKey(userID, scope), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("zone cache write failed", "error", err)
	}
}

// Invalidate drops both scopes for a user so the next read reflects a
// membership change.
func (c *RedisDirectoryCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, directoryKey(userID, ScopeAll), directoryKey(userID, ScopeMine)).Err(); err != nil {
		c.logger.Warn("zone cache invalidation failed", "error", err)
	}
}
