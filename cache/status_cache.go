// Package cache holds the optional Redis-backed poll-status cache.
// Repeated sync runs within the TTL reuse the last vendor answer for a
// generation id instead of hitting the vendor again. The cache is a
// read-path optimisation only; the job store stays the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mediaforge/config"
	"mediaforge/core/registry"
)

// DefaultTTL bounds how stale a cached vendor state may be.
const DefaultTTL = 60 * time.Second

// StatusCache caches vendor poll results per generation id. A nil
// *StatusCache is valid and caches nothing.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect creates the cache when REDIS_ADDR is configured; otherwise it
// returns nil and callers proceed uncached.
func Connect(cfg *config.Config) (*StatusCache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &StatusCache{client: client, ttl: DefaultTTL}, nil
}

func key(generationID string) string {
	return "mediaforge:status:" + generationID
}

// Get returns the cached state for a generation id, or nil on miss.
func (c *StatusCache) Get(ctx context.Context, generationID string) *registry.SyncState {
	if c == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, key(generationID)).Bytes()
	if err != nil {
		return nil
	}

	var state registry.SyncState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil
	}
	return &state
}

// Put stores a vendor state for a generation id. Terminal states are
// kept longer since they can no longer change.
func (c *StatusCache) Put(ctx context.Context, generationID string, state *registry.SyncState) {
	if c == nil || state == nil {
		return
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return
	}

	ttl := c.ttl
	if state.Done || state.Failed {
		ttl = 10 * time.Minute
	}
	_ = c.client.Set(ctx, key(generationID), raw, ttl).Err()
}

// Close releases the redis connection.
func (c *StatusCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
