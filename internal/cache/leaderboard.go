// Package cache holds the optional redis-backed leaderboard cache.
// Leaderboards are read far more often than they change, so assembled rows
// are kept in redis with a short TTL and invalidated on every recompute.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/liftcamp/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "liftcamp:leaderboard:"

// LeaderboardCache stores serialized leaderboard rows in redis.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis and verifies the connection. Returns nil without
// error when no address is configured, so callers can pass the result
// straight through as an optional dependency.
func New(ctx context.Context, cfg config.RedisConfig) (*LeaderboardCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LeaderboardCache{client: client, ttl: ttl}, nil
}

// Close closes the redis connection.
func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}

// Get reads cached rows into dest. The second return is false on a miss.
func (c *LeaderboardCache) Get(ctx context.Context, kind string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+kind).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decoding cached rows: %w", err)
	}
	return true, nil
}

// Set stores rows for one leaderboard kind.
func (c *LeaderboardCache) Set(ctx context.Context, kind string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+kind, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached leaderboard. Called after any ledger
// recompute since both kinds derive from the same snapshots.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	keys := []string{keyPrefix + "strength", keyPrefix + "consistency"}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	return nil
}
