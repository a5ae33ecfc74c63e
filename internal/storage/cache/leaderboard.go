package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bowl_picks/internal/config"
	"bowl_picks/internal/scoring"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:standings"

func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	const op = "storage.cache.NewClient"

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}

// LeaderboardCache keeps the last computed standings as one JSON value.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	key    string
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
		key:    leaderboardKey,
	}
}

// Get returns false without an error when nothing is cached.
func (c *LeaderboardCache) Get(ctx context.Context) ([]scoring.Standing, bool, error) {
	const op = "storage.cache.Get"

	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var standings []scoring.Standing
	if err := json.Unmarshal(data, &standings); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return standings, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, standings []scoring.Standing) error {
	const op = "storage.cache.Set"

	data, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	const op = "storage.cache.Invalidate"

	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
