package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RankingCache stores the rendered ranked face-cards.
type RankingCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, data []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

const rankingCacheKey = "academy:ranked_cards"

type RedisRankingCache struct {
	client *redis.Client
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisRankingCache(client *redis.Client) *RedisRankingCache {
	return &RedisRankingCache{client: client}
}

func (c *RedisRankingCache) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, rankingCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisRankingCache) Set(ctx context.Context, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, rankingCacheKey, data, ttl).Err()
}

func (c *RedisRankingCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rankingCacheKey).Err()
}

// NoopRankingCache never holds anything. It is used when Redis is not configured.
type NoopRankingCache struct{}

func (NoopRankingCache) Get(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (NoopRankingCache) Set(context.Context, []byte, time.Duration) error { return nil }
func (NoopRankingCache) Invalidate(context.Context) error { return nil }
