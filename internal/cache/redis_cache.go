package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const likeCountTTL = 10 * time.Minute

// RedisLikeCache implements LikeCounter on a shared redis instance.
type RedisLikeCache struct {
	client *redis.Client
}

func NewRedisLikeCache(redisURL string) (*RedisLikeCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisLikeCache{client: client}, nil
}

// Client exposes the underlying connection for components that share it
// (rate limiter).
func (c *RedisLikeCache) Client() *redis.Client {
	return c.client
}

func likeCountKey(templateID uuid.UUID) string {
	return fmt.Sprintf("likes:count:%s", templateID)
}

func (c *RedisLikeCache) GetLikeCount(ctx context.Context, templateID uuid.UUID) (int64, bool, error) {
	count, err := c.client.Get(ctx, likeCountKey(templateID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

func (c *RedisLikeCache) SetLikeCount(ctx context.Context, templateID uuid.UUID, count int64) error {
	return c.client.Set(ctx, likeCountKey(templateID), count, likeCountTTL).Err()
}

func (c *RedisLikeCache) InvalidateLikeCount(ctx context.Context, templateID uuid.UUID) error {
	return c.client.Del(ctx, likeCountKey(templateID)).Err()
}

func (c *RedisLikeCache) Close() error {
	return c.client.Close()
}
