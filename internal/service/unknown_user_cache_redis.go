package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultUnknownUserPrefix = "policy-api:login:unknown"

type RedisUnknownUserCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisUnknownUserCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisUnknownUserCache {
	if prefix == "" {
		prefix = defaultUnknownUserPrefix
	}
	return &RedisUnknownUserCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisUnknownUserCache) IsUnknown(ctx context.Context, username string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	err := c.client.Get(ctx, c.key(username)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisUnknownUserCache) MarkUnknown(ctx context.Context, username string) error {
	if c.client == nil || c.ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(username), "1", c.ttl).Err()
}

func (c *RedisUnknownUserCache) Forget(ctx context.Context, username string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(username)).Err()
}

func (c *RedisUnknownUserCache) key(username string) string {
	return c.prefix + ":" + hashKey(normalizeUsername(username))
}
