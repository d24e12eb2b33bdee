package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type TodoCache interface {
	GetByID(ctx context.Context, id uuid.UUID) ([]byte, error)
	Set(ctx context.Context, id uuid.UUID, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type todoCache struct {
	client *RedisClient
	prefix string
}

func NewTodoCache(redisClient *RedisClient) TodoCache {
	return &todoCache{
		client: redisClient,
		prefix: "todo:",
	}
}

func (c *todoCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

func (c *todoCache) GetByID(ctx context.Context, id uuid.UUID) ([]byte, error) {
	data, err := c.client.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}
	return data, nil
}

func (c *todoCache) Set(ctx context.Context, id uuid.UUID, data []byte, ttl time.Duration) error {
	return c.client.client.Set(ctx, c.key(id), data, ttl).Err()
}

func (c *todoCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.client.Del(ctx, c.key(id)).Err()
}
