package storage

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

var _ Backend = (*RedisBackend)(nil)

// RedisBackend keeps the user database document under a single key.
type RedisBackend struct {
	redisClient *redis.Client
	key         string
}

func NewRedisBackend(redisClient *redis.Client, key string) *RedisBackend {
	return &RedisBackend{
		redisClient: redisClient,
		key:         key,
	}
}

func (b *RedisBackend) Name() string {
	return "redis"
}

func (b *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	doc, err := b.redisClient.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (b *RedisBackend) Save(ctx context.Context, doc []byte) error {
	return b.redisClient.Set(ctx, b.key, doc, 0).Err()
}
