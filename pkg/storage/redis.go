package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists keys in redis under a common prefix.
type RedisStore struct {
	Prefix string
	client *redis.Client
}

// NewRedisStore connects using a redis:// url.
func NewRedisStore(redisUrl, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opt), prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{Prefix: prefix, client: client}
}

func (r *RedisStore) key(key string) string {
	return r.Prefix + key
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return data, nil
}

// Set stores the value without expiration.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
