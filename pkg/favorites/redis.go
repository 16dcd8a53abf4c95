package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the favorites as a JSON array under a single key.
type RedisStorage struct {
	redis *redis.Client
	key   string
}

// NewRedisStorage creates a Redis storage. An empty key uses DefaultKey.
func NewRedisStorage(redisClient *redis.Client, key string) *RedisStorage {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultKey
	}
	return &RedisStorage{redis: redisClient, key: key}
}

// Load reads the stored ids. A missing key is an empty set.
func (r *RedisStorage) Load(ctx context.Context) ([]int, error) {
	data, err := r.redis.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding favorites: %w", err)
	}
	return ids, nil
}

// Save replaces the stored ids. The key never expires.
func (r *RedisStorage) Save(ctx context.Context, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding favorites: %w", err)
	}

	if err := r.redis.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
