package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sternrassler/catalog-explorer/pkg/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a detail cache shared between processes.
// Entries are written with SETNX and no expiry, so the first writer wins.
type Redis struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewRedis creates a Redis-backed detail cache.
func NewRedis(redisClient *redis.Client, logger zerolog.Logger) *Redis {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Redis{
		redis:  redisClient,
		logger: logger.With().Str("component", "detail-cache").Logger(),
	}
}

// Get retrieves a detail by id.
// Returns ErrCacheMiss if the key doesn't exist.
func (r *Redis) Get(ctx context.Context, id int) (*catalog.EntityDetail, error) {
	data, err := r.redis.Get(ctx, DetailKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var detail catalog.EntityDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		// SETNX never replaces a key, so drop it to let the next fetch repopulate it
		if delErr := r.redis.Del(ctx, DetailKey(id)).Err(); delErr != nil {
			CacheErrors.WithLabelValues("delete").Inc()
			r.logger.Warn().Err(delErr).Int("id", id).Msg("Failed to drop corrupt cache entry")
		} else {
			r.logger.Warn().Err(err).Int("id", id).Msg("Dropped corrupt cache entry")
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues(layerRedis).Inc()
	return &detail, nil
}

// Set stores a detail unless the key already exists.
func (r *Redis) Set(ctx context.Context, id int, detail *catalog.EntityDetail) error {
	if detail == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	data, err := json.Marshal(detail)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	created, err := r.redis.SetNX(ctx, DetailKey(id), data, 0).Result()
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis setnx: %w", err)
	}

	if created {
		CacheEntries.WithLabelValues(layerRedis).Inc()
	} else {
		r.logger.Debug().Int("id", id).Msg("Detail already cached, keeping first write")
	}
	return nil
}

// Len counts detail keys currently stored in Redis.
func (r *Redis) Len(ctx context.Context) (int, error) {
	count := 0
	iter := r.redis.Scan(ctx, 0, detailKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if _, ok := ParseDetailKey(iter.Val()); ok {
			count++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return count, nil
}
