package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bookingapi/pkg/logger"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// Get decodes the cached value into dest or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeleteMultiple(ctx context.Context, keys []string) error
	Ping(ctx context.Context) error
}

// RedisCache stores JSON encoded values under a common key prefix.
type RedisCache struct {
	client *redis.Client
	logger logger.Logger
	prefix string
}

func NewRedisCache(client *redis.Client, logger logger.Logger, prefix string) Cache {
	return &RedisCache{
		client: client,
		logger: logger,
		prefix: prefix,
	}
}

func (r *RedisCache) makeKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache value could not be encoded: %w", err)
	}

	fullKey := r.makeKey(key)
	if err := r.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Cache set failed", map[string]interface{}{
			"key":   fullKey,
			"error": err.Error(),
		})
		return err
	}

	r.logger.DebugContext(ctx, "Cache set", map[string]interface{}{
		"key":        fullKey,
		"expiration": expiration.String(),
	})
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	fullKey := r.makeKey(key)
	data, err := r.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		r.logger.ErrorContext(ctx, "Cache get failed", map[string]interface{}{
			"key":   fullKey,
			"error": err.Error(),
		})
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache value could not be decoded: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.DeleteMultiple(ctx, []string{key})
}

func (r *RedisCache) DeleteMultiple(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = r.makeKey(key)
	}

	if err := r.client.Del(ctx, fullKeys...).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Cache delete failed", map[string]interface{}{
			"keys":  len(keys),
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
