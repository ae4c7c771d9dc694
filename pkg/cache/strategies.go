package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookingapi/pkg/circuitbreaker"
	"bookingapi/pkg/logger"
	"bookingapi/pkg/metrics"
)

const (
	UserByIDKey     = "user:id:%d"
	PropertyByIDKey = "property:id:%d"
)

const (
	ShortExpiration  = 5 * time.Minute
	MediumExpiration = 30 * time.Minute
	LongExpiration   = 2 * time.Hour
)

type CacheStrategy interface {
	// ReadThrough fills dest from the cache, or from fetchFunc on a miss and
	// stores the fetched value. Cache failures never fail the read.
	ReadThrough(ctx context.Context, key string, dest interface{}, fetchFunc func() (interface{}, error), expiration time.Duration) error

	Invalidate(ctx context.Context, keys ...string) error
}

// CacheManager runs every cache round trip through a circuit breaker so an
// unreachable Redis costs one fast failure instead of a timeout per request.
type CacheManager struct {
	cache   Cache
	breaker *circuitbreaker.CircuitBreaker
	logger  logger.Logger
}

func NewCacheManager(cache Cache, breaker *circuitbreaker.CircuitBreaker, logger logger.Logger) CacheStrategy {
	return &CacheManager{
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

func (cm *CacheManager) ReadThrough(ctx context.Context, key string, dest interface{}, fetchFunc func() (interface{}, error), expiration time.Duration) error {
	err := cm.breaker.Execute(func() error {
		return cm.cache.Get(ctx, key, dest)
	})
	if err == nil {
		metrics.RecordCacheHit()
		return nil
	}

	metrics.RecordCacheMiss()
	if !errors.Is(err, ErrCacheMiss) {
		cm.logger.WarnContext(ctx, "Cache unavailable, reading from source", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	data, err := fetchFunc()
	if err != nil {
		return err
	}

	setErr := cm.breaker.Execute(func() error {
		return cm.cache.Set(ctx, key, data, expiration)
	})
	if setErr != nil {
		cm.logger.WarnContext(ctx, "Cache set skipped", map[string]interface{}{
			"key":   key,
			"error": setErr.Error(),
		})
	}

	return copyData(data, dest)
}

func (cm *CacheManager) Invalidate(ctx context.Context, keys ...string) error {
	return cm.breaker.Execute(func() error {
		return cm.cache.DeleteMultiple(ctx, keys)
	})
}

// IsSuccessful keeps plain misses from tripping the breaker.
func IsSuccessful(err error) bool {
	return err == nil || errors.Is(err, ErrCacheMiss)
}

func UserCacheKey(userID int64) string {
	return fmt.Sprintf(UserByIDKey, userID)
}

func PropertyCacheKey(propertyID int64) string {
	return fmt.Sprintf(PropertyByIDKey, propertyID)
}

func copyData(src, dest interface{}) error {
	switch d := dest.(type) {
	case *interface{}:
		*d = src
		return nil
	default:
		data, err := json.Marshal(src)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, dest)
	}
}
