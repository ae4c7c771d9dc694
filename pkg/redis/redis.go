package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"bookingapi/internal/config"
	"bookingapi/pkg/logger"
)

// NewClient returns a client that answered PING. Redis only backs the
// directory cache, so the retry window is short.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 10 * time.Second

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}
	notify := func(err error, next time.Duration) {
		log.Warn("Redis not reachable, retrying", map[string]interface{}{
			"addr":  client.Options().Addr,
			"retry": next.String(),
			"error": err.Error(),
		})
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis could not be reached: %w", err)
	}

	return client, nil
}
