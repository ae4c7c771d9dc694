package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"bookingapi/internal/config"
	"bookingapi/pkg/logger"
)

// Open connects to the configured store and keeps pinging with exponential
// backoff until it answers or cfg.ConnectTimeout runs out.
func Open(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database could not be opened: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// one writer; the property scope relies on it
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.ConnectTimeout

	attempt := 0
	ping := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		log.Warn("Database not reachable, retrying", map[string]interface{}{
			"driver":  cfg.Driver,
			"attempt": attempt,
			"retry":   next.String(),
			"error":   err.Error(),
		})
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		db.Close()
		return nil, fmt.Errorf("database could not be reached: %w", err)
	}

	log.Info("Database connection established", map[string]interface{}{
		"driver":   cfg.Driver,
		"attempts": attempt,
	})

	return db, nil
}
