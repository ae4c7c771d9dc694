package database

import (
	"context"
	"database/sql"
	"fmt"

	"bookingapi/pkg/logger"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// Executor returns the transaction carried by ctx, or db when there is none.
func Executor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

type TxManager struct {
	db     *sql.DB
	logger logger.Logger
}

func NewTxManager(db *sql.DB, logger logger.Logger) *TxManager {
	return &TxManager{
		db:     db,
		logger: logger,
	}
}

// RunInTx runs fn inside one transaction and commits when fn returns nil.
// A call made while a transaction is already in ctx joins it.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction could not be started: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.ErrorContext(ctx, "Transaction rollback failed", map[string]interface{}{"error": rbErr.Error()})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction could not be committed: %w", err)
	}
	return nil
}
