package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingapi/internal/database"
	"bookingapi/internal/testutil"
	"bookingapi/pkg/logger"
)

func insertUser(ctx context.Context, exec func(ctx context.Context) database.DBTX, email string) error {
	_, err := exec(ctx).ExecContext(ctx, `INSERT INTO users (email, user_type, created_at) VALUES ($1, 'GUEST', CURRENT_TIMESTAMP)`, email)
	return err
}

func TestRunInTxCommitsAndRollsBack(t *testing.T) {
	db, _ := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	txm := database.NewTxManager(db, logger.Nop())
	exec := func(ctx context.Context) database.DBTX { return database.Executor(ctx, db) }

	require.NoError(t, txm.RunInTx(ctx, func(ctx context.Context) error {
		return insertUser(ctx, exec, "kept@example.com")
	}))

	errAbort := errors.New("abort")
	err := txm.RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, insertUser(ctx, exec, "dropped@example.com"))
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRunInTxJoinsOuterTransaction(t *testing.T) {
	db, _ := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	txm := database.NewTxManager(db, logger.Nop())
	exec := func(ctx context.Context) database.DBTX { return database.Executor(ctx, db) }

	err := txm.RunInTx(ctx, func(outer context.Context) error {
		// with one connection a nested BeginTx would block forever
		if err := txm.RunInTx(outer, func(inner context.Context) error {
			assert.Same(t, database.Executor(outer, db), database.Executor(inner, db))
			return insertUser(inner, exec, "nested@example.com")
		}); err != nil {
			return err
		}
		return errors.New("rollback everything")
	})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count)
}
