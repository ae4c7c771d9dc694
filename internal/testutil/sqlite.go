// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"bookingapi/internal/config"
	"bookingapi/internal/database"
	"bookingapi/pkg/logger"
)

// NewSQLiteDB returns a migrated in-memory database. It keeps a single
// connection, like the server does, so the schema lives as long as db.
func NewSQLiteDB(t testing.TB) (*sql.DB, database.Dialect) {
	t.Helper()

	db, err := sql.Open(config.DriverSQLite, "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	dialect, err := database.NewDialect(config.DriverSQLite)
	require.NoError(t, err)

	require.NoError(t, database.NewMigrationService(db, dialect, logger.Nop()).RunMigrations(context.Background()))

	return db, dialect
}
