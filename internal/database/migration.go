package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bookingapi/pkg/logger"
)

type Migration struct {
	Name string
	Func func(ctx context.Context, tx *sql.Tx, d Dialect) error
}

type MigrationService struct {
	db      *sql.DB
	dialect Dialect
	logger  logger.Logger
}

func NewMigrationService(db *sql.DB, dialect Dialect, logger logger.Logger) *MigrationService {
	return &MigrationService{
		db:      db,
		dialect: dialect,
		logger:  logger,
	}
}

func (m *MigrationService) InitMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS migrations (
        id %s,
        name TEXT NOT NULL UNIQUE,
        applied_at TIMESTAMP NOT NULL
    )
    `, m.dialect.IDColumn())

	if _, err := m.db.ExecContext(ctx, query); err != nil {
		m.logger.Error("Migration table could not be created", map[string]interface{}{"error": err.Error()})
		return err
	}

	return nil
}

func (m *MigrationService) IsMigrationApplied(ctx context.Context, name string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM migrations WHERE name = $1"
	if err := m.db.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		m.logger.Error("Migration state could not be read", map[string]interface{}{"name": name, "error": err.Error()})
		return false, err
	}

	return count > 0, nil
}

// ApplyMigration runs one migration and records it in the same transaction.
func (m *MigrationService) ApplyMigration(ctx context.Context, migration Migration) (err error) {
	applied, err := m.IsMigrationApplied(ctx, migration.Name)
	if err != nil {
		return err
	}

	if applied {
		m.logger.Debug("Migration already applied", map[string]interface{}{"name": migration.Name})
		return nil
	}

	m.logger.Info("Applying migration", map[string]interface{}{"name": migration.Name})

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction could not be started: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
			m.logger.Error("Migration rolled back", map[string]interface{}{"name": migration.Name, "error": err.Error()})
		}
	}()

	if err = migration.Func(ctx, tx, m.dialect); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, "INSERT INTO migrations (name, applied_at) VALUES ($1, $2)", migration.Name, time.Now().UTC()); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	m.logger.Info("Migration applied", map[string]interface{}{"name": migration.Name})
	return nil
}

func (m *MigrationService) RunMigrations(ctx context.Context) error {
	if err := m.InitMigrationTable(ctx); err != nil {
		return fmt.Errorf("migration table could not be created: %w", err)
	}

	migrations := []Migration{
		{"create_users_table", CreateUsersTable},
		{"create_properties_table", CreatePropertiesTable},
		{"create_bookings_table", CreateBookingsTable},
	}

	for _, migration := range migrations {
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
	}

	return nil
}

func execAll(ctx context.Context, tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func CreateUsersTable(ctx context.Context, tx *sql.Tx, d Dialect) error {
	return execAll(ctx, tx, fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS users (
        id %s,
        email TEXT NOT NULL UNIQUE,
        user_type TEXT NOT NULL CHECK (user_type IN ('GUEST', 'MANAGER', 'OWNER')),
        created_at TIMESTAMP NOT NULL
    )
    `, d.IDColumn()))
}

func CreatePropertiesTable(ctx context.Context, tx *sql.Tx, d Dialect) error {
	return execAll(ctx, tx, fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS properties (
        id %s,
        description TEXT NOT NULL,
        manager_id %s NOT NULL,
        owner_id %s NOT NULL,
        created_at TIMESTAMP NOT NULL,
        FOREIGN KEY (manager_id) REFERENCES users (id),
        FOREIGN KEY (owner_id) REFERENCES users (id)
    )
    `, d.IDColumn(), d.ForeignKeyType(), d.ForeignKeyType()))
}

func CreateBookingsTable(ctx context.Context, tx *sql.Tx, d Dialect) error {
	return execAll(ctx, tx,
		fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS bookings (
        id %s,
        property_id %s NOT NULL,
        user_id %s NOT NULL,
        start_date DATE NOT NULL,
        end_date DATE NOT NULL,
        status TEXT NOT NULL CHECK (status IN ('ACTIVE', 'BLOCKED', 'CANCELED')),
        details TEXT,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL,
        CHECK (start_date <= end_date),
        FOREIGN KEY (property_id) REFERENCES properties (id),
        FOREIGN KEY (user_id) REFERENCES users (id)
    )
    `, d.IDColumn(), d.ForeignKeyType(), d.ForeignKeyType()),
		`CREATE INDEX IF NOT EXISTS bookings_property_range_idx ON bookings (property_id, status, start_date, end_date)`,
	)
}
