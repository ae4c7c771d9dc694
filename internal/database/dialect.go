package database

import "fmt"

// Dialect holds the few statements that differ between the supported
// drivers. Queries themselves use $n placeholders, which both drivers accept.
type Dialect struct {
	Driver string
}

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

func NewDialect(driver string) (Dialect, error) {
	switch driver {
	case driverPostgres, driverSQLite:
		return Dialect{Driver: driver}, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

func (d Dialect) IsSQLite() bool {
	return d.Driver == driverSQLite
}

func (d Dialect) IDColumn() string {
	if d.IsSQLite() {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "BIGSERIAL PRIMARY KEY"
}

func (d Dialect) ForeignKeyType() string {
	if d.IsSQLite() {
		return "INTEGER"
	}
	return "BIGINT"
}

// PropertyLockQuery returns the statement that takes a transaction scoped
// lock on one property, or "" when the driver has no such lock. SQLite runs
// on a single connection so writers are already serialized.
func (d Dialect) PropertyLockQuery() string {
	if d.IsSQLite() {
		return ""
	}
	return "SELECT pg_advisory_xact_lock($1)"
}
