package store

import (
	"fmt"
	"strings"
)

// Dialect abstracts the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	DriverName() string

	// Placeholder returns the parameter placeholder for a 1-indexed position.
	// SQLite: "?", PostgreSQL: "$1", "$2", ...
	Placeholder(position int) string

	// InitStatements run once after the connection opens.
	InitStatements() []string

	// TimestampType is the column type for recorded_at.
	TimestampType() string
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect creates a Dialect. Unknown types fall back to SQLite.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}

// SQLiteDialect implements Dialect for modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(int) string { return "?" }

func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) TimestampType() string { return "TIMESTAMP" }

// PostgresDialect implements Dialect for lib/pq.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d *PostgresDialect) InitStatements() []string { return nil }

func (d *PostgresDialect) TimestampType() string { return "TIMESTAMPTZ" }

// rebind converts ? placeholders to the dialect's form.
//
//	input:    "SELECT * FROM runs WHERE seed = ? AND status = ?"
//	Postgres: "SELECT * FROM runs WHERE seed = $1 AND status = $2"
func rebind(d Dialect, query string) string {
	if _, ok := d.(*SQLiteDialect); ok {
		return query
	}

	var sb strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			sb.WriteString(d.Placeholder(position))
			position++
		} else {
			sb.WriteByte(query[i])
		}
	}
	return sb.String()
}
