package store

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/dungeonforge/internal/config"
)

// Config holds database connection configuration.
type Config struct {
	// Driver specifies which database to use: "sqlite" or "postgres"
	Driver string

	SQLitePath string
	Postgres   PostgresConfig
}

// PostgresConfig holds PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a SQLite Config at path.
func DefaultConfig(sqlitePath string) Config {
	return Config{
		Driver:     "sqlite",
		SQLitePath: sqlitePath,
	}
}

// FromGeneratorConfig converts the store block of the generator config.
func FromGeneratorConfig(c config.StoreConfig) Config {
	return Config{
		Driver:     c.Driver,
		SQLitePath: c.SQLitePath,
		Postgres: PostgresConfig{
			Host:            c.Postgres.Host,
			Port:            c.Postgres.Port,
			User:            c.Postgres.User,
			Password:        c.Postgres.Password,
			Database:        c.Postgres.Database,
			SSLMode:         c.Postgres.SSLMode,
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
	}
}

// dsn builds the lib/pq connection string.
func (p PostgresConfig) dsn() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, sslMode)
}
