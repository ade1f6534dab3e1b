package store

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// getPostgresTestConfig returns PostgreSQL config if available, nil otherwise.
// Set these environment variables to run PostgreSQL tests:
//
//	DF_TEST_POSTGRES_HOST (default: localhost)
//	DF_TEST_POSTGRES_PORT (default: 5432)
//	DF_TEST_POSTGRES_USER (default: dungeonforge)
//	DF_TEST_POSTGRES_PASSWORD (default: dungeonforge)
//	DF_TEST_POSTGRES_DATABASE (default: dungeonforge_test)
func getPostgresTestConfig() *Config {
	if os.Getenv("DF_TEST_POSTGRES") == "" {
		return nil
	}

	env := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	port := 5432
	if portStr := os.Getenv("DF_TEST_POSTGRES_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &port)
	}

	return &Config{
		Driver: "postgres",
		Postgres: PostgresConfig{
			Host:            env("DF_TEST_POSTGRES_HOST", "localhost"),
			Port:            port,
			User:            env("DF_TEST_POSTGRES_USER", "dungeonforge"),
			Password:        env("DF_TEST_POSTGRES_PASSWORD", "dungeonforge"),
			Database:        env("DF_TEST_POSTGRES_DATABASE", "dungeonforge_test"),
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Minute,
		},
	}
}

// skipIfNoPostgres skips the test if PostgreSQL is not available
func skipIfNoPostgres(t *testing.T) *Config {
	cfg := getPostgresTestConfig()
	if cfg == nil {
		t.Skip("Skipping PostgreSQL test: DF_TEST_POSTGRES not set")
	}
	return cfg
}

func setupPostgresTestStore(t *testing.T, cfg *Config) *Store {
	s, err := OpenWithConfig(*cfg)
	if err != nil {
		t.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		t.Fatalf("Failed to clear runs: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgres_RecordGetList(t *testing.T) {
	cfg := skipIfNoPostgres(t)
	s := setupPostgresTestStore(t, cfg)

	for _, seed := range []uint64{3, 1, ^uint64(0)} {
		if err := s.Record(sampleRun(seed)); err != nil {
			t.Fatalf("Record(%d) error: %v", seed, err)
		}
	}

	got, err := s.Get(^uint64(0))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Seed != ^uint64(0) || got.Dungeon != "bb22" {
		t.Errorf("Get() = %+v", got)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Errorf("List() returned %d runs, want 3", len(runs))
	}
}

func TestPostgres_RecordReplacesSeed(t *testing.T) {
	cfg := skipIfNoPostgres(t)
	s := setupPostgresTestStore(t, cfg)

	run := sampleRun(11)
	if err := s.Record(run); err != nil {
		t.Fatal(err)
	}
	run.Status = StatusFailed
	run.Error = "placement exhausted"
	if err := s.Record(run); err != nil {
		t.Fatalf("upsert error: %v", err)
	}

	got, err := s.Get(11)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed || got.Error != "placement exhausted" {
		t.Errorf("Get() = %+v", got)
	}

	if err := s.Delete(11); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(11); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
}
