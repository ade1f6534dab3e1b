// migrate-to-postgres copies the seed corpus from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/corpus.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user dungeonforge \
//	    -pg-password dungeonforge \
//	    -pg-database dungeonforge
package main

import (
	"flag"
	"log"

	"github.com/lawnchairsociety/dungeonforge/internal/store"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/corpus.db", "Path to SQLite corpus")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "dungeonforge", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "dungeonforge", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "dungeonforge", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("Seed Corpus Migration Tool")
	log.Println("==========================")

	log.Printf("Opening SQLite corpus: %s", *sqlitePath)
	src, err := store.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite corpus: %v", err)
	}
	defer src.Close()

	runs, err := src.List()
	if err != nil {
		log.Fatalf("Failed to read runs: %v", err)
	}
	log.Printf("Found %d recorded seeds", len(runs))

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
		for _, run := range runs {
			log.Printf("  seed %d: %s", run.Seed, run.Status)
		}
		return
	}

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	dst, err := store.OpenWithConfig(store.Config{
		Driver: "postgres",
		Postgres: store.PostgresConfig{
			Host:     *pgHost,
			Port:     *pgPort,
			User:     *pgUser,
			Password: *pgPassword,
			Database: *pgDatabase,
			SSLMode:  *pgSSLMode,
		},
	})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	migrated := 0
	for _, run := range runs {
		if err := dst.Record(run); err != nil {
			log.Printf("  Warning: %v", err)
			continue
		}
		migrated++
	}

	log.Printf("Migrated %d of %d seeds", migrated, len(runs))
}
