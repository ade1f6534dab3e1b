// Package store persists the seed corpus: one row per generated seed with
// the fingerprints a later run must reproduce.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lawnchairsociety/dungeonforge/internal/generator"
	"github.com/lawnchairsociety/dungeonforge/internal/logger"
)

// ErrNotFound is returned when a seed has no recorded run
var ErrNotFound = errors.New("store: seed not recorded")

// Status of a recorded run
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one recorded generation
type Run struct {
	Seed         uint64
	Mission      string // Mission fingerprint
	Dungeon      string // Dungeon fingerprint
	Rooms        int
	MissionNodes int
	Status       string
	Error        string
	RecordedAt   time.Time
}

// Matches reports whether two runs produced the same outcome
func (r Run) Matches(other Run) bool {
	return r.Status == other.Status &&
		r.Mission == other.Mission &&
		r.Dungeon == other.Dungeon &&
		r.Error == other.Error
}

// RunFromResult summarizes a generation. A failed run keeps the error text.
func RunFromResult(seed uint64, res *generator.Result, err error) Run {
	run := Run{Seed: seed, Status: StatusOK, RecordedAt: time.Now().UTC()}
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		return run
	}
	run.Seed = res.Seed
	run.Mission = res.Fingerprint.Mission
	run.Dungeon = res.Fingerprint.Dungeon
	run.Rooms = res.Dungeon.Len()
	run.MissionNodes = res.Mission.Len()
	return run
}

// RunContext generates ctx and summarizes it. The run is keyed by the
// context's resolved seed, so a clock-derived seed is recorded even when
// generation fails.
func RunContext(ctx *generator.Context) (*generator.Result, Run) {
	res, err := ctx.Generate()
	return res, RunFromResult(ctx.Seed, res, err)
}

// Store wraps the corpus database
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens or creates the SQLite corpus at path
func Open(path string) (*Store, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the corpus database named by cfg and creates the
// schema if needed.
func OpenWithConfig(cfg Config) (*Store, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.dsn()
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if p := cfg.Postgres; cfg.Driver == string(DialectPostgres) {
		if p.MaxOpenConns > 0 {
			db.SetMaxOpenConns(p.MaxOpenConns)
		}
		if p.MaxIdleConns > 0 {
			db.SetMaxIdleConns(p.MaxIdleConns)
		}
		if p.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(p.ConnMaxLifetime)
		}
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	s := &Store{db: db, dialect: dialect}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema if it doesn't exist. Seeds are stored as
// their signed 64-bit bit pattern.
func (s *Store) migrate() error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS runs (
			seed BIGINT PRIMARY KEY,
			mission_fingerprint TEXT NOT NULL DEFAULT '',
			dungeon_fingerprint TEXT NOT NULL DEFAULT '',
			rooms INTEGER NOT NULL DEFAULT 0,
			mission_nodes INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			recorded_at %s NOT NULL
		)`, s.dialect.TimestampType()),
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Record stores a run, replacing any earlier run of the same seed
func (s *Store) Record(run Run) error {
	query := rebind(s.dialect, `INSERT INTO runs
		(seed, mission_fingerprint, dungeon_fingerprint, rooms, mission_nodes, status, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (seed) DO UPDATE SET
			mission_fingerprint = excluded.mission_fingerprint,
			dungeon_fingerprint = excluded.dungeon_fingerprint,
			rooms = excluded.rooms,
			mission_nodes = excluded.mission_nodes,
			status = excluded.status,
			error = excluded.error,
			recorded_at = excluded.recorded_at`)

	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(query,
		int64(run.Seed), run.Mission, run.Dungeon, run.Rooms, run.MissionNodes,
		run.Status, run.Error, run.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to record seed %d: %w", run.Seed, err)
	}
	return nil
}

const selectRuns = `SELECT seed, mission_fingerprint, dungeon_fingerprint, rooms, mission_nodes, status, error, recorded_at FROM runs`

// Get returns the recorded run of a seed
func (s *Store) Get(seed uint64) (Run, error) {
	row := s.db.QueryRow(rebind(s.dialect, selectRuns+` WHERE seed = ?`), int64(seed))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrNotFound, seed)
	}
	return run, err
}

// List returns every recorded run in seed order
func (s *Store) List() ([]Run, error) {
	rows, err := s.db.Query(selectRuns + ` ORDER BY seed`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a seed from the corpus
func (s *Store) Delete(seed uint64) error {
	res, err := s.db.Exec(rebind(s.dialect, `DELETE FROM runs WHERE seed = ?`), int64(seed))
	if err != nil {
		return fmt.Errorf("failed to delete seed %d: %w", seed, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, seed)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var seed int64
	err := row.Scan(&seed, &run.Mission, &run.Dungeon, &run.Rooms, &run.MissionNodes,
		&run.Status, &run.Error, &run.RecordedAt)
	if err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	return run, nil
}

// Drift is a recorded seed that no longer reproduces
type Drift struct {
	Want Run
	Got  Run
}

// VerifyCorpus regenerates every recorded seed and returns the ones whose
// outcome changed.
func (s *Store) VerifyCorpus(regenerate func(seed uint64) Run) ([]Drift, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, want := range runs {
		got := regenerate(want.Seed)
		if !want.Matches(got) {
			logger.Warning("Seed drifted",
				"seed", want.Seed,
				"want", want.Status,
				"got", got.Status)
			drifts = append(drifts, Drift{Want: want, Got: got})
		}
	}

	logger.Report("Corpus verified", "seeds", len(runs), "drifted", len(drifts))
	return drifts, nil
}
