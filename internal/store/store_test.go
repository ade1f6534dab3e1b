package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/generator"
	"github.com/lawnchairsociety/dungeonforge/internal/grammar"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "corpus.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(seed uint64) Run {
	return Run{
		Seed:         seed,
		Mission:      "aa11",
		Dungeon:      "bb22",
		Rooms:        12,
		MissionNodes: 10,
		Status:       StatusOK,
		RecordedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)

	want := sampleRun(7)
	if err := s.Record(want); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	got, err := s.Get(7)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !got.Matches(want) || got.Rooms != 12 || got.MissionNodes != 10 {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if !got.RecordedAt.Equal(want.RecordedAt) {
		t.Errorf("RecordedAt = %v, want %v", got.RecordedAt, want.RecordedAt)
	}
}

func TestRecordReplacesSeed(t *testing.T) {
	s := openTestStore(t)

	if err := s.Record(sampleRun(7)); err != nil {
		t.Fatal(err)
	}
	updated := sampleRun(7)
	updated.Dungeon = "cc33"
	if err := s.Record(updated); err != nil {
		t.Fatalf("second Record() error: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Dungeon != "cc33" {
		t.Errorf("List() = %+v, want the single updated run", runs)
	}
}

func TestHighSeedRoundTrips(t *testing.T) {
	s := openTestStore(t)

	const seed = ^uint64(0) - 5
	if err := s.Record(sampleRun(seed)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(seed)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Seed != seed {
		t.Errorf("Seed = %d, want %d", got.Seed, seed)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Get(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestListOrdersBySeed(t *testing.T) {
	s := openTestStore(t)

	for _, seed := range []uint64{30, 10, 20} {
		if err := s.Record(sampleRun(seed)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Delete(20); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Seed != 10 || runs[1].Seed != 30 {
		t.Errorf("List() seeds = %v", runs)
	}
}

func TestReopenKeepsCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(sampleRun(1)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	if _, err := s.Get(1); err != nil {
		t.Errorf("Get() after reopen error: %v", err)
	}
}

func TestRunFromResult(t *testing.T) {
	failed := RunFromResult(5, nil, errors.New("boom"))
	if failed.Status != StatusFailed || failed.Error != "boom" || failed.Seed != 5 {
		t.Errorf("failed run = %+v", failed)
	}

	cat, err := blueprint.Default()
	if err != nil {
		t.Fatal(err)
	}
	rules, err := grammar.DefaultRuleSet()
	if err != nil {
		t.Fatal(err)
	}
	res, err := generator.Generate(42, cat, rules, generator.DefaultOptions())
	run := RunFromResult(42, res, err)
	if err != nil {
		if run.Status != StatusFailed {
			t.Errorf("status = %q for failed generation", run.Status)
		}
		return
	}
	if run.Status != StatusOK || run.Dungeon != res.Fingerprint.Dungeon || run.Rooms != res.Dungeon.Len() {
		t.Errorf("run = %+v", run)
	}
}

func TestVerifyCorpus(t *testing.T) {
	s := openTestStore(t)

	for _, seed := range []uint64{1, 2, 3} {
		if err := s.Record(sampleRun(seed)); err != nil {
			t.Fatal(err)
		}
	}

	drifts, err := s.VerifyCorpus(func(seed uint64) Run {
		run := sampleRun(seed)
		if seed == 2 {
			run.Dungeon = "changed"
		}
		return run
	})
	if err != nil {
		t.Fatalf("VerifyCorpus() error: %v", err)
	}
	if len(drifts) != 1 || drifts[0].Want.Seed != 2 || drifts[0].Got.Dungeon != "changed" {
		t.Errorf("drifts = %+v, want seed 2 only", drifts)
	}
}

func TestVerifyCorpusRegenerates(t *testing.T) {
	s := openTestStore(t)

	cat, err := blueprint.Default()
	if err != nil {
		t.Fatal(err)
	}
	rules, err := grammar.DefaultRuleSet()
	if err != nil {
		t.Fatal(err)
	}
	regenerate := func(seed uint64) Run {
		res, err := generator.Generate(seed, cat, rules, generator.DefaultOptions())
		return RunFromResult(seed, res, err)
	}

	for seed := uint64(1); seed <= 4; seed++ {
		if err := s.Record(regenerate(seed)); err != nil {
			t.Fatal(err)
		}
	}

	drifts, err := s.VerifyCorpus(regenerate)
	if err != nil {
		t.Fatal(err)
	}
	if len(drifts) != 0 {
		t.Errorf("deterministic generator drifted: %+v", drifts)
	}
}

func TestRunContextRecordsResolvedSeed(t *testing.T) {
	s := openTestStore(t)

	// No start blueprint: generation always fails
	hall, err := blueprint.ParseLayout("hall", 0, 0, "\n##DD##\n#....#\n##DD##\n")
	if err != nil {
		t.Fatal(err)
	}
	cat, err := blueprint.NewCatalog([]*blueprint.Blueprint{hall})
	if err != nil {
		t.Fatal(err)
	}
	rules, err := grammar.DefaultRuleSet()
	if err != nil {
		t.Fatal(err)
	}

	ctx := generator.NewContext(0, cat, rules, generator.DefaultOptions())
	res, run := RunContext(ctx)
	if res != nil {
		t.Fatal("expected generation to fail")
	}
	if run.Seed == 0 || run.Seed != ctx.Seed {
		t.Errorf("run seed = %d, want the resolved seed %d", run.Seed, ctx.Seed)
	}
	if run.Status != StatusFailed {
		t.Errorf("status = %q, want %q", run.Status, StatusFailed)
	}
	if err := s.Record(run); err != nil {
		t.Fatal(err)
	}

	// Verifying replays the recorded seed, not a fresh clock seed
	drifts, err := s.VerifyCorpus(func(seed uint64) Run {
		_, got := RunContext(generator.NewContext(seed, cat, rules, generator.DefaultOptions()))
		return got
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(drifts) != 0 {
		t.Errorf("failed run drifted on replay: %+v", drifts)
	}
}
