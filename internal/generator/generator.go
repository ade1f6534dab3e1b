// Package generator runs the full pipeline for one master seed: grammar,
// priority order, spatial assembly and population.
package generator

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/dungeon"
	"github.com/lawnchairsociety/dungeonforge/internal/grammar"
	"github.com/lawnchairsociety/dungeonforge/internal/logger"
	"github.com/lawnchairsociety/dungeonforge/internal/mission"
	"github.com/lawnchairsociety/dungeonforge/internal/populate"
)

// Stream salts. Each stream is seeded from the master seed and its salt so
// that draws on one never shift another.
const (
	missionStream uint64 = iota + 1
	spatialStream
	gameStream
)

// Options tunes one generation run
type Options struct {
	Assembly  dungeon.Options
	MaxPasses int
}

// DefaultOptions returns the standard grammar and assembly bounds
func DefaultOptions() Options {
	return Options{
		Assembly:  dungeon.DefaultOptions(),
		MaxPasses: grammar.DefaultMaxPasses,
	}
}

// Result is a finished level. It is only returned when every stage succeeded.
type Result struct {
	Seed        uint64
	Mission     *mission.Graph
	Order       *mission.Order
	Dungeon     *dungeon.Graph
	Blocked     []dungeon.DoorRef
	Warnings    []dungeon.Warning
	Population  *populate.Population
	Fingerprint Fingerprint

	Passes   int // Grammar passes
	Attempts int // Placement attempts
	Elapsed  time.Duration
}

// Context holds everything one generation needs. A Context is not safe for
// concurrent use; run parallel generations with one Context each.
type Context struct {
	Seed    uint64
	Catalog *blueprint.Catalog
	Rules   *grammar.RuleSet
	Options Options

	missionRNG *rand.Rand
	spatialRNG *rand.Rand
	gameRNG    *rand.Rand
	log        *slog.Logger
}

// NewContext prepares a generation for seed. Seed 0 picks one from the clock.
func NewContext(seed uint64, catalog *blueprint.Catalog, rules *grammar.RuleSet, opts Options) *Context {
	if seed == 0 {
		seed = clockSeed()
	}
	return &Context{
		Seed:    seed,
		Catalog: catalog,
		Rules:   rules,
		Options: opts,
	}
}

// Generate runs the pipeline. Streams are re-derived on every call, so
// calling it twice yields the same level.
func (c *Context) Generate() (*Result, error) {
	start := time.Now()
	c.reset()

	engine := grammar.NewEngine(c.Rules, c.missionRNG)
	if c.Options.MaxPasses > 0 {
		engine.MaxPasses = c.Options.MaxPasses
	}
	m, err := engine.Generate()
	if err != nil {
		return nil, c.fail(err)
	}
	missionPrint := MissionFingerprint(m)

	order := m.PriorityOrder()
	asm := dungeon.NewAssembler(c.Catalog, c.spatialRNG, c.Options.Assembly)
	g, err := asm.Assemble(m, order)
	if err != nil {
		return nil, c.fail(err)
	}

	warnings := asm.Warnings()
	for _, w := range warnings {
		c.log.Warn("Chance connection discarded",
			"kind", w.Kind.String(),
			"doors", fmt.Sprintf("%v-%v", w.Doors[0], w.Doors[1]),
			"a", w.A,
			"b", w.B)
	}

	res := &Result{
		Seed:       c.Seed,
		Mission:    m,
		Order:      order,
		Dungeon:    g,
		Blocked:    g.BlockedDoors(),
		Warnings:   warnings,
		Population: populate.Populate(m, g, c.gameRNG),
		Fingerprint: Fingerprint{
			Mission: missionPrint,
			Dungeon: DungeonFingerprint(g),
		},
		Passes:   engine.Passes,
		Attempts: asm.Attempts,
		Elapsed:  time.Since(start),
	}

	c.log.Info("Dungeon generated",
		"nodes", m.Len(),
		"rooms", g.Len(),
		"blocked", len(res.Blocked),
		"warnings", len(warnings),
		"attempts", asm.Attempts,
		"elapsed", res.Elapsed)

	return res, nil
}

// Generate builds a level for one seed with a fresh Context
func Generate(seed uint64, catalog *blueprint.Catalog, rules *grammar.RuleSet, opts Options) (*Result, error) {
	return NewContext(seed, catalog, rules, opts).Generate()
}

// reset derives the three random streams from the master seed
func (c *Context) reset() {
	c.missionRNG = stream(c.Seed, missionStream)
	c.spatialRNG = stream(c.Seed, spatialStream)
	c.gameRNG = stream(c.Seed, gameStream)
	c.log = logger.ForSeed(c.Seed)
}

func (c *Context) fail(err error) error {
	c.log.Error("Generation failed", "error", err)
	return fmt.Errorf("generation failed (seed %d): %w", c.Seed, err)
}

// stream seeds a generator from the master seed mixed with a salt
func stream(seed, salt uint64) *rand.Rand {
	z := seed + salt*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return rand.New(rand.NewSource(int64(z)))
}

func clockSeed() uint64 {
	if s := uint64(time.Now().UnixNano()); s != 0 {
		return s
	}
	return 1
}
