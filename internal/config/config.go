// Package config loads the generator configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/dungeonforge/internal/dungeon"
	"github.com/lawnchairsociety/dungeonforge/internal/generator"
	"github.com/lawnchairsociety/dungeonforge/internal/grammar"
)

// ErrInvalid is returned by Validate for out-of-range settings
var ErrInvalid = errors.New("config: invalid setting")

// GeneratorConfig holds every generator setting.
type GeneratorConfig struct {
	// Seed is the master seed. 0 derives one from the clock.
	Seed uint64 `yaml:"seed"`

	// CatalogPath is a blueprint catalog YAML file. Empty uses the
	// embedded default catalog.
	CatalogPath string `yaml:"catalog_path"`

	Assembly AssemblyConfig `yaml:"assembly"`
	Grammar  GrammarConfig  `yaml:"grammar"`
	Output   OutputConfig   `yaml:"output"`
	Store    StoreConfig    `yaml:"store"`
}

// AssemblyConfig bounds the spatial assembler's search.
type AssemblyConfig struct {
	// SelectAttempts is the number of blueprint picks per target door.
	SelectAttempts int `yaml:"select_attempts"`

	// PlaceAttempts is the number of target doors tried per mission node.
	PlaceAttempts int `yaml:"place_attempts"`

	// FillerAttempts is the number of picks per filler room.
	FillerAttempts int `yaml:"filler_attempts"`

	// FillerChance is the probability that an unused door gets a filler room.
	FillerChance float64 `yaml:"filler_chance"`

	// ScanDistance is how far new doors look for blocking rooms.
	ScanDistance int `yaml:"scan_distance"`
}

// GrammarConfig bounds the mission grammar.
type GrammarConfig struct {
	// MaxPasses caps the breadth-first rewrite passes.
	MaxPasses int `yaml:"max_passes"`
}

// OutputConfig controls what a run writes.
type OutputConfig struct {
	// LayoutPath receives the level YAML. Empty skips the export.
	LayoutPath string `yaml:"layout_path"`
}

// StoreConfig selects the seed corpus database.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DefaultConfig returns a GeneratorConfig with the standard search bounds.
func DefaultConfig() *GeneratorConfig {
	return &GeneratorConfig{
		Assembly: AssemblyConfig{
			SelectAttempts: dungeon.DefaultSelectAttempts,
			PlaceAttempts:  dungeon.DefaultPlaceAttempts,
			FillerAttempts: dungeon.DefaultFillerAttempts,
			FillerChance:   dungeon.DefaultFillerChance,
			ScanDistance:   dungeon.DefaultScanDistance,
		},
		Grammar: GrammarConfig{
			MaxPasses: grammar.DefaultMaxPasses,
		},
		Store: StoreConfig{
			Driver:     "sqlite",
			SQLitePath: "data/corpus.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
	}
}

// LoadConfig loads generator configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*GeneratorConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("config: parse %s: %w", path, err)
	}

	return config, config.Validate()
}

// Validate checks that every bound is usable.
func (c *GeneratorConfig) Validate() error {
	a := c.Assembly
	switch {
	case a.SelectAttempts <= 0:
		return fmt.Errorf("%w: assembly.select_attempts must be positive", ErrInvalid)
	case a.PlaceAttempts <= 0:
		return fmt.Errorf("%w: assembly.place_attempts must be positive", ErrInvalid)
	case a.FillerAttempts <= 0:
		return fmt.Errorf("%w: assembly.filler_attempts must be positive", ErrInvalid)
	case a.FillerChance < 0 || a.FillerChance > 1:
		return fmt.Errorf("%w: assembly.filler_chance must be within [0, 1]", ErrInvalid)
	case a.ScanDistance < 2:
		return fmt.Errorf("%w: assembly.scan_distance must reach the mate door (>= 2)", ErrInvalid)
	case c.Grammar.MaxPasses <= 0:
		return fmt.Errorf("%w: grammar.max_passes must be positive", ErrInvalid)
	}

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: store.driver %q (want sqlite or postgres)", ErrInvalid, c.Store.Driver)
	}
	return nil
}

// Options converts the config to generator options.
func (c *GeneratorConfig) Options() generator.Options {
	return generator.Options{
		Assembly: dungeon.Options{
			SelectAttempts: c.Assembly.SelectAttempts,
			PlaceAttempts:  c.Assembly.PlaceAttempts,
			FillerAttempts: c.Assembly.FillerAttempts,
			FillerChance:   c.Assembly.FillerChance,
			ScanDistance:   c.Assembly.ScanDistance,
		},
		MaxPasses: c.Grammar.MaxPasses,
	}
}
