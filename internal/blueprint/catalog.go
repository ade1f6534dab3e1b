package blueprint

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateName = errors.New("blueprint: duplicate blueprint name")
	ErrEmptyCatalog  = errors.New("blueprint: catalog is empty")
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Compare selects how Filter matches the door count
type Compare int

const (
	Exactly Compare = iota
	AtLeast
)

func (c Compare) String() string {
	if c == AtLeast {
		return ">="
	}
	return "=="
}

// FilterKey identifies one filtered view of the catalog. Being a comparable
// struct it doubles as the cache key.
type FilterKey struct {
	Doors   int
	Compare Compare
	Level   int
	Flags   Flag
}

func (k FilterKey) String() string {
	return fmt.Sprintf("doors%s%d level=%d flags=%s", k.Compare, k.Doors, k.Level, k.Flags)
}

// Catalog is an ordered, immutable collection of blueprints with a cache of
// filtered views.
type Catalog struct {
	blueprints []*Blueprint
	byName     map[string]*Blueprint

	mu    sync.Mutex
	cache map[FilterKey][]*Blueprint
}

// NewCatalog builds a catalog, rejecting duplicate names
func NewCatalog(blueprints []*Blueprint) (*Catalog, error) {
	if len(blueprints) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		blueprints: blueprints,
		byName:     make(map[string]*Blueprint, len(blueprints)),
		cache:      make(map[FilterKey][]*Blueprint),
	}
	for _, b := range blueprints {
		if _, exists := c.byName[b.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, b.Name)
		}
		c.byName[b.Name] = b
	}
	return c, nil
}

// All returns the blueprints in catalog order
func (c *Catalog) All() []*Blueprint {
	return c.blueprints
}

// Len returns the number of blueprints
func (c *Catalog) Len() int {
	return len(c.blueprints)
}

// Get returns a blueprint by name
func (c *Catalog) Get(name string) (*Blueprint, bool) {
	b, ok := c.byName[name]
	return b, ok
}

// Filter returns the blueprints on a floor level that have at least one door
// on that level, the requested door count and every requested flag. Role
// flags (start, boss) must be requested to be selected at all. Results keep
// catalog order and are cached.
func (c *Catalog) Filter(key FilterKey) []*Blueprint {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[key]; ok {
		return cached
	}

	var out []*Blueprint
	for _, b := range c.blueprints {
		if b.FloorLevel != key.Level || len(b.DoorsAt(key.Level)) == 0 {
			continue
		}
		switch key.Compare {
		case Exactly:
			if len(b.Doors) != key.Doors {
				continue
			}
		case AtLeast:
			if len(b.Doors) < key.Doors {
				continue
			}
		}
		if !b.Has(key.Flags) {
			continue
		}
		if b.Flags&roleFlags&^key.Flags != 0 {
			continue
		}
		out = append(out, b)
	}

	c.cache[key] = out
	return out
}

// File is the YAML form of a blueprint catalog
type File struct {
	Blueprints []FileEntry `yaml:"blueprints"`
}

// FileEntry is one blueprint in a catalog file
type FileEntry struct {
	Name   string   `yaml:"name"`
	Level  int      `yaml:"level"`
	Flags  []string `yaml:"flags,omitempty"`
	Layout string   `yaml:"layout"`
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint catalog: %w", err)
	}

	blueprints := make([]*Blueprint, 0, len(file.Blueprints))
	for i, entry := range file.Blueprints {
		if entry.Name == "" {
			return nil, fmt.Errorf("blueprint %d: name is required", i)
		}

		var flags Flag
		for _, name := range entry.Flags {
			f, err := ParseFlag(name)
			if err != nil {
				return nil, fmt.Errorf("blueprint %s: %w", entry.Name, err)
			}
			flags |= f
		}

		b, err := ParseLayout(entry.Name, entry.Level, flags, entry.Layout)
		if err != nil {
			return nil, err
		}
		blueprints = append(blueprints, b)
	}

	return NewCatalog(blueprints)
}

// Load reads a catalog from a YAML file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the catalog shipped with the module
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadOrDefault loads path, or the built-in catalog when path is empty
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}
