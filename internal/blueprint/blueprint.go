// Package blueprint holds reusable room templates: their tile footprint and
// the doors extracted from it.
package blueprint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lawnchairsociety/dungeonforge/internal/geom"
)

// TileKind is the role of one blueprint tile
type TileKind int

const (
	Floor TileKind = iota
	Wall
	WallTop // Decorative, never collides
	Door
)

func (k TileKind) String() string {
	switch k {
	case Floor:
		return "floor"
	case Wall:
		return "wall"
	case WallTop:
		return "wall_top"
	case Door:
		return "door"
	default:
		return "unknown"
	}
}

// Flag marks what a blueprint may be used for
type Flag int

const (
	FlagStart  Flag = 1 << iota // May host the dungeon entrance
	FlagBoss                    // Boss arena
	FlagFiller                  // Small dead end used to seal doorways

	// roleFlags are never granted implicitly: a blueprint carrying one is
	// only selected when the request asks for it.
	roleFlags = FlagStart | FlagBoss
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagStart, "start"},
	{FlagBoss, "boss"},
	{FlagFiller, "filler"},
}

// ParseFlag converts a flag name to a Flag
func ParseFlag(name string) (Flag, error) {
	for _, f := range flagNames {
		if f.name == name {
			return f.flag, nil
		}
	}
	return 0, fmt.Errorf("blueprint: unknown flag %q", name)
}

// Names returns the names of the set flags
func (f Flag) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// DoorSpec is one opening spanning two adjacent tiles in room-local space
type DoorSpec struct {
	Dir   geom.Direction
	Level int
	Tiles [2]geom.Point // Canonical order
}

// Blueprint is a room template
type Blueprint struct {
	Name       string
	FloorLevel int
	Flags      Flag
	Width      int
	Height     int
	Tiles      map[geom.Point]TileKind
	Doors      []DoorSpec

	solid  []geom.Point       // Colliding tiles in row-major order
	doorAt map[geom.Point]int // Door tile -> door index
}

// Has reports whether the blueprint carries every flag in f
func (b *Blueprint) Has(f Flag) bool {
	return b.Flags&f == f
}

// Solid returns every tile that takes part in collisions (floor, wall and
// door tiles), sorted bottom row first.
func (b *Blueprint) Solid() []geom.Point {
	return b.solid
}

// DoorIndexAt returns the index of the door covering p, or -1
func (b *Blueprint) DoorIndexAt(p geom.Point) int {
	if i, ok := b.doorAt[p]; ok {
		return i
	}
	return -1
}

// DoorsAt returns the indices of doors on the given floor level
func (b *Blueprint) DoorsAt(level int) []int {
	var out []int
	for i, d := range b.Doors {
		if d.Level == level {
			out = append(out, i)
		}
	}
	return out
}

// index builds the derived lookup tables once the tiles and doors are final
func (b *Blueprint) index() {
	b.solid = b.solid[:0]
	for p, kind := range b.Tiles {
		if kind != WallTop {
			b.solid = append(b.solid, p)
		}
	}
	sort.Slice(b.solid, func(i, j int) bool {
		if b.solid[i].Y != b.solid[j].Y {
			return b.solid[i].Y < b.solid[j].Y
		}
		return b.solid[i].X < b.solid[j].X
	})

	b.doorAt = make(map[geom.Point]int, len(b.Doors)*2)
	for i, d := range b.Doors {
		b.doorAt[d.Tiles[0]] = i
		b.doorAt[d.Tiles[1]] = i
	}
}
