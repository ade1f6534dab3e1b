package blueprint

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lawnchairsociety/dungeonforge/internal/geom"
)

var (
	ErrEmptyLayout  = errors.New("blueprint: layout is empty")
	ErrNoDoors      = errors.New("blueprint: layout has no doors")
	ErrUnpairedDoor = errors.New("blueprint: door tile has no partner")
	ErrDoorFacing   = errors.New("blueprint: cannot derive door direction")
)

// ParseLayout builds a blueprint from an ASCII layout. Row 0 is the top of
// the room, so a tile at (col, row) lands on (col, height-1-row).
//
//	.  floor        #  wall        ^  wall top (no collision)
//	D  door on the blueprint's floor level
//	0-9  door on an explicit floor level
//	(space)  empty
func ParseLayout(name string, level int, flags Flag, layout string) (*Blueprint, error) {
	lines := strings.Split(strings.Trim(layout, "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(strings.Join(lines, "")) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyLayout, name)
	}

	b := &Blueprint{
		Name:       name,
		FloorLevel: level,
		Flags:      flags,
		Height:     len(lines),
		Tiles:      make(map[geom.Point]TileKind),
	}

	doorLevels := make(map[geom.Point]int)
	for row, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if len(line) > b.Width {
			b.Width = len(line)
		}
		y := b.Height - 1 - row
		for x, ch := range line {
			p := geom.Pt(x, y)
			switch {
			case ch == '.':
				b.Tiles[p] = Floor
			case ch == '#':
				b.Tiles[p] = Wall
			case ch == '^':
				b.Tiles[p] = WallTop
			case ch == 'D':
				b.Tiles[p] = Door
				doorLevels[p] = level
			case ch >= '0' && ch <= '9':
				b.Tiles[p] = Door
				doorLevels[p] = int(ch - '0')
			case ch == ' ':
				// empty
			default:
				return nil, fmt.Errorf("blueprint: %s: unknown tile %q at row %d col %d", name, ch, row, x)
			}
		}
	}

	doors, err := pairDoors(b, doorLevels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(doors) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDoors, name)
	}
	b.Doors = doors
	b.index()

	return b, nil
}

// pairDoors groups door tiles into two-tile doors, scanning from the top
// left. A tile pairs with its right neighbour first, then the one below.
func pairDoors(b *Blueprint, levels map[geom.Point]int) ([]DoorSpec, error) {
	tiles := make([]geom.Point, 0, len(levels))
	for p := range levels {
		tiles = append(tiles, p)
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y > tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})

	paired := make(map[geom.Point]bool, len(tiles))
	var doors []DoorSpec

	for _, p := range tiles {
		if paired[p] {
			continue
		}

		var mate geom.Point
		found := false
		for _, candidate := range []geom.Point{p.Add(geom.Pt(1, 0)), p.Add(geom.Pt(0, -1))} {
			lvl, ok := levels[candidate]
			if ok && !paired[candidate] && lvl == levels[p] {
				mate, found = candidate, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w at %v", ErrUnpairedDoor, p)
		}
		paired[p], paired[mate] = true, true

		dir, err := doorFacing(b, p, mate)
		if err != nil {
			return nil, err
		}
		doors = append(doors, DoorSpec{
			Dir:   dir,
			Level: levels[p],
			Tiles: geom.Canonical(p, mate),
		})
	}

	return doors, nil
}

// doorFacing derives a door's direction: the door faces the side of its two
// tiles that has no floor in the neighbouring row or column. The tiles just
// outside the door must also lie outside the footprint.
func doorFacing(b *Blueprint, a, c geom.Point) (geom.Direction, error) {
	isFloor := func(p geom.Point) bool {
		kind, ok := b.Tiles[p]
		return ok && kind == Floor
	}

	var dir geom.Direction
	if a.Y == c.Y {
		up := isFloor(a.Add(geom.Pt(0, 1))) || isFloor(c.Add(geom.Pt(0, 1)))
		down := isFloor(a.Add(geom.Pt(0, -1))) || isFloor(c.Add(geom.Pt(0, -1)))
		switch {
		case down && !up:
			dir = geom.North
		case up && !down:
			dir = geom.South
		default:
			return 0, fmt.Errorf("%w at %v-%v", ErrDoorFacing, a, c)
		}
	} else {
		left := isFloor(a.Add(geom.Pt(-1, 0))) || isFloor(c.Add(geom.Pt(-1, 0)))
		right := isFloor(a.Add(geom.Pt(1, 0))) || isFloor(c.Add(geom.Pt(1, 0)))
		switch {
		case left && !right:
			dir = geom.East
		case right && !left:
			dir = geom.West
		default:
			return 0, fmt.Errorf("%w at %v-%v", ErrDoorFacing, a, c)
		}
	}

	// The doorway must open onto empty space
	for _, p := range []geom.Point{a.Add(dir.Delta()), c.Add(dir.Delta())} {
		if kind, ok := b.Tiles[p]; ok && kind != WallTop {
			return 0, fmt.Errorf("%w: door %v-%v opens into the room", ErrDoorFacing, a, c)
		}
	}

	return dir, nil
}
