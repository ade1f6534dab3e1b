package layout

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/dungeonforge/internal/blueprint"
	"github.com/lawnchairsociety/dungeonforge/internal/dungeon"
	"github.com/lawnchairsociety/dungeonforge/internal/geom"
)

// Map glyphs
const (
	glyphEmpty     = ' '
	glyphFloor     = '.'
	glyphWall      = '#'
	glyphWallTop   = '^'
	glyphOpen      = '+' // Connected door
	glyphChance    = '*' // Chance-connected door
	glyphBlocked   = 'x'
	glyphBombable  = '%'
	glyphEntrance  = 'E'
	glyphGoal      = 'G'
	glyphThreshold = ':'
	glyphStray     = '?' // Door left unconnected
)

// Render draws the placed rooms as an ASCII map, top row first
func (l *Level) Render() []string {
	g := l.Dungeon
	grid := map[geom.Point]rune{}

	for _, r := range g.Rooms {
		for local, kind := range r.Blueprint.Tiles {
			p := r.World(local)
			switch kind {
			case blueprint.Floor:
				grid[p] = glyphFloor
			case blueprint.Wall:
				grid[p] = glyphWall
			case blueprint.WallTop:
				if _, taken := grid[p]; !taken {
					grid[p] = glyphWallTop
				}
			case blueprint.Door:
				// Drawn below
			}
		}
	}

	for _, r := range g.Rooms {
		for i := range r.Doors {
			d := &r.Doors[i]
			glyph := doorGlyph(d)
			grid[d.Tiles[0]] = glyph
			grid[d.Tiles[1]] = glyph

			if d.State == dungeon.Connected || d.State == dungeon.ChanceConnected || d.Flag == dungeon.EntranceFlag {
				step := d.Dir.Delta()
				for _, t := range d.Tiles {
					if _, taken := grid[t.Add(step)]; !taken {
						grid[t.Add(step)] = glyphThreshold
					}
				}
			}
		}
	}

	points := make([]geom.Point, 0, len(grid))
	for p := range grid {
		points = append(points, p)
	}
	lo, hi := geom.Bounds(points)

	lines := make([]string, 0, hi.Y-lo.Y+1)
	var sb strings.Builder
	for y := hi.Y; y >= lo.Y; y-- {
		sb.Reset()
		for x := lo.X; x <= hi.X; x++ {
			if c, ok := grid[geom.Pt(x, y)]; ok {
				sb.WriteRune(c)
			} else {
				sb.WriteRune(glyphEmpty)
			}
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return lines
}

func doorGlyph(d *dungeon.Door) rune {
	switch d.Flag {
	case dungeon.EntranceFlag:
		return glyphEntrance
	case dungeon.GoalFlag:
		return glyphGoal
	}
	switch d.State {
	case dungeon.Connected:
		return glyphOpen
	case dungeon.ChanceConnected:
		return glyphChance
	case dungeon.Blocked:
		if d.Bombable {
			return glyphBombable
		}
		return glyphBlocked
	default:
		return glyphStray
	}
}

// Legend describes the map glyphs
func Legend() string {
	var sb strings.Builder
	sb.WriteString("Legend:\n")
	entries := []struct {
		glyph rune
		text  string
	}{
		{glyphFloor, "floor"},
		{glyphWall, "wall"},
		{glyphWallTop, "wall top"},
		{glyphOpen, "connected door"},
		{glyphChance, "chance connection"},
		{glyphThreshold, "doorway"},
		{glyphBlocked, "sealed door"},
		{glyphBombable, "bombable wall"},
		{glyphEntrance, "entrance"},
		{glyphGoal, "door into the goal room"},
		{glyphStray, "unresolved door"},
	}
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %c  %s\n", e.glyph, e.text))
	}
	return sb.String()
}

// Summary lists rooms with their mission symbols, one per line
func (l *Level) Summary() []string {
	out := make([]string, 0, l.Dungeon.Len())
	for _, r := range l.Dungeon.Rooms {
		symbol := "?"
		if n := l.Mission.Node(r.Mission); n != nil {
			symbol = n.Symbol.String()
		}
		out = append(out, fmt.Sprintf("%3d %-10s %-14s at %-10v %-5s parent %d, %d doors free",
			r.ID, symbol, r.Blueprint.Name, r.Pos, r.Rotation, r.Parent, r.FreeDoors()))
	}
	return out
}
