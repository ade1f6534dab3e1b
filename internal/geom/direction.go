// Package geom provides the tile-space primitives used to place and rotate rooms.
// The Y axis points up: North is +Y and East is +X.
package geom

import "fmt"

// Direction represents a cardinal direction
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Rotation is a clockwise room rotation expressed as the direction the room's
// local North ends up facing. North is the identity rotation.
type Rotation = Direction

// AllDirections returns all four cardinal directions
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// ParseDirection converts a direction name back to a Direction
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "north":
		return North, nil
	case "east":
		return East, nil
	case "south":
		return South, nil
	case "west":
		return West, nil
	}
	return North, fmt.Errorf("geom: unknown direction %q", s)
}

// IsValid returns true if the direction is a valid cardinal direction
func (d Direction) IsValid() bool {
	return d >= North && d <= West
}

// Flip returns the opposite direction
func (d Direction) Flip() Direction {
	return normalize(int(d) + 2)
}

// Rotate returns the world direction of a local direction on a room placed
// with rotation r.
func (d Direction) Rotate(r Rotation) Direction {
	return normalize(int(d) + int(r))
}

// Inverse returns the rotation that undoes r
func (d Direction) Inverse() Rotation {
	return normalize(-int(d))
}

// Delta returns the unit step for this direction
func (d Direction) Delta() Point {
	switch d {
	case North:
		return Point{0, 1}
	case East:
		return Point{1, 0}
	case South:
		return Point{0, -1}
	case West:
		return Point{-1, 0}
	default:
		return Point{}
	}
}

// RotationBetween returns the rotation that turns a door facing from into a
// door facing to.
func RotationBetween(from, to Direction) Rotation {
	return normalize(int(to) - int(from))
}

func normalize(v int) Direction {
	v %= 4
	if v < 0 {
		v += 4
	}
	return Direction(v)
}
