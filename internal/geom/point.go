package geom

import "fmt"

// Point is a tile coordinate
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul scales p by n
func (p Point) Mul(n int) Point {
	return Point{p.X * n, p.Y * n}
}

// String formats the point as "(x,y)"
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// RotatePoint rotates a room-local coordinate about the room origin.
func RotatePoint(p Point, r Rotation) Point {
	switch r {
	case East:
		return Point{p.Y, -p.X}
	case South:
		return Point{-p.X, -p.Y}
	case West:
		return Point{-p.Y, p.X}
	default:
		return p
	}
}

// Transform maps a room-local coordinate to world space for a room at pos
// with rotation r.
func Transform(local, pos Point, r Rotation) Point {
	return RotatePoint(local, r).Add(pos)
}

// UpperLeft reports whether a sorts before b as a door endpoint: smaller X
// first, ties broken by the larger Y.
func UpperLeft(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y > b.Y
}

// Canonical returns the two door endpoints with the upper-left-most first
func Canonical(a, b Point) [2]Point {
	if UpperLeft(b, a) {
		return [2]Point{b, a}
	}
	return [2]Point{a, b}
}

// Bounds returns the inclusive min and max corners of a set of points
func Bounds(points []Point) (min, max Point) {
	if len(points) == 0 {
		return Point{}, Point{}
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}
