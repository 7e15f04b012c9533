// Package geom holds the small grid and vector types shared by the solver,
// the navigation layer and the agent decision core.
//
// World space uses one unit per grid cell; the centre of cell (x, y) is the
// world point (x+0.5, y+0.5).
package geom

import "math"

// Dir is a cardinal direction. The four real directions are ordered
// clockwise so that a quarter-turn rotation is an addition modulo 4.
type Dir uint8

const (
	Up Dir = iota
	Right
	Down
	Left
	None
)

// Cardinals lists the four real directions in clockwise order.
var Cardinals = [4]Dir{Up, Right, Down, Left}

var dirDeltas = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// String returns the lowercase direction name.
func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return "none"
}

// Opposite returns the reverse direction. None stays None.
func (d Dir) Opposite() Dir {
	if d == None {
		return None
	}
	return (d + 2) % 4
}

// Rotate turns d clockwise by q quarter turns (q may be negative).
func (d Dir) Rotate(q int) Dir {
	if d == None {
		return None
	}
	return Dir(mod4(int(d) + q))
}

// Left returns the direction a quarter turn counter-clockwise from d.
func (d Dir) Left() Dir { return d.Rotate(-1) }

// Right returns the direction a quarter turn clockwise from d.
func (d Dir) Right() Dir { return d.Rotate(1) }

// Delta returns the grid step for d; None yields (0, 0).
func (d Dir) Delta() (int, int) {
	if d == None {
		return 0, 0
	}
	return dirDeltas[d][0], dirDeltas[d][1]
}

// Vec returns the unit vector for d.
func (d Dir) Vec() Vec2 {
	dx, dy := d.Delta()
	return Vec2{float64(dx), float64(dy)}
}

func mod4(v int) int {
	v %= 4
	if v < 0 {
		v += 4
	}
	return v
}

// Mod4 normalises a rotation count into 0..3.
func Mod4(v int) int { return mod4(v) }

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Step returns the neighbouring cell in direction d.
func (c Cell) Step(d Dir) Cell {
	dx, dy := d.Delta()
	return Cell{c.X + dx, c.Y + dy}
}

// Center returns the world-space centre of the cell.
func (c Cell) Center() Vec2 {
	return Vec2{float64(c.X) + 0.5, float64(c.Y) + 0.5}
}

// DirTo returns the cardinal direction from c to an orthogonally adjacent
// cell, or None when o is not a 4-neighbour.
func (c Cell) DirTo(o Cell) Dir {
	for _, d := range Cardinals {
		if c.Step(d) == o {
			return d
		}
	}
	return None
}

// Manhattan returns |dx| + |dy| between two cells.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns max(|dx|, |dy|) between two cells.
func Chebyshev(a, b Cell) int {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Vec2 is a world-space point or vector.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between two points.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Normalize returns a unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perp returns v rotated a quarter turn clockwise in screen space (y down).
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Cell returns the grid cell containing v.
func (v Vec2) Cell() Cell {
	return Cell{int(math.Floor(v.X)), int(math.Floor(v.Y))}
}
