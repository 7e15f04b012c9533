// Package wfc is the constraint-propagation tile generator. It fills a
// rectangular grid with tile options subject to adjacency rules, per-class
// count caps, forced placements and a hard border ring.
//
// The solver is monotonic: option sets only shrink, nothing is retried and a
// cell whose set empties stays empty in the Result.
package wfc

import (
	"log/slog"

	"wavechase/internal/tile"
)

// Unlimited disables a per-class cap.
const Unlimited = -1

// ForcedCell pre-seeds one cell before propagation starts.
type ForcedCell struct {
	X, Y      int
	Tile      *tile.Kind
	SkipSpawn bool
	Rotation  int

	// LockRotation collapses the cell immediately at Rotation. When false the
	// cell keeps all four rotations of Tile and the solver picks one.
	LockRotation bool
}

// Config is one generation request. It is read-only once passed to New.
type Config struct {
	Width, Height int
	Seed          int64

	Tiles             []*tile.Kind // interior candidates
	BorderTiles       []*tile.Kind
	BorderTunnelTiles []*tile.Kind
	Fallback          *tile.Kind

	Forced             []ForcedCell
	AllowBorderTunnels bool

	// Caps per class; Unlimited (-1) disables the cap, 0 forbids the class.
	MaxDoors         int
	MaxBorderTunnels int
	MaxPortals       int

	Logger *slog.Logger
}

// capIndex maps the capped classes onto a small array index.
func capIndex(c tile.Class) int {
	switch c {
	case tile.ClassDoor:
		return 0
	case tile.ClassBorderTunnel:
		return 1
	case tile.ClassPortal:
		return 2
	}
	return -1
}

func (c Config) caps() [3]int {
	return [3]int{c.MaxDoors, c.MaxBorderTunnels, c.MaxPortals}
}

// CellResult is one cell of the output. Tile is nil for an empty cell.
type CellResult struct {
	X, Y      int
	Tile      *tile.Kind
	SkipSpawn bool
	Rotation  int
}

// Empty reports whether the cell resolved to no tile.
func (c CellResult) Empty() bool { return c.Tile == nil }

// Result is the solver's output, row-major. It is never mutated after
// BuildResult returns it.
type Result struct {
	Width, Height int
	Cells         []CellResult
}

// InBounds reports whether (x, y) lies inside the result.
func (r Result) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.Width && y < r.Height
}

// At returns the cell at (x, y), or an empty cell when out of bounds.
func (r Result) At(x, y int) CellResult {
	if !r.InBounds(x, y) {
		return CellResult{X: x, Y: y}
	}
	return r.Cells[y*r.Width+x]
}

// CountClass counts cells whose tile has class cl.
func (r Result) CountClass(cl tile.Class) int {
	n := 0
	for _, c := range r.Cells {
		if c.Tile != nil && c.Tile.Class == cl {
			n++
		}
	}
	return n
}

// Holes counts cells that resolved to no tile.
func (r Result) Holes() int {
	n := 0
	for _, c := range r.Cells {
		if c.Tile == nil {
			n++
		}
	}
	return n
}

// Walkable reports whether (x, y) holds a walkable tile. Holes are not
// walkable.
func (r Result) Walkable(x, y int) bool {
	c := r.At(x, y)
	return c.Tile != nil && c.Tile.Walkable()
}

// Walkability returns the walkable flag of every cell, row-major.
func (r Result) Walkability() []bool {
	out := make([]bool, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Tile != nil && c.Tile.Walkable()
	}
	return out
}

// OnRing reports whether (x, y) is on the outer border ring.
func (r Result) OnRing(x, y int) bool {
	return onRing(x, y, r.Width, r.Height)
}

func onRing(x, y, w, h int) bool {
	return x == 0 || y == 0 || x == w-1 || y == h-1
}
