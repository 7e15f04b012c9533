// Package gamemap holds the walkability grid agents move on, derived from a
// solved wfc.Result.
package gamemap

import (
	"wavechase/internal/geom"
	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

// GameMap holds the tile grid for one level.
type GameMap struct {
	Width, Height int
	Tiles         [][]Tile

	// PortalPairs links portals two by two in row-major order. An odd
	// portal out is left unpaired.
	PortalPairs [][2]geom.Cell
}

// New creates a GameMap filled with empty tiles.
func New(width, height int) *GameMap {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = MakeEmpty()
		}
	}
	return &GameMap{Width: width, Height: height, Tiles: tiles}
}

// FromResult converts a solver result into a map and pairs its portals.
func FromResult(res wfc.Result) *GameMap {
	m := New(res.Width, res.Height)
	var portals []geom.Cell
	for _, c := range res.Cells {
		t := MakeTile(c.Tile, c.Rotation)
		t.SkipSpawn = c.SkipSpawn
		m.Tiles[c.Y][c.X] = t
		if c.Tile != nil && c.Tile.Class == tile.ClassPortal {
			portals = append(portals, geom.Cell{X: c.X, Y: c.Y})
		}
	}
	for i := 0; i+1 < len(portals); i += 2 {
		m.PortalPairs = append(m.PortalPairs, [2]geom.Cell{portals[i], portals[i+1]})
	}
	return m
}

// InBounds reports whether (x, y) is within the map boundaries.
func (m *GameMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// At returns a pointer to the tile at (x, y). Panics if out of bounds.
func (m *GameMap) At(x, y int) *Tile {
	return &m.Tiles[y][x]
}

// Set replaces the tile at (x, y).
func (m *GameMap) Set(x, y int, t Tile) {
	m.Tiles[y][x] = t
}

// IsWalkable returns true when (x, y) is in bounds and walkable.
func (m *GameMap) IsWalkable(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.Tiles[y][x].Walkable
}

// IsGate returns true when (x, y) is in bounds and a door or portal.
func (m *GameMap) IsGate(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	return m.Tiles[y][x].IsGate()
}

// Gates lists every door and portal cell in row-major order.
func (m *GameMap) Gates() []geom.Cell {
	var out []geom.Cell
	m.each(func(c geom.Cell, t *Tile) {
		if t.IsGate() {
			out = append(out, c)
		}
	})
	return out
}

// FloorCells lists walkable floor cells that allow spawning.
func (m *GameMap) FloorCells() []geom.Cell {
	var out []geom.Cell
	m.each(func(c geom.Cell, t *Tile) {
		if t.Walkable && t.Class == tile.ClassFloor && !t.SkipSpawn {
			out = append(out, c)
		}
	})
	return out
}

// Partner returns the portal linked to c.
func (m *GameMap) Partner(c geom.Cell) (geom.Cell, bool) {
	for _, p := range m.PortalPairs {
		switch c {
		case p[0]:
			return p[1], true
		case p[1]:
			return p[0], true
		}
	}
	return geom.Cell{}, false
}

// OpenDirs returns the cardinal directions from c that lead onto a
// walkable cell, in clockwise order starting at Up.
func (m *GameMap) OpenDirs(c geom.Cell) []geom.Dir {
	var out []geom.Dir
	for _, d := range geom.Cardinals {
		n := c.Step(d)
		if m.IsWalkable(n.X, n.Y) {
			out = append(out, d)
		}
	}
	return out
}

func (m *GameMap) each(fn func(geom.Cell, *Tile)) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			fn(geom.Cell{X: x, Y: y}, &m.Tiles[y][x])
		}
	}
}
