package gamemap

import "wavechase/internal/tile"

// Tile is the runtime view of one solved cell.
type Tile struct {
	Name      string
	Class     tile.Class
	Rotation  int
	Walkable  bool
	SkipSpawn bool
	Glyph     string
	ASCII     rune

	// Empty marks a cell the solver left without a tile. Empty cells are
	// never walkable.
	Empty bool
}

// MakeEmpty returns a hole tile.
func MakeEmpty() Tile {
	return Tile{Empty: true, Glyph: "  ", ASCII: ' '}
}

// MakeTile returns the tile for kind k at rotation rot.
func MakeTile(k *tile.Kind, rot int) Tile {
	if k == nil {
		return MakeEmpty()
	}
	return Tile{
		Name:     k.Name,
		Class:    k.Class,
		Rotation: rot,
		Walkable: k.Walkable(),
		Glyph:    k.Glyph,
		ASCII:    k.ASCII,
	}
}

// IsGate reports whether the tile is access controlled.
func (t Tile) IsGate() bool { return !t.Empty && t.Class.IsGate() }
