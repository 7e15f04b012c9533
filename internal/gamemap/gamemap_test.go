package gamemap

import (
	"testing"

	"wavechase/internal/geom"
	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

var (
	floorKind  = &tile.Kind{Name: "floor", Class: tile.ClassFloor, ASCII: '.'}
	wallKind   = &tile.Kind{Name: "wall", Class: tile.ClassWall, ASCII: '#'}
	doorKind   = &tile.Kind{Name: "door", Class: tile.ClassDoor, ASCII: '+'}
	portalKind = &tile.Kind{Name: "portal", Class: tile.ClassPortal, ASCII: 'O'}
)

// resultFrom builds a Result from rows of ASCII, one kind per rune. A space
// is a hole and a lowercase f is a floor cell marked SkipSpawn.
func resultFrom(rows ...string) wfc.Result {
	kinds := map[rune]*tile.Kind{'.': floorKind, '#': wallKind, '+': doorKind, 'O': portalKind, 'f': floorKind}
	res := wfc.Result{Width: len(rows[0]), Height: len(rows)}
	for y, row := range rows {
		for x, r := range row {
			res.Cells = append(res.Cells, wfc.CellResult{X: x, Y: y, Tile: kinds[r], SkipSpawn: r == 'f'})
		}
	}
	return res
}

func TestInBounds(t *testing.T) {
	m := New(10, 8)
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{9, 7, true},
		{-1, 0, false},
		{10, 0, false},
		{0, 8, false},
	}
	for _, c := range cases {
		got := m.InBounds(c.x, c.y)
		if got != c.want {
			t.Errorf("InBounds(%d,%d)=%v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestFromResultWalkability(t *testing.T) {
	m := FromResult(resultFrom(
		"#####",
		"#. +#",
		"#O.O#",
		"#####",
	))
	cases := []struct {
		name string
		x, y int
		want bool
	}{
		{"floor", 1, 1, true},
		{"hole", 2, 1, false},
		{"door", 3, 1, true},
		{"portal", 1, 2, true},
		{"wall", 0, 0, false},
		{"out of bounds", -1, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.IsWalkable(tc.x, tc.y); got != tc.want {
				t.Errorf("IsWalkable(%d,%d) = %v; want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
	if !m.At(2, 1).Empty {
		t.Error("hole should be marked empty")
	}
}

func TestGatesAndPortalPairs(t *testing.T) {
	m := FromResult(resultFrom(
		"#######",
		"#O.+.O#",
		"#..O..#",
		"#######",
	))
	gates := m.Gates()
	want := []geom.Cell{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 5, Y: 1}, {X: 3, Y: 2}}
	if len(gates) != len(want) {
		t.Fatalf("got %d gates, want %d", len(gates), len(want))
	}
	for i := range want {
		if gates[i] != want[i] {
			t.Errorf("gate %d = %v, want %v", i, gates[i], want[i])
		}
	}
	if len(m.PortalPairs) != 1 {
		t.Fatalf("got %d portal pairs, want 1", len(m.PortalPairs))
	}
	p, ok := m.Partner(geom.Cell{X: 5, Y: 1})
	if !ok || p != (geom.Cell{X: 1, Y: 1}) {
		t.Errorf("Partner = %v, %v", p, ok)
	}
	if _, ok := m.Partner(geom.Cell{X: 3, Y: 2}); ok {
		t.Error("odd portal out should have no partner")
	}
	if !m.IsGate(3, 1) || m.IsGate(2, 1) {
		t.Error("IsGate misreports door or floor")
	}
}

func TestFloorCellsSkipsReserved(t *testing.T) {
	m := FromResult(resultFrom(
		"####",
		"#.f#",
		"#+.#",
		"####",
	))
	cells := m.FloorCells()
	if len(cells) != 2 {
		t.Fatalf("got %d floor cells, want 2: %v", len(cells), cells)
	}
	for _, c := range cells {
		if c == (geom.Cell{X: 2, Y: 1}) {
			t.Error("skip-spawn cell listed as floor")
		}
	}
}

func TestOpenDirs(t *testing.T) {
	m := FromResult(resultFrom(
		"#####",
		"#...#",
		"###.#",
		"#####",
	))
	dirs := m.OpenDirs(geom.Cell{X: 3, Y: 1})
	if len(dirs) != 2 || dirs[0] != geom.Down || dirs[1] != geom.Left {
		t.Errorf("OpenDirs = %v, want [down left]", dirs)
	}
	if got := m.OpenDirs(geom.Cell{X: 3, Y: 2}); len(got) != 1 || got[0] != geom.Up {
		t.Errorf("dead end OpenDirs = %v, want [up]", got)
	}
}
