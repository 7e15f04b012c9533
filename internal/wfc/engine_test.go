package wfc

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavechase/assets"
	"wavechase/internal/geom"
	"wavechase/internal/tile"
)

func defaultCatalog(t *testing.T) *tile.Catalog {
	t.Helper()
	cat, err := tile.LoadCatalog(bytes.NewReader(assets.DefaultTiles))
	require.NoError(t, err)
	return cat
}

func configFor(cat *tile.Catalog, w, h int, seed int64) Config {
	return Config{
		Width:             w,
		Height:            h,
		Seed:              seed,
		Tiles:             cat.Interior(),
		BorderTiles:       cat.ByClass(tile.ClassBorder),
		BorderTunnelTiles: cat.ByClass(tile.ClassBorderTunnel),
		Fallback:          cat.Kind("floor"),
		Logger:            slog.New(slog.DiscardHandler),
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cat := defaultCatalog(t)
	cfg := configFor(cat, 21, 21, 12345)
	a := Generate(cfg)
	b := Generate(cfg)
	assert.Equal(t, a, b)

	cfg.Seed = 54321
	c := Generate(cfg)
	assert.NotEqual(t, a, c, "different seeds should give different grids")
}

func TestGenerateBorderScenario(t *testing.T) {
	cat := defaultCatalog(t)
	cfg := configFor(cat, 21, 21, 12345)
	res := Generate(cfg)

	require.Len(t, res.Cells, 21*21)
	assert.NoError(t, Check(cfg, res))

	ring := 0
	for _, c := range res.Cells {
		if res.OnRing(c.X, c.Y) {
			ring++
			require.NotNil(t, c.Tile, "ring cell (%d,%d) empty", c.X, c.Y)
			assert.Equal(t, tile.ClassBorder, c.Tile.Class)
		} else if c.Tile != nil {
			assert.NotEqual(t, tile.ClassBorder, c.Tile.Class)
		}
	}
	assert.Equal(t, 80, ring)
	assert.Zero(t, res.CountClass(tile.ClassDoor))
	assert.Zero(t, res.CountClass(tile.ClassPortal))
	assert.Zero(t, res.CountClass(tile.ClassBorderTunnel))
	assert.Less(t, res.Holes(), len(res.Cells)-ring, "interior should not be all holes")
}

func TestGenerateInvariantsAcrossSeeds(t *testing.T) {
	cat := defaultCatalog(t)
	for seed := int64(0); seed < 10; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			cfg := configFor(cat, 17, 13, seed)
			cfg.MaxDoors = 3
			cfg.MaxPortals = 2
			cfg.MaxBorderTunnels = Unlimited
			cfg.AllowBorderTunnels = true
			res := Generate(cfg)
			assert.NoError(t, Check(cfg, res))
			assert.LessOrEqual(t, res.CountClass(tile.ClassDoor), 3)
			assert.LessOrEqual(t, res.CountClass(tile.ClassPortal), 2)
		})
	}
}

// manyDoors builds a catalog with five door kinds that fit almost anywhere.
func manyDoors() ([]*tile.Kind, *tile.Kind) {
	anyRot := func(names ...string) []tile.Neighbor {
		var out []tile.Neighbor
		for _, n := range names {
			for r := 0; r < 4; r++ {
				out = append(out, tile.Neighbor{Kind: n, Rotation: r})
			}
		}
		return out
	}
	doorNames := []string{"d0", "d1", "d2", "d3", "d4"}
	floor := &tile.Kind{Name: "floor", Class: tile.ClassFloor}
	wall := &tile.Kind{Name: "wall", Class: tile.ClassWall}
	border := &tile.Kind{Name: "border", Class: tile.ClassBorder}
	kinds := []*tile.Kind{floor, wall}
	for _, n := range doorNames {
		kinds = append(kinds, &tile.Kind{Name: n, Class: tile.ClassDoor})
	}
	for _, k := range kinds {
		for d := range k.Adjacent {
			k.Adjacent[d] = anyRot(append([]string{"floor", "wall", "border"}, doorNames...)...)
		}
	}
	for d := range border.Adjacent {
		border.Adjacent[d] = anyRot(append([]string{"floor", "wall", "border"}, doorNames...)...)
	}
	return kinds, border
}

func TestDoorCapWithManyDoorKinds(t *testing.T) {
	interior, border := manyDoors()
	cfg := Config{
		Width: 15, Height: 15, Seed: 7,
		Tiles:       interior,
		BorderTiles: []*tile.Kind{border},
		Fallback:    interior[0],
		MaxDoors:    2,
		Logger:      slog.New(slog.DiscardHandler),
	}
	res := Generate(cfg)
	assert.LessOrEqual(t, res.CountClass(tile.ClassDoor), 2)
	assert.Zero(t, res.Holes())
	assert.NoError(t, Check(cfg, res))

	cfg.MaxDoors = Unlimited
	assert.Greater(t, Generate(cfg).CountClass(tile.ClassDoor), 2)

	cfg.MaxDoors = 0
	assert.Zero(t, Generate(cfg).CountClass(tile.ClassDoor))
}

func TestForcedCells(t *testing.T) {
	cat := defaultCatalog(t)
	portal := cat.Kind("portal")
	cfg := configFor(cat, 21, 21, 99)
	cfg.MaxPortals = 1
	cfg.Forced = []ForcedCell{
		{X: 5, Y: 5, Tile: portal, Rotation: 2, LockRotation: true, SkipSpawn: true},
		{X: 15, Y: 15, Tile: portal, LockRotation: true}, // over the cap
		{X: 9, Y: 9, Tile: cat.Kind("border"), LockRotation: true},
		{X: 40, Y: 2, Tile: cat.Kind("floor"), LockRotation: true},
	}
	res := Generate(cfg)
	assert.NoError(t, Check(cfg, res))

	got := res.At(5, 5)
	assert.Same(t, portal, got.Tile)
	assert.Equal(t, 2, got.Rotation)
	assert.True(t, got.SkipSpawn)

	assert.Equal(t, 1, res.CountClass(tile.ClassPortal))
	if c := res.At(9, 9); c.Tile != nil {
		assert.NotEqual(t, tile.ClassBorder, c.Tile.Class)
	}
}

func TestForcedUnlockedRotationResolved(t *testing.T) {
	cat := defaultCatalog(t)
	door := cat.Kind("door")
	cfg := configFor(cat, 21, 21, 3)
	cfg.MaxDoors = 1
	cfg.Forced = []ForcedCell{{X: 10, Y: 10, Tile: door}}
	res := Generate(cfg)
	assert.NoError(t, Check(cfg, res))
	got := res.At(10, 10)
	require.NotNil(t, got.Tile)
	assert.Same(t, door, got.Tile)
	assert.Equal(t, 1, res.CountClass(tile.ClassDoor), "forced door reserves the only slot")
}

func TestOptionSetsAreMonotonic(t *testing.T) {
	cat := defaultCatalog(t)
	cfg := configFor(cat, 12, 12, 42)
	cfg.MaxDoors = 2
	run := NewIncrementalRun(cfg)

	prev := make([]int, 12*12)
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			prev[y*12+x] = run.OptionCount(x, y)
		}
	}
	for run.Step() {
		for y := 0; y < 12; y++ {
			for x := 0; x < 12; x++ {
				n := run.OptionCount(x, y)
				require.LessOrEqual(t, n, prev[y*12+x], "cell (%d,%d) grew at step %d", x, y, run.Steps())
				prev[y*12+x] = n
			}
		}
	}
	collapsed, total := run.Progress()
	assert.Equal(t, 144, total)
	assert.Positive(t, collapsed)
	assert.LessOrEqual(t, collapsed, total)
}

func TestIncrementalMatchesGenerate(t *testing.T) {
	cat := defaultCatalog(t)
	cfg := configFor(cat, 21, 21, 2024)
	cfg.MaxDoors = 4
	cfg.MaxPortals = 2

	run := NewIncrementalRun(cfg)
	for run.Advance(7) > 0 {
	}
	assert.True(t, run.Done())
	assert.Equal(t, Generate(cfg), run.BuildResult())
}

func TestDegenerateConfigs(t *testing.T) {
	cat := defaultCatalog(t)

	empty := Generate(configFor(cat, 0, 5, 1))
	assert.Empty(t, empty.Cells)
	assert.Zero(t, empty.Width)

	e := New(configFor(cat, -3, 4, 1))
	assert.False(t, e.Step())

	single := Generate(configFor(cat, 1, 1, 1))
	require.Len(t, single.Cells, 1)
	assert.Equal(t, tile.ClassBorder, single.Cells[0].Tile.Class)

	// No candidate lists at all: every cell falls back.
	floor := cat.Kind("floor")
	res := Generate(Config{Width: 6, Height: 4, Fallback: floor, Logger: slog.New(slog.DiscardHandler)})
	for _, c := range res.Cells {
		assert.Same(t, floor, c.Tile)
	}
}

func TestEntropyIntrospection(t *testing.T) {
	cat := defaultCatalog(t)
	e := New(configFor(cat, 9, 9, 5))
	assert.Zero(t, e.OptionCount(4, 4), "nothing before Initialize")
	e.Initialize()
	assert.True(t, e.Collapsed(0, 0))
	assert.Zero(t, e.Entropy(0, 0))
	assert.Positive(t, e.Entropy(4, 4))
	assert.LessOrEqual(t, e.Entropy(4, 4), e.OptionCount(4, 4))
	assert.Zero(t, e.OptionCount(-1, 4))
}

func TestHoleStarvesNeighbours(t *testing.T) {
	cat := defaultCatalog(t)
	floor := cat.Kind("floor")
	cfg := Config{
		Width:    5,
		Height:   5,
		Seed:     1,
		Tiles:    []*tile.Kind{floor},
		Fallback: floor,
		Logger:   slog.New(slog.DiscardHandler),
	}
	e := New(cfg)
	e.Initialize()
	centre := 2*5 + 2
	e.cells[centre].options = nil
	e.touch(centre)

	assert.Positive(t, e.OptionCount(2, 1))
	assert.Zero(t, e.Entropy(2, 1), "a cell beside a hole has no supported option")
	assert.Positive(t, e.Entropy(1, 1))

	res := e.Run()
	for _, c := range [][2]int{{2, 2}, {2, 1}, {1, 2}, {3, 2}, {2, 3}} {
		assert.True(t, res.At(c[0], c[1]).Empty(), "(%d,%d) should stay empty", c[0], c[1])
	}
	assert.Equal(t, 5, res.Holes())
}

func TestLockedForcedConflictDropsLaterEntry(t *testing.T) {
	cat := defaultCatalog(t)
	floor, door := cat.Kind("floor"), cat.Kind("door")
	require.False(t, tile.Compatible(floor, 0, door, 0, geom.Right))

	cfg := configFor(cat, 7, 7, 9)
	cfg.MaxDoors = Unlimited
	cfg.Forced = []ForcedCell{
		{X: 2, Y: 2, Tile: floor, LockRotation: true},
		{X: 3, Y: 2, Tile: door, LockRotation: true},
	}
	res := Generate(cfg)

	assert.NoError(t, Check(cfg, res))
	assert.Same(t, floor, res.At(2, 2).Tile)
	if got := res.At(3, 2); got.Tile != nil {
		assert.True(t, tile.Compatible(floor, 0, got.Tile, got.Rotation, geom.Right))
	}
}
