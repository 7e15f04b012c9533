package nav

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zyedidia/generic/mapset"

	"wavechase/internal/access"
	"wavechase/internal/gamemap"
	"wavechase/internal/geom"
	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

var kinds = map[rune]*tile.Kind{
	'.': {Name: "floor", Class: tile.ClassFloor},
	'#': {Name: "wall", Class: tile.ClassWall},
	'+': {Name: "door", Class: tile.ClassDoor},
	'O': {Name: "portal", Class: tile.ClassPortal},
}

func mapFrom(rows ...string) *gamemap.GameMap {
	res := wfc.Result{Width: len(rows[0]), Height: len(rows)}
	for y, row := range rows {
		for x, r := range row {
			res.Cells = append(res.Cells, wfc.CellResult{X: x, Y: y, Tile: kinds[r]})
		}
	}
	return gamemap.FromResult(res)
}

func at(x, y int) geom.Vec2 { return geom.Cell{X: x, Y: y}.Center() }

func quiet() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestSearchShortestPath(t *testing.T) {
	m := mapFrom(
		"#######",
		"#.....#",
		"#.###.#",
		"#.....#",
		"#######",
	)
	g := NewGridGraph(m, nil, quiet())
	res := g.Search(Request{Start: at(1, 1), Goal: at(5, 3)})
	require.NoError(t, res.Err)
	assert.Len(t, res.Path, 7)
	assert.Equal(t, geom.Cell{X: 1, Y: 1}, res.Path[0])
	assert.Equal(t, geom.Cell{X: 5, Y: 3}, res.Path[6])
	assert.NotEqual(t, geom.None, res.Next(geom.Cell{X: 1, Y: 1}))
	assert.Equal(t, geom.None, res.Next(geom.Cell{X: 5, Y: 3}))

	same := g.Search(Request{Start: at(1, 1), Goal: at(1, 1)})
	require.NoError(t, same.Err)
	assert.Len(t, same.Path, 1)

	wall := g.Search(Request{Start: at(1, 1), Goal: at(3, 2)})
	assert.ErrorIs(t, wall.Err, ErrNoPath)
}

func TestSearchBlockedEdges(t *testing.T) {
	m := mapFrom(
		"#####",
		"#...#",
		"#####",
	)
	g := NewGridGraph(m, nil, quiet())
	blocked := mapset.New[Edge]()
	blocked.Put(Edge{From: geom.Cell{X: 3, Y: 1}, To: geom.Cell{X: 2, Y: 1}})
	res := g.Search(Request{Start: at(1, 1), Goal: at(3, 1), Blocked: blocked})
	assert.ErrorIs(t, res.Err, ErrNoPath, "edges block both ways")
}

func TestGateAllowance(t *testing.T) {
	m := mapFrom(
		"#####",
		"#.+.#",
		"#####",
	)
	reg := access.NewRegistry(quiet())
	reg.Lock(geom.Cell{X: 2, Y: 1})
	g := NewGridGraph(m, reg, quiet())
	agent := uuid.New()

	res := g.Search(Request{Agent: agent, Start: at(1, 1), Goal: at(3, 1)})
	assert.ErrorIs(t, res.Err, ErrNoPath)

	res = g.Search(Request{Agent: agent, Start: at(1, 1), Goal: at(3, 1), GateAllowance: 1})
	require.NoError(t, res.Err)
	assert.Equal(t, []geom.Cell{{X: 2, Y: 1}}, res.Gates)

	reg.GrantOverrideTicket(agent, geom.Cell{X: 2, Y: 1}, time.Second, 1, 0)
	res = g.Search(Request{Agent: agent, Start: at(1, 1), Goal: at(3, 1)})
	require.NoError(t, res.Err)
	assert.Empty(t, res.Gates, "a ticket opens the gate")
}

func TestPortalLinks(t *testing.T) {
	m := mapFrom(
		"#######",
		"#O.#.O#",
		"#######",
	)
	g := NewGridGraph(m, nil, quiet())
	assert.True(t, g.IsReachable(at(2, 1), at(4, 1)), "portal pair links the halves")

	res := g.Search(Request{Start: at(2, 1), Goal: at(4, 1)})
	require.NoError(t, res.Err)
	assert.Equal(t, []geom.Cell{{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 5, Y: 1}, {X: 4, Y: 1}}, res.Path)
	assert.Equal(t, geom.None, res.Next(geom.Cell{X: 1, Y: 1}), "teleport step has no direction")
}

func TestAddNonLocalEdgeAndReachability(t *testing.T) {
	m := mapFrom(
		"#####",
		"#.#.#",
		"#####",
	)
	g := NewGridGraph(m, nil, quiet())
	assert.False(t, g.IsReachable(at(1, 1), at(3, 1)))
	assert.False(t, g.IsReachable(at(1, 1), at(2, 1)), "walls are never reachable")
	g.AddNonLocalEdge(at(1, 1), at(3, 1))
	assert.True(t, g.IsReachable(at(1, 1), at(3, 1)))
}

func TestFindPathDeliversOnPump(t *testing.T) {
	m := mapFrom(
		"####",
		"#..#",
		"####",
	)
	g := NewGridGraph(m, nil, quiet())
	var got []Result
	g.FindPath(Request{Start: at(1, 1), Goal: at(2, 1)}, func(r Result) { got = append(got, r) })
	assert.Empty(t, got, "callbacks wait for Pump")
	assert.Equal(t, 1, g.Pending())
	assert.Equal(t, 1, g.Pump())
	require.Len(t, got, 1)
	assert.NoError(t, got[0].Err)
	assert.Zero(t, g.Pump())
}
