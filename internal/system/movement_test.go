package system

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"wavechase/internal/access"
	"wavechase/internal/agent"
	"wavechase/internal/brain"
	"wavechase/internal/component"
	"wavechase/internal/ecs"
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

func setupMoveWorld() (*ecs.World, *gamemap.GameMap, ecs.EntityID) {
	w := ecs.NewWorld()
	gmap := mapFrom(
		"#########",
		"#.......#",
		"#.#####.#",
		"#.......#",
		"#########",
	)
	id := w.CreateEntity()
	w.Add(id, component.At(geom.Cell{X: 1, Y: 1}))
	w.Add(id, component.Motion{Speed: 4, Last: geom.Cell{X: 1, Y: 1}})
	return w, gmap, id
}

func position(w *ecs.World, id ecs.EntityID) component.Position {
	return w.Get(id, component.CPosition).(component.Position)
}

func TestTrySteer(t *testing.T) {
	w, gmap, id := setupMoveWorld()
	if got := TrySteer(w, gmap, id, geom.Up); got != MoveBlocked {
		t.Fatalf("steer into wall: got %v, want MoveBlocked", got)
	}
	if got := TrySteer(w, gmap, id, geom.Right); got != MoveOK {
		t.Fatalf("steer along corridor: got %v, want MoveOK", got)
	}
	if d := w.Get(id, component.CMotion).(component.Motion).Dir; d != geom.Right {
		t.Fatalf("heading = %v, want right", d)
	}
}

func TestAdvanceMovesAlongLane(t *testing.T) {
	w, gmap, id := setupMoveWorld()
	TrySteer(w, gmap, id, geom.Right)
	Advance(w, gmap, nil, 0, 0.1)
	pos := position(w, id)
	if math.Abs(pos.X-1.9) > 1e-9 || pos.Y != 1.5 {
		t.Fatalf("position = (%v,%v), want (1.9,1.5)", pos.X, pos.Y)
	}
}

func TestAdvanceStopsAtWall(t *testing.T) {
	w, gmap, id := setupMoveWorld()
	TrySteer(w, gmap, id, geom.Right)
	for i := 0; i < 40; i++ {
		Advance(w, gmap, nil, 0, 0.1)
	}
	pos := position(w, id)
	if pos.X != 7.5 || pos.Y != 1.5 {
		t.Fatalf("position = (%v,%v), want stopped at (7.5,1.5)", pos.X, pos.Y)
	}
}

func TestAdvanceClampsLongFrames(t *testing.T) {
	w, gmap, id := setupMoveWorld()
	TrySteer(w, gmap, id, geom.Right)
	Advance(w, gmap, nil, 0, 10)
	if pos := position(w, id); pos.X != 1.5+maxStep {
		t.Fatalf("x = %v, want %v", pos.X, 1.5+maxStep)
	}
}

func TestAdvanceReportsGatesAndTeleports(t *testing.T) {
	w := ecs.NewWorld()
	gmap := mapFrom(
		"#########",
		"#.+.O...#",
		"#########",
		"#.....O.#",
		"#########",
	)
	reg := access.NewRegistry(nil)
	door := geom.Cell{X: 2, Y: 1}
	reg.Lock(door)

	b, _ := brain.New("pursuit", brain.DefaultParams())
	a := agent.New(uuid.New(), b, geom.Cell{X: 1, Y: 1}, agent.DefaultParams(), 1)
	reg.GrantOverrideTicket(a.ID, door, time.Minute, 1, 0)
	id := w.CreateEntity()
	w.Add(id, component.At(geom.Cell{X: 1, Y: 1}))
	w.Add(id, component.Motion{Dir: geom.Right, Speed: 4, Last: geom.Cell{X: 1, Y: 1}})
	w.Add(id, component.AI{Agent: a})

	var got []Crossing
	for i := 0; i < 20 && len(got) < 2; i++ {
		got = append(got, Advance(w, gmap, reg, 0, 0.1)...)
	}
	if len(got) != 2 {
		t.Fatalf("got %d crossings, want 2: %+v", len(got), got)
	}
	if got[0].Gate != door || got[0].Portal {
		t.Errorf("first crossing = %+v, want the door", got[0])
	}
	if reg.HasAccess(a.ID, door, 0) {
		t.Error("crossing the locked door should spend the ticket")
	}
	if !got[1].Portal || got[1].To != (geom.Cell{X: 6, Y: 3}) {
		t.Errorf("second crossing = %+v, want portal to (6,3)", got[1])
	}
	if c := position(w, id).Cell(); c != (geom.Cell{X: 6, Y: 3}) {
		t.Errorf("entity at %v after teleport, want (6,3)", c)
	}
	if a.Cell() != (geom.Cell{X: 6, Y: 3}) {
		t.Errorf("agent position not synced: %v", a.Cell())
	}
	if a.Stats.GateCrossings != 2 {
		t.Errorf("agent saw %d crossings, want 2", a.Stats.GateCrossings)
	}

	// Landing on the partner does not bounce back.
	if more := Advance(w, gmap, reg, 0, 0.1); len(more) != 0 {
		t.Errorf("unexpected crossings after teleport: %+v", more)
	}
}

func TestRandomWalkStaysOnFloor(t *testing.T) {
	w, gmap, id := setupMoveWorld()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		RandomWalk(w, gmap, id, rng)
		Advance(w, gmap, nil, 0, 0.1)
		c := position(w, id).Cell()
		if !gmap.IsWalkable(c.X, c.Y) {
			t.Fatalf("step %d: walked onto %v", i, c)
		}
	}
	if position(w, id).Cell() == (geom.Cell{X: 1, Y: 1}) && w.Get(id, component.CMotion).(component.Motion).Dir == geom.None {
		t.Error("random walk never moved")
	}
}
