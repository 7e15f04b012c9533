package system

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"wavechase/internal/component"
	"wavechase/internal/ecs"
	"wavechase/internal/gamemap"
	"wavechase/internal/geom"
)

// MoveResult describes the outcome of a TrySteer call.
type MoveResult uint8

const (
	MoveOK      MoveResult = iota // heading updated
	MoveBlocked                   // wall, hole or out of bounds
)

// maxStep bounds one Advance so a long frame cannot skip a cell.
const maxStep = 0.5

// GateUser is told when an entity enters a locked gate. access.Registry
// satisfies it.
type GateUser interface {
	Consume(agent uuid.UUID, gate geom.Cell, now time.Duration) bool
}

// Crossing records an entity entering a door or portal during Advance.
type Crossing struct {
	ID     ecs.EntityID
	Gate   geom.Cell
	Portal bool
	To     geom.Cell // destination cell when Portal
}

// TrySteer points entity id toward d if the neighbouring cell that way is
// walkable.
func TrySteer(w *ecs.World, gmap *gamemap.GameMap, id ecs.EntityID, d geom.Dir) MoveResult {
	posComp := w.Get(id, component.CPosition)
	motComp := w.Get(id, component.CMotion)
	if posComp == nil || motComp == nil || d == geom.None {
		return MoveBlocked
	}
	n := posComp.(component.Position).Cell().Step(d)
	if !gmap.IsWalkable(n.X, n.Y) {
		return MoveBlocked
	}
	mot := motComp.(component.Motion)
	mot.Dir = d
	w.Add(id, mot)
	return MoveOK
}

// RandomWalk steers entity id like a wandering target: at each cell centre
// it keeps going or turns at random, reversing only at dead ends.
func RandomWalk(w *ecs.World, gmap *gamemap.GameMap, id ecs.EntityID, rng *rand.Rand) {
	posComp := w.Get(id, component.CPosition)
	motComp := w.Get(id, component.CMotion)
	if posComp == nil || motComp == nil {
		return
	}
	pos := posComp.(component.Position)
	mot := motComp.(component.Motion)
	cell := pos.Cell()
	ahead := cell.Step(mot.Dir)
	blocked := mot.Dir == geom.None || !gmap.IsWalkable(ahead.X, ahead.Y)
	if !blocked && pos.Vec().Dist(cell.Center()) > 0.15 {
		return
	}
	if !blocked && rng.Intn(3) > 0 {
		return
	}
	var choices []geom.Dir
	for _, d := range gmap.OpenDirs(cell) {
		if mot.Dir == geom.None || d != mot.Dir.Opposite() {
			choices = append(choices, d)
		}
	}
	if len(choices) == 0 {
		if mot.Dir == geom.None {
			return
		}
		choices = []geom.Dir{mot.Dir.Opposite()}
	}
	mot.Dir = choices[rng.Intn(len(choices))]
	w.Add(id, mot)
}

// Advance moves every entity with Position and Motion for dt seconds.
// Entities travel along lane centres and stop at the centre of a cell whose
// next cell is not walkable. Entering a gate is reported; an AI entity's
// agent is told about it and any locked-gate ticket is spent. Entering a
// paired portal teleports to its partner.
func Advance(w *ecs.World, gmap *gamemap.GameMap, gates GateUser, now time.Duration, dt float64) []Crossing {
	var crossings []Crossing
	for _, id := range w.Query(component.CPosition, component.CMotion) {
		pos := w.Get(id, component.CPosition).(component.Position)
		mot := w.Get(id, component.CMotion).(component.Motion)

		pos = slide(gmap, pos, mot.Dir, math.Min(mot.Speed*dt, maxStep))
		cell := pos.Cell()
		if cell != mot.Last && gmap.IsGate(cell.X, cell.Y) {
			cr := Crossing{ID: id, Gate: cell}
			if aiComp := w.Get(id, component.CAI); aiComp != nil {
				a := aiComp.(component.AI).Agent
				if gates != nil {
					gates.Consume(a.ID, cell, now)
				}
				a.OnGateCrossed(cell)
			}
			if to, ok := gmap.Partner(cell); ok {
				cr.Portal, cr.To = true, to
				pos = component.At(to)
				cell = to
			}
			crossings = append(crossings, cr)
		}
		mot.Last = cell
		w.Add(id, pos)
		w.Add(id, mot)
		if aiComp := w.Get(id, component.CAI); aiComp != nil {
			aiComp.(component.AI).Agent.Pos = pos.Vec()
		}
	}
	return crossings
}

// slide moves pos up to step along d. The cross axis snaps to the lane
// centre; the travel axis stops at the cell centre when the cell ahead is
// closed.
func slide(gmap *gamemap.GameMap, pos component.Position, d geom.Dir, step float64) component.Position {
	if d == geom.None || step <= 0 {
		return pos
	}
	cell := pos.Cell()
	centre := cell.Center()
	dx, dy := d.Delta()
	if dx != 0 {
		pos.Y = centre.Y
	} else {
		pos.X = centre.X
	}
	ahead := cell.Step(d)
	open := gmap.IsWalkable(ahead.X, ahead.Y)

	along := func(p component.Position) float64 { return p.X*float64(dx) + p.Y*float64(dy) }
	limit := math.Inf(1)
	if !open {
		limit = along(component.Position{X: centre.X, Y: centre.Y})
	}
	cur := along(pos)
	next := math.Min(cur+step, math.Max(cur, limit))
	delta := next - cur
	pos.X += delta * float64(dx)
	pos.Y += delta * float64(dy)
	return pos
}
