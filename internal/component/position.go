// Package component holds the data attached to simulation entities.
package component

import (
	"wavechase/internal/ecs"
	"wavechase/internal/geom"
)

const (
	CPosition ecs.ComponentType = 1
	CMotion   ecs.ComponentType = 2
)

// Position is a world point; one unit is one cell.
type Position struct {
	X, Y float64
}

func (Position) Type() ecs.ComponentType { return CPosition }

// At returns the Position at the centre of c.
func At(c geom.Cell) Position {
	v := c.Center()
	return Position{X: v.X, Y: v.Y}
}

func (p Position) Vec() geom.Vec2  { return geom.Vec2{X: p.X, Y: p.Y} }
func (p Position) Cell() geom.Cell { return p.Vec().Cell() }

// Motion is continuous grid movement: Speed cells per second along Dir.
// Last is the cell the entity occupied after the previous move, used to
// detect entering a door or portal.
type Motion struct {
	Dir   geom.Dir
	Speed float64
	Last  geom.Cell
}

func (Motion) Type() ecs.ComponentType { return CMotion }
