// Package factory assembles simulation entities from their parts.
package factory

import (
	"wavechase/assets"
	"wavechase/internal/agent"
	"wavechase/internal/component"
	"wavechase/internal/ecs"
	"wavechase/internal/geom"

	"github.com/gdamore/tcell/v2"
)

// Target speed in cells per second.
const TargetSpeed = 3.5

// NewTarget creates the hunted entity standing on the centre of c.
func NewTarget(w *ecs.World, c geom.Cell) ecs.EntityID {
	id := w.CreateEntity()
	w.Add(id, component.At(c))
	w.Add(id, component.Motion{Speed: TargetSpeed, Last: c})
	w.Add(id, component.Renderable{
		Glyph:       assets.GlyphTarget,
		ASCII:       '@',
		FGColor:     tcell.ColorYellow,
		RenderOrder: 10,
	})
	w.Add(id, component.TagPlayer{})
	return id
}

// NewAgent creates a pursuer entity driven by a. The entity starts where
// the agent stands.
func NewAgent(w *ecs.World, a *agent.Agent, speed float64) ecs.EntityID {
	def := assets.BrainByID(a.Brain.Name())
	id := w.CreateEntity()
	w.Add(id, component.Position{X: a.Pos.X, Y: a.Pos.Y})
	w.Add(id, component.Motion{Speed: speed, Last: a.Cell()})
	w.Add(id, component.Renderable{
		Glyph:       def.Emoji,
		ASCII:       rune(def.ID[0]),
		FGColor:     tcell.ColorRed,
		RenderOrder: 5,
	})
	w.Add(id, component.AI{Agent: a})
	return id
}
