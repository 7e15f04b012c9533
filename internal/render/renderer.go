// Package render draws levels and the chase onto a tcell screen. It stands
// in for the renderer collaborator: DrawResult takes a finished grid and
// DrawEngine shows one still being solved.
package render

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"wavechase/assets"
	"wavechase/internal/agent"
	"wavechase/internal/component"
	"wavechase/internal/ecs"
	"wavechase/internal/gamemap"
	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

// HUDRows is the number of rows reserved at the bottom of the screen.
const HUDRows = 6

// Renderer draws onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	camera *Camera
	ascii  bool
}

// NewRenderer creates a Renderer for screen. With ascii set, tiles use their
// ASCII rune instead of the emoji glyph.
func NewRenderer(screen tcell.Screen, ascii bool) *Renderer {
	w, h := screen.Size()
	return &Renderer{
		screen: screen,
		camera: NewCamera(0, 0, w, max(1, h-HUDRows)),
		ascii:  ascii,
	}
}

// ToggleASCII switches between emoji and ASCII tiles.
func (r *Renderer) ToggleASCII() { r.ascii = !r.ascii }

// Fit resizes the view to the screen and frames a w x h map.
func (r *Renderer) Fit(w, h int) {
	sw, sh := r.screen.Size()
	r.camera.Resize(sw, max(1, sh-HUDRows))
	r.camera.Fit(w, h)
}

// Clear blanks the screen.
func (r *Renderer) Clear() { r.screen.Clear() }

// Show flushes the frame.
func (r *Renderer) Show() { r.screen.Show() }

// DrawEngine draws a grid mid-solve: collapsed cells show their tile, the
// rest show how many options remain.
func (r *Renderer) DrawEngine(e *wfc.Engine) {
	res := e.BuildResult()
	widest := 1
	for y := 0; y < e.Height(); y++ {
		for x := 0; x < e.Width(); x++ {
			widest = max(widest, e.OptionCount(x, y))
		}
	}
	for y := 0; y < e.Height(); y++ {
		for x := 0; x < e.Width(); x++ {
			sx, sy, ok := r.camera.WorldToScreen(x, y)
			if !ok {
				continue
			}
			if e.Collapsed(x, y) {
				c := res.At(x, y)
				r.drawTile(sx, sy, gamemap.MakeTile(c.Tile, c.Rotation))
				continue
			}
			n := e.OptionCount(x, y)
			label := "··"
			if n > 0 {
				label = strconv.Itoa(min(n, 99))
			}
			style := tcell.StyleDefault.Foreground(EntropyColor(n, widest)).Background(tcell.ColorBlack)
			r.drawText(sx, sy, fmt.Sprintf("%2s", label), style)
		}
	}
}

// DrawResult draws a finished grid.
func (r *Renderer) DrawResult(res wfc.Result) {
	for _, c := range res.Cells {
		if sx, sy, ok := r.camera.WorldToScreen(c.X, c.Y); ok {
			r.drawTile(sx, sy, gamemap.MakeTile(c.Tile, c.Rotation))
		}
	}
}

// DrawMap draws the runtime map.
func (r *Renderer) DrawMap(m *gamemap.GameMap) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if sx, sy, ok := r.camera.WorldToScreen(x, y); ok {
				r.drawTile(sx, sy, *m.At(x, y))
			}
		}
	}
}

func (r *Renderer) drawTile(sx, sy int, t gamemap.Tile) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack)
	if t.Empty {
		r.drawText(sx, sy, "  ", style)
		return
	}
	if r.ascii || t.Glyph == "" {
		style = style.Foreground(ClassColors[t.Class])
		glyph := string(t.ASCII)
		if t.Class == tile.ClassDoor || t.Class == tile.ClassBorderTunnel {
			// Show the door's axis.
			if t.Rotation%2 == 1 {
				glyph = "|"
			} else if t.Class == tile.ClassDoor {
				glyph = "-"
			}
		}
		r.drawText(sx, sy, glyph+" ", style)
		return
	}
	r.putGlyph(sx, sy, t.Glyph, style)
}

// renderableEntity holds sorting info for entity rendering.
type renderableEntity struct {
	order int
	x, y  int
	rend  component.Renderable
	color tcell.Color
}

// agentGlyph picks the emoji for e, swapping in the panic face for panicked agents.
func agentGlyph(rend component.Renderable, a *agent.Agent) string {
	if a != nil && a.State == agent.Panicked {
		return assets.GlyphPanic
	}
	return rend.Glyph
}

// DrawEntities draws every entity with Renderable and Position, ordered
// by RenderOrder. Agents are tinted by panic.
func (r *Renderer) DrawEntities(w *ecs.World, panicMax float64) {
	ids := w.Query(component.CRenderable, component.CPosition)
	entities := make([]renderableEntity, 0, len(ids))
	for _, id := range ids {
		pos := w.Get(id, component.CPosition).(component.Position)
		rend := w.Get(id, component.CRenderable).(component.Renderable)
		c := pos.Cell()
		e := renderableEntity{order: rend.RenderOrder, x: c.X, y: c.Y, rend: rend, color: rend.FGColor}
		if ai, ok := w.Get(id, component.CAI).(component.AI); ok {
			e.color = PanicColor(ai.Agent.Panic, panicMax)
			e.rend.Glyph = agentGlyph(rend, ai.Agent)
		}
		entities = append(entities, e)
	}

	// Lower orders draw first, behind.
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].order < entities[j].order
	})

	for _, e := range entities {
		sx, sy, ok := r.camera.WorldToScreen(e.x, e.y)
		if !ok {
			continue
		}
		style := tcell.StyleDefault.Foreground(e.color).Background(tcell.ColorBlack)
		if r.ascii {
			r.drawText(sx, sy, string(e.rend.ASCII)+" ", style.Bold(true))
			continue
		}
		r.putGlyph(sx, sy, e.rend.Glyph, style)
	}
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at screen position (x, y).
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	r.screen.SetContent(x, y, runes[0], combc, style)
	if runewidth.StringWidth(glyph) < 2 {
		// Narrow glyphs leave the second column to pad.
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}
