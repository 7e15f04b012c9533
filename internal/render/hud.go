package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"wavechase/assets"
	"wavechase/internal/agent"
)

// DrawHUD renders the status line, one row per agent and a hint line in
// the rows below the map.
func (r *Renderer) DrawHUD(status string, agents []*agent.Agent, hint string) {
	_, screenH := r.screen.Size()
	hudY := screenH - HUDRows

	r.drawHLine(hudY, tcell.ColorGray)
	r.drawText(0, hudY+1, status, tcell.StyleDefault.Foreground(tcell.ColorWhite))

	// Two agents per row keeps four brains inside the reserved rows.
	for i, a := range agents {
		row, col := hudY+2+i/2, (i%2)*40
		if row >= screenH-1 {
			break
		}
		def := assets.BrainByID(a.Brain.Name())
		line := fmt.Sprintf("%-9s %-8s panic %5.1f", def.Name, a.State, a.Panic)
		if a.Ghost {
			line += " ghost"
		}
		style := tcell.StyleDefault.Foreground(PanicColor(a.Panic, a.Params().PanicMax))
		r.drawText(col, row, line, style)
	}

	r.drawText(0, screenH-1, hint, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
}

func (r *Renderer) drawHLine(y int, color tcell.Color) {
	w, _ := r.screen.Size()
	style := tcell.StyleDefault.Foreground(color)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, '─', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col++
	}
}
