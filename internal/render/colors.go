package render

import (
	"github.com/gdamore/tcell/v2"

	"wavechase/internal/tile"
)

// ClassColors tints ASCII glyphs by tile class. Emoji carry their own
// colours and ignore it.
var ClassColors = map[tile.Class]tcell.Color{
	tile.ClassFloor:        tcell.ColorGray,
	tile.ClassWall:         tcell.ColorSaddleBrown,
	tile.ClassDoor:         tcell.ColorGold,
	tile.ClassPortal:       tcell.ColorFuchsia,
	tile.ClassBorder:       tcell.ColorSlateGray,
	tile.ClassBorderTunnel: tcell.ColorTeal,
}

// entropyRamp runs from nearly decided to wide open.
var entropyRamp = []tcell.Color{
	tcell.ColorLightGreen,
	tcell.ColorGreenYellow,
	tcell.ColorYellow,
	tcell.ColorOrange,
	tcell.ColorOrangeRed,
	tcell.ColorRed,
}

// EntropyColor picks a ramp colour for n remaining options out of max.
func EntropyColor(n, max int) tcell.Color {
	if max <= 1 || n <= 1 {
		return entropyRamp[0]
	}
	i := (n - 1) * (len(entropyRamp) - 1) / (max - 1)
	if i >= len(entropyRamp) {
		i = len(entropyRamp) - 1
	}
	return entropyRamp[i]
}

// Panic colour for an agent glyph: red when calm, shading to white at max.
func PanicColor(panic, max float64) tcell.Color {
	if max <= 0 {
		return tcell.ColorRed
	}
	f := panic / max
	switch {
	case f >= 1:
		return tcell.ColorWhite
	case f >= 0.66:
		return tcell.ColorPink
	case f >= 0.33:
		return tcell.ColorLightCoral
	}
	return tcell.ColorRed
}
