package game

import (
	"github.com/gdamore/tcell/v2"

	"wavechase/internal/geom"
)

// Action represents a viewer command.
type Action uint8

const (
	ActionNone Action = iota
	ActionSteerN
	ActionSteerS
	ActionSteerE
	ActionSteerW
	ActionPause
	ActionStep
	ActionReseed
	ActionNextLevel
	ActionPrevLevel
	ActionToggleASCII
	ActionQuit
)

// keyToAction maps a tcell key event to a viewer action.
func keyToAction(ev *tcell.EventKey) Action {
	// Named keys.
	switch ev.Key() {
	case tcell.KeyUp:
		return ActionSteerN
	case tcell.KeyDown:
		return ActionSteerS
	case tcell.KeyRight:
		return ActionSteerE
	case tcell.KeyLeft:
		return ActionSteerW
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	}

	// Rune keys.
	switch ev.Rune() {
	case 'k', 'K':
		return ActionSteerN
	case 'j', 'J':
		return ActionSteerS
	case 'l', 'L':
		return ActionSteerE
	case 'h', 'H':
		return ActionSteerW
	case ' ':
		return ActionPause
	case 'n', 'N', '.':
		return ActionStep
	case 'r', 'R':
		return ActionReseed
	case '>', ']':
		return ActionNextLevel
	case '<', '[':
		return ActionPrevLevel
	case 'a', 'A':
		return ActionToggleASCII
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}

// actionToDir converts a steering action to a heading.
func actionToDir(a Action) geom.Dir {
	switch a {
	case ActionSteerN:
		return geom.Up
	case ActionSteerS:
		return geom.Down
	case ActionSteerE:
		return geom.Right
	case ActionSteerW:
		return geom.Left
	}
	return geom.None
}
