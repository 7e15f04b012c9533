package assets

import (
	_ "embed"
	"strings"
)

// Emoji constants used as entity glyphs.
const (
	GlyphTarget  = "🧙"
	GlyphPursuer = "👻"
	GlyphWander  = "🦀"
	GlyphAmbush  = "🐉"
	GlyphFlee    = "🐇"
	GlyphPanic   = "😱"
)

// DefaultTiles is the YAML tile catalog used when no custom catalog is set.
//
//go:embed tiles.yaml
var DefaultTiles []byte

// BrainDef describes how one strategy variant is presented in the viewer.
type BrainDef struct {
	ID    string
	Name  string
	Emoji string
	Lore  string // one-liner shown in the legend
}

// Brains is the ordered list of strategy variants the viewer knows about.
var Brains = []BrainDef{
	{
		ID:    "pursuit",
		Name:  "Tracker",
		Emoji: GlyphPursuer,
		Lore:  "Follows the scent when the target is out of reach",
	},
	{
		ID:    "wander",
		Name:  "Drifter",
		Emoji: GlyphWander,
		Lore:  "Circles nearby, then guesses where you are heading",
	},
	{
		ID:    "ambush",
		Name:  "Lurker",
		Emoji: GlyphAmbush,
		Lore:  "Waits beside your path and strikes when you pass",
	},
	{
		ID:    "flee",
		Name:  "Skittish",
		Emoji: GlyphFlee,
		Lore:  "Keeps its distance, until it is cornered",
	},
}

// BrainByID returns the presentation for a strategy id, falling back to the
// pursuit entry for unknown ids.
func BrainByID(id string) BrainDef {
	for _, b := range Brains {
		if strings.EqualFold(b.ID, id) {
			return b
		}
	}
	return Brains[0]
}
