package component

import "wavechase/internal/ecs"

const CTagPlayer ecs.ComponentType = 8

// TagPlayer marks the hunted entity the keyboard or the scripted walk
// drives.
type TagPlayer struct{}

func (TagPlayer) Type() ecs.ComponentType { return CTagPlayer }
