package generate

import "math"

// MaxLevel is the level at which scaling stops.
const MaxLevel = 10

// LevelParams builds Params for the given level number (1-based). Grids grow
// from 21x21 to 41x41 and special counts rise with the level.
func LevelParams(level int, seed int64) Params {
	level = max(1, min(level, MaxLevel))
	t := 0.0
	if MaxLevel > 1 {
		t = float64(level-1) / float64(MaxLevel-1)
	}

	size := odd(lerpi(21, 41, t))
	doors := lerpi(2, 6, t)
	portals := 2 * lerpi(1, 2, t)
	tunnels := lerpi(1, 3, t)
	return Params{
		Width:               size,
		Height:              size,
		Seed:                seed,
		Doors:               doors,
		Portals:             portals,
		TunnelPairs:         tunnels,
		MaxDoors:            doors + lerpi(2, 6, t),
		MaxPortals:          portals,
		MaxBorderTunnels:    2 * tunnels,
		RejectHolesAttempts: 3,
	}
}

func lerpi(a, b int, t float64) int {
	return int(math.Round(float64(a) + t*float64(b-a)))
}

// odd rounds n up to the next odd number so the grid has a centre cell.
func odd(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}
