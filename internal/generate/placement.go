// Package generate turns a level description into a wfc.Config: it picks
// the sites of doors, portals and border tunnels, scales grid size by level
// and retries seeds whose solve leaves holes.
package generate

import (
	"log/slog"
	"math/rand"
	"sort"

	"wavechase/internal/geom"
	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

// Params describes one level before solving.
type Params struct {
	Width, Height int
	Seed          int64

	// Forced special sites.
	Doors       int
	Portals     int
	TunnelPairs int

	// Solver caps; the solver may add unforced doors up to MaxDoors.
	MaxDoors         int
	MaxPortals       int
	MaxBorderTunnels int

	// Anchor is where agents spawn. Doors and portals lean away from it.
	// The zero value means the grid centre.
	Anchor geom.Cell

	RejectHolesAttempts int
}

const (
	placementSalt int64 = 0x5eed_ca11
	saltTunnel          = 0x7a11
	saltDoor            = 0xd007
	saltPortal          = 0x9047
)

// Config builds the solver configuration for p from the catalog.
func (p Params) Config(cat *tile.Catalog, log *slog.Logger) wfc.Config {
	rng := rand.New(rand.NewSource(p.Seed ^ placementSalt))
	var fallback *tile.Kind
	if floors := cat.ByClass(tile.ClassFloor); len(floors) > 0 {
		fallback = floors[0]
	}
	return wfc.Config{
		Width:              p.Width,
		Height:             p.Height,
		Seed:               p.Seed,
		Tiles:              cat.Interior(),
		BorderTiles:        cat.ByClass(tile.ClassBorder),
		BorderTunnelTiles:  cat.ByClass(tile.ClassBorderTunnel),
		Fallback:           fallback,
		Forced:             PlaceSpecials(p, cat, rng),
		AllowBorderTunnels: p.TunnelPairs > 0,
		MaxDoors:           p.MaxDoors,
		MaxPortals:         p.MaxPortals,
		MaxBorderTunnels:   p.MaxBorderTunnels,
		Logger:             log,
	}
}

type site struct {
	at    geom.Cell
	score float64
}

// PlaceSpecials picks forced cells for border tunnel pairs, doors and
// portals. Every accepted site keeps a Chebyshev distance of at least two
// from every other, so no two specials touch, not even diagonally. Doors and
// portals stay off the cells next to the ring. Requested counts are clamped
// to non-negative caps.
func PlaceSpecials(p Params, cat *tile.Catalog, rng *rand.Rand) []wfc.ForcedCell {
	var forced []wfc.ForcedCell
	var taken []geom.Cell
	spaced := func(c geom.Cell) bool {
		for _, o := range taken {
			if geom.Chebyshev(c, o) < 2 {
				return false
			}
		}
		return true
	}

	if k := first(cat, tile.ClassBorderTunnel); k != nil {
		limit := p.MaxBorderTunnels
		if limit > 0 {
			limit /= 2
		}
		pairs := clamp(p.TunnelPairs, limit)
		for _, s := range tunnelRows(p, rng) {
			if pairs == 0 {
				break
			}
			a, b := s.at, geom.Cell{X: p.Width - 1, Y: s.at.Y}
			if !spaced(a) || !spaced(b) {
				continue
			}
			taken = append(taken, a, b)
			forced = append(forced,
				wfc.ForcedCell{X: a.X, Y: a.Y, Tile: k, SkipSpawn: true},
				wfc.ForcedCell{X: b.X, Y: b.Y, Tile: k, SkipSpawn: true})
			pairs--
		}
		// Not enough symmetric rows: place the rest one at a time anywhere
		// on the ring away from the corners.
		left := 2 * pairs
		for _, s := range ringSites(p, rng) {
			if left == 0 {
				break
			}
			if !spaced(s.at) {
				continue
			}
			taken = append(taken, s.at)
			forced = append(forced, wfc.ForcedCell{X: s.at.X, Y: s.at.Y, Tile: k, SkipSpawn: true})
			left--
		}
	}

	interior := interiorSites(p, rng)
	pick := func(k *tile.Kind, n int, salt uint64, lock bool) {
		if k == nil || n <= 0 {
			return
		}
		ranked := rank(interior, p, salt)
		for _, s := range ranked {
			if n == 0 {
				return
			}
			if !spaced(s.at) {
				continue
			}
			taken = append(taken, s.at)
			forced = append(forced, wfc.ForcedCell{
				X: s.at.X, Y: s.at.Y, Tile: k, SkipSpawn: true, LockRotation: lock,
			})
			n--
		}
	}
	pick(first(cat, tile.ClassDoor), clamp(p.Doors, p.MaxDoors), saltDoor, false)
	pick(first(cat, tile.ClassPortal), clamp(p.Portals, p.MaxPortals), saltPortal, true)
	return forced
}

// tunnelRows ranks the rows of the left edge, preferring the middle of the
// edge over the corners.
func tunnelRows(p Params, rng *rand.Rand) []site {
	var sites []site
	half := float64(p.Height) / 2
	for y := 2; y <= p.Height-3; y++ {
		off := float64(y) + 0.5 - half
		if off < 0 {
			off = -off
		}
		bias := 0.5 * (1 - off/half)
		sites = append(sites, site{
			at:    geom.Cell{X: 0, Y: y},
			score: siteNoise(p.Seed, 0, y, saltTunnel) + bias,
		})
	}
	rng.Shuffle(len(sites), func(i, j int) { sites[i], sites[j] = sites[j], sites[i] })
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].score > sites[j].score })
	return sites
}

// ringSites ranks ring cells at least two away from every corner.
func ringSites(p Params, rng *rand.Rand) []site {
	var sites []site
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			onRing := x == 0 || y == 0 || x == p.Width-1 || y == p.Height-1
			nearCorner := (x < 2 || x > p.Width-3) && (y < 2 || y > p.Height-3)
			if !onRing || nearCorner {
				continue
			}
			sites = append(sites, site{at: geom.Cell{X: x, Y: y}, score: siteNoise(p.Seed, x, y, saltTunnel)})
		}
	}
	rng.Shuffle(len(sites), func(i, j int) { sites[i], sites[j] = sites[j], sites[i] })
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].score > sites[j].score })
	return sites
}

// interiorSites lists cells at least two away from the ring, shuffled.
func interiorSites(p Params, rng *rand.Rand) []geom.Cell {
	var out []geom.Cell
	for y := 2; y <= p.Height-3; y++ {
		for x := 2; x <= p.Width-3; x++ {
			out = append(out, geom.Cell{X: x, Y: y})
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// rank scores interior cells by noise plus distance from the anchor.
func rank(cells []geom.Cell, p Params, salt uint64) []site {
	anchor := p.Anchor
	if anchor == (geom.Cell{}) {
		anchor = geom.Cell{X: p.Width / 2, Y: p.Height / 2}
	}
	span := float64(p.Width + p.Height)
	sites := make([]site, len(cells))
	for i, c := range cells {
		sites[i] = site{
			at:    c,
			score: siteNoise(p.Seed, c.X, c.Y, salt) + 0.5*float64(geom.Manhattan(c, anchor))/span,
		}
	}
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].score > sites[j].score })
	return sites
}

// siteNoise is a splitmix64 hash of (seed, x, y, salt) scaled to [0, 1).
func siteNoise(seed int64, x, y int, salt uint64) float64 {
	z := uint64(seed) ^ salt ^ uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xC2B2AE3D27D4EB4F
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return float64(z>>11) / (1 << 53)
}

func first(cat *tile.Catalog, cl tile.Class) *tile.Kind {
	if ks := cat.ByClass(cl); len(ks) > 0 {
		return ks[0]
	}
	return nil
}

// clamp limits n to limit; a negative limit means unlimited.
func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if limit >= 0 && n > limit {
		return limit
	}
	return n
}
