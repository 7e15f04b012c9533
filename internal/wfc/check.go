package wfc

import (
	"errors"
	"fmt"

	"wavechase/internal/geom"
	"wavechase/internal/tile"
)

// Check verifies the structural guarantees of a Result produced from cfg:
// the border ring, the class caps, pairwise adjacency and locked forced
// cells. It returns every violation found, joined.
func Check(cfg Config, res Result) error {
	var errs []error
	for _, c := range res.Cells {
		if c.Tile == nil {
			continue
		}
		ring := res.OnRing(c.X, c.Y)
		switch {
		case ring && c.Tile.Class != tile.ClassBorder && c.Tile.Class != tile.ClassBorderTunnel:
			errs = append(errs, fmt.Errorf("ring cell (%d,%d) holds %s", c.X, c.Y, c.Tile.Name))
		case !ring && c.Tile.Class == tile.ClassBorder:
			errs = append(errs, fmt.Errorf("interior cell (%d,%d) holds border %s", c.X, c.Y, c.Tile.Name))
		}
		for _, d := range []geom.Dir{geom.Right, geom.Down} {
			dx, dy := d.Delta()
			n := res.At(c.X+dx, c.Y+dy)
			if n.Tile == nil {
				continue
			}
			if !tile.Compatible(c.Tile, c.Rotation, n.Tile, n.Rotation, d) {
				errs = append(errs, fmt.Errorf("(%d,%d) %s@%d incompatible with %s@%d to the %s",
					c.X, c.Y, c.Tile.Name, c.Rotation, n.Tile.Name, n.Rotation, d))
			}
		}
	}

	limits := []struct {
		class tile.Class
		max   int
	}{
		{tile.ClassDoor, cfg.MaxDoors},
		{tile.ClassBorderTunnel, cfg.MaxBorderTunnels},
		{tile.ClassPortal, cfg.MaxPortals},
	}
	for _, l := range limits {
		if l.max < 0 {
			continue
		}
		if n := res.CountClass(l.class); n > l.max {
			errs = append(errs, fmt.Errorf("%d %s cells exceed cap %d", n, l.class, l.max))
		}
	}

	e := New(cfg)
	e.buildUniverse()
	for _, f := range e.acceptedForced() {
		if !f.LockRotation {
			continue
		}
		got := res.At(f.X, f.Y)
		if got.Tile != f.Tile || got.Rotation != geom.Mod4(f.Rotation) {
			errs = append(errs, fmt.Errorf("forced cell (%d,%d) is %s@%d, want %s@%d",
				f.X, f.Y, got.Tile, got.Rotation, f.Tile.Name, geom.Mod4(f.Rotation)))
		}
	}
	return errors.Join(errs...)
}
