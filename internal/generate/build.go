package generate

import (
	"log/slog"

	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

// Build solves p, retrying with Seed+1, Seed+2, ... while the result has
// holes and RejectHolesAttempts allows. The last attempt is returned even if
// it still has holes, together with the Config that produced it.
func Build(p Params, cat *tile.Catalog, log *slog.Logger) (wfc.Result, wfc.Config) {
	if log == nil {
		log = slog.Default()
	}
	attempts := max(1, p.RejectHolesAttempts)

	var res wfc.Result
	var cfg wfc.Config
	for a := 0; a < attempts; a++ {
		q := p
		q.Seed = p.Seed + int64(a)
		cfg = q.Config(cat, log)
		res = wfc.Generate(cfg)
		holes := res.Holes()
		if holes == 0 {
			break
		}
		log.Debug("generate: rejected seed", "seed", q.Seed, "holes", holes, "attempt", a+1)
	}
	log.Debug("generate: level built",
		"seed", cfg.Seed, "width", res.Width, "height", res.Height,
		"doors", res.CountClass(tile.ClassDoor), "portals", res.CountClass(tile.ClassPortal))
	return res, cfg
}
