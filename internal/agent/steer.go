package agent

import (
	"time"

	"github.com/zyedidia/generic/mapset"

	"wavechase/internal/geom"
	"wavechase/internal/nav"
)

// atDecisionPoint reports whether a may change direction this tick: once
// per cell near its centre, or whenever it has no heading or its heading
// runs into something.
func (c *Core) atDecisionPoint(a *Agent, cell geom.Cell, now time.Duration) bool {
	if a.Dir == geom.None || a.stuck {
		return true
	}
	if !c.passable(a, cell.Step(a.Dir), now) {
		return true
	}
	if a.hasDecide && a.decided == cell {
		return false
	}
	return a.Pos.Dist(cell.Center()) <= a.p.DecisionEpsilon
}

// passable is the local collision probe. Ghosts walk through any gate;
// everyone else needs access.
func (c *Core) passable(a *Agent, n geom.Cell, now time.Duration) bool {
	if c.Map == nil || !c.Map.IsWalkable(n.X, n.Y) {
		return false
	}
	if !c.Map.IsGate(n.X, n.Y) || a.Ghost || c.Gate == nil {
		return true
	}
	return c.Gate.HasAccess(a.ID, n, now)
}

// chooseDir scores the open directions out of cell and returns the best.
// With a single exit the exit is taken unconditionally.
func (c *Core) chooseDir(a *Agent, cell geom.Cell, now time.Duration) geom.Dir {
	var open []geom.Dir
	for _, d := range geom.Cardinals {
		if c.passable(a, cell.Step(d), now) {
			open = append(open, d)
		}
	}
	switch len(open) {
	case 0:
		return geom.None
	case 1:
		return open[0]
	}

	// Saturated and crowd-blocked cells are excluded outright unless that
	// leaves nothing.
	cands := make([]geom.Dir, 0, len(open))
	for _, d := range open {
		n := cell.Step(d)
		if a.heat.Saturated(n) {
			continue
		}
		if !a.Ghost && c.Shared != nil && c.Shared.Blocked(n) {
			continue
		}
		cands = append(cands, d)
	}
	if len(cands) == 0 {
		cands = open
	}

	advice := geom.None
	if a.hasPath {
		advice = a.path.Next(cell)
	}
	pathBonus := a.p.PathBonusPatrol
	if c.chasing(a) {
		pathBonus = a.p.PathBonusChase
	}
	march := c.march(a, cands)
	reverseOK := a.stuck || a.State == Panicked

	best, bestScore := geom.None, 0.0
	for _, d := range cands {
		n := cell.Step(d)
		s := a.p.BaseScore
		if d == advice {
			s += pathBonus
		}
		if d == march {
			s += a.p.MarchBonus
		}
		if len(open) >= 3 && a.Dir != geom.None && d != a.Dir && d != a.Dir.Opposite() {
			s += a.p.JunctionBonus
		}
		s -= a.heat.Heat(n) * a.p.HeatWeight
		if c.Shared != nil {
			s -= c.Shared.Heat(n) * a.p.SharedWeight
		}
		if a.Dir != geom.None && d == a.Dir.Opposite() && !reverseOK {
			s -= a.p.ReversePenalty
		}
		s += a.rng.Float64() * a.p.Jitter
		if best == geom.None || s > bestScore {
			best, bestScore = d, s
		}
	}
	return best
}

// march is the wall follower: turn left when possible, else straight, else
// right, else back. Without a heading it picks the direction that closes
// on the destination fastest.
func (c *Core) march(a *Agent, cands []geom.Dir) geom.Dir {
	has := func(d geom.Dir) bool {
		for _, o := range cands {
			if o == d {
				return true
			}
		}
		return false
	}
	if a.Dir == geom.None {
		want := a.Dest.Sub(a.Pos)
		best, bestDot := geom.None, 0.0
		for _, d := range cands {
			v := d.Vec()
			if dot := v.X*want.X + v.Y*want.Y; best == geom.None || dot > bestDot {
				best, bestDot = d, dot
			}
		}
		return best
	}
	for _, d := range []geom.Dir{a.Dir.Left(), a.Dir, a.Dir.Right(), a.Dir.Opposite()} {
		if has(d) {
			return d
		}
	}
	return geom.None
}

// reachableSpace estimates the free floor around cell with a BFS capped at
// CrampedNodeCap nodes. The estimate is cached until the agent changes cell.
func (c *Core) reachableSpace(a *Agent, cell geom.Cell) int {
	if a.space >= 0 {
		return a.space
	}
	limit := a.p.CrampedNodeCap
	if limit <= 0 {
		limit = a.p.CrampedThreshold
	}
	seen := mapset.New[geom.Cell]()
	seen.Put(cell)
	queue := []geom.Cell{cell}
	for len(queue) > 0 && seen.Size() < limit {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range geom.Cardinals {
			n := cur.Step(d)
			if seen.Has(n) || c.Map == nil || !c.Map.IsWalkable(n.X, n.Y) {
				continue
			}
			seen.Put(n)
			queue = append(queue, n)
			if seen.Size() >= limit {
				break
			}
		}
	}
	a.space = seen.Size()
	return a.space
}

// blockedEdges closes the edges from cell into neighbours the agent has
// saturated.
func (c *Core) blockedEdges(a *Agent, cell geom.Cell) mapset.Set[nav.Edge] {
	blocked := mapset.New[nav.Edge]()
	for _, d := range geom.Cardinals {
		n := cell.Step(d)
		if a.heat.Saturated(n) {
			blocked.Put(nav.Edge{From: cell, To: n})
		}
	}
	return blocked
}
