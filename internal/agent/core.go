package agent

import (
	"log/slog"
	"math"
	"time"

	"wavechase/internal/access"
	"wavechase/internal/brain"
	"wavechase/internal/gamemap"
	"wavechase/internal/geom"
	"wavechase/internal/heat"
	"wavechase/internal/nav"
	"wavechase/internal/target"
)

// exploreMinDist keeps the post-panic exploration goal away from the goal
// the agent was beelining to.
const exploreMinDist = 3

// Core holds the collaborators every agent of a level shares. Any of Nav,
// Gate, Shared and Target may be nil; the agent then steers on local
// heuristics alone.
type Core struct {
	Map    *gamemap.GameMap
	Nav    nav.Graph
	Gate   access.Gate
	Shared *heat.Shared
	Target target.Tracker
	Log    *slog.Logger
}

func (c *Core) log() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

// Tick runs one decision step for a at simulation time now and returns the
// direction the agent should travel. occupants is every active agent,
// including a, as seen by the crowd map.
func (c *Core) Tick(a *Agent, now time.Duration, occupants []heat.Occupant) geom.Dir {
	dt := 0.0
	if a.ticked {
		dt = (now - a.lastTick).Seconds()
	}
	a.ticked, a.lastTick = true, now

	if a.crossed {
		a.crossed = false
		if a.State == Panicked {
			c.leavePanic(a, now)
		}
	}
	c.applyReplies(a, now)
	c.checkTimeout(a, now)

	if c.Shared != nil {
		c.Shared.Update(now, a.ID, occupants)
	}

	cell := a.Cell()
	loop := false
	if cell != a.lastCell {
		loop = a.heat.Visit(cell)
		a.lastCell = cell
		a.space = -1
	}
	if !a.stillSet || a.Pos.Dist(a.stillPos) > a.p.StuckEpsilon {
		a.stillPos, a.stillSince, a.stillSet = a.Pos, now, true
	}
	a.stuck = now-a.stillSince >= a.p.StuckTimeout

	a.Dest = c.goal(a, now)
	c.updatePanic(a, now, dt, cell, loop)
	c.trackProgress(a, now)
	c.requestPath(a, now, cell)

	if c.atDecisionPoint(a, cell, now) {
		a.Dir = c.chooseDir(a, cell, now)
		a.decided, a.hasDecide = cell, true
		a.Stats.Decisions++
	}
	return a.Dir
}

// goal returns the exploration destination while one is active, otherwise
// whatever the brain asks for.
func (c *Core) goal(a *Agent, now time.Duration) geom.Vec2 {
	if a.exploring {
		if now < a.exploreUntil && a.Pos.Dist(a.explore) > a.p.ArriveRadius {
			return a.explore
		}
		a.exploring = false
	}
	t := c.snapshot()
	switch b := a.Brain.(type) {
	case *brain.Pursuit:
		return b.Goal(a.Pos, t)
	case *brain.WanderPredict:
		var reach brain.Reacher
		if c.Nav != nil {
			reach = c.Nav
		}
		return b.Goal(now, a.Pos, t, a.rng, reach)
	case *brain.Ambush:
		return b.Goal(now, a.Pos, t, a.rng)
	case *brain.Flee:
		return b.Goal(now, a.Pos, t)
	}
	return t.Pos
}

func (c *Core) snapshot() brain.Target {
	if c.Target == nil {
		return brain.Target{}
	}
	return brain.Target{
		Pos:         c.Target.GetPosition(),
		Vel:         c.Target.GetVelocity(),
		Breadcrumbs: c.Target.GetBreadcrumbs(),
	}
}

// chasing reports whether path advice should be followed aggressively.
func (c *Core) chasing(a *Agent) bool {
	if a.State == Panicked {
		return true
	}
	return !a.exploring && a.Brain != nil && a.Brain.Mode() == brain.Chase
}

func (c *Core) updatePanic(a *Agent, now time.Duration, dt float64, cell geom.Cell, loop bool) {
	if a.State == Panicked {
		return
	}
	if now < a.cooldownUntil {
		a.Panic = math.Max(0, a.Panic-a.p.PanicDecay*dt)
		return
	}
	rate := a.p.PanicRate
	if thr := a.p.CrampedThreshold; thr > 0 {
		if space := c.reachableSpace(a, cell); space < thr {
			rate += a.p.CrampedRate * float64(thr-space) / float64(thr)
		}
	}
	if a.stuck {
		rate += a.p.StuckRate
	}
	a.Panic += rate * dt
	if loop {
		a.Panic += a.p.LoopBonus
	}
	if a.Panic >= a.p.PanicMax {
		a.Panic = a.p.PanicMax
		a.State = Panicked
		a.Ghost = a.p.EnableGhostOnPanic
		a.Stats.PanicEntries++
		c.log().Debug("agent: panic", "agent", a.ID, "cell", cell, "ghost", a.Ghost)
	}
}

// leavePanic ends panic after a gate crossing: the override is dropped, a
// cooldown starts and the agent heads somewhere new instead of resuming its
// beeline.
func (c *Core) leavePanic(a *Agent, now time.Duration) {
	a.State = Normal
	a.Panic = 0
	a.Ghost = false
	a.Armed = false
	a.cooldownUntil = now + a.p.PanicCooldown
	a.Stats.PanicExits++

	a.clearPath()
	a.pathSeq++
	a.pending = false
	a.requested = false
	a.bestDist = math.Inf(1)
	a.bestAt = now

	if dest, ok := c.exploreDest(a); ok {
		a.explore, a.exploring = dest, true
		a.exploreUntil = now + a.p.ProgressTimeout
	}
	c.log().Debug("agent: panic cleared", "agent", a.ID, "exploring", a.exploring)
}

// exploreDest picks a random reachable floor cell away from both the agent
// and its previous destination.
func (c *Core) exploreDest(a *Agent) (geom.Vec2, bool) {
	if c.Map == nil {
		return geom.Vec2{}, false
	}
	here := a.Cell()
	prev := a.Dest.Cell()
	var picks []geom.Cell
	for _, f := range c.Map.FloorCells() {
		if geom.Manhattan(f, here) < exploreMinDist || geom.Manhattan(f, prev) < exploreMinDist {
			continue
		}
		if c.Nav != nil && !c.Nav.IsReachable(a.Pos, f.Center()) {
			continue
		}
		picks = append(picks, f)
	}
	if len(picks) == 0 {
		return geom.Vec2{}, false
	}
	return picks[a.rng.Intn(len(picks))].Center(), true
}

// trackProgress arms the override when the best distance to the current
// destination has not improved by ProgressSlack within ProgressTimeout, or
// when the last path request found nothing.
func (c *Core) trackProgress(a *Agent, now time.Duration) {
	if a.Dest.Dist(a.bestDest) > 2 {
		a.bestDest = a.Dest
		a.bestDist = math.Inf(1)
		a.bestAt = now
	}
	d := a.Pos.Dist(a.Dest)
	if d < a.bestDist-a.p.ProgressSlack || math.IsInf(a.bestDist, 1) {
		improved := !math.IsInf(a.bestDist, 1)
		a.bestDist, a.bestAt = d, now
		if improved && !a.noPath {
			a.Armed = false
		}
	}
	if a.noPath || now-a.bestAt >= a.p.ProgressTimeout {
		if !a.Armed {
			c.log().Debug("agent: override armed", "agent", a.ID, "no_path", a.noPath)
		}
		a.Armed = true
	}
}

// requestPath issues a new request when none is in flight and the current
// advice is missing or older than RepathInterval.
func (c *Core) requestPath(a *Agent, now time.Duration, cell geom.Cell) {
	if c.Nav == nil || a.pending {
		return
	}
	if a.requested && now-a.lastRequest < a.p.RepathInterval {
		return
	}
	allowance := 0
	if a.Armed {
		allowance = a.p.MaxGateCrossings
	}
	if a.State == Panicked && allowance < 1 {
		allowance = 1
	}
	req := nav.Request{
		Agent:         a.ID,
		Start:         a.Pos,
		Goal:          a.Dest,
		Blocked:       c.blockedEdges(a, cell),
		GateAllowance: allowance,
		Now:           now,
	}
	a.pathSeq++
	seq := a.pathSeq
	a.pending, a.pendingSince = true, now
	a.requested, a.lastRequest = true, now
	c.Nav.FindPath(req, func(res nav.Result) {
		a.inbox = append(a.inbox, reply{seq: seq, res: res})
	})
}

// applyReplies takes the answer to the request in flight. Answers to
// superseded requests are dropped.
func (c *Core) applyReplies(a *Agent, now time.Duration) {
	for _, r := range a.inbox {
		if !a.pending || r.seq != a.pathSeq {
			continue
		}
		a.pending = false
		if r.res.Err != nil || len(r.res.Path) == 0 {
			a.clearPath()
			a.noPath = true
			a.Stats.PathFailures++
			c.log().Debug("agent: path failed", "agent", a.ID, "err", r.res.Err)
			continue
		}
		a.path, a.hasPath = r.res, true
		a.noPath = false
		if c.Gate == nil {
			continue
		}
		for _, g := range r.res.Gates {
			c.Gate.GrantOverrideTicket(a.ID, g, a.p.TicketLifetime, 1, now)
			a.Stats.Overrides++
		}
	}
	a.inbox = a.inbox[:0]
}

// checkTimeout abandons a request whose answer is overdue. Steering carries
// on without advice and the next tick may ask again.
func (c *Core) checkTimeout(a *Agent, now time.Duration) {
	if !a.pending || now-a.pendingSince < a.p.PathTimeout {
		return
	}
	a.pending = false
	a.pathSeq++
	a.clearPath()
	a.Stats.Timeouts++
	c.log().Debug("agent: path request abandoned", "agent", a.ID, "err", nav.ErrTimeout)
}
