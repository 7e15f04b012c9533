// Package sim wires a generated level into a running chase: the ECS world,
// navigation graph, access registry, crowd heat and target trail, with
// agents spawned for the configured brains.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"wavechase/internal/access"
	"wavechase/internal/agent"
	"wavechase/internal/brain"
	"wavechase/internal/component"
	"wavechase/internal/ecs"
	"wavechase/internal/factory"
	"wavechase/internal/gamemap"
	"wavechase/internal/geom"
	"wavechase/internal/heat"
	"wavechase/internal/nav"
	"wavechase/internal/system"
	"wavechase/internal/target"
	"wavechase/internal/wfc"
)

// ErrNoRoom is returned when the level has too few floor cells to spawn
// the target and every agent.
var ErrNoRoom = errors.New("sim: not enough floor to spawn")

// Options configures a simulation.
type Options struct {
	Seed   int64
	Brains []string
	Agent  agent.Params
	Brain  brain.Params

	// LockGates locks every door and portal so agents need overrides.
	LockGates bool
	// Walk drives the target with a random walk instead of TrySteer.
	Walk bool

	TrailSpacing  float64
	TrailCapacity int

	Log *slog.Logger
}

// Sim is one running chase.
type Sim struct {
	World  *ecs.World
	Map    *gamemap.GameMap
	Nav    *nav.GridGraph
	Gates  *access.Registry
	Shared *heat.Shared
	Trail  *target.Trail
	Core   *agent.Core
	Target ecs.EntityID
	Agents []*agent.Agent
	Now    time.Duration
	Ticks  int

	opt Options
	rng *rand.Rand
	log *slog.Logger
}

// New builds a simulation on res.
func New(res wfc.Result, opt Options) (*Sim, error) {
	log := opt.Log
	if log == nil {
		log = slog.Default()
	}
	if opt.TrailSpacing <= 0 {
		opt.TrailSpacing = 1
	}
	if opt.TrailCapacity <= 0 {
		opt.TrailCapacity = 16
	}
	m := gamemap.FromResult(res)
	gates := access.NewRegistry(log)
	s := &Sim{
		World:  ecs.NewWorld(),
		Map:    m,
		Gates:  gates,
		Nav:    nav.NewGridGraph(m, gates, log),
		Shared: heat.NewShared(opt.Agent.Shared),
		opt:    opt,
		log:    log,
	}
	s.Trail = target.NewTrail(geom.Vec2{}, opt.TrailSpacing, opt.TrailCapacity)
	s.Core = &agent.Core{
		Map:    m,
		Nav:    s.Nav,
		Gate:   gates,
		Shared: s.Shared,
		Target: s.Trail,
		Log:    log,
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset respawns everything from the seed and clears the level services.
func (s *Sim) Reset() error {
	s.rng = rand.New(rand.NewSource(s.opt.Seed))
	s.World.Clear()
	s.Gates.Reset()
	s.Shared.Reset()
	s.Agents = s.Agents[:0]
	s.Now, s.Ticks = 0, 0
	if s.opt.LockGates {
		s.Gates.Lock(s.Map.Gates()...)
	}

	floor := s.Map.FloorCells()
	if len(floor) < len(s.opt.Brains)+1 {
		return fmt.Errorf("%w: %d cells for %d entities", ErrNoRoom, len(floor), len(s.opt.Brains)+1)
	}
	s.rng.Shuffle(len(floor), func(i, j int) { floor[i], floor[j] = floor[j], floor[i] })

	start := floor[0]
	s.Target = factory.NewTarget(s.World, start)
	s.Trail.Reset(start.Center())

	spawns := spread(floor[1:], start, len(s.opt.Brains))
	for i, kind := range s.opt.Brains {
		b, err := brain.New(kind, s.opt.Brain)
		if err != nil {
			return fmt.Errorf("sim: %w", err)
		}
		id, err := uuid.NewRandomFromReader(s.rng)
		if err != nil {
			return fmt.Errorf("sim: agent id: %w", err)
		}
		a := agent.New(id, b, spawns[i], s.opt.Agent, s.opt.Seed+int64(i)+1)
		s.Agents = append(s.Agents, a)
		factory.NewAgent(s.World, a, s.opt.Agent.Speed)
	}
	s.log.Debug("sim: spawned", "agents", len(s.Agents), "target", start, "locked", s.Gates.LockedCount())
	return nil
}

// spread picks n cells, preferring those far from the target.
func spread(cells []geom.Cell, from geom.Cell, n int) []geom.Cell {
	const minDist = 6
	var far, near []geom.Cell
	for _, c := range cells {
		if geom.Manhattan(c, from) >= minDist {
			far = append(far, c)
		} else {
			near = append(near, c)
		}
	}
	return append(far, near...)[:n]
}

// Step advances the chase by dt: agents decide, the target moves, everyone
// moves, then queued path answers are delivered for the next tick.
func (s *Sim) Step(dt time.Duration) []system.Crossing {
	system.ProcessAgents(s.World, s.Core, s.Now)
	if s.opt.Walk {
		system.RandomWalk(s.World, s.Map, s.Target, s.rng)
	}
	crossings := system.Advance(s.World, s.Map, s.Gates, s.Now, dt.Seconds())

	pos := s.TargetPos()
	teleported := false
	for _, c := range crossings {
		if c.ID == s.Target && c.Portal {
			teleported = true
		}
	}
	if teleported {
		s.Trail.Teleport(pos)
	} else {
		s.Trail.Update(pos, dt.Seconds())
	}

	s.Nav.Pump()
	s.Now += dt
	s.Ticks++
	return crossings
}

// Steer points the target toward d.
func (s *Sim) Steer(d geom.Dir) system.MoveResult {
	return system.TrySteer(s.World, s.Map, s.Target, d)
}

// TargetPos returns where the target stands.
func (s *Sim) TargetPos() geom.Vec2 {
	if p, ok := s.World.Get(s.Target, component.CPosition).(component.Position); ok {
		return p.Vec()
	}
	return geom.Vec2{}
}
