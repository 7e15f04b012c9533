// Package agent is the per-agent decision core. Every tick it asks the
// agent's brain for a destination, keeps the panic state machine and the
// door override up to date, manages one asynchronous path request at a time
// and commits a cardinal direction when the agent reaches a decision point.
package agent

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"wavechase/internal/brain"
	"wavechase/internal/geom"
	"wavechase/internal/heat"
	"wavechase/internal/nav"
)

// State is the panic state machine.
type State uint8

const (
	Normal State = iota
	Panicked
)

func (s State) String() string {
	if s == Panicked {
		return "panic"
	}
	return "normal"
}

// Stats counts decision core events for tooling.
type Stats struct {
	Decisions     int
	PanicEntries  int
	PanicExits    int
	Overrides     int // tickets granted
	PathFailures  int
	Timeouts      int
	GateCrossings int
}

type reply struct {
	seq uint64
	res nav.Result
}

// Agent is the runtime state of one pursuer.
type Agent struct {
	ID    uuid.UUID
	Brain brain.Brain
	Pos   geom.Vec2
	Dir   geom.Dir
	Spawn geom.Cell

	State State
	Panic float64
	Ghost bool // gates and crowd blocking are ignored
	Armed bool // path requests may cross inaccessible gates
	Dest  geom.Vec2
	Stats Stats

	p    Params
	rng  *rand.Rand
	heat *heat.Tracker

	ticked   bool
	lastTick time.Duration

	cooldownUntil time.Duration
	crossed       bool

	lastCell  geom.Cell
	space     int
	decided   geom.Cell
	hasDecide bool

	stillPos   geom.Vec2
	stillSince time.Duration
	stillSet   bool // stillSince is anchored on the first tick after a reset
	stuck      bool

	bestDist float64
	bestAt   time.Duration
	bestDest geom.Vec2
	noPath   bool

	explore      geom.Vec2
	exploring    bool
	exploreUntil time.Duration

	path         nav.Result
	hasPath      bool
	pathSeq      uint64
	pending      bool
	pendingSince time.Duration
	lastRequest  time.Duration
	requested    bool
	inbox        []reply
}

// New returns an agent standing on the centre of spawn. seed drives the
// agent's own jitter and sampling.
func New(id uuid.UUID, b brain.Brain, spawn geom.Cell, p Params, seed int64) *Agent {
	a := &Agent{
		ID:    id,
		Brain: b,
		p:     p,
		rng:   rand.New(rand.NewSource(seed)),
		heat:  heat.NewTracker(p.Heat, spawn),
	}
	a.Reset(spawn)
	return a
}

// Reset respawns the agent at spawn and forgets everything it learned:
// panic, heat history, override, path and brain sub-state.
func (a *Agent) Reset(spawn geom.Cell) {
	a.Spawn = spawn
	a.Pos = spawn.Center()
	a.Dir = geom.None
	a.State = Normal
	a.Panic = 0
	a.Ghost = false
	a.Armed = false
	a.Dest = a.Pos

	a.ticked = false
	a.cooldownUntil = 0
	a.crossed = false

	a.heat.Reset(spawn)
	a.lastCell = spawn
	a.space = -1
	a.hasDecide = false

	a.stillPos = a.Pos
	a.stillSince = 0
	a.stillSet = false
	a.stuck = false

	a.bestDist = math.Inf(1)
	a.bestAt = 0
	a.bestDest = a.Pos
	a.noPath = false

	a.exploring = false
	a.clearPath()
	a.pathSeq++
	a.pending = false
	a.requested = false
	a.inbox = a.inbox[:0]

	if a.Brain != nil {
		a.Brain.Reset()
	}
}

// Cell returns the grid cell under the agent.
func (a *Agent) Cell() geom.Cell { return a.Pos.Cell() }

// Params returns the tuning the agent was built with.
func (a *Agent) Params() Params { return a.p }

// Heat exposes the agent's visit history.
func (a *Agent) Heat() *heat.Tracker { return a.heat }

// Exploring returns the exploration destination scheduled after leaving
// panic, if one is active.
func (a *Agent) Exploring() (geom.Vec2, bool) { return a.explore, a.exploring }

// Path returns the current path advice, if any.
func (a *Agent) Path() (nav.Result, bool) { return a.path, a.hasPath }

// PathPending reports whether a path request is in flight.
func (a *Agent) PathPending() bool { return a.pending }

// Stuck reports whether the agent has not moved for StuckTimeout.
func (a *Agent) Stuck() bool { return a.stuck }

// Camping reports the brain's stationary sub-state.
func (a *Agent) Camping() bool { return a.Brain != nil && a.Brain.Camping() }

// OnGateCrossed tells the agent it passed through a door or portal. The
// event is applied on the next tick.
func (a *Agent) OnGateCrossed(gate geom.Cell) {
	a.crossed = true
	a.Stats.GateCrossings++
}

func (a *Agent) clearPath() {
	a.path = nav.Result{}
	a.hasPath = false
}

// Occupant describes the agent for the shared crowd map.
func (a *Agent) Occupant() heat.Occupant {
	return heat.Occupant{ID: a.ID, Cell: a.Cell(), Camping: a.Camping()}
}
