// Package brain holds the goal-selection strategies. Each variant turns the
// agent's position and a snapshot of the target into a destination point;
// the agent core decides how to get there.
package brain

import (
	"fmt"
	"time"

	"wavechase/internal/geom"
)

// Mode tells the decision core how aggressively to follow path advice.
type Mode uint8

const (
	Patrol Mode = iota
	Chase
)

func (m Mode) String() string {
	if m == Chase {
		return "chase"
	}
	return "patrol"
}

// Target is one tick's view of the hunted entity.
type Target struct {
	Pos         geom.Vec2
	Vel         geom.Vec2
	Breadcrumbs []geom.Vec2 // oldest first
}

// Reacher answers reachability queries; nav.Graph satisfies it.
type Reacher interface {
	IsReachable(a, b geom.Vec2) bool
}

// Brain is the part of every variant the core treats uniformly. Goal
// selection is variant specific and dispatched by the core.
type Brain interface {
	Name() string
	Mode() Mode
	// Camping reports a stationary sub-state that the shared crowd map
	// should not push the agent out of.
	Camping() bool
	Reset()
}

// Params bundles the tunables of every variant.
type Params struct {
	Pursuit PursuitParams `yaml:"pursuit"`
	Wander  WanderParams  `yaml:"wander"`
	Ambush  AmbushParams  `yaml:"ambush"`
	Flee    FleeParams    `yaml:"flee"`
}

// DefaultParams returns tuned defaults for a one-unit-per-cell grid.
func DefaultParams() Params {
	return Params{
		Pursuit: PursuitParams{ChaseRadius: 6, ReachRadius: 0.6},
		Wander: WanderParams{
			SwitchInterval: 4 * time.Second,
			WanderRadius:   6,
			Lead:           1.5,
			ReachRadius:    0.75,
			Samples:        12,
		},
		Ambush: AmbushParams{
			Lead:            2,
			Lateral:         3,
			ArriveRadius:    0.75,
			TriggerDistance: 4,
			HoldTime:        5 * time.Second,
			ResetDistance:   1,
		},
		Flee: FleeParams{
			PanicChaseDistance: 2,
			NearBand:           6,
			DesiredRadius:      8,
			FleeRadius:         12,
			Cooldown:           3 * time.Second,
			MoveThreshold:      3,
		},
	}
}

// New builds the variant named kind: pursuit, wander, ambush or flee.
func New(kind string, p Params) (Brain, error) {
	switch kind {
	case "pursuit":
		return NewPursuit(p.Pursuit), nil
	case "wander":
		return NewWanderPredict(p.Wander), nil
	case "ambush":
		return NewAmbush(p.Ambush), nil
	case "flee":
		return NewFlee(p.Flee), nil
	}
	return nil, fmt.Errorf("unknown brain %q", kind)
}

// heading returns the target's direction of travel, or the direction from
// self to the target when it stands still.
func heading(self geom.Vec2, t Target) geom.Vec2 {
	if t.Vel.Len() > 1e-6 {
		return t.Vel.Normalize()
	}
	if d := t.Pos.Sub(self); d.Len() > 1e-6 {
		return d.Normalize()
	}
	return geom.Vec2{X: 1}
}
