package brain

import (
	"math/rand"
	"time"

	"wavechase/internal/geom"
)

// AmbushParams tunes the Ambush brain.
type AmbushParams struct {
	Lead            float64       `yaml:"lead"`    // seconds ahead of the target
	Lateral         float64       `yaml:"lateral"` // sideways offset from its path
	ArriveRadius    float64       `yaml:"arrive_radius"`
	TriggerDistance float64       `yaml:"trigger_distance"`
	HoldTime        time.Duration `yaml:"hold_time"`
	ResetDistance   float64       `yaml:"reset_distance"`
}

// AmbushState is the sub-state of an Ambush brain.
type AmbushState uint8

const (
	AmbushMoving AmbushState = iota
	AmbushHolding
	AmbushStriking
)

func (s AmbushState) String() string {
	switch s {
	case AmbushHolding:
		return "holding"
	case AmbushStriking:
		return "striking"
	}
	return "moving"
}

// Ambush moves to a point beside the target's predicted path, waits there,
// then strikes.
type Ambush struct {
	p         AmbushParams
	state     AmbushState
	point     geom.Vec2
	hasPoint  bool
	holdUntil time.Duration
}

// NewAmbush returns an Ambush brain that has not picked a point yet.
func NewAmbush(p AmbushParams) *Ambush { return &Ambush{p: p} }

func (b *Ambush) Name() string { return "ambush" }

func (b *Ambush) Mode() Mode {
	if b.state == AmbushStriking {
		return Chase
	}
	return Patrol
}

func (b *Ambush) Camping() bool { return b.state == AmbushHolding }

// State returns the current sub-state.
func (b *Ambush) State() AmbushState { return b.state }

// Point returns the current ambush point.
func (b *Ambush) Point() geom.Vec2 { return b.point }

func (b *Ambush) Reset() {
	*b = Ambush{p: b.p}
}

// Goal advances the ambush sub-state and returns the point to head for:
// the ambush point while setting up or holding, the target while striking.
func (b *Ambush) Goal(now time.Duration, self geom.Vec2, t Target, rng *rand.Rand) geom.Vec2 {
	switch b.state {
	case AmbushHolding:
		if self.Dist(t.Pos) <= b.p.TriggerDistance || now >= b.holdUntil {
			b.state = AmbushStriking
			return t.Pos
		}
		return b.point
	case AmbushStriking:
		if self.Dist(t.Pos) > b.p.ResetDistance {
			return t.Pos
		}
		b.state = AmbushMoving
		b.hasPoint = false
	}

	if !b.hasPoint {
		b.point = b.pick(self, t, rng)
		b.hasPoint = true
	}
	if self.Dist(b.point) <= b.p.ArriveRadius {
		b.state = AmbushHolding
		b.holdUntil = now + b.p.HoldTime
	}
	return b.point
}

// pick offsets the predicted position sideways, left or right at random.
func (b *Ambush) pick(self geom.Vec2, t Target, rng *rand.Rand) geom.Vec2 {
	h := heading(self, t)
	predicted := t.Pos.Add(t.Vel.Scale(b.p.Lead))
	side := 1.0
	if rng.Intn(2) == 0 {
		side = -1
	}
	return predicted.Add(h.Perp().Scale(side * b.p.Lateral))
}
