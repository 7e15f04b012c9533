package brain

import (
	"time"

	"wavechase/internal/geom"
)

// FleeParams tunes the Flee brain.
type FleeParams struct {
	PanicChaseDistance float64       `yaml:"panic_chase_distance"`
	NearBand           float64       `yaml:"near_band"`
	DesiredRadius      float64       `yaml:"desired_radius"`
	FleeRadius         float64       `yaml:"flee_radius"`
	Cooldown           time.Duration `yaml:"cooldown"`
	MoveThreshold      float64       `yaml:"move_threshold"`
}

// Flee keeps its distance from the target. Cornered within
// PanicChaseDistance it turns and charges the target instead.
type Flee struct {
	p           FleeParams
	mode        Mode
	dir         geom.Vec2
	hasDir      bool
	anchor      geom.Vec2
	recomputeAt time.Duration
}

// NewFlee returns a Flee brain.
func NewFlee(p FleeParams) *Flee { return &Flee{p: p} }

func (b *Flee) Name() string  { return "flee" }
func (b *Flee) Mode() Mode    { return b.mode }
func (b *Flee) Camping() bool { return false }

// Dir returns the current flee direction.
func (b *Flee) Dir() geom.Vec2 { return b.dir }

func (b *Flee) Reset() {
	*b = Flee{p: b.p}
}

// Goal returns a point away from the target, or the target itself once it
// is close enough to charge.
func (b *Flee) Goal(now time.Duration, self geom.Vec2, t Target) geom.Vec2 {
	d := self.Dist(t.Pos)
	if d <= b.p.PanicChaseDistance {
		b.mode = Chase
		return t.Pos
	}
	b.mode = Patrol
	if !b.hasDir || now >= b.recomputeAt || t.Pos.Dist(b.anchor) >= b.p.MoveThreshold {
		away := self.Sub(t.Pos)
		if away.Len() < 1e-6 {
			away = geom.Vec2{X: 1}
		}
		b.dir = away.Normalize()
		b.anchor = t.Pos
		b.recomputeAt = now + b.p.Cooldown
		b.hasDir = true
	}
	radius := b.p.DesiredRadius
	if d < b.p.NearBand {
		radius = b.p.FleeRadius
	}
	return t.Pos.Add(b.dir.Scale(radius))
}
