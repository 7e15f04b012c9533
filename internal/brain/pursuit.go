package brain

import "wavechase/internal/geom"

// PursuitParams tunes the Pursuit brain.
type PursuitParams struct {
	ChaseRadius float64 `yaml:"chase_radius"`
	ReachRadius float64 `yaml:"reach_radius"`
}

// Pursuit chases the target directly when close and otherwise follows its
// breadcrumb trail from the oldest crumb forward.
type Pursuit struct {
	p       PursuitParams
	mode    Mode
	reached geom.Vec2
	hasLast bool
}

// NewPursuit returns a Pursuit brain with params p.
func NewPursuit(p PursuitParams) *Pursuit { return &Pursuit{p: p} }

func (b *Pursuit) Name() string  { return "pursuit" }
func (b *Pursuit) Mode() Mode    { return b.mode }
func (b *Pursuit) Camping() bool { return false }

func (b *Pursuit) Reset() {
	b.mode = Patrol
	b.hasLast = false
}

// Goal returns the target when within ChaseRadius, else the oldest crumb
// the agent has not yet reached.
func (b *Pursuit) Goal(self geom.Vec2, t Target) geom.Vec2 {
	if len(t.Breadcrumbs) == 0 || self.Dist(t.Pos) <= b.p.ChaseRadius {
		b.mode = Chase
		return t.Pos
	}
	b.mode = Patrol
	start := 0
	if b.hasLast {
		for i, c := range t.Breadcrumbs {
			if c == b.reached {
				start = i + 1
			}
		}
	}
	for _, c := range t.Breadcrumbs[start:] {
		if self.Dist(c) <= b.p.ReachRadius {
			b.reached, b.hasLast = c, true
			continue
		}
		return c
	}
	return t.Pos
}
