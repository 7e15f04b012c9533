// Package target tracks the entity agents hunt: its position, a smoothed
// velocity and a bounded breadcrumb trail of where it has been.
package target

import "wavechase/internal/geom"

// Tracker is the read side consumed by brains.
type Tracker interface {
	GetPosition() geom.Vec2
	GetVelocity() geom.Vec2
	// GetBreadcrumbs returns past positions, oldest first.
	GetBreadcrumbs() []geom.Vec2
}

// Trail is a Tracker fed by the simulation each tick.
type Trail struct {
	// Spacing is the distance the target must cover before a new crumb drops.
	Spacing float64
	// Capacity bounds the crumb history.
	Capacity int
	// Smoothing is the weight of the newest velocity sample, in (0, 1].
	Smoothing float64

	pos    geom.Vec2
	vel    geom.Vec2
	crumbs []geom.Vec2
}

var _ Tracker = (*Trail)(nil)

// NewTrail starts a trail at start with one crumb.
func NewTrail(start geom.Vec2, spacing float64, capacity int) *Trail {
	t := &Trail{Spacing: spacing, Capacity: max(1, capacity), Smoothing: 0.5}
	t.Reset(start)
	return t
}

// Reset clears the history and places the target at pos.
func (t *Trail) Reset(pos geom.Vec2) {
	t.pos = pos
	t.vel = geom.Vec2{}
	t.crumbs = append(t.crumbs[:0], pos)
}

// Update moves the target to pos after dt seconds.
func (t *Trail) Update(pos geom.Vec2, dt float64) {
	if dt > 0 {
		sample := pos.Sub(t.pos).Scale(1 / dt)
		a := t.Smoothing
		if a <= 0 || a > 1 {
			a = 1
		}
		t.vel = t.vel.Scale(1 - a).Add(sample.Scale(a))
	}
	t.pos = pos
	t.drop(pos)
}

// Teleport moves the target without a velocity sample, as through a portal.
func (t *Trail) Teleport(pos geom.Vec2) {
	t.pos = pos
	t.drop(pos)
}

func (t *Trail) drop(pos geom.Vec2) {
	if n := len(t.crumbs); n > 0 && t.crumbs[n-1].Dist(pos) < t.Spacing {
		return
	}
	t.crumbs = append(t.crumbs, pos)
	if over := len(t.crumbs) - t.Capacity; over > 0 {
		t.crumbs = append(t.crumbs[:0], t.crumbs[over:]...)
	}
}

func (t *Trail) GetPosition() geom.Vec2 { return t.pos }

func (t *Trail) GetVelocity() geom.Vec2 { return t.vel }

// GetBreadcrumbs returns a copy of the trail, oldest first.
func (t *Trail) GetBreadcrumbs() []geom.Vec2 {
	out := make([]geom.Vec2, len(t.crumbs))
	copy(out, t.crumbs)
	return out
}
