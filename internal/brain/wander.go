package brain

import (
	"math"
	"math/rand"
	"time"

	"wavechase/internal/geom"
)

// WanderParams tunes the WanderPredict brain.
type WanderParams struct {
	SwitchInterval time.Duration `yaml:"switch_interval"`
	WanderRadius   float64       `yaml:"wander_radius"`
	Lead           float64       `yaml:"lead"` // seconds of target velocity to extrapolate
	ReachRadius    float64       `yaml:"reach_radius"`
	Samples        int           `yaml:"samples"`
}

// WanderPredict alternates between roaming to random reachable points near
// the target (Patrol) and heading for where the target will be (Chase).
type WanderPredict struct {
	p        WanderParams
	mode     Mode
	started  bool
	switchAt time.Duration
	goal     geom.Vec2
	hasGoal  bool
}

// NewWanderPredict returns a WanderPredict brain in Patrol mode.
func NewWanderPredict(p WanderParams) *WanderPredict { return &WanderPredict{p: p} }

func (b *WanderPredict) Name() string  { return "wander" }
func (b *WanderPredict) Mode() Mode    { return b.mode }
func (b *WanderPredict) Camping() bool { return false }

func (b *WanderPredict) Reset() {
	*b = WanderPredict{p: b.p}
}

// Goal switches mode when the interval elapses or the current goal is
// reached, then returns the goal for the active mode.
func (b *WanderPredict) Goal(now time.Duration, self geom.Vec2, t Target, rng *rand.Rand, reach Reacher) geom.Vec2 {
	if !b.started {
		b.started = true
		b.mode = Patrol
		b.switchAt = now + b.p.SwitchInterval
	}
	reached := b.hasGoal && self.Dist(b.goal) <= b.p.ReachRadius
	if now >= b.switchAt || reached {
		if b.mode == Patrol {
			b.mode = Chase
		} else {
			b.mode = Patrol
		}
		b.switchAt = now + b.p.SwitchInterval
		b.hasGoal = false
	}

	switch b.mode {
	case Chase:
		b.goal = t.Pos.Add(t.Vel.Scale(b.p.Lead))
		b.hasGoal = true
	default:
		if !b.hasGoal {
			b.goal = b.sample(self, t, rng, reach)
			b.hasGoal = true
		}
	}
	return b.goal
}

// sample picks a random reachable cell centre within WanderRadius of the
// target, falling back to the target itself.
func (b *WanderPredict) sample(self geom.Vec2, t Target, rng *rand.Rand, reach Reacher) geom.Vec2 {
	for i := 0; i < max(1, b.p.Samples); i++ {
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * b.p.WanderRadius
		p := t.Pos.Add(geom.Vec2{X: math.Cos(angle) * r, Y: math.Sin(angle) * r}).Cell().Center()
		if reach == nil || reach.IsReachable(self, p) {
			return p
		}
	}
	return t.Pos
}
