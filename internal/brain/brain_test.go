package brain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavechase/internal/geom"
)

type reachNone struct{}

func (reachNone) IsReachable(a, b geom.Vec2) bool { return false }

func TestNewKnowsEveryKind(t *testing.T) {
	for _, kind := range []string{"pursuit", "wander", "ambush", "flee"} {
		b, err := New(kind, DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, kind, b.Name())
	}
	_, err := New("sloth", DefaultParams())
	assert.Error(t, err)
}

func TestPursuitChasesThenFollowsCrumbs(t *testing.T) {
	b := NewPursuit(PursuitParams{ChaseRadius: 3, ReachRadius: 0.5})
	crumbs := []geom.Vec2{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 8, Y: 1}}
	tgt := Target{Pos: geom.Vec2{X: 10, Y: 1}, Breadcrumbs: crumbs}

	assert.Equal(t, tgt.Pos, b.Goal(geom.Vec2{X: 8, Y: 1}, tgt))
	assert.Equal(t, Chase, b.Mode())

	assert.Equal(t, crumbs[0], b.Goal(geom.Vec2{X: 0, Y: 5}, tgt), "far away: oldest crumb")
	assert.Equal(t, Patrol, b.Mode())

	assert.Equal(t, crumbs[1], b.Goal(geom.Vec2{X: 1, Y: 1.2}, tgt), "reached crumb is skipped")
	assert.Equal(t, crumbs[1], b.Goal(geom.Vec2{X: 2.5, Y: 1}, tgt), "never walks back to an old crumb")

	b.Reset()
	assert.Equal(t, crumbs[0], b.Goal(geom.Vec2{X: 2.5, Y: 1}, tgt))

	assert.Equal(t, tgt.Pos, b.Goal(geom.Vec2{X: 50, Y: 50}, Target{Pos: tgt.Pos}), "no trail: go straight")
}

func TestWanderPredictAlternates(t *testing.T) {
	p := WanderParams{SwitchInterval: 2 * time.Second, WanderRadius: 4, Lead: 2, ReachRadius: 0.5, Samples: 4}
	b := NewWanderPredict(p)
	rng := rand.New(rand.NewSource(1))
	tgt := Target{Pos: geom.Vec2{X: 10.5, Y: 10.5}, Vel: geom.Vec2{X: 1}}
	self := geom.Vec2{X: 1.5, Y: 1.5}

	g1 := b.Goal(0, self, tgt, rng, nil)
	assert.Equal(t, Patrol, b.Mode())
	assert.LessOrEqual(t, g1.Dist(tgt.Pos), 4+1.0, "wander point lies near the target")
	assert.Equal(t, g1, b.Goal(time.Second, self, tgt, rng, nil), "goal is kept until a switch")

	g2 := b.Goal(2*time.Second, self, tgt, rng, nil)
	assert.Equal(t, Chase, b.Mode())
	assert.Equal(t, geom.Vec2{X: 12.5, Y: 10.5}, g2)

	// Reaching the predicted point switches back early.
	b.Goal(2500*time.Millisecond, g2, tgt, rng, nil)
	assert.Equal(t, Patrol, b.Mode())
}

func TestWanderFallsBackToTarget(t *testing.T) {
	b := NewWanderPredict(WanderParams{SwitchInterval: time.Minute, WanderRadius: 4, Samples: 3})
	tgt := Target{Pos: geom.Vec2{X: 5.5, Y: 5.5}}
	got := b.Goal(0, geom.Vec2{}, tgt, rand.New(rand.NewSource(2)), reachNone{})
	assert.Equal(t, tgt.Pos, got)
}

func TestAmbushCycle(t *testing.T) {
	p := AmbushParams{Lead: 1, Lateral: 2, ArriveRadius: 0.5, TriggerDistance: 3, HoldTime: 4 * time.Second, ResetDistance: 1}
	b := NewAmbush(p)
	rng := rand.New(rand.NewSource(3))
	tgt := Target{Pos: geom.Vec2{X: 10, Y: 10}, Vel: geom.Vec2{X: 1}}

	point := b.Goal(0, geom.Vec2{X: 0, Y: 0}, tgt, rng)
	assert.Equal(t, AmbushMoving, b.State())
	assert.InDelta(t, 11.0, point.X, 1e-9, "one second ahead on the path")
	assert.InDelta(t, 2.0, abs(point.Y-10), 1e-9, "offset sideways")
	assert.False(t, b.Camping())

	b.Goal(time.Second, point, tgt, rng)
	assert.Equal(t, AmbushHolding, b.State())
	assert.True(t, b.Camping())
	assert.Equal(t, Patrol, b.Mode())

	far := Target{Pos: geom.Vec2{X: 30, Y: 30}}
	assert.Equal(t, point, b.Goal(2*time.Second, point, far, rng), "holding while the target is away")
	assert.Equal(t, far.Pos, b.Goal(5*time.Second, point, far, rng), "hold timer elapsed")
	assert.Equal(t, AmbushStriking, b.State())
	assert.Equal(t, Chase, b.Mode())

	b.Goal(6*time.Second, geom.Vec2{X: 29.5, Y: 30}, far, rng)
	assert.Equal(t, AmbushMoving, b.State(), "strike ends within reset distance")
}

func TestAmbushTriggeredByProximity(t *testing.T) {
	b := NewAmbush(AmbushParams{Lateral: 1, ArriveRadius: 10, TriggerDistance: 3, HoldTime: time.Hour, ResetDistance: 0.5})
	rng := rand.New(rand.NewSource(4))
	tgt := Target{Pos: geom.Vec2{X: 5, Y: 5}}
	b.Goal(0, geom.Vec2{X: 5, Y: 9}, tgt, rng)
	require.Equal(t, AmbushHolding, b.State())
	b.Goal(time.Second, geom.Vec2{X: 5, Y: 7}, tgt, rng)
	assert.Equal(t, AmbushStriking, b.State())
}

func TestFleeBandsAndCornered(t *testing.T) {
	p := FleeParams{PanicChaseDistance: 2, NearBand: 5, DesiredRadius: 8, FleeRadius: 12, Cooldown: 3 * time.Second, MoveThreshold: 2}
	b := NewFlee(p)
	tgt := Target{Pos: geom.Vec2{X: 10, Y: 10}}

	assert.Equal(t, tgt.Pos, b.Goal(0, geom.Vec2{X: 11, Y: 10}, tgt), "cornered: charge the target")
	assert.Equal(t, Chase, b.Mode())

	got := b.Goal(0, geom.Vec2{X: 14, Y: 10}, tgt)
	assert.Equal(t, Patrol, b.Mode())
	assert.InDelta(t, 22.0, got.X, 1e-9, "near band uses the flee radius")
	assert.InDelta(t, 10.0, got.Y, 1e-9)

	got = b.Goal(time.Second, geom.Vec2{X: 10, Y: 17}, tgt)
	assert.InDelta(t, 18.0, got.X, 1e-9, "direction held through the cooldown")

	moved := Target{Pos: geom.Vec2{X: 10, Y: 13}}
	got = b.Goal(2*time.Second, geom.Vec2{X: 10, Y: 20}, moved)
	assert.InDelta(t, 10.0, got.X, 1e-9, "target moved: direction recomputed")
	assert.InDelta(t, 21.0, got.Y, 1e-9)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
