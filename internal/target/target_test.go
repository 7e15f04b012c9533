package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavechase/internal/geom"
)

func TestTrailDropsCrumbsBySpacing(t *testing.T) {
	tr := NewTrail(geom.Vec2{X: 0.5, Y: 0.5}, 1, 4)
	tr.Update(geom.Vec2{X: 1.0, Y: 0.5}, 0.1) // half a cell: no crumb
	assert.Len(t, tr.GetBreadcrumbs(), 1)

	for x := 2; x <= 6; x++ {
		tr.Update(geom.Vec2{X: float64(x) + 0.5, Y: 0.5}, 0.1)
	}
	crumbs := tr.GetBreadcrumbs()
	require.Len(t, crumbs, 4, "capacity bounds the trail")
	assert.InDelta(t, 3.5, crumbs[0].X, 1e-9, "oldest first")
	assert.InDelta(t, 6.5, crumbs[3].X, 1e-9)
	assert.Equal(t, geom.Vec2{X: 6.5, Y: 0.5}, tr.GetPosition())
}

func TestTrailVelocitySmoothing(t *testing.T) {
	tr := NewTrail(geom.Vec2{}, 1, 8)
	tr.Smoothing = 1
	tr.Update(geom.Vec2{X: 1}, 0.5)
	assert.InDelta(t, 2.0, tr.GetVelocity().X, 1e-9)

	tr.Smoothing = 0.5
	tr.Update(geom.Vec2{X: 1}, 0.5)
	assert.InDelta(t, 1.0, tr.GetVelocity().X, 1e-9)

	tr.Teleport(geom.Vec2{X: 20})
	assert.InDelta(t, 1.0, tr.GetVelocity().X, 1e-9, "teleport leaves velocity alone")
}

func TestBreadcrumbsAreACopy(t *testing.T) {
	tr := NewTrail(geom.Vec2{X: 1, Y: 1}, 1, 3)
	c := tr.GetBreadcrumbs()
	c[0] = geom.Vec2{X: 9, Y: 9}
	assert.Equal(t, geom.Vec2{X: 1, Y: 1}, tr.GetBreadcrumbs()[0])
}
