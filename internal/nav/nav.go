// Package nav is the navigation graph agents query for paths. Requests are
// answered through callbacks so a caller can treat path finding as
// asynchronous; GridGraph queues its answers until Pump is called.
package nav

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"wavechase/internal/geom"
)

var (
	// ErrNoPath is reported when no route exists under the request's limits.
	ErrNoPath = errors.New("nav: no path")
	// ErrTimeout marks a request whose callback never arrived in time. The
	// graph never reports it itself; callers tracking deadlines use it.
	ErrTimeout = errors.New("nav: request timed out")
)

// Edge is a step between two adjacent cells. Blocking an edge blocks both
// directions.
type Edge struct {
	From, To geom.Cell
}

// Request asks for a route from Start to Goal.
type Request struct {
	Agent       uuid.UUID
	Start, Goal geom.Vec2
	Blocked     mapset.Set[Edge]

	// GateAllowance is how many gates the agent has no access to that the
	// route may pass anyway.
	GateAllowance int
	Now           time.Duration
}

// Result is a route, start cell first, or an error.
type Result struct {
	Path  []geom.Cell
	Gates []geom.Cell // inaccessible gates the route passes, in order
	Err   error
}

// Next returns the direction of the step that follows from along the path,
// or None when from is not on the path or is its last cell. Steps through a
// portal link report None.
func (r Result) Next(from geom.Cell) geom.Dir {
	for i := 0; i+1 < len(r.Path); i++ {
		if r.Path[i] == from {
			return from.DirTo(r.Path[i+1])
		}
	}
	return geom.None
}

// Graph is the navigation collaborator.
type Graph interface {
	FindPath(req Request, done func(Result))
	IsReachable(a, b geom.Vec2) bool
	AddNonLocalEdge(a, b geom.Vec2)
}
