package nav

import (
	"container/heap"
	"log/slog"

	"wavechase/internal/access"
	"wavechase/internal/gamemap"
	"wavechase/internal/geom"
)

// GridGraph answers path requests with A* over a gamemap. Portal links added
// with AddNonLocalEdge are walked like ordinary steps.
type GridGraph struct {
	m     *gamemap.GameMap
	gate  access.Gate
	log   *slog.Logger
	links map[geom.Cell][]geom.Cell

	comp    []int // connected component per cell, -1 for unwalkable
	pending []pendingCall
}

type pendingCall struct {
	res  Result
	done func(Result)
}

var _ Graph = (*GridGraph)(nil)

// NewGridGraph builds a graph over m. gate may be nil, in which case every
// gate is open.
func NewGridGraph(m *gamemap.GameMap, gate access.Gate, log *slog.Logger) *GridGraph {
	if log == nil {
		log = slog.Default()
	}
	g := &GridGraph{m: m, gate: gate, log: log, links: make(map[geom.Cell][]geom.Cell)}
	for _, p := range m.PortalPairs {
		g.link(p[0], p[1])
	}
	return g
}

// AddNonLocalEdge links the cells under a and b in both directions.
func (g *GridGraph) AddNonLocalEdge(a, b geom.Vec2) {
	g.link(a.Cell(), b.Cell())
}

func (g *GridGraph) link(a, b geom.Cell) {
	if a == b {
		return
	}
	for _, c := range g.links[a] {
		if c == b {
			return
		}
	}
	g.links[a] = append(g.links[a], b)
	g.links[b] = append(g.links[b], a)
	g.comp = nil
}

// FindPath searches now and queues done to run on the next Pump.
func (g *GridGraph) FindPath(req Request, done func(Result)) {
	g.pending = append(g.pending, pendingCall{res: g.Search(req), done: done})
}

// Pump delivers queued results and returns how many it delivered. Callbacks
// issued from inside a callback wait for the next Pump.
func (g *GridGraph) Pump() int {
	calls := g.pending
	g.pending = nil
	for _, c := range calls {
		c.done(c.res)
	}
	return len(calls)
}

// Pending returns the number of undelivered results.
func (g *GridGraph) Pending() int { return len(g.pending) }

// IsReachable reports whether the cells under a and b are walkable and
// connected, ignoring gate locks.
func (g *GridGraph) IsReachable(a, b geom.Vec2) bool {
	ca, cb := a.Cell(), b.Cell()
	if !g.m.IsWalkable(ca.X, ca.Y) || !g.m.IsWalkable(cb.X, cb.Y) {
		return false
	}
	if g.comp == nil {
		g.label()
	}
	return g.comp[g.index(ca)] == g.comp[g.index(cb)]
}

func (g *GridGraph) index(c geom.Cell) int { return c.Y*g.m.Width + c.X }

// label floods connected components of walkable cells.
func (g *GridGraph) label() {
	g.comp = make([]int, g.m.Width*g.m.Height)
	for i := range g.comp {
		g.comp[i] = -1
	}
	next := 0
	for y := 0; y < g.m.Height; y++ {
		for x := 0; x < g.m.Width; x++ {
			start := geom.Cell{X: x, Y: y}
			if !g.m.IsWalkable(x, y) || g.comp[g.index(start)] >= 0 {
				continue
			}
			queue := []geom.Cell{start}
			g.comp[g.index(start)] = next
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, n := range g.neighbors(cur) {
					if g.comp[g.index(n)] < 0 {
						g.comp[g.index(n)] = next
						queue = append(queue, n)
					}
				}
			}
			next++
		}
	}
}

// neighbors returns walkable cells one step or one portal link away.
func (g *GridGraph) neighbors(c geom.Cell) []geom.Cell {
	out := make([]geom.Cell, 0, 4+len(g.links[c]))
	for _, d := range geom.Cardinals {
		n := c.Step(d)
		if g.m.IsWalkable(n.X, n.Y) {
			out = append(out, n)
		}
	}
	for _, n := range g.links[c] {
		if g.m.IsWalkable(n.X, n.Y) {
			out = append(out, n)
		}
	}
	return out
}

func (g *GridGraph) locked(req Request, c geom.Cell) bool {
	return g.gate != nil && g.m.IsGate(c.X, c.Y) && !g.gate.HasAccess(req.Agent, c, req.Now)
}

type searchState struct {
	cell geom.Cell
	used int
}

type pathNode struct {
	state  searchState
	g      int
	f      int
	seq    int
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	item := x.(*pathNode)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// Search runs the request synchronously.
func (g *GridGraph) Search(req Request) Result {
	start, goal := req.Start.Cell(), req.Goal.Cell()
	if !g.m.InBounds(start.X, start.Y) || !g.m.IsWalkable(goal.X, goal.Y) {
		return Result{Err: ErrNoPath}
	}
	allowance := max(0, req.GateAllowance)
	heuristic := func(c geom.Cell) int {
		if len(g.links) > 0 {
			return 0 // links break the Manhattan bound
		}
		return geom.Manhattan(c, goal)
	}
	blocked := func(a, b geom.Cell) bool {
		return req.Blocked.Has(Edge{a, b}) || req.Blocked.Has(Edge{b, a})
	}

	open := &pathQueue{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &pathNode{state: searchState{start, 0}, f: heuristic(start)})
	gScore := map[searchState]int{{start, 0}: 0}
	closed := make(map[searchState]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if _, seen := closed[current.state]; seen {
			continue
		}
		closed[current.state] = struct{}{}
		if current.state.cell == goal {
			return g.reconstruct(req, current)
		}
		for _, n := range g.neighbors(current.state.cell) {
			if blocked(current.state.cell, n) {
				continue
			}
			next := searchState{n, current.state.used}
			if g.locked(req, n) {
				next.used++
				if next.used > allowance {
					continue
				}
			}
			if _, seen := closed[next]; seen {
				continue
			}
			tentative := current.g + 1
			if prev, ok := gScore[next]; ok && tentative >= prev {
				continue
			}
			gScore[next] = tentative
			seq++
			heap.Push(open, &pathNode{
				state:  next,
				g:      tentative,
				f:      tentative + heuristic(n),
				seq:    seq,
				parent: current,
			})
		}
	}
	g.log.Debug("nav: no path", "agent", req.Agent, "start", start, "goal", goal, "allowance", allowance)
	return Result{Err: ErrNoPath}
}

func (g *GridGraph) reconstruct(req Request, end *pathNode) Result {
	var path []geom.Cell
	for node := end; node != nil; node = node.parent {
		path = append(path, node.state.cell)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	var gates []geom.Cell
	for _, c := range path[1:] {
		if g.locked(req, c) {
			gates = append(gates, c)
		}
	}
	return Result{Path: path, Gates: gates}
}
