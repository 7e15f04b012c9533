package wfc

import (
	"log/slog"
	"math"
	"math/rand"

	"wavechase/internal/geom"
	"wavechase/internal/tile"
)

type cell struct {
	options   []int // indices into Engine.opts, ascending
	selected  int   // -1 until collapsed onto an option
	collapsed bool
	forced    bool
	skipSpawn bool

	entropy int  // cached count of explicitly valid options
	dirty   bool // entropy needs recomputing
}

// Engine is a steppable solver. Call Initialize once, then Step until it
// returns false, then BuildResult. An Engine is not safe for concurrent use.
type Engine struct {
	cfg  Config
	log  *slog.Logger
	w, h int

	opts     []tile.Option
	optIndex map[tile.Option]int
	// compat[d][i][j]: option i may have option j as its neighbour in d.
	compat [4][][]bool

	cells  []cell
	rng    *rand.Rand
	caps   [3]int
	counts [3]int

	initialized bool
	done        bool
	steps       int
}

// New returns an engine for cfg. Nothing is computed until Initialize.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = 0, 0
	}
	return &Engine{cfg: cfg, log: log, w: w, h: h, caps: cfg.caps()}
}

// Width returns the grid width, zero for a degenerate config.
func (e *Engine) Width() int { return e.w }

// Height returns the grid height, zero for a degenerate config.
func (e *Engine) Height() int { return e.h }

// Steps returns the number of collapse steps taken so far.
func (e *Engine) Steps() int { return e.steps }

// Done reports whether the last Step found nothing left to collapse.
func (e *Engine) Done() bool { return e.done }

// Initialize builds the option universe, seeds every cell, applies forced
// cells and the border ring, then runs a full propagation pass. Calling it
// again restarts the run from the same seed.
func (e *Engine) Initialize() {
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))
	e.done = false
	e.steps = 0
	e.counts = [3]int{}
	e.buildUniverse()

	n := e.w * e.h
	e.cells = make([]cell, n)

	ringSet := e.indices(e.cfg.BorderTiles)
	if e.cfg.AllowBorderTunnels {
		ringSet = append(ringSet, e.indices(e.cfg.BorderTunnelTiles)...)
	}
	interiorSet := e.indices(e.cfg.Tiles)
	var fallback []int
	if e.cfg.Fallback != nil {
		fallback = []int{e.optIndex[tile.Option{Kind: e.cfg.Fallback}]}
	}

	for i := range e.cells {
		x, y := i%e.w, i/e.w
		base := interiorSet
		if onRing(x, y, e.w, e.h) {
			base = ringSet
		}
		if len(base) == 0 {
			base = fallback
		}
		c := &e.cells[i]
		c.selected = -1
		c.dirty = true
		c.options = make([]int, 0, len(base))
		for _, o := range base {
			if !onRing(x, y, e.w, e.h) && e.opts[o].Kind.Class == tile.ClassBorder {
				continue
			}
			c.options = append(c.options, o)
		}
	}

	forced := e.acceptedForced()
	for _, f := range forced {
		if k := capIndex(f.Tile.Class); k >= 0 {
			e.counts[k]++
		}
	}
	for i := range e.cells {
		e.filterCapped(&e.cells[i])
	}
	for _, f := range forced {
		e.overlay(f)
	}
	e.prefillRing()
	e.pruneCaps()

	queue := make([]int, n)
	for i := range queue {
		queue[i] = i
	}
	e.propagate(queue)
	e.initialized = true

	e.log.Debug("wfc: initialized",
		"width", e.w, "height", e.h, "seed", e.cfg.Seed,
		"options", len(e.opts), "forced", len(forced))
}

func (e *Engine) buildUniverse() {
	var kinds []*tile.Kind
	kinds = append(kinds, e.cfg.Tiles...)
	kinds = append(kinds, e.cfg.BorderTiles...)
	kinds = append(kinds, e.cfg.BorderTunnelTiles...)
	kinds = append(kinds, e.cfg.Fallback)
	for _, f := range e.cfg.Forced {
		kinds = append(kinds, f.Tile)
	}
	e.opts = tile.ExpandOptions(kinds)
	e.optIndex = make(map[tile.Option]int, len(e.opts))
	for i, o := range e.opts {
		e.optIndex[o] = i
	}
	for _, d := range geom.Cardinals {
		tbl := make([][]bool, len(e.opts))
		for i, a := range e.opts {
			tbl[i] = make([]bool, len(e.opts))
			for j, b := range e.opts {
				tbl[i][j] = a.CompatibleWith(b, d)
			}
		}
		e.compat[d] = tbl
	}
}

// indices returns the option indices for every rotation of kinds, in order,
// without duplicates.
func (e *Engine) indices(kinds []*tile.Kind) []int {
	var out []int
	for _, o := range tile.ExpandOptions(kinds) {
		out = append(out, e.optIndex[o])
	}
	return out
}

// acceptedForced filters the forced list down to entries the engine will
// honour. Entries outside the grid, Border kinds off the ring, repeats of an
// already forced cell, locked entries incompatible with an earlier locked
// neighbour and entries beyond a class cap are dropped in list order.
func (e *Engine) acceptedForced() []ForcedCell {
	var out []ForcedCell
	seen := make(map[geom.Cell]bool)
	locked := make(map[geom.Cell]int)
	var reserved [3]int
	for _, f := range e.cfg.Forced {
		at := geom.Cell{X: f.X, Y: f.Y}
		switch {
		case f.Tile == nil,
			f.X < 0 || f.Y < 0 || f.X >= e.w || f.Y >= e.h,
			seen[at]:
			e.log.Debug("wfc: forced cell dropped", "x", f.X, "y", f.Y)
			continue
		case f.Tile.Class == tile.ClassBorder && !onRing(f.X, f.Y, e.w, e.h):
			e.log.Debug("wfc: forced border off ring dropped", "x", f.X, "y", f.Y)
			continue
		}
		o := -1
		if f.LockRotation {
			o = e.optIndex[tile.Option{Kind: f.Tile, Rotation: geom.Mod4(f.Rotation)}]
			if e.conflictsLocked(at, o, locked) {
				e.log.Debug("wfc: forced cell conflicts with locked neighbour dropped",
					"x", f.X, "y", f.Y, "tile", f.Tile.Name)
				continue
			}
		}
		if k := capIndex(f.Tile.Class); k >= 0 && e.caps[k] >= 0 {
			if reserved[k] >= e.caps[k] {
				e.log.Debug("wfc: forced cell over cap dropped",
					"x", f.X, "y", f.Y, "class", f.Tile.Class)
				continue
			}
			reserved[k]++
		}
		seen[at] = true
		if o >= 0 {
			locked[at] = o
		}
		out = append(out, f)
	}
	return out
}

// conflictsLocked reports whether option o at c is incompatible with any
// neighbour already locked in locked.
func (e *Engine) conflictsLocked(c geom.Cell, o int, locked map[geom.Cell]int) bool {
	for _, d := range geom.Cardinals {
		dx, dy := d.Delta()
		p, ok := locked[geom.Cell{X: c.X + dx, Y: c.Y + dy}]
		if ok && !e.compat[d][o][p] {
			return true
		}
	}
	return false
}

func (e *Engine) overlay(f ForcedCell) {
	c := &e.cells[f.Y*e.w+f.X]
	c.forced = true
	c.skipSpawn = f.SkipSpawn
	c.dirty = true
	if f.LockRotation {
		o := e.optIndex[tile.Option{Kind: f.Tile, Rotation: geom.Mod4(f.Rotation)}]
		c.options = []int{o}
		c.selected = o
		c.collapsed = true
		return
	}
	c.options = e.indices([]*tile.Kind{f.Tile})
}

// prefillRing collapses every ring cell not already forced onto the first
// Border-class kind available.
func (e *Engine) prefillRing() {
	var border *tile.Kind
	for _, k := range e.cfg.BorderTiles {
		if k != nil && k.Class == tile.ClassBorder {
			border = k
			break
		}
	}
	if border == nil && e.cfg.Fallback != nil && e.cfg.Fallback.Class == tile.ClassBorder {
		border = e.cfg.Fallback
	}
	if border == nil {
		return
	}
	o := e.optIndex[tile.Option{Kind: border}]
	for i := range e.cells {
		c := &e.cells[i]
		if c.forced || c.collapsed || !onRing(i%e.w, i/e.w, e.w, e.h) {
			continue
		}
		c.options = []int{o}
		c.selected = o
		c.collapsed = true
		c.dirty = true
	}
}

func (e *Engine) capReached(cl tile.Class) bool {
	k := capIndex(cl)
	return k >= 0 && e.caps[k] >= 0 && e.counts[k] >= e.caps[k]
}

// filterCapped drops options of capped classes that have hit their cap.
// It reports whether the set shrank.
func (e *Engine) filterCapped(c *cell) bool {
	kept := c.options[:0]
	for _, o := range c.options {
		if !e.capReached(e.opts[o].Kind.Class) {
			kept = append(kept, o)
		}
	}
	if len(kept) == len(c.options) {
		return false
	}
	c.options = kept
	return true
}

// pruneCaps applies filterCapped to every open, unforced cell and returns
// the indices that changed.
func (e *Engine) pruneCaps() []int {
	var changed []int
	for i := range e.cells {
		c := &e.cells[i]
		if c.collapsed || c.forced || len(c.options) == 0 {
			continue
		}
		if e.filterCapped(c) {
			e.touch(i)
			changed = append(changed, i)
		}
	}
	return changed
}

func (e *Engine) neighbor(i int, d geom.Dir) (int, bool) {
	x, y := i%e.w, i/e.w
	dx, dy := d.Delta()
	x, y = x+dx, y+dy
	if x < 0 || y < 0 || x >= e.w || y >= e.h {
		return 0, false
	}
	return y*e.w + x, true
}

// touch marks a cell and its neighbours for entropy recomputation.
func (e *Engine) touch(i int) {
	e.cells[i].dirty = true
	for _, d := range geom.Cardinals {
		if n, ok := e.neighbor(i, d); ok {
			e.cells[n].dirty = true
		}
	}
}

// supported reports whether option o has at least one partner in set when
// the partner lies in direction d.
func (e *Engine) supported(o int, d geom.Dir, set []int) bool {
	row := e.compat[d][o]
	for _, j := range set {
		if row[j] {
			return true
		}
	}
	return false
}

// propagate runs arc consistency from the queued cells. An emptied cell is
// not propagated from, or one hole would drain the whole grid; its
// neighbours are excluded by validOptions instead. Collapsed cells are never
// narrowed.
func (e *Engine) propagate(queue []int) {
	limit := e.w * e.h * 16
	if limit < 64 {
		limit = 64
	}
	inQueue := make([]bool, len(e.cells))
	for _, i := range queue {
		inQueue[i] = true
	}
	for head := 0; head < len(queue); head++ {
		if head >= limit {
			e.log.Debug("wfc: propagation cap reached", "dequeues", head)
			return
		}
		i := queue[head]
		inQueue[i] = false
		src := e.cells[i].options
		if len(src) == 0 {
			continue
		}
		for _, d := range geom.Cardinals {
			ni, ok := e.neighbor(i, d)
			if !ok {
				continue
			}
			n := &e.cells[ni]
			if n.collapsed || len(n.options) == 0 {
				continue
			}
			back := d.Opposite()
			kept := n.options[:0]
			for _, o := range n.options {
				if e.supported(o, back, src) {
					kept = append(kept, o)
				}
			}
			if len(kept) == len(n.options) {
				continue
			}
			n.options = kept
			e.touch(ni)
			if !inQueue[ni] {
				inQueue[ni] = true
				queue = append(queue, ni)
			}
		}
	}
}

// validOptions returns the options of cell i supported by every in-bounds
// neighbour. A neighbour with no options supports nothing, so cells next to
// a hole have none.
func (e *Engine) validOptions(i int) []int {
	c := &e.cells[i]
	out := make([]int, 0, len(c.options))
	for _, o := range c.options {
		ok := true
		for _, d := range geom.Cardinals {
			ni, in := e.neighbor(i, d)
			if !in {
				continue
			}
			if !e.supported(o, d, e.cells[ni].options) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, o)
		}
	}
	return out
}

func (e *Engine) entropyOf(i int) int {
	c := &e.cells[i]
	if c.dirty {
		c.entropy = len(e.validOptions(i))
		c.dirty = false
	}
	return c.entropy
}

// Step collapses one minimum-entropy cell and propagates. It returns false
// once no uncollapsed cell has a valid option.
func (e *Engine) Step() bool {
	if !e.initialized {
		e.Initialize()
	}
	if e.done {
		return false
	}

	best := math.MaxInt
	var candidates []int
	for i := range e.cells {
		c := &e.cells[i]
		if c.collapsed || len(c.options) == 0 {
			continue
		}
		ent := e.entropyOf(i)
		if ent == 0 {
			continue
		}
		if ent < best {
			best = ent
			candidates = candidates[:0]
		}
		if ent == best {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		e.done = true
		e.log.Debug("wfc: run complete", "steps", e.steps, "holes", e.Holes())
		return false
	}

	i := candidates[e.rng.Intn(len(candidates))]
	valid := e.validOptions(i)
	e.steps++

	c := &e.cells[i]
	c.collapsed = true
	e.touch(i)
	if len(valid) == 0 {
		c.options = nil
		c.selected = -1
		return true
	}
	o := valid[e.rng.Intn(len(valid))]
	c.options = []int{o}
	c.selected = o
	if !c.forced {
		if k := capIndex(e.opts[o].Kind.Class); k >= 0 {
			e.counts[k]++
		}
	}

	queue := append([]int{i}, e.pruneCaps()...)
	e.propagate(queue)
	return true
}

// Run steps until completion and returns the result.
func (e *Engine) Run() Result {
	if !e.initialized {
		e.Initialize()
	}
	for e.Step() {
	}
	return e.BuildResult()
}

// OptionCount returns the number of options cell (x, y) still holds.
func (e *Engine) OptionCount(x, y int) int {
	if x < 0 || y < 0 || x >= e.w || y >= e.h || e.cells == nil {
		return 0
	}
	return len(e.cells[y*e.w+x].options)
}

// Entropy returns the explicit entropy of cell (x, y): the number of its
// options compatible with all neighbours. Collapsed cells report zero.
func (e *Engine) Entropy(x, y int) int {
	if x < 0 || y < 0 || x >= e.w || y >= e.h || e.cells == nil {
		return 0
	}
	i := y*e.w + x
	if e.cells[i].collapsed {
		return 0
	}
	return e.entropyOf(i)
}

// Collapsed reports whether cell (x, y) is fixed.
func (e *Engine) Collapsed(x, y int) bool {
	if x < 0 || y < 0 || x >= e.w || y >= e.h || e.cells == nil {
		return false
	}
	return e.cells[y*e.w+x].collapsed
}

// Holes counts cells that are out of options. Once the run is done, cells
// left open with no valid option are counted too.
func (e *Engine) Holes() int {
	n := 0
	for i := range e.cells {
		c := &e.cells[i]
		if len(c.options) == 0 || (e.done && !c.collapsed) {
			n++
		}
	}
	return n
}

// BuildResult snapshots the grid. Cells that never collapsed come out empty.
func (e *Engine) BuildResult() Result {
	res := Result{Width: e.w, Height: e.h, Cells: make([]CellResult, len(e.cells))}
	for i := range e.cells {
		c := &e.cells[i]
		cr := CellResult{X: i % e.w, Y: i / e.w, SkipSpawn: c.skipSpawn}
		if c.collapsed && c.selected >= 0 {
			o := e.opts[c.selected]
			cr.Tile = o.Kind
			cr.Rotation = o.Rotation
		}
		res.Cells[i] = cr
	}
	return res
}

// Generate runs a complete solve of cfg.
func Generate(cfg Config) Result {
	return New(cfg).Run()
}
