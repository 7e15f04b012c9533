// Package heat holds the two avoidance signals of the decision core: the
// per-agent visit history that discourages loops and the shared crowd map
// that keeps agents from piling onto the same cells.
package heat

import "wavechase/internal/geom"

// Params tunes a per-agent Tracker.
type Params struct {
	History         int     `yaml:"history"`          // FIFO length
	RepeatThreshold int     `yaml:"repeat_threshold"` // visits before a cell is saturated
	Baseline        float64 `yaml:"baseline"`         // heat per remembered visit
	SpawnHeat       float64 `yaml:"spawn_heat"`       // passive heat on the spawn cell
	SpawnRadius     int     `yaml:"spawn_radius"`
}

// Tracker remembers an agent's last History visited cells.
type Tracker struct {
	p      Params
	spawn  geom.Cell
	fifo   []geom.Cell
	counts map[geom.Cell]int
}

// NewTracker returns an empty tracker for an agent spawned at spawn.
func NewTracker(p Params, spawn geom.Cell) *Tracker {
	if p.History < 1 {
		p.History = 1
	}
	t := &Tracker{p: p}
	t.Reset(spawn)
	return t
}

// Reset forgets every visit and moves the spawn cell.
func (t *Tracker) Reset(spawn geom.Cell) {
	t.spawn = spawn
	t.fifo = t.fifo[:0]
	t.counts = make(map[geom.Cell]int)
}

// Visit records entering c. It reports true when this visit pushed the
// cell's count past the repeat threshold.
func (t *Tracker) Visit(c geom.Cell) bool {
	t.fifo = append(t.fifo, c)
	t.counts[c]++
	if len(t.fifo) > t.p.History {
		old := t.fifo[0]
		t.fifo = t.fifo[1:]
		if t.counts[old]--; t.counts[old] <= 0 {
			delete(t.counts, old)
		}
	}
	return t.counts[c] == t.p.RepeatThreshold+1
}

// Count returns how many remembered visits c has.
func (t *Tracker) Count(c geom.Cell) int { return t.counts[c] }

// Len returns the number of remembered visits.
func (t *Tracker) Len() int { return len(t.fifo) }

// Saturated reports whether c has been visited more often than the repeat
// threshold allows. Saturated cells are excluded outright, not scored.
func (t *Tracker) Saturated(c geom.Cell) bool {
	return t.counts[c] > t.p.RepeatThreshold
}

// Heat returns the soft avoidance signal for c.
func (t *Tracker) Heat(c geom.Cell) float64 {
	h := t.p.Baseline * float64(t.counts[c])
	if d := geom.Manhattan(c, t.spawn); d <= t.p.SpawnRadius {
		h += t.p.SpawnHeat * (1 - float64(d)/float64(t.p.SpawnRadius+1))
	}
	return h
}
