package heat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"wavechase/internal/geom"
)

// SharedParams tunes the crowd map.
type SharedParams struct {
	Interval time.Duration `yaml:"interval"`
	Radius   int           `yaml:"radius"`
	Peak     float64       `yaml:"peak"`
}

// Occupant is one agent as seen by the crowd map.
type Occupant struct {
	ID      uuid.UUID
	Cell    geom.Cell
	Camping bool
}

// Shared is the crowd heat service. One instance is owned by the level and
// read by every agent; it is rebuilt wholesale at most once per Interval.
type Shared struct {
	mu      sync.RWMutex
	p       SharedParams
	heat    map[geom.Cell]float64
	blocked mapset.Set[geom.Cell]
	last    time.Duration
	built   bool
}

// NewShared returns an empty crowd map.
func NewShared(p SharedParams) *Shared {
	s := &Shared{p: p}
	s.Reset()
	return s
}

// Reset drops the snapshot so the next Update rebuilds immediately.
func (s *Shared) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heat = make(map[geom.Cell]float64)
	s.blocked = mapset.New[geom.Cell]()
	s.built = false
	s.last = 0
}

// Update rebuilds the snapshot on behalf of the agent self if Interval has
// passed since the last rebuild. Every other occupant radiates heat; self's
// own cell is hard blocked unless self is camping. It reports whether a
// rebuild happened.
func (s *Shared) Update(now time.Duration, self uuid.UUID, occupants []Occupant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built && now-s.last < s.p.Interval {
		return false
	}
	heat := make(map[geom.Cell]float64)
	blocked := mapset.New[geom.Cell]()
	for _, o := range occupants {
		if o.ID == self {
			if !o.Camping {
				blocked.Put(o.Cell)
			}
			continue
		}
		r := s.p.Radius
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				c := geom.Cell{X: o.Cell.X + dx, Y: o.Cell.Y + dy}
				d := geom.Manhattan(c, o.Cell)
				if d > r {
					continue
				}
				heat[c] += s.p.Peak * (1 - float64(d)/float64(r+1))
			}
		}
	}
	s.heat, s.blocked = heat, blocked
	s.last, s.built = now, true
	return true
}

// Heat returns the crowd heat at c from the current snapshot.
func (s *Shared) Heat(c geom.Cell) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heat[c]
}

// Blocked reports whether c is hard blocked in the current snapshot.
func (s *Shared) Blocked(c geom.Cell) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blocked.Has(c)
}

// BlockedCount returns the number of hard-blocked cells.
func (s *Shared) BlockedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blocked.Size()
}
