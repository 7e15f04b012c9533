// Package access is the gate access-control service. It tracks which doors
// and portals are locked and hands out short-lived override tickets that let
// a single agent through a locked gate.
//
// A Registry is owned by the level: create one per level and call Reset when
// the level is torn down.
package access

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"

	"wavechase/internal/geom"
)

// Gate is the access-control collaborator the decision core talks to.
// Times are simulation clock offsets.
type Gate interface {
	HasAccess(agent uuid.UUID, gate geom.Cell, now time.Duration) bool
	GrantOverrideTicket(agent uuid.UUID, gate geom.Cell, lifetime time.Duration, uses int, now time.Duration)
}

type ticketKey struct {
	agent uuid.UUID
	gate  geom.Cell
}

type ticket struct {
	expires time.Duration
	uses    int
}

// Registry implements Gate. It is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	locked  mapset.Set[geom.Cell]
	tickets map[ticketKey]ticket
	log     *slog.Logger
}

var _ Gate = (*Registry)(nil)

// NewRegistry returns an empty registry with every gate unlocked.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		locked:  mapset.New[geom.Cell](),
		tickets: make(map[ticketKey]ticket),
		log:     log,
	}
}

// Lock marks gates as locked.
func (r *Registry) Lock(gates ...geom.Cell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range gates {
		r.locked.Put(g)
	}
}

// Unlock opens a gate for everyone.
func (r *Registry) Unlock(gate geom.Cell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked.Remove(gate)
}

// Locked reports whether a gate is locked.
func (r *Registry) Locked(gate geom.Cell) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locked.Has(gate)
}

// LockedCount returns the number of locked gates.
func (r *Registry) LockedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locked.Size()
}

// HasAccess reports whether agent may pass gate at now: the gate is open, or
// the agent holds an unexpired ticket with uses left.
func (r *Registry) HasAccess(agent uuid.UUID, gate geom.Cell, now time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.locked.Has(gate) {
		return true
	}
	_, ok := r.valid(agent, gate, now)
	return ok
}

// GrantOverrideTicket gives agent uses passes through gate until
// now+lifetime. A second grant replaces the first.
func (r *Registry) GrantOverrideTicket(agent uuid.UUID, gate geom.Cell, lifetime time.Duration, uses int, now time.Duration) {
	if uses <= 0 || lifetime <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticketKey{agent, gate}] = ticket{expires: now + lifetime, uses: uses}
	r.log.Debug("access: ticket granted", "agent", agent, "gate", gate, "uses", uses, "lifetime", lifetime)
}

// Consume records agent passing gate. Open gates always pass. For a locked
// gate one ticket use is spent; it reports false when no valid ticket exists.
func (r *Registry) Consume(agent uuid.UUID, gate geom.Cell, now time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.locked.Has(gate) {
		return true
	}
	k := ticketKey{agent, gate}
	t, ok := r.valid(agent, gate, now)
	if !ok {
		return false
	}
	t.uses--
	if t.uses == 0 {
		delete(r.tickets, k)
	} else {
		r.tickets[k] = t
	}
	return true
}

// valid returns the agent's ticket for gate, dropping it if expired.
// Callers hold r.mu.
func (r *Registry) valid(agent uuid.UUID, gate geom.Cell, now time.Duration) (ticket, bool) {
	k := ticketKey{agent, gate}
	t, ok := r.tickets[k]
	if !ok {
		return ticket{}, false
	}
	if now >= t.expires || t.uses <= 0 {
		delete(r.tickets, k)
		return ticket{}, false
	}
	return t, true
}

// Tickets returns the number of tickets held, expired ones included until
// they are next looked up.
func (r *Registry) Tickets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

// Reset drops every lock and ticket. Call it when the level is torn down.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = mapset.New[geom.Cell]()
	r.tickets = make(map[ticketKey]ticket)
}
