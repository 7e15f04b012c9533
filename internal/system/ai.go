// Package system holds the per-tick simulation steps that run over the ECS
// world: agent decisions, movement, target steering.
package system

import (
	"time"

	"wavechase/internal/agent"
	"wavechase/internal/component"
	"wavechase/internal/ecs"
	"wavechase/internal/heat"
)

// ProcessAgents runs one decision tick for every AI entity and stores the
// chosen heading in its Motion. All agents see the same occupant snapshot,
// taken before anyone decides.
func ProcessAgents(w *ecs.World, core *agent.Core, now time.Duration) int {
	ids := w.Query(component.CAI, component.CPosition)
	occupants := make([]heat.Occupant, 0, len(ids))
	for _, id := range ids {
		a := w.Get(id, component.CAI).(component.AI).Agent
		a.Pos = w.Get(id, component.CPosition).(component.Position).Vec()
		occupants = append(occupants, a.Occupant())
	}

	for _, id := range ids {
		a := w.Get(id, component.CAI).(component.AI).Agent
		dir := core.Tick(a, now, occupants)
		motComp := w.Get(id, component.CMotion)
		if motComp == nil {
			continue
		}
		mot := motComp.(component.Motion)
		mot.Dir = dir
		w.Add(id, mot)
	}
	return len(ids)
}
