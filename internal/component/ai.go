package component

import (
	"wavechase/internal/agent"
	"wavechase/internal/ecs"
)

const CAI ecs.ComponentType = 5

// AI hands an entity to the decision core. The agent state is shared by
// pointer; the entity's Position is the source of truth for where it is.
type AI struct {
	Agent *agent.Agent
}

func (AI) Type() ecs.ComponentType { return CAI }
