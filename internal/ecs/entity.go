// Package ecs is the entity/component store the simulation runs on. Agents,
// the target and anything else drawn on the map are entities.
package ecs

// EntityID identifies an entity for the lifetime of a World.
type EntityID uint64

// NilEntity is never handed out.
const NilEntity EntityID = 0

// ComponentType keys a component store.
type ComponentType uint8

// Component is implemented by every data struct stored in the world.
type Component interface {
	Type() ComponentType
}
