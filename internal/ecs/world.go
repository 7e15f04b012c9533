package ecs

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// World is the central entity registry and component store.
type World struct {
	nextID     EntityID
	alive      mapset.Set[EntityID]
	components map[ComponentType]map[EntityID]Component
}

// NewWorld creates an empty World.
func NewWorld() *World {
	w := &World{}
	w.Clear()
	return w
}

// Clear destroys every entity. IDs keep counting up so stale handles from
// before the clear never alias new entities.
func (w *World) Clear() {
	if w.nextID == NilEntity {
		w.nextID = 1
	}
	w.alive = mapset.New[EntityID]()
	w.components = make(map[ComponentType]map[EntityID]Component)
}

// CreateEntity mints a new entity ID and marks it alive.
func (w *World) CreateEntity() EntityID {
	id := w.nextID
	w.nextID++
	w.alive.Put(id)
	return id
}

// DestroyEntity marks the entity dead and removes all its components.
func (w *World) DestroyEntity(id EntityID) {
	if !w.alive.Has(id) {
		return
	}
	w.alive.Remove(id)
	for _, store := range w.components {
		delete(store, id)
	}
}

// Alive reports whether the entity is alive.
func (w *World) Alive(id EntityID) bool { return w.alive.Has(id) }

// Len returns the number of live entities.
func (w *World) Len() int { return w.alive.Size() }

// Add attaches a component to an entity, replacing one of the same type.
func (w *World) Add(id EntityID, c Component) {
	t := c.Type()
	if w.components[t] == nil {
		w.components[t] = make(map[EntityID]Component)
	}
	w.components[t][id] = c
}

// Get returns the component of the given type for entity id, or nil.
func (w *World) Get(id EntityID, t ComponentType) Component {
	return w.components[t][id]
}

// Remove detaches a component from an entity.
func (w *World) Remove(id EntityID, t ComponentType) {
	delete(w.components[t], id)
}

// Has reports whether entity id has a component of the given type.
func (w *World) Has(id EntityID, t ComponentType) bool {
	_, ok := w.components[t][id]
	return ok
}

// Query returns all alive entities that have every listed component type,
// in ascending ID order so systems visit entities deterministically.
func (w *World) Query(types ...ComponentType) []EntityID {
	if len(types) == 0 {
		return nil
	}
	// Scan the smallest store.
	smallest := types[0]
	for _, t := range types[1:] {
		if len(w.components[t]) < len(w.components[smallest]) {
			smallest = t
		}
	}
	var result []EntityID
	for id := range w.components[smallest] {
		if !w.alive.Has(id) {
			continue
		}
		match := true
		for _, t := range types {
			if t != smallest && !w.Has(id, t) {
				match = false
				break
			}
		}
		if match {
			result = append(result, id)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// First returns the lowest-ID entity matching types, or NilEntity.
func (w *World) First(types ...ComponentType) EntityID {
	if ids := w.Query(types...); len(ids) > 0 {
		return ids[0]
	}
	return NilEntity
}
