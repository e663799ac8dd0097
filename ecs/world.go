package ecs

import "github.com/milk9111/musicbox/ecs/component"

// World owns entities, their components and the system order.
type World struct {
	entities  entityStore
	stores    map[component.ComponentID]store
	scheduler Scheduler
	events    EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]store)}
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil {
		return
	}
	w.scheduler.Add(s)
}

// Update clears last frame's events and runs all systems once.
func (w *World) Update(dt float64) {
	if w == nil {
		return
	}
	w.events.flush()
	w.scheduler.Update(w, dt)
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}
