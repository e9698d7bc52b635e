package event

import "github.com/jadeengine/jade/internal/core/ecs"

// Entity lifecycle and hierarchy events emitted by the scene.

type EntityCreated struct {
	Entity ecs.EntityID
	Name   string
}

type EntityDestroyed struct {
	Entity ecs.EntityID
	// Orphans are the children detached from Entity when it was destroyed.
	Orphans []ecs.EntityID
}

type ChildAttached struct {
	Parent ecs.EntityID
	Child  ecs.EntityID
}

type ChildDetached struct {
	Parent ecs.EntityID
	Child  ecs.EntityID
}
