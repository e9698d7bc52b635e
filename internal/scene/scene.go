package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jadeengine/jade/internal/component"
	"github.com/jadeengine/jade/internal/core/ecs"
	"github.com/jadeengine/jade/internal/core/event"
	"github.com/jadeengine/jade/internal/core/hierarchy"
	"github.com/jadeengine/jade/internal/data"
	"go.uber.org/zap"
)

// Group tag types for scene entities. Ungrouped entities come from the
// world's global pool.
type (
	Actor struct{}
	Prop  struct{}
)

const (
	GroupNone  = ""
	GroupActor = "actor"
	GroupProp  = "prop"
)

var (
	ErrUnknownGroup = errors.New("scene: unknown group")
	ErrNotAlive     = errors.New("scene: entity is not alive")
	// ErrHandleSpace is returned when the global pool hands out an id that
	// would overlap a group handle.
	ErrHandleSpace = errors.New("scene: global id space exhausted")
)

// Scene bundles the ECS world, the standard component pools, the hierarchy
// and the event bus. Single-goroutine access only (game loop).
type Scene struct {
	world *ecs.World
	hier  *hierarchy.System
	bus   *event.Bus
	log   *zap.Logger

	names      *ecs.ComponentPool[component.Name]
	nodes      *ecs.ComponentPool[hierarchy.Node]
	transforms *ecs.ComponentPool[component.Transform]
	worlds     *ecs.ComponentPool[component.WorldTransform]
	velocities *ecs.ComponentPool[component.Velocity]

	actors *ecs.EntityGroup[Actor]
	props  *ecs.EntityGroup[Prop]

	// byName lists the live entities carrying each name in spawn order.
	byName map[string][]ecs.EntityID
}

func New(bus *event.Bus, log *zap.Logger) (*Scene, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if bus == nil {
		bus = event.NewBus()
	}
	w := ecs.NewWorld()
	reg := w.Registry()

	s := &Scene{
		world:  w,
		bus:    bus,
		log:    log,
		byName: make(map[string][]ecs.EntityID, 256),
	}

	var err error
	if s.names, err = ecs.PoolOf[component.Name](reg); err != nil {
		return nil, err
	}
	if s.nodes, err = ecs.PoolOf[hierarchy.Node](reg); err != nil {
		return nil, err
	}
	if s.transforms, err = ecs.PoolOf[component.Transform](reg); err != nil {
		return nil, err
	}
	if s.worlds, err = ecs.PoolOf[component.WorldTransform](reg); err != nil {
		return nil, err
	}
	if s.velocities, err = ecs.PoolOf[component.Velocity](reg); err != nil {
		return nil, err
	}
	if s.actors, err = ecs.NewEntityGroup[Actor](); err != nil {
		return nil, fmt.Errorf("actor group: %w", err)
	}
	if s.props, err = ecs.NewEntityGroup[Prop](); err != nil {
		return nil, fmt.Errorf("prop group: %w", err)
	}
	w.AttachGroup(s.actors)
	w.AttachGroup(s.props)
	w.OnDestroy(s.beforeDestroy)

	s.hier = hierarchy.New(s.nodes, s.names, log.Named("hierarchy"))
	return s, nil
}

func (s *Scene) World() *ecs.World            { return s.world }
func (s *Scene) Hierarchy() *hierarchy.System { return s.hier }
func (s *Scene) Bus() *event.Bus              { return s.bus }

func (s *Scene) Names() *ecs.ComponentPool[component.Name] {
	return s.names
}

func (s *Scene) Transforms() *ecs.ComponentPool[component.Transform] {
	return s.transforms
}

func (s *Scene) WorldTransforms() *ecs.ComponentPool[component.WorldTransform] {
	return s.worlds
}

func (s *Scene) Velocities() *ecs.ComponentPool[component.Velocity] {
	return s.velocities
}

// Spawn creates an ungrouped entity with a name and an identity transform.
func (s *Scene) Spawn(name string) (ecs.EntityID, error) {
	return s.SpawnIn(GroupNone, name)
}

// SpawnIn creates an entity from the given group's id space.
func (s *Scene) SpawnIn(group, name string) (ecs.EntityID, error) {
	var (
		e   ecs.EntityID
		err error
	)
	switch group {
	case GroupNone:
		e, err = s.world.CreateEntity()
		if err == nil && e > ecs.MaxLocalID {
			s.world.Pool().Delete(e)
			err = ErrHandleSpace
		}
	case GroupActor:
		e, err = s.actors.Create()
	case GroupProp:
		e, err = s.props.Create()
	default:
		return ecs.InvalidEntity, fmt.Errorf("spawn %q: %w %q", name, ErrUnknownGroup, group)
	}
	if err != nil {
		s.log.Error("spawn failed", zap.String("name", name), zap.String("group", group), zap.Error(err))
		return ecs.InvalidEntity, fmt.Errorf("spawn %q: %w", name, err)
	}

	n := component.NewName(name)
	if err := s.attachDefaults(e, n); err != nil {
		s.world.DestroyEntity(e)
		return ecs.InvalidEntity, fmt.Errorf("spawn %q: %w", name, err)
	}
	if n.Value != "" {
		s.byName[n.Value] = append(s.byName[n.Value], e)
	}
	event.Emit(s.bus, event.EntityCreated{Entity: e, Name: n.Value})
	s.log.Debug("entity spawned", zap.Uint32("entity", uint32(e)), zap.String("name", n.Value), zap.String("group", group))
	return e, nil
}

func (s *Scene) attachDefaults(e ecs.EntityID, n component.Name) error {
	if err := s.names.Add(e, n); err != nil {
		return err
	}
	if err := s.transforms.Add(e, component.NewTransform()); err != nil {
		return err
	}
	return s.worlds.Add(e, component.WorldTransform{Matrix: mgl32.Ident4()})
}

// GroupOf returns the name of the group that issued e.
func (s *Scene) GroupOf(e ecs.EntityID) string {
	switch {
	case s.actors.Alive(e):
		return GroupActor
	case s.props.Alive(e):
		return GroupProp
	}
	return GroupNone
}

func (s *Scene) Alive(e ecs.EntityID) bool { return s.world.Alive(e) }

// Lookup returns the earliest spawned live entity with name. Names need not
// be unique; when that entity is destroyed the next one takes its place.
func (s *Scene) Lookup(name string) (ecs.EntityID, bool) {
	ids := s.byName[component.NewName(name).Value]
	if len(ids) == 0 {
		return ecs.InvalidEntity, false
	}
	return ids[0], true
}

// NameOf returns e's name, or a placeholder when it has none.
func (s *Scene) NameOf(e ecs.EntityID) string { return s.hier.NameOf(e) }

// Attach makes child the most recent child of parent.
func (s *Scene) Attach(parent, child ecs.EntityID) error {
	if !s.world.Alive(parent) {
		return fmt.Errorf("attach parent %d: %w", parent, ErrNotAlive)
	}
	if !s.world.Alive(child) {
		return fmt.Errorf("attach child %d: %w", child, ErrNotAlive)
	}
	old := s.hier.Parent(child)
	if err := s.hier.AddChild(parent, child); err != nil {
		return err
	}
	if old != ecs.InvalidEntity {
		event.Emit(s.bus, event.ChildDetached{Parent: old, Child: child})
	}
	event.Emit(s.bus, event.ChildAttached{Parent: parent, Child: child})
	return nil
}

// Detach removes child from its parent. It reports false when child had no
// parent.
func (s *Scene) Detach(child ecs.EntityID) bool {
	parent := s.hier.Parent(child)
	if !s.hier.RemoveChild(child) {
		return false
	}
	event.Emit(s.bus, event.ChildDetached{Parent: parent, Child: child})
	return true
}

// Destroy removes e and all of its components immediately. Its children
// become roots. While one of e's pools is being iterated the destroy is
// deferred to the next flush and Destroy reports false.
func (s *Scene) Destroy(e ecs.EntityID) bool {
	return s.world.DestroyEntity(e)
}

// MarkForDestruction defers Destroy to the end of the tick.
func (s *Scene) MarkForDestruction(e ecs.EntityID) {
	s.world.MarkForDestruction(e)
}

func (s *Scene) beforeDestroy(e ecs.EntityID) {
	parent := s.hier.Parent(e)
	orphans := s.hier.Detach(e)
	if parent != ecs.InvalidEntity {
		event.Emit(s.bus, event.ChildDetached{Parent: parent, Child: e})
	}
	for _, c := range orphans {
		event.Emit(s.bus, event.ChildDetached{Parent: e, Child: c})
	}
	if n, err := s.names.Value(e); err == nil {
		s.unindex(n.Value, e)
	}
	event.Emit(s.bus, event.EntityDestroyed{Entity: e, Orphans: orphans})
	s.log.Debug("entity destroyed", zap.Uint32("entity", uint32(e)), zap.Int("orphans", len(orphans)))
}

func (s *Scene) unindex(name string, e ecs.EntityID) {
	ids := slices.DeleteFunc(s.byName[name], func(id ecs.EntityID) bool { return id == e })
	if len(ids) == 0 {
		delete(s.byName, name)
		return
	}
	s.byName[name] = ids
}

// Roots returns every entity with a transform and no parent, in storage
// order.
func (s *Scene) Roots() []ecs.EntityID {
	var out []ecs.EntityID
	for _, e := range s.transforms.Entities() {
		if s.hier.Parent(e) == ecs.InvalidEntity {
			out = append(out, e)
		}
	}
	return out
}

// Load spawns every entry of table, parents first, and returns the created
// entities by name.
func (s *Scene) Load(table *data.SceneTable) (map[string]ecs.EntityID, error) {
	created := make(map[string]ecs.EntityID, table.Count())
	for _, entry := range table.Entries() {
		e, err := s.SpawnIn(entry.Group, entry.Name)
		if err != nil {
			return created, err
		}
		created[entry.Name] = e

		tr := component.NewTransform()
		tr.Position = mgl32.Vec3(entry.Position)
		tr.Rotation = component.EulerDegrees(entry.Rotation[0], entry.Rotation[1], entry.Rotation[2])
		tr.Scale = mgl32.Vec3(entry.ScaleOrDefault())
		if err := s.transforms.Set(e, tr); err != nil {
			return created, err
		}
		if entry.Velocity != ([3]float32{}) {
			if err := s.velocities.Add(e, component.Velocity{Linear: mgl32.Vec3(entry.Velocity)}); err != nil {
				return created, err
			}
		}
		if entry.Parent != "" {
			if err := s.Attach(created[entry.Parent], e); err != nil {
				return created, fmt.Errorf("entity %q: %w", entry.Name, err)
			}
		}
	}
	s.log.Info("scene loaded", zap.String("scene", table.Name()), zap.Int("entities", len(created)))
	return created, nil
}
