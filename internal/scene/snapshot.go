package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jadeengine/jade/internal/component"
	"github.com/jadeengine/jade/internal/core/ecs"
)

// Record is the flattened state of one entity. Parent is zero for roots.
type Record struct {
	Entity   uint32
	Parent   uint32
	Name     string
	Group    string
	Position [3]float32
	Rotation [4]float32 // x, y, z, w
	Scale    [3]float32
	Velocity [3]float32
}

// Snapshot flattens every entity with a transform. Parents come before
// their children and siblings keep insertion order, so Restore rebuilds the
// same child lists.
func (s *Scene) Snapshot() []Record {
	out := make([]Record, 0, s.transforms.Len())
	for _, root := range s.Roots() {
		stack := []ecs.EntityID{root}
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, s.record(e))
			// Children are newest first; pushing them in that order pops the
			// oldest first.
			stack = append(stack, s.hier.Children(e)...)
		}
	}
	return out
}

func (s *Scene) record(e ecs.EntityID) Record {
	r := Record{
		Entity: uint32(e),
		Parent: uint32(s.hier.Parent(e)),
		Group:  s.GroupOf(e),
	}
	if n, err := s.names.Value(e); err == nil {
		r.Name = n.Value
	}
	if tr, err := s.transforms.Value(e); err == nil {
		r.Position = tr.Position
		r.Rotation = [4]float32{tr.Rotation.V[0], tr.Rotation.V[1], tr.Rotation.V[2], tr.Rotation.W}
		r.Scale = tr.Scale
	}
	if v, err := s.velocities.Value(e); err == nil {
		r.Velocity = v.Linear
	}
	return r
}

// Restore spawns one entity per record and rebuilds the hierarchy. Records
// must list parents before children, as Snapshot does. It returns the new
// entity for every recorded id.
func (s *Scene) Restore(records []Record) (map[uint32]ecs.EntityID, error) {
	created := make(map[uint32]ecs.EntityID, len(records))
	for _, r := range records {
		e, err := s.SpawnIn(r.Group, r.Name)
		if err != nil {
			return created, err
		}
		created[r.Entity] = e

		tr := component.Transform{
			Position: r.Position,
			Rotation: mgl32.Quat{W: r.Rotation[3], V: mgl32.Vec3{r.Rotation[0], r.Rotation[1], r.Rotation[2]}},
			Scale:    r.Scale,
		}
		if err := s.transforms.Set(e, tr); err != nil {
			return created, err
		}
		if r.Velocity != ([3]float32{}) {
			if err := s.velocities.Add(e, component.Velocity{Linear: r.Velocity}); err != nil {
				return created, err
			}
		}
		if r.Parent != 0 {
			parent, ok := created[r.Parent]
			if !ok {
				return created, fmt.Errorf("restore %q: parent %d not restored yet", r.Name, r.Parent)
			}
			if err := s.Attach(parent, e); err != nil {
				return created, fmt.Errorf("restore %q: %w", r.Name, err)
			}
		}
	}
	return created, nil
}
