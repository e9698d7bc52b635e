package system

import (
	"time"

	"github.com/jadeengine/jade/internal/component"
	"github.com/jadeengine/jade/internal/core/ecs"
	coresys "github.com/jadeengine/jade/internal/core/system"
	"github.com/jadeengine/jade/internal/scene"
)

// MovementSystem integrates Velocity into local Transform positions.
// Phase 2 (Update).
type MovementSystem struct {
	scene *scene.Scene
}

func NewMovementSystem(sc *scene.Scene) *MovementSystem {
	return &MovementSystem{scene: sc}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	secs := float32(dt.Seconds())
	ecs.Each2(s.scene.Transforms(), s.scene.Velocities(), func(_ ecs.EntityID, t *component.Transform, v *component.Velocity) {
		t.Position = t.Position.Add(v.Linear.Mul(secs))
	})
}
