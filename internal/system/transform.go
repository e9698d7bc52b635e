package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jadeengine/jade/internal/component"
	"github.com/jadeengine/jade/internal/core/ecs"
	coresys "github.com/jadeengine/jade/internal/core/system"
	"github.com/jadeengine/jade/internal/scene"
	"go.uber.org/zap"
)

// TransformSystem recomputes every WorldTransform from the roots down:
// world = parent world * local. Phase 3 (Transform).
type TransformSystem struct {
	scene *scene.Scene
	log   *zap.Logger
	stack []frame
}

type frame struct {
	e      ecs.EntityID
	parent mgl32.Mat4
}

func NewTransformSystem(sc *scene.Scene, log *zap.Logger) *TransformSystem {
	return &TransformSystem{scene: sc, log: log, stack: make([]frame, 0, 64)}
}

func (s *TransformSystem) Phase() coresys.Phase { return coresys.PhaseTransform }

func (s *TransformSystem) Update(_ time.Duration) {
	hier := s.scene.Hierarchy()
	locals := s.scene.Transforms()
	worlds := s.scene.WorldTransforms()

	for _, root := range s.scene.Roots() {
		s.stack = append(s.stack[:0], frame{e: root, parent: mgl32.Ident4()})
		for len(s.stack) > 0 {
			f := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]

			m := f.parent
			if local, err := locals.Value(f.e); err == nil {
				m = f.parent.Mul4(component.LocalMatrix(local))
				if err := worlds.Upsert(f.e, component.WorldTransform{Matrix: m}); err != nil {
					s.log.Error("world transform", zap.Uint32("entity", uint32(f.e)), zap.Error(err))
				}
			}
			for _, c := range hier.Children(f.e) {
				s.stack = append(s.stack, frame{e: c, parent: m})
			}
		}
	}
}
