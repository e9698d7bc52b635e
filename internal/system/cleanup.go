package system

import (
	"time"

	"github.com/jadeengine/jade/internal/core/ecs"
	coresys "github.com/jadeengine/jade/internal/core/system"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world     *ecs.World
	log       *zap.Logger
	destroyed int
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if s.world.Pending() == 0 {
		return
	}
	ids := s.world.FlushDestroyQueue()
	s.destroyed += len(ids)
	s.log.Debug("destroy queue flushed", zap.Int("destroyed", len(ids)))
}

// Destroyed returns the total number of entities this system has destroyed.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
