package system

import (
	"time"

	"github.com/jadeengine/jade/internal/core/event"
	coresys "github.com/jadeengine/jade/internal/core/system"
	"go.uber.org/zap"
)

// EventDispatchSystem delivers the events emitted during the previous tick.
// Phase 0 (Input).
type EventDispatchSystem struct {
	bus *event.Bus
	log *zap.Logger
}

func NewEventDispatchSystem(bus *event.Bus, log *zap.Logger) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus, log: log}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	if n := s.bus.DispatchAll(); n > 0 {
		s.log.Debug("events dispatched", zap.Int("count", n))
	}
}
