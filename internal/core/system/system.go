package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput     Phase = iota // 0: deliver last tick's events
	PhaseScript                 // 1: Lua on_update hooks
	PhaseUpdate                 // 2: simulation (movement)
	PhaseTransform              // 3: propagate world transforms down the hierarchy
	PhasePersist                // 4: periodic snapshots
	PhaseCleanup                // 5: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseScript:
		return "script"
	case PhaseUpdate:
		return "update"
	case PhaseTransform:
		return "transform"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
