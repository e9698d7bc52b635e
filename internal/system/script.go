package system

import (
	"time"

	coresys "github.com/jadeengine/jade/internal/core/system"
	"github.com/jadeengine/jade/internal/scripting"
)

// ScriptSystem runs the Lua on_update hook once per tick. Phase 1 (Script).
// Script errors are logged by the engine and do not stop the loop.
type ScriptSystem struct {
	engine *scripting.Engine
}

func NewScriptSystem(engine *scripting.Engine) *ScriptSystem {
	return &ScriptSystem{engine: engine}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseScript }

func (s *ScriptSystem) Update(dt time.Duration) {
	_ = s.engine.Update(dt)
}
