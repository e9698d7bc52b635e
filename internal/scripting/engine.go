package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jadeengine/jade/internal/scene"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Engine wraps a single gopher-lua VM bound to a scene.
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	scene *scene.Scene
}

// NewEngine creates a Lua engine over sc and loads every script in
// scriptsDir, in file name order. A missing directory loads nothing.
func NewEngine(scriptsDir string, sc *scene.Scene, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{vm: vm, log: log, scene: sc}
	e.register()

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("script directory missing", zap.String("dir", dir))
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua source in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// HasUpdate reports whether a script defined the on_update hook.
func (e *Engine) HasUpdate() bool {
	return e.vm.GetGlobal("on_update").Type() == lua.LTFunction
}

// Update calls the global on_update(dt) with dt in seconds. It is a no-op
// when no script defines on_update.
func (e *Engine) Update(dt time.Duration) error {
	fn := e.vm.GetGlobal("on_update")
	if fn.Type() != lua.LTFunction {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(dt.Seconds())); err != nil {
		e.log.Error("lua on_update error", zap.Error(err))
		return fmt.Errorf("on_update: %w", err)
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
