package scripting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jadeengine/jade/internal/component"
	"github.com/jadeengine/jade/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// register installs the global ecs table. Entities cross the boundary as
// plain numbers. Failures return nil plus an error string, Lua style.
func (e *Engine) register() {
	mod := e.vm.NewTable()
	e.vm.SetFuncs(mod, map[string]lua.LGFunction{
		"spawn":        e.luaSpawn,
		"destroy":      e.luaDestroy,
		"alive":        e.luaAlive,
		"add_child":    e.luaAddChild,
		"remove_child": e.luaRemoveChild,
		"children":     e.luaChildren,
		"parent":       e.luaParent,
		"name":         e.luaName,
		"lookup":       e.luaLookup,
		"position":     e.luaPosition,
		"set_position": e.luaSetPosition,
		"set_velocity": e.luaSetVelocity,
		"log":          e.luaLog,
	})
	e.vm.SetGlobal("ecs", mod)
}

// checkEntity requires argument n to be a whole number in [1, MaxUint32].
// Anything else raises a Lua argument error.
func checkEntity(L *lua.LState, n int) ecs.EntityID {
	f := float64(L.CheckNumber(n))
	if f != math.Trunc(f) || f < 1 || f > math.MaxUint32 {
		L.ArgError(n, "entity id expected")
		return ecs.InvalidEntity
	}
	return ecs.EntityID(uint32(f))
}

func checkVec3(L *lua.LState, first int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.CheckNumber(first)),
		float32(L.CheckNumber(first + 1)),
		float32(L.CheckNumber(first + 2)),
	}
}

func pushFail(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

// ecs.spawn(name [, group]) -> entity | nil, err
func (e *Engine) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	group := L.OptString(2, "")
	id, err := e.scene.SpawnIn(group, name)
	if err != nil {
		return pushFail(L, err)
	}
	L.Push(lua.LNumber(id))
	return 1
}

// ecs.destroy(e) queues e for end-of-tick destruction.
func (e *Engine) luaDestroy(L *lua.LState) int {
	id := checkEntity(L, 1)
	if !e.scene.Alive(id) {
		L.Push(lua.LFalse)
		return 1
	}
	e.scene.MarkForDestruction(id)
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaAlive(L *lua.LState) int {
	L.Push(lua.LBool(e.scene.Alive(checkEntity(L, 1))))
	return 1
}

// ecs.add_child(parent, child) -> true | nil, err
func (e *Engine) luaAddChild(L *lua.LState) int {
	if err := e.scene.Attach(checkEntity(L, 1), checkEntity(L, 2)); err != nil {
		return pushFail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaRemoveChild(L *lua.LState) int {
	L.Push(lua.LBool(e.scene.Detach(checkEntity(L, 1))))
	return 1
}

// ecs.children(parent) -> array, newest child first
func (e *Engine) luaChildren(L *lua.LState) int {
	t := L.NewTable()
	for _, c := range e.scene.Hierarchy().Children(checkEntity(L, 1)) {
		t.Append(lua.LNumber(c))
	}
	L.Push(t)
	return 1
}

func (e *Engine) luaParent(L *lua.LState) int {
	p := e.scene.Hierarchy().Parent(checkEntity(L, 1))
	if p == ecs.InvalidEntity {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(p))
	return 1
}

func (e *Engine) luaName(L *lua.LState) int {
	L.Push(lua.LString(e.scene.NameOf(checkEntity(L, 1))))
	return 1
}

func (e *Engine) luaLookup(L *lua.LState) int {
	id, ok := e.scene.Lookup(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(id))
	return 1
}

// ecs.position(e) -> x, y, z | nil, err
func (e *Engine) luaPosition(L *lua.LState) int {
	tr, err := e.scene.Transforms().Value(checkEntity(L, 1))
	if err != nil {
		return pushFail(L, err)
	}
	L.Push(lua.LNumber(tr.Position.X()))
	L.Push(lua.LNumber(tr.Position.Y()))
	L.Push(lua.LNumber(tr.Position.Z()))
	return 3
}

func (e *Engine) luaSetPosition(L *lua.LState) int {
	pos := checkVec3(L, 2)
	err := e.scene.Transforms().Update(checkEntity(L, 1), func(t *component.Transform) {
		t.Position = pos
	})
	if err != nil {
		return pushFail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

// ecs.set_velocity(e, x, y, z) attaches a Velocity if e has none.
func (e *Engine) luaSetVelocity(L *lua.LState) int {
	id := checkEntity(L, 1)
	v := checkVec3(L, 2)
	if !e.scene.Alive(id) {
		L.Push(lua.LFalse)
		return 1
	}
	if err := e.scene.Velocities().Upsert(id, component.Velocity{Linear: v}); err != nil {
		return pushFail(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
