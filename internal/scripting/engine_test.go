package scripting

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/jadeengine/jade/internal/core/event"
	"github.com/jadeengine/jade/internal/scene"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap/zaptest"
)

func newEngine(t *testing.T, dir string) (*Engine, *scene.Scene) {
	t.Helper()
	log := zaptest.NewLogger(t)
	sc, err := scene.New(event.NewBus(), log)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(dir, sc, log)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e, sc
}

// go test -run ^TestSpawnAndParent$ ./internal/scripting -count 1
func TestSpawnAndParent(t *testing.T) {
	e, sc := newEngine(t, "")

	err := e.DoString(`
		root = ecs.spawn("root")
		a = ecs.spawn("a", "actor")
		b = ecs.spawn("b")
		assert(ecs.add_child(root, a))
		assert(ecs.add_child(root, b))
		kids = ecs.children(root)
		first = ecs.name(kids[1])
		assert(ecs.parent(a) == root)
	`)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.vm.GetGlobal("first").String(); got != "b" {
		t.Errorf("Expected newest child b first, got %s", got)
	}

	root, ok := sc.Lookup("root")
	if !ok {
		t.Fatal("root not spawned")
	}
	var names []string
	for _, c := range sc.Hierarchy().Children(root) {
		names = append(names, sc.NameOf(c))
	}
	if !slices.Equal(names, []string{"b", "a"}) {
		t.Errorf("Expected [b a], got %v", names)
	}
	a, _ := sc.Lookup("a")
	if sc.GroupOf(a) != scene.GroupActor {
		t.Errorf("Expected a in actor group, got %q", sc.GroupOf(a))
	}
}

// go test -run ^TestScriptErrorsAreValues$ ./internal/scripting -count 1
func TestScriptErrorsAreValues(t *testing.T) {
	e, _ := newEngine(t, "")

	err := e.DoString(`
		p = ecs.spawn("p")
		c = ecs.spawn("c")
		ecs.add_child(p, c)
		ok, cycle_err = ecs.add_child(c, p)
		ghost, group_err = ecs.spawn("g", "nope")
		missing = ecs.lookup("nobody")
	`)
	if err != nil {
		t.Fatal(err)
	}
	if e.vm.GetGlobal("ok") != lua.LNil {
		t.Error("Expected cycle to fail")
	}
	if e.vm.GetGlobal("cycle_err").Type() != lua.LTString {
		t.Error("Expected an error string for the cycle")
	}
	if e.vm.GetGlobal("ghost") != lua.LNil || e.vm.GetGlobal("group_err").Type() != lua.LTString {
		t.Error("Expected unknown group to fail")
	}
	if e.vm.GetGlobal("missing") != lua.LNil {
		t.Error("Expected lookup of unknown name to return nil")
	}
}

// go test -run ^TestUpdateCallsHook$ ./internal/scripting -count 1
func TestUpdateCallsHook(t *testing.T) {
	dir := t.TempDir()
	src := `
		total = 0
		function on_update(dt)
			total = total + dt
			local e = ecs.lookup("mover")
			ecs.set_position(e, total, 0, 0)
			ecs.set_velocity(e, 1, 2, 3)
		end
	`
	if err := os.WriteFile(filepath.Join(dir, "update.lua"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	e, sc := newEngine(t, dir)
	if !e.HasUpdate() {
		t.Fatal("Expected on_update to be defined")
	}
	mover, err := sc.Spawn("mover")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		if err := e.Update(250 * time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
	tr, _ := sc.Transforms().Value(mover)
	if tr.Position.X() != 1 {
		t.Errorf("Expected x = 1 after four quarter ticks, got %v", tr.Position.X())
	}
	v, err := sc.Velocities().Value(mover)
	if err != nil || v.Linear.Z() != 3 {
		t.Errorf("Expected velocity z = 3, got %v (%v)", v.Linear, err)
	}
}

// go test -run ^TestDestroyIsDeferred$ ./internal/scripting -count 1
func TestDestroyIsDeferred(t *testing.T) {
	e, sc := newEngine(t, "")
	if err := e.DoString(`doomed = ecs.spawn("doomed"); queued = ecs.destroy(doomed)`); err != nil {
		t.Fatal(err)
	}
	id, ok := sc.Lookup("doomed")
	if !ok || !sc.Alive(id) {
		t.Fatal("Script destroy must wait for the flush")
	}
	sc.World().FlushDestroyQueue()
	if sc.Alive(id) {
		t.Error("Expected entity destroyed after flush")
	}
	if e.vm.GetGlobal("queued") != lua.LTrue {
		t.Error("Expected destroy to report true")
	}
}

// go test -run ^TestLoadErrors$ ./internal/scripting -count 1
func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	sc, _ := scene.New(nil, zaptest.NewLogger(t))
	if _, err := NewEngine(dir, sc, zaptest.NewLogger(t)); err == nil {
		t.Error("Expected syntax error to fail NewEngine")
	}

	e, err := NewEngine(filepath.Join(dir, "missing"), sc, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Missing directory should load nothing, got %v", err)
	}
	defer e.Close()
	if e.HasUpdate() {
		t.Error("Expected no on_update")
	}
	if err := e.Update(time.Second); err != nil {
		t.Errorf("Update without hook should be a no-op, got %v", err)
	}
}

// go test -run ^TestEntityArgumentValidation$ ./internal/scripting -count 1
func TestEntityArgumentValidation(t *testing.T) {
	e, _ := newEngine(t, "")
	if err := e.DoString(`id = ecs.spawn("one")`); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		arg  string
	}{
		{"fraction", "id + 0.9"},
		{"zero", "0"},
		{"negative", "-1"},
		{"too large", "4294967296"},
		{"nan", "0/0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := "ok = pcall(ecs.alive, " + tc.arg + ")"
			if err := e.DoString(src); err != nil {
				t.Fatal(err)
			}
			if e.vm.GetGlobal("ok") != lua.LFalse {
				t.Errorf("Expected ecs.alive(%s) to raise an argument error", tc.arg)
			}
		})
	}

	if err := e.DoString(`alive = ecs.alive(id)`); err != nil {
		t.Fatal(err)
	}
	if e.vm.GetGlobal("alive") != lua.LTrue {
		t.Error("Expected a whole entity id to be accepted")
	}
}
