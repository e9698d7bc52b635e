package event

import (
	"testing"

	"github.com/jadeengine/jade/internal/core/ecs"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []ecs.EntityID
	Subscribe(b, func(ev EntityCreated) { got = append(got, ev.Entity) })

	Emit(b, EntityCreated{Entity: 1})
	Emit(b, ChildAttached{Parent: 1, Child: 2})
	if b.Pending() != 2 {
		t.Fatalf("Expected 2 pending events, got %d", b.Pending())
	}
	if n := b.DispatchAll(); n != 0 || len(got) != 0 {
		t.Fatal("Events must not be delivered before SwapBuffers")
	}

	b.SwapBuffers()
	if n := b.DispatchAll(); n != 2 {
		t.Errorf("Expected 2 events dispatched, got %d", n)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected [1], got %v", got)
	}

	b.SwapBuffers()
	if n := b.DispatchAll(); n != 0 {
		t.Errorf("Expected events to be consumed once, got %d", n)
	}
}
