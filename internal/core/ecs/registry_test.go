package ecs

import (
	"errors"
	"testing"
)

type position struct{ X, Y float32 }
type velocity struct{ X, Y float32 }
type health struct{ Current, Max int }

// go test -run ^TestPoolOfIdentity$ ./internal/core/ecs -count 1
func TestPoolOfIdentity(t *testing.T) {
	r := NewRegistry()

	p1, err := PoolOf[position](r)
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := PoolOf[position](r)
	v, _ := PoolOf[velocity](r)

	if p1 != p2 {
		t.Fatal("Expected the same pool instance for repeated requests")
	}
	if p1.ComponentID() == v.ComponentID() {
		t.Errorf("Expected distinct component ids, both %d", p1.ComponentID())
	}
	if r.Pools() != 2 {
		t.Errorf("Expected 2 pools, got %d", r.Pools())
	}

	if err := p1.Add(7, position{X: 1, Y: 2}); err != nil {
		t.Fatal(err)
	}
	got, err := p2.Value(7)
	if err != nil {
		t.Fatal(err)
	}
	if got != (position{X: 1, Y: 2}) {
		t.Errorf("Expected write through p1 to be visible through p2, got %+v", got)
	}
}

// go test -run ^TestComponentIDsShared$ ./internal/core/ecs -count 1
func TestComponentIDsShared(t *testing.T) {
	a, _ := PoolOf[health](NewRegistry())
	b, _ := PoolOf[health](NewRegistry())
	if a == b {
		t.Fatal("Separate registries must own separate pools")
	}
	if a.ComponentID() != b.ComponentID() {
		t.Errorf("Expected one process-wide id for health, got %d and %d", a.ComponentID(), b.ComponentID())
	}
}

// go test -run ^TestComponentPoolReverseLookup$ ./internal/core/ecs -count 1
func TestComponentPoolReverseLookup(t *testing.T) {
	r := NewRegistry()
	p := MustPoolOf[health](r)
	_ = p.Add(10, health{Current: 5, Max: 10})
	_ = p.Add(11, health{Current: 1, Max: 1})

	slot, ok := p.SlotOf(11)
	if !ok {
		t.Fatal("Expected slot for entity 11")
	}
	if !p.DoesComponentExist(slot) {
		t.Error("Expected component at slot")
	}
	e, err := p.EntityOfSlot(slot)
	if err != nil || e != 11 {
		t.Errorf("Expected entity 11, got %d (%v)", e, err)
	}

	_ = p.Remove(11)
	if p.DoesEntityExist(11) || p.DoesComponentExist(slot) {
		t.Error("Expected entity and slot to be gone after Remove")
	}
	if _, err := p.EntityOfSlot(slot); !errors.Is(err, ErrSlotNotLive) {
		t.Errorf("Expected ErrSlotNotLive, got %v", err)
	}
}

func TestComponentPoolUpsert(t *testing.T) {
	p := NewComponentPool[position](0)
	if err := p.Upsert(1, position{X: 1}); err != nil {
		t.Fatal(err)
	}
	if err := p.Upsert(1, position{X: 2}); err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Value(1); got.X != 2 {
		t.Errorf("Expected X=2, got %+v", got)
	}
	if p.Len() != 1 {
		t.Errorf("Expected 1 component, got %d", p.Len())
	}
}

// go test -run ^TestRegistryRemoveAll$ ./internal/core/ecs -count 1
func TestRegistryRemoveAll(t *testing.T) {
	r := NewRegistry()
	pos := MustPoolOf[position](r)
	vel := MustPoolOf[velocity](r)
	_ = pos.Add(1, position{})
	_ = vel.Add(1, velocity{})
	_ = pos.Add(2, position{})

	if n, err := r.RemoveAll(1); err != nil || n != 2 {
		t.Errorf("Expected 2 components removed, got %d (%v)", n, err)
	}
	if pos.Has(1) || vel.Has(1) {
		t.Error("Entity 1 still has components")
	}
	if !pos.Has(2) {
		t.Error("RemoveAll touched another entity")
	}

	cid, _ := ComponentIDOf[velocity]()
	s, ok := r.Store(cid)
	if !ok || s.Len() != 0 {
		t.Errorf("Expected empty velocity store, got ok=%v", ok)
	}
}

// go test -run ^TestRegistryRemoveAllLocked$ ./internal/core/ecs -count 1
func TestRegistryRemoveAllLocked(t *testing.T) {
	r := NewRegistry()
	pos := MustPoolOf[position](r)
	vel := MustPoolOf[velocity](r)
	_ = pos.Add(1, position{})
	_ = vel.Add(1, velocity{})
	_ = vel.Add(2, velocity{})

	pos.Each(func(EntityID, *position) {
		if r.Removable(1) {
			t.Error("Expected entity 1 to be pinned by the locked pool")
		}
		if !r.Removable(2) {
			t.Error("Entity 2 has no component in the locked pool")
		}
		if n, err := r.RemoveAll(1); !errors.Is(err, ErrPoolLocked) || n != 0 {
			t.Errorf("Expected ErrPoolLocked and nothing removed, got %d (%v)", n, err)
		}
		if n, err := r.RemoveAll(2); err != nil || n != 1 {
			t.Errorf("Expected entity 2 removed, got %d (%v)", n, err)
		}
	})
	if !pos.Has(1) || !vel.Has(1) {
		t.Error("Failed RemoveAll must leave every component in place")
	}
}
