package ecs

import (
	"errors"
	"reflect"
	"testing"
)

type player struct{}
type monster struct{}

// go test -run ^TestGroupTagsStable$ ./internal/core/ecs -count 1
func TestGroupTagsStable(t *testing.T) {
	pt, err := GroupTagOf[player]()
	if err != nil {
		t.Fatal(err)
	}
	mt, err := GroupTagOf[monster]()
	if err != nil {
		t.Fatal(err)
	}
	if pt == mt {
		t.Fatalf("Expected distinct tags, both are %d", pt)
	}
	again, _ := GroupTagOf[player]()
	if again != pt {
		t.Errorf("Expected tag %d on second lookup, got %d", pt, again)
	}
}

// go test -run ^TestEntityGroupHandles$ ./internal/core/ecs -count 1
func TestEntityGroupHandles(t *testing.T) {
	players, err := NewEntityGroup[player]()
	if err != nil {
		t.Fatal(err)
	}
	monsters, err := NewEntityGroup[monster]()
	if err != nil {
		t.Fatal(err)
	}

	p1, _ := players.Create()
	m1, _ := monsters.Create()

	if p1.Group() != players.Tag() || p1.Local() != 1 {
		t.Errorf("Expected local 1 in group %d, got local %d group %d", players.Tag(), p1.Local(), p1.Group())
	}
	if players.LocalID(p1) != 1 {
		t.Errorf("Expected LocalID 1, got %d", players.LocalID(p1))
	}
	if players.LocalID(m1) != InvalidEntity {
		t.Errorf("Expected InvalidEntity for foreign handle, got %d", players.LocalID(m1))
	}

	if players.Delete(m1) {
		t.Fatal("Delete of foreign handle must be rejected")
	}
	if !monsters.Alive(m1) {
		t.Fatal("Foreign delete must not touch the owning group")
	}

	if !players.Delete(p1) {
		t.Fatal("Delete of own handle failed")
	}
	if players.Delete(p1) {
		t.Fatal("Double delete must be rejected")
	}
	p2, _ := players.Create()
	if p2 != p1 {
		t.Errorf("Expected %d reissued, got %d", p1, p2)
	}
}

// go test -run ^TestComposeHandleRoundTrip$ ./internal/core/ecs -count 1
func TestComposeHandleRoundTrip(t *testing.T) {
	players, _ := NewEntityGroup[player]()
	other := players.Tag() + 1

	for _, local := range []EntityID{1, 42, 0x00ABCDEF, MaxLocalID} {
		h := ComposeHandle(local, players.Tag())
		if got := players.LocalID(h); got != local {
			t.Errorf("LocalID(compose(%d)) = %d", local, got)
		}
		if got := players.LocalID(ComposeHandle(local, other)); got != InvalidEntity {
			t.Errorf("Expected InvalidEntity for tag %d, got %d", other, got)
		}
	}

	if ComposeHandle(0, players.Tag()) != InvalidEntity {
		t.Error("Expected local 0 to compose to InvalidEntity")
	}
	if ComposeHandle(MaxLocalID+1, players.Tag()) != InvalidEntity {
		t.Error("Expected out of range local to compose to InvalidEntity")
	}
}

// go test -run ^TestEntityGroupExhaustion$ ./internal/core/ecs -count 1
func TestEntityGroupExhaustion(t *testing.T) {
	g, _ := NewEntityGroup[monster]()
	g.ids.tail = uint32(MaxLocalID)

	h, err := g.Create()
	if !errors.Is(err, ErrEntitiesExhausted) {
		t.Errorf("Expected ErrEntitiesExhausted, got %v", err)
	}
	if h != InvalidEntity {
		t.Errorf("Expected InvalidEntity, got %d", h)
	}
}

func TestTypeTableLimit(t *testing.T) {
	tt := newTypeTable(2, ErrGroupsExhausted)
	a, _ := tt.idOf(reflect.TypeOf(0))
	b, _ := tt.idOf(reflect.TypeOf(""))
	again, _ := tt.idOf(reflect.TypeOf(0))
	if a != 0 || b != 1 || again != 0 {
		t.Errorf("Expected ids 0,1,0 got %d,%d,%d", a, b, again)
	}
	if _, err := tt.idOf(reflect.TypeOf(1.5)); !errors.Is(err, ErrGroupsExhausted) {
		t.Errorf("Expected ErrGroupsExhausted, got %v", err)
	}
}
