package ecs

import (
	"errors"
	"reflect"
	"sync"
)

var (
	ErrGroupsExhausted = errors.New("ecs: group tags exhausted")
	ErrTypesExhausted  = errors.New("ecs: component type ids exhausted")
)

// typeTable assigns a small sequential id to each distinct Go type on first
// request. Ids start at 0 and follow registration order. It is the only
// mutex-guarded state in the package.
type typeTable struct {
	mu    sync.Mutex
	ids   map[reflect.Type]uint32
	order []reflect.Type
	limit int
	full  error
}

func newTypeTable(limit int, full error) *typeTable {
	return &typeTable{
		ids:   make(map[reflect.Type]uint32),
		limit: limit,
		full:  full,
	}
}

func (t *typeTable) idOf(rt reflect.Type) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[rt]; ok {
		return id, nil
	}
	if len(t.order) >= t.limit {
		return 0, t.full
	}
	id := uint32(len(t.order))
	t.ids[rt] = id
	t.order = append(t.order, rt)
	return id, nil
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

var (
	groupTags    = newTypeTable(MaxGroups, ErrGroupsExhausted)
	componentIDs = newTypeTable(MaxComponentTypes, ErrTypesExhausted)
)
