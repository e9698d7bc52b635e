package ecs

import (
	"fmt"
	"math"
)

// ComponentID is the process-wide id of a component type.
type ComponentID uint16

const MaxComponentTypes = math.MaxUint16 + 1

// ComponentIDOf returns the id of component type T, assigning the next id on
// first use. Ids are shared by every Registry in the process.
func ComponentIDOf[T any]() (ComponentID, error) {
	id, err := componentIDs.idOf(typeKey[T]())
	if err != nil {
		return 0, err
	}
	return ComponentID(id), nil
}

// Registry owns one ComponentPool per component type, created lazily on
// first request, and supports bulk cleanup on entity destroy.
type Registry struct {
	stores map[ComponentID]Store
	order  []ComponentID
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[ComponentID]Store, 16),
		order:  make([]ComponentID, 0, 16),
	}
}

// PoolOf returns r's pool for T, creating it on the first call. Every later
// call returns the same instance.
func PoolOf[T any](r *Registry) (*ComponentPool[T], error) {
	cid, err := ComponentIDOf[T]()
	if err != nil {
		return nil, err
	}
	if s, ok := r.stores[cid]; ok {
		// Stored under the id derived from T, so the assertion cannot fail.
		return s.(*ComponentPool[T]), nil
	}
	p := NewComponentPool[T](cid)
	r.stores[cid] = p
	r.order = append(r.order, cid)
	return p, nil
}

// MustPoolOf is PoolOf for startup code that registers a fixed set of types.
func MustPoolOf[T any](r *Registry) *ComponentPool[T] {
	p, err := PoolOf[T](r)
	if err != nil {
		panic(err)
	}
	return p
}

// Store returns the pool registered under cid, if any.
func (r *Registry) Store(cid ComponentID) (Store, bool) {
	s, ok := r.stores[cid]
	return s, ok
}

// Removable reports whether every pool holding a component of id can drop
// it now, i.e. none of them is locked by an iteration.
func (r *Registry) Removable(id EntityID) bool {
	for _, cid := range r.order {
		s := r.stores[cid]
		if s.Locked() && s.Has(id) {
			return false
		}
	}
	return true
}

// RemoveAll clears the given entity from every pool and returns how many
// components were removed. When a pool holding id is locked it fails with
// ErrPoolLocked and removes nothing.
func (r *Registry) RemoveAll(id EntityID) (int, error) {
	if !r.Removable(id) {
		return 0, fmt.Errorf("remove components of %d: %w", id, ErrPoolLocked)
	}
	n := 0
	for _, cid := range r.order {
		ok, err := r.stores[cid].Discard(id)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Pools returns the number of pools created so far.
func (r *Registry) Pools() int { return len(r.order) }
