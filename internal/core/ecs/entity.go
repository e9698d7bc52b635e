package ecs

import (
	"errors"
	"math"
)

// EntityID is a 32-bit entity handle. Zero is reserved as the invalid handle.
// Handles issued by an EntityGroup carry the group tag in the top 8 bits,
// see ComposeHandle.
type EntityID uint32

const (
	InvalidEntity EntityID = 0
	MaxEntityID   EntityID = math.MaxUint32
)

// ErrEntitiesExhausted is returned when an allocator has issued every id in
// its range and has none queued for reuse.
var ErrEntitiesExhausted = errors.New("ecs: entity id space exhausted")

func (id EntityID) IsValid() bool { return id != InvalidEntity }

// idAllocator issues ids in [1, max]. Freed ids are recycled in the order
// they were freed; freeing the current tail shrinks the tail instead.
type idAllocator struct {
	tail  uint32
	max   uint32
	free  fifo[uint32]
	alive map[uint32]struct{}
}

func newIDAllocator(max uint32) idAllocator {
	return idAllocator{
		max:   max,
		alive: make(map[uint32]struct{}, 1024),
	}
}

func (a *idAllocator) create() (uint32, error) {
	if id, ok := a.free.Pop(); ok {
		a.alive[id] = struct{}{}
		return id, nil
	}
	if a.tail >= a.max {
		return 0, ErrEntitiesExhausted
	}
	a.tail++
	a.alive[a.tail] = struct{}{}
	return a.tail, nil
}

// delete rejects ids that are not currently live, so a double delete can
// never put the same id in the free queue twice.
func (a *idAllocator) delete(id uint32) bool {
	if _, ok := a.alive[id]; !ok {
		return false
	}
	delete(a.alive, id)
	if id == a.tail {
		a.tail--
	} else {
		a.free.Push(id)
	}
	return true
}

func (a *idAllocator) isAlive(id uint32) bool {
	_, ok := a.alive[id]
	return ok
}

// EntityPool is the global, unscoped entity allocator.
type EntityPool struct {
	ids idAllocator
}

func NewEntityPool() *EntityPool {
	return &EntityPool{ids: newIDAllocator(uint32(MaxEntityID))}
}

// Create returns a recycled id if one is queued, otherwise the next id past
// the tail. Once the 32-bit range is used up it returns InvalidEntity and
// ErrEntitiesExhausted; ids are never wrapped.
func (p *EntityPool) Create() (EntityID, error) {
	id, err := p.ids.create()
	if err != nil {
		return InvalidEntity, err
	}
	return EntityID(id), nil
}

// Delete returns id to the pool. It reports false for ids that are not live.
func (p *EntityPool) Delete(id EntityID) bool {
	return p.ids.delete(uint32(id))
}

func (p *EntityPool) Alive(id EntityID) bool { return p.ids.isAlive(uint32(id)) }

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return len(p.ids.alive) }

// Tail returns the highest id handed out and not reclaimed by tail shrink.
func (p *EntityPool) Tail() EntityID { return EntityID(p.ids.tail) }
