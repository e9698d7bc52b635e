package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateKey = errors.New("ecs: key already has a value")
	ErrMissingKey   = errors.New("ecs: key has no value")
	ErrSlotNotLive  = errors.New("ecs: slot is not live")
	ErrPoolLocked   = errors.New("ecs: pool is locked by a running callback")
)

// DensePool stores values in a contiguous slice and maps keys to slots in
// both directions. Removed slots are queued and reused oldest first; the
// backing slice never shrinks or compacts, so a live value keeps its slot
// for as long as its key is present.
//
// No pointer into the backing slice outlives a call. Handles re-resolve
// their key on every access, and Each/Update hand out pointers only for the
// duration of the callback, during which Add and Remove fail with
// ErrPoolLocked.
type DensePool[K comparable, V any] struct {
	values []V
	keys   []K
	live   []bool
	slots  map[K]int
	free   fifo[int]
	locks  int
}

func NewDensePool[K comparable, V any](capacity int) *DensePool[K, V] {
	return &DensePool[K, V]{
		values: make([]V, 0, capacity),
		keys:   make([]K, 0, capacity),
		live:   make([]bool, 0, capacity),
		slots:  make(map[K]int, capacity),
	}
}

// Add stores value under key. It fails with ErrDuplicateKey, leaving the
// pool untouched, when key already has a value.
func (p *DensePool[K, V]) Add(key K, value V) error {
	if p.locks > 0 {
		return ErrPoolLocked
	}
	if _, ok := p.slots[key]; ok {
		return fmt.Errorf("add %v: %w", key, ErrDuplicateKey)
	}
	slot, ok := p.free.Pop()
	if ok {
		p.values[slot] = value
		p.keys[slot] = key
		p.live[slot] = true
	} else {
		slot = len(p.values)
		p.values = append(p.values, value)
		p.keys = append(p.keys, key)
		p.live = append(p.live, true)
	}
	p.slots[key] = slot
	return nil
}

// Remove drops key and queues its slot for reuse. The slot is zeroed so a
// freed value is never observable.
func (p *DensePool[K, V]) Remove(key K) error {
	if p.locks > 0 {
		return ErrPoolLocked
	}
	slot, ok := p.slots[key]
	if !ok {
		return fmt.Errorf("remove %v: %w", key, ErrMissingKey)
	}
	var (
		zeroV V
		zeroK K
	)
	delete(p.slots, key)
	p.values[slot] = zeroV
	p.keys[slot] = zeroK
	p.live[slot] = false
	p.free.Push(slot)
	return nil
}

// Get returns a handle to the value stored under key.
func (p *DensePool[K, V]) Get(key K) (Handle[K, V], error) {
	if _, ok := p.slots[key]; !ok {
		return Handle[K, V]{}, fmt.Errorf("get %v: %w", key, ErrMissingKey)
	}
	return Handle[K, V]{pool: p, key: key}, nil
}

// Value returns a copy of the value stored under key.
func (p *DensePool[K, V]) Value(key K) (V, error) {
	slot, ok := p.slots[key]
	if !ok {
		var zero V
		return zero, fmt.Errorf("value %v: %w", key, ErrMissingKey)
	}
	return p.values[slot], nil
}

// Set overwrites the value stored under key in place.
func (p *DensePool[K, V]) Set(key K, value V) error {
	slot, ok := p.slots[key]
	if !ok {
		return fmt.Errorf("set %v: %w", key, ErrMissingKey)
	}
	p.values[slot] = value
	return nil
}

// Update calls fn with a pointer to the value stored under key. The pointer
// must not be retained after fn returns.
func (p *DensePool[K, V]) Update(key K, fn func(*V)) error {
	slot, ok := p.slots[key]
	if !ok {
		return fmt.Errorf("update %v: %w", key, ErrMissingKey)
	}
	p.locks++
	defer func() { p.locks-- }()
	fn(&p.values[slot])
	return nil
}

// KeyOf returns the key that owns slot.
func (p *DensePool[K, V]) KeyOf(slot int) (K, error) {
	if !p.ExistsAtSlot(slot) {
		var zero K
		return zero, fmt.Errorf("key of slot %d: %w", slot, ErrSlotNotLive)
	}
	return p.keys[slot], nil
}

// SlotOf returns the slot holding key's value.
func (p *DensePool[K, V]) SlotOf(key K) (int, bool) {
	slot, ok := p.slots[key]
	return slot, ok
}

func (p *DensePool[K, V]) Exists(key K) bool {
	_, ok := p.slots[key]
	return ok
}

func (p *DensePool[K, V]) ExistsAtSlot(slot int) bool {
	return slot >= 0 && slot < len(p.live) && p.live[slot]
}

// Values returns a copy of every live value in slot order.
func (p *DensePool[K, V]) Values() []V {
	out := make([]V, 0, len(p.slots))
	for slot, v := range p.values {
		if p.live[slot] {
			out = append(out, v)
		}
	}
	return out
}

// Keys returns every live key in slot order.
func (p *DensePool[K, V]) Keys() []K {
	out := make([]K, 0, len(p.slots))
	for slot, k := range p.keys {
		if p.live[slot] {
			out = append(out, k)
		}
	}
	return out
}

// Each visits live values in slot order. Free slots are skipped.
func (p *DensePool[K, V]) Each(fn func(K, *V)) {
	p.locks++
	defer func() { p.locks-- }()
	for slot := range p.values {
		if p.live[slot] {
			fn(p.keys[slot], &p.values[slot])
		}
	}
}

// Locked reports whether an Each or Update callback is running.
func (p *DensePool[K, V]) Locked() bool { return p.locks > 0 }

// Len returns the number of live values.
func (p *DensePool[K, V]) Len() int { return len(p.slots) }

// Slots returns the length of the backing slice, live and free slots alike.
func (p *DensePool[K, V]) Slots() int { return len(p.values) }

// Free returns the number of slots waiting for reuse.
func (p *DensePool[K, V]) Free() int { return p.free.Len() }

// Reset drops every value and slot.
func (p *DensePool[K, V]) Reset() error {
	if p.locks > 0 {
		return ErrPoolLocked
	}
	clear(p.values)
	p.values = p.values[:0]
	p.keys = p.keys[:0]
	p.live = p.live[:0]
	clear(p.slots)
	p.free = fifo[int]{}
	return nil
}

// Handle refers to a pool value by key. Every access goes through the
// key-to-slot map, so a handle stays correct across Add calls that grow the
// backing slice and reports ErrMissingKey once the key is removed.
type Handle[K comparable, V any] struct {
	pool *DensePool[K, V]
	key  K
}

func (h Handle[K, V]) Key() K { return h.key }

func (h Handle[K, V]) Valid() bool { return h.pool != nil && h.pool.Exists(h.key) }

func (h Handle[K, V]) Get() (V, error) {
	if h.pool == nil {
		var zero V
		return zero, ErrMissingKey
	}
	return h.pool.Value(h.key)
}

func (h Handle[K, V]) Set(value V) error {
	if h.pool == nil {
		return ErrMissingKey
	}
	return h.pool.Set(h.key, value)
}

func (h Handle[K, V]) Update(fn func(*V)) error {
	if h.pool == nil {
		return ErrMissingKey
	}
	return h.pool.Update(h.key, fn)
}
