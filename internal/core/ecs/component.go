package ecs

// Store is the type-erased view of a ComponentPool held by the Registry.
type Store interface {
	ComponentID() ComponentID
	Has(id EntityID) bool
	Len() int
	// Locked reports whether the pool is being iterated.
	Locked() bool
	// Discard removes id's component if present and reports whether it did.
	// It fails with ErrPoolLocked while the pool holds id and is locked.
	Discard(id EntityID) (bool, error)
}

// ComponentPool is a dense pool of T keyed by entity.
type ComponentPool[T any] struct {
	cid  ComponentID
	pool *DensePool[EntityID, T]
}

func NewComponentPool[T any](cid ComponentID) *ComponentPool[T] {
	return &ComponentPool[T]{
		cid:  cid,
		pool: NewDensePool[EntityID, T](256),
	}
}

func (s *ComponentPool[T]) ComponentID() ComponentID { return s.cid }

func (s *ComponentPool[T]) Add(id EntityID, c T) error { return s.pool.Add(id, c) }

func (s *ComponentPool[T]) Remove(id EntityID) error { return s.pool.Remove(id) }

func (s *ComponentPool[T]) Get(id EntityID) (Handle[EntityID, T], error) { return s.pool.Get(id) }

func (s *ComponentPool[T]) Value(id EntityID) (T, error) { return s.pool.Value(id) }

func (s *ComponentPool[T]) Set(id EntityID, c T) error { return s.pool.Set(id, c) }

func (s *ComponentPool[T]) Update(id EntityID, fn func(*T)) error { return s.pool.Update(id, fn) }

// Upsert adds c for id, or overwrites the existing component.
func (s *ComponentPool[T]) Upsert(id EntityID, c T) error {
	if s.pool.Exists(id) {
		return s.pool.Set(id, c)
	}
	return s.pool.Add(id, c)
}

// Components returns a copy of every live component in storage order.
func (s *ComponentPool[T]) Components() []T { return s.pool.Values() }

// Entities returns the owners of every live component in storage order.
func (s *ComponentPool[T]) Entities() []EntityID { return s.pool.Keys() }

func (s *ComponentPool[T]) Each(fn func(EntityID, *T)) { s.pool.Each(fn) }

func (s *ComponentPool[T]) DoesEntityExist(id EntityID) bool { return s.pool.Exists(id) }

func (s *ComponentPool[T]) DoesComponentExist(slot int) bool { return s.pool.ExistsAtSlot(slot) }

func (s *ComponentPool[T]) EntityOfSlot(slot int) (EntityID, error) { return s.pool.KeyOf(slot) }

func (s *ComponentPool[T]) SlotOf(id EntityID) (int, bool) { return s.pool.SlotOf(id) }

func (s *ComponentPool[T]) Has(id EntityID) bool { return s.pool.Exists(id) }

func (s *ComponentPool[T]) Len() int { return s.pool.Len() }

func (s *ComponentPool[T]) Locked() bool { return s.pool.Locked() }

func (s *ComponentPool[T]) Discard(id EntityID) (bool, error) {
	if !s.pool.Exists(id) {
		return false, nil
	}
	if err := s.pool.Remove(id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ComponentPool[T]) Reset() error { return s.pool.Reset() }

var _ Store = (*ComponentPool[struct{}])(nil)
