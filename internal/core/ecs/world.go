package ecs

// Allocator is the deletion side of an entity id source. EntityPool and
// every EntityGroup implement it.
type Allocator interface {
	Alive(id EntityID) bool
	Delete(id EntityID) bool
}

// World is the top-level ECS container. It owns the global entity pool, the
// component registry, and a deferred destruction queue flushed by
// CleanupSystem each tick. Entity groups attached with AttachGroup share the
// registry; their handles are destroyed through the owning group.
type World struct {
	pool         *EntityPool
	groups       []Allocator
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
	onDestroy    func(EntityID)
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// AttachGroup registers an entity group whose handles live in this world.
func (w *World) AttachGroup(g Allocator) {
	w.groups = append(w.groups, g)
}

// OnDestroy sets a hook run for every entity just before its components are
// removed, while they can still be read.
func (w *World) OnDestroy(fn func(EntityID)) {
	w.onDestroy = fn
}

func (w *World) CreateEntity() (EntityID, error) {
	return w.pool.Create()
}

func (w *World) allocatorOf(id EntityID) Allocator {
	for _, g := range w.groups {
		if g.Alive(id) {
			return g
		}
	}
	if w.pool.Alive(id) {
		return w.pool
	}
	return nil
}

func (w *World) Alive(id EntityID) bool {
	return w.allocatorOf(id) != nil
}

// DestroyEntity strips every component from id and recycles it through the
// allocator that issued it. It reports false if id is not live.
//
// While a pool holding one of id's components is being iterated nothing is
// touched: id is queued for the next FlushDestroyQueue and DestroyEntity
// reports false.
func (w *World) DestroyEntity(id EntityID) bool {
	a := w.allocatorOf(id)
	if a == nil {
		return false
	}
	if !w.registry.Removable(id) {
		w.MarkForDestruction(id)
		return false
	}
	if w.onDestroy != nil {
		w.onDestroy(id)
	}
	if _, err := w.registry.RemoveAll(id); err != nil {
		// The hook locked a pool; retry on the next flush.
		w.MarkForDestruction(id)
		return false
	}
	return a.Delete(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking the
// same entity twice in one tick queues it once.
func (w *World) MarkForDestruction(id EntityID) {
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of entities waiting in the destroy queue.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick. It returns the entities
// that were actually destroyed.
//
// Entities whose pools are locked during the flush stay queued.
func (w *World) FlushDestroyQueue() []EntityID {
	queue := w.destroyQueue
	w.destroyQueue = make([]EntityID, 0, cap(queue))
	clear(w.queued)

	destroyed := make([]EntityID, 0, len(queue))
	for _, id := range queue {
		if w.DestroyEntity(id) {
			destroyed = append(destroyed, id)
		}
	}
	return destroyed
}
