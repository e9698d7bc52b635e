package ecs

// GroupTag identifies an EntityGroup's id space. It occupies the top 8 bits
// of every handle the group issues.
type GroupTag uint8

const (
	groupShift = 24

	// MaxLocalID is the largest local id a single group can issue.
	MaxLocalID EntityID = 1<<groupShift - 1
	// MaxGroups is the number of distinct group tag types per process.
	MaxGroups = 256
)

// ComposeHandle packs a local id and a group tag into a world handle.
// It returns InvalidEntity when local is zero or does not fit in 24 bits.
func ComposeHandle(local EntityID, tag GroupTag) EntityID {
	if local == InvalidEntity || local > MaxLocalID {
		return InvalidEntity
	}
	return local | EntityID(tag)<<groupShift
}

// Group returns the group tag embedded in a world handle.
func (id EntityID) Group() GroupTag { return GroupTag(id >> groupShift) }

// Local returns the low 24 bits of a world handle.
func (id EntityID) Local() EntityID { return id & MaxLocalID }

// Unscoped is the tag type of handles issued by the global EntityPool. It is
// registered before any other group so it always owns tag 0.
type Unscoped struct{}

func init() {
	if _, err := GroupTagOf[Unscoped](); err != nil {
		panic(err)
	}
}

// GroupTagOf returns the process-wide tag of group type G, assigning the next
// free tag on first use.
func GroupTagOf[G any]() (GroupTag, error) {
	id, err := groupTags.idOf(typeKey[G]())
	if err != nil {
		return 0, err
	}
	return GroupTag(id), nil
}

// EntityGroup allocates entities in a private 24-bit id space identified by
// the tag type G, e.g. EntityGroup[Player] and EntityGroup[Monster] hand out
// overlapping local ids that stay distinguishable through their tags.
type EntityGroup[G any] struct {
	tag GroupTag
	ids idAllocator
}

func NewEntityGroup[G any]() (*EntityGroup[G], error) {
	tag, err := GroupTagOf[G]()
	if err != nil {
		return nil, err
	}
	return &EntityGroup[G]{
		tag: tag,
		ids: newIDAllocator(uint32(MaxLocalID)),
	}, nil
}

func (g *EntityGroup[G]) Tag() GroupTag { return g.tag }

// Create allocates a local id and returns it combined with the group tag.
// It returns InvalidEntity and ErrEntitiesExhausted when all 2^24-1 local
// ids are live.
func (g *EntityGroup[G]) Create() (EntityID, error) {
	local, err := g.ids.create()
	if err != nil {
		return InvalidEntity, err
	}
	return ComposeHandle(EntityID(local), g.tag), nil
}

// Delete recycles the local id behind handle. It reports false, without
// touching the group, when handle belongs to another group or is not live.
func (g *EntityGroup[G]) Delete(handle EntityID) bool {
	if !g.Owns(handle) {
		return false
	}
	return g.ids.delete(uint32(handle.Local()))
}

// LocalID strips the group tag from handle. It returns InvalidEntity when the
// tag does not match this group.
func (g *EntityGroup[G]) LocalID(handle EntityID) EntityID {
	if !g.Owns(handle) {
		return InvalidEntity
	}
	return handle.Local()
}

// Owns reports whether handle carries this group's tag and a non-zero local id.
func (g *EntityGroup[G]) Owns(handle EntityID) bool {
	return handle.Group() == g.tag && handle.Local() != InvalidEntity
}

func (g *EntityGroup[G]) Alive(handle EntityID) bool {
	return g.Owns(handle) && g.ids.isAlive(uint32(handle.Local()))
}

func (g *EntityGroup[G]) Len() int { return len(g.ids.alive) }
