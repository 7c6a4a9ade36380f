package warehouse

// Storage is the external handle to one archetype storage engine: it owns
// every entity, archetype, and component byte ever created against it.
type Storage interface {
	// CreateEntity mints a new entity with no components, placed in the
	// empty archetype. Panics if called while locked for query iteration.
	CreateEntity() Entity

	// DeleteEntity removes e and runs every one of its components'
	// destructors exactly once. Idempotent: deleting an already-deleted or
	// unknown id is a no-op. Panics if called while locked for query
	// iteration.
	DeleteEntity(EntityID)

	// DestroyEntities is DeleteEntity for a batch.
	DestroyEntities(...EntityID)

	// Lookup resolves an EntityID to a live Entity handle, or reports
	// false if it names no live entity.
	Lookup(EntityID) (Entity, bool)

	// CommandBuffer returns a new, empty buffer for recording deferred
	// structural mutations, typically used from inside query iteration.
	CommandBuffer() *CommandBuffer

	// Teardown destroys every live entity's components and releases all
	// archetypes. The storage must not be used afterward.
	Teardown()
}

// Cache is a small string-keyed registry with a fixed capacity, used to
// hand out stable indices for named resources (component archetypal
// groupings, query plans, or any other value a caller wants to look up
// by name without re-deriving it).
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
}

// CacheLocation pairs a cache key with the numeric index it resolved to.
type CacheLocation struct {
	Key   string
	Index uint32
}
