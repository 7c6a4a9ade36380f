package warehouse

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/lattice-ecs/warehouse/internal/column"
)

// ComponentID is a stable, process-unique identity derived from a
// component's static Go type. ComponentIDs are totally ordered by value;
// this order is the canonical order component columns appear in within
// every archetype.
type ComponentID uint64

// Destructor runs a component type's destruction logic on one instance. It
// is invoked exactly once per constructed instance: when the owning entity
// is deleted, when the component is removed from the entity, or when the
// whole storage is torn down.
type Destructor = column.Destructor

// ComponentDescriptor is the (id, size, alignment, destructor) record the
// storage engine speaks in once a component type has been registered. Columns
// operate purely on these; they never know the static type.
type ComponentDescriptor struct {
	ID         ComponentID
	Size       uintptr
	Align      uintptr
	Destructor Destructor
}

var (
	componentRegistryMu sync.Mutex
	componentRegistry   = map[reflect.Type]ComponentID{}
	nextComponentID     = ComponentID(1)
)

const bitsetWidth = 256

// componentIDFor returns the stable ComponentID for t, minting one on first
// use. Any deterministic, non-colliding function from static type to id
// would satisfy the storage engine's requirements; a monotonic registry
// keyed by reflect.Type is the simplest one that never collides.
func componentIDFor(t reflect.Type) ComponentID {
	componentRegistryMu.Lock()
	defer componentRegistryMu.Unlock()
	if id, ok := componentRegistry[t]; ok {
		return id
	}
	if nextComponentID >= bitsetWidth {
		panic("warehouse: more than 255 distinct component types registered")
	}
	id := nextComponentID
	nextComponentID++
	componentRegistry[t] = id
	return id
}

// Component is satisfied by the typed facade returned by NewComponent; it
// is the identity half of the (id, size, destructor) triple, usable
// anywhere a query or a migration needs to refer to a component type
// without knowing T.
type Component interface {
	ID() ComponentID
	descriptor() ComponentDescriptor
}

var _ Component = ComponentType[struct{}]{}

// ComponentType is the strongly-typed facade over one registered component
// type. It carries no state of its own beyond the type's identity; all
// actual data lives in archetype columns addressed through it.
type ComponentType[T any] struct {
	id         ComponentID
	destructor Destructor
}

// NewComponent registers (or looks up) the component type T and returns its
// typed facade. Instances are destroyed by zeroing their memory, which is
// enough to let the garbage collector reclaim anything T embeds (pointers,
// slices, maps); use NewComponentWithDestructor for types that need more.
//
// NewComponent is a free function, not a method on Factory, because Go
// methods cannot introduce new type parameters.
func NewComponent[T any]() ComponentType[T] {
	t := reflect.TypeFor[T]()
	id := componentIDFor(t)
	return ComponentType[T]{
		id: id,
		destructor: func(ptr unsafe.Pointer) {
			*(*T)(ptr) = *new(T)
		},
	}
}

// NewComponentWithDestructor is NewComponent but installs a caller-supplied
// destructor, for component types that own a resource beyond their own
// memory (a counting test double, a file handle, a pooled buffer, ...).
func NewComponentWithDestructor[T any](destructor func(*T)) ComponentType[T] {
	t := reflect.TypeFor[T]()
	id := componentIDFor(t)
	return ComponentType[T]{
		id: id,
		destructor: func(ptr unsafe.Pointer) {
			destructor((*T)(ptr))
		},
	}
}

// ID returns the component's stable identity.
func (c ComponentType[T]) ID() ComponentID { return c.id }

func (c ComponentType[T]) descriptor() ComponentDescriptor {
	var zero T
	return ComponentDescriptor{
		ID:         c.id,
		Size:       unsafe.Sizeof(zero),
		Align:      unsafe.Alignof(zero),
		Destructor: c.destructor,
	}
}

// Add attaches value to e, migrating it to the archetype that has all of
// e's current components plus T. A no-op (value's destructor runs
// immediately) if e already carries a T. Panics if called while the
// storage is locked for query iteration; use Enqueue from inside a query
// instead.
func (c ComponentType[T]) Add(e Entity, value T) error {
	e.storage.assertUnlocked("AddComponent")
	return e.storage.addComponentBytes(e.id, c.descriptor(), unsafe.Pointer(&value))
}

// Remove detaches T from e, migrating it to the archetype with all other
// components. A no-op if e does not carry a T. Panics if called while the
// storage is locked for query iteration.
func (c ComponentType[T]) Remove(e Entity) error {
	e.storage.assertUnlocked("RemoveComponent")
	return e.storage.removeComponentByID(e.id, c.id)
}

// Has reports whether e currently carries a T.
func (c ComponentType[T]) Has(e Entity) bool {
	return e.storage.hasComponent(e.id, c.id)
}

// Get returns a pointer to e's T instance, or (nil, false) if e doesn't
// carry one. The pointer is invalidated by any later structural mutation
// of e (an Add/Remove that migrates it to a different archetype).
func (c ComponentType[T]) Get(e Entity) (*T, bool) {
	ptr, ok := e.storage.componentPtr(e.id, c.id)
	if !ok {
		return nil, false
	}
	return (*T)(ptr), true
}

// GetReadOnly is Get for a handle yielded by a query.
func (c ComponentType[T]) GetReadOnly(e ReadOnlyEntity) (*T, bool) {
	ptr, ok := e.storage.componentPtr(e.id, c.id)
	if !ok {
		return nil, false
	}
	return (*T)(ptr), true
}

// HasReadOnly is Has for a handle yielded by a query.
func (c ComponentType[T]) HasReadOnly(e ReadOnlyEntity) bool {
	return e.storage.hasComponent(e.id, c.id)
}

// GetFromCursor returns a pointer to the T instance of the entity the
// cursor currently stands on. Panics if the cursor hasn't been advanced
// with Next, or if the current archetype doesn't carry T (a query that
// doesn't include T used incorrectly).
func (c ComponentType[T]) GetFromCursor(cur *Cursor) *T {
	ptr := cur.componentPtr(c.id)
	return (*T)(ptr)
}

// Enqueue records a deferred Add on e, for use during active query
// iteration. The payload is copied into the command buffer immediately;
// ownership passes to storage when cmd.Run executes the record, or its
// destructor runs once when cmd.Discard is called instead.
func (c ComponentType[T]) Enqueue(cmd *CommandBuffer, e entityRef, value T) {
	cmd.enqueueAddComponent(e.entityID(), c.descriptor(), unsafe.Pointer(&value))
}

// EnqueueRemove records a deferred Remove on e.
func (c ComponentType[T]) EnqueueRemove(cmd *CommandBuffer, e entityRef) {
	cmd.enqueueRemoveComponent(e.entityID(), c.id)
}
