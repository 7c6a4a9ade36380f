package warehouse

import (
	"unsafe"

	"github.com/lattice-ecs/warehouse/internal/bitset"
	"github.com/lattice-ecs/warehouse/internal/column"
)

type archetypeID uint64

// Archetype exposes read-only facts about one archetype to query
// evaluation. The mutating surface (push/swap-remove, migration) stays
// unexported; only ArchetypeStorage is allowed to drive it.
type Archetype interface {
	ID() uint32
	Len() int
	ComponentIDs() []ComponentID
}

var _ Archetype = (*archetype)(nil)

// archetype is the set of all entities sharing the exact same component
// signature, stored together in column form. descriptors is the sorted
// signature; columns[i] holds the data for descriptors[i]; entities[r]
// is the EntityID owning row r of every column.
type archetype struct {
	id          archetypeID
	descriptors []ComponentDescriptor // sorted ascending by ID
	columns     []*column.Column      // parallel to descriptors
	entities    []EntityID
	key         bitset.Set // exact signature, also the archetypes map key
}

func newArchetype(id archetypeID, descriptors []ComponentDescriptor) *archetype {
	columns := make([]*column.Column, len(descriptors))
	var key bitset.Set
	for i, d := range descriptors {
		columns[i] = column.New(d.Size, d.Destructor)
		key.Mark(int(d.ID))
	}
	return &archetype{
		id:          id,
		descriptors: descriptors,
		columns:     columns,
		key:         key,
	}
}

func (a *archetype) ID() uint32 { return uint32(a.id) }

func (a *archetype) Len() int { return len(a.entities) }

func (a *archetype) ComponentIDs() []ComponentID {
	ids := make([]ComponentID, len(a.descriptors))
	for i, d := range a.descriptors {
		ids[i] = d.ID
	}
	return ids
}

// has reports whether id is in this archetype's signature, via the
// precomputed signature bitset rather than walking descriptors.
func (a *archetype) has(id ComponentID) bool {
	return a.key.Test(int(id))
}

// indexOf returns the column index of id, or -1 if absent. The signature
// bitset only answers membership, not column position, so finding the
// column still walks descriptors; archetypes carry few components, so
// this stays cheap.
func (a *archetype) indexOf(id ComponentID) int {
	for i, d := range a.descriptors {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// pushEntityUninitialized appends id as a new row and grows every column by
// one uninitialized row. The caller must populate every returned pointer
// before yielding control back to anything that might read the archetype.
func (a *archetype) pushEntityUninitialized(id EntityID) (row int, ptrs []unsafe.Pointer) {
	a.entities = append(a.entities, id)
	row = len(a.entities) - 1
	ptrs = make([]unsafe.Pointer, len(a.columns))
	for i, col := range a.columns {
		ptrs[i] = col.AppendUninitialized()
	}
	return row, ptrs
}

// swapRemoveRow removes row, moving the last row into its place (if row
// isn't already last) in both the entity roster and every column. It
// reports the EntityID that was moved (if any) so the caller (always
// ArchetypeStorage) can fix up that entity's recorded location.
func (a *archetype) swapRemoveRow(row int, destruct bool) (moved EntityID, hasMoved bool) {
	last := len(a.entities) - 1
	if row < 0 || row > last {
		panic("archetype: row out of range")
	}
	hasMoved = row < last
	if hasMoved {
		moved = a.entities[last]
	}
	a.entities[row] = a.entities[last]
	a.entities = a.entities[:last]
	for _, col := range a.columns {
		if destruct {
			col.SwapRemoveDestruct(row)
		} else {
			col.SwapRemoveWithoutDestruct(row)
		}
	}
	return moved, hasMoved
}

// destroyAllEntities runs every column's destructor over every remaining
// row and empties the archetype, used during storage teardown.
func (a *archetype) destroyAllEntities() {
	for _, col := range a.columns {
		col.DestroyAll()
	}
	a.entities = a.entities[:0]
}
