package warehouse

import (
	"sync/atomic"
	"unsafe"

	"github.com/lattice-ecs/warehouse/internal/bitset"
)

var _ Storage = &storage{}

// lastEntityID is shared by every storage, so EntityIDs are unique across
// the whole process rather than per storage.
var lastEntityID atomic.Uint64

type entityLocation struct {
	archetype *archetype
	row       int
}

// storage is ArchetypeStorage: it exclusively owns every archetype, all
// column bytes, the entity->(archetype,row) index, and the
// component->archetypes inverted index used by queries.
type storage struct {
	nextArchetypeID archetypeID

	emptyArchetype *archetype
	archetypes     map[bitset.Set]*archetype
	archetypesByID []*archetype

	entityLocation        map[EntityID]entityLocation
	archetypesOfComponent map[ComponentID]map[*archetype]struct{}

	lockDepth int
}

func newStorage() Storage {
	s := &storage{
		nextArchetypeID:       1,
		archetypes:            make(map[bitset.Set]*archetype),
		entityLocation:        make(map[EntityID]entityLocation),
		archetypesOfComponent: make(map[ComponentID]map[*archetype]struct{}),
	}
	s.emptyArchetype = newArchetype(0, nil)
	s.registerArchetype(bitset.Set{}, s.emptyArchetype)
	return s
}

func (s *storage) assertUnlocked(op string) {
	if s.lockDepth > 0 {
		panic(LockedStorageError{Op: op})
	}
}

func (s *storage) lock()   { s.lockDepth++ }
func (s *storage) unlock() { s.lockDepth-- }

// archetypeGeneration is the count of archetypes ever created. It only
// advances when a brand new archetype is registered, which is the only
// event that can change which archetypes satisfy a given query predicate
// (once registered, an archetype's signature and its membership in
// archetypesOfComponent never change again).
func (s *storage) archetypeGeneration() int { return len(s.archetypesByID) }

func (s *storage) registerArchetype(key bitset.Set, a *archetype) {
	s.archetypes[key] = a
	s.archetypesByID = append(s.archetypesByID, a)
	for _, d := range a.descriptors {
		set, ok := s.archetypesOfComponent[d.ID]
		if !ok {
			set = make(map[*archetype]struct{})
			s.archetypesOfComponent[d.ID] = set
		}
		set[a] = struct{}{}
	}
}

func (s *storage) allocArchetypeID() archetypeID {
	id := s.nextArchetypeID
	s.nextArchetypeID++
	return id
}

// getOrCreateArchetypeAdding returns the archetype whose signature is A's
// plus desc, creating it if needed, along with the sorted position desc
// lands at within the merged signature.
func (s *storage) getOrCreateArchetypeAdding(A *archetype, desc ComponentDescriptor) (*archetype, int) {
	insertIndex := 0
	for insertIndex < len(A.descriptors) && A.descriptors[insertIndex].ID < desc.ID {
		insertIndex++
	}
	merged := make([]ComponentDescriptor, len(A.descriptors)+1)
	copy(merged[:insertIndex], A.descriptors[:insertIndex])
	merged[insertIndex] = desc
	copy(merged[insertIndex+1:], A.descriptors[insertIndex:])

	key := A.key
	key.Mark(int(desc.ID))
	if B, ok := s.archetypes[key]; ok {
		return B, insertIndex
	}
	B := newArchetype(s.allocArchetypeID(), merged)
	s.registerArchetype(key, B)
	Config.fireArchetypeCreated(B)
	return B, insertIndex
}

// getOrCreateArchetypeRemoving returns the archetype whose signature is A's
// minus cid, creating it if needed.
func (s *storage) getOrCreateArchetypeRemoving(A *archetype, cid ComponentID) *archetype {
	merged := make([]ComponentDescriptor, 0, len(A.descriptors)-1)
	for _, d := range A.descriptors {
		if d.ID != cid {
			merged = append(merged, d)
		}
	}
	key := A.key
	key.Unmark(int(cid))
	if B, ok := s.archetypes[key]; ok {
		return B
	}
	B := newArchetype(s.allocArchetypeID(), merged)
	s.registerArchetype(key, B)
	Config.fireArchetypeCreated(B)
	return B
}

func writeBytes(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}

// mintEntityID allocates a fresh EntityID without giving it a row in any
// archetype yet. Used directly by CommandBuffer's eager id minting
// (spec.md's CreateEntity record names its id before the record has run),
// and as the first half of createEntityRow for the direct path.
func (s *storage) mintEntityID() EntityID {
	return EntityID(lastEntityID.Add(1))
}

// materializeCreatedEntity gives a previously-minted id a row in the
// empty archetype. Called immediately by the direct CreateEntity path, or
// later by a CommandBuffer's Run for an id it minted eagerly.
func (s *storage) materializeCreatedEntity(id EntityID) {
	row, _ := s.emptyArchetype.pushEntityUninitialized(id)
	s.entityLocation[id] = entityLocation{archetype: s.emptyArchetype, row: row}
}

func (s *storage) createEntityRow() EntityID {
	id := s.mintEntityID()
	s.materializeCreatedEntity(id)
	return id
}

func (s *storage) CreateEntity() Entity {
	s.assertUnlocked("CreateEntity")
	return Entity{id: s.createEntityRow(), storage: s}
}

func (s *storage) DeleteEntity(id EntityID) {
	s.assertUnlocked("DeleteEntity")
	s.deleteEntityIdempotent(id)
}

func (s *storage) DestroyEntities(ids ...EntityID) {
	s.assertUnlocked("DestroyEntities")
	for _, id := range ids {
		s.deleteEntityIdempotent(id)
	}
}

// deleteEntityIdempotent is a no-op for an id that is already gone. Both the
// direct and command-buffer-replayed delete paths resolve to idempotent
// per spec.md's "SHOULD make both idempotent" recommendation.
func (s *storage) deleteEntityIdempotent(id EntityID) {
	loc, ok := s.entityLocation[id]
	if !ok {
		return
	}
	moved, hasMoved := loc.archetype.swapRemoveRow(loc.row, true)
	if hasMoved {
		s.entityLocation[moved] = entityLocation{archetype: loc.archetype, row: loc.row}
	}
	delete(s.entityLocation, id)
}

func (s *storage) Lookup(id EntityID) (Entity, bool) {
	if _, ok := s.entityLocation[id]; !ok {
		return Entity{}, false
	}
	return Entity{id: id, storage: s}, true
}

func (s *storage) hasComponent(id EntityID, cid ComponentID) bool {
	loc, ok := s.entityLocation[id]
	if !ok {
		return false
	}
	return loc.archetype.has(cid)
}

func (s *storage) componentPtr(id EntityID, cid ComponentID) (unsafe.Pointer, bool) {
	loc, ok := s.entityLocation[id]
	if !ok {
		return nil, false
	}
	idx := loc.archetype.indexOf(cid)
	if idx < 0 {
		return nil, false
	}
	return loc.archetype.columns[idx].At(loc.row), true
}

// addComponentBytes implements the migration algorithm of spec.md 4.3.4. src
// must point to exactly desc.Size readable bytes; ownership of those bytes
// passes to the archetype column, or the descriptor's destructor runs
// immediately if the entity already carries the component.
func (s *storage) addComponentBytes(id EntityID, desc ComponentDescriptor, src unsafe.Pointer) error {
	loc, ok := s.entityLocation[id]
	if !ok {
		panic(UnknownEntityError{EntityID: id})
	}
	A := loc.archetype
	if A.has(desc.ID) {
		if desc.Destructor != nil {
			desc.Destructor(src)
		}
		return nil
	}

	B, insertIndex := s.getOrCreateArchetypeAdding(A, desc)
	rNew, ptrs := B.pushEntityUninitialized(id)

	for i := range B.descriptors {
		switch {
		case i == insertIndex:
			writeBytes(ptrs[i], src, desc.Size)
		case i < insertIndex:
			writeBytes(ptrs[i], A.columns[i].At(loc.row), A.descriptors[i].Size)
		default:
			writeBytes(ptrs[i], A.columns[i-1].At(loc.row), A.descriptors[i-1].Size)
		}
	}

	moved, hasMoved := A.swapRemoveRow(loc.row, false)
	if hasMoved {
		s.entityLocation[moved] = entityLocation{archetype: A, row: loc.row}
	}
	s.entityLocation[id] = entityLocation{archetype: B, row: rNew}
	Config.fireEntityMigrated(id, A, B)
	return nil
}

// removeComponentByID implements spec.md 4.3.5. A benign no-op if the
// entity doesn't carry cid.
func (s *storage) removeComponentByID(id EntityID, cid ComponentID) error {
	loc, ok := s.entityLocation[id]
	if !ok {
		panic(UnknownEntityError{EntityID: id})
	}
	A := loc.archetype
	removeIndex := A.indexOf(cid)
	if removeIndex < 0 {
		return nil
	}

	B := s.getOrCreateArchetypeRemoving(A, cid)
	rNew, ptrs := B.pushEntityUninitialized(id)

	for i := range B.descriptors {
		srcCol := i
		if i >= removeIndex {
			srcCol = i + 1
		}
		writeBytes(ptrs[i], A.columns[srcCol].At(loc.row), A.descriptors[srcCol].Size)
	}

	if d := A.descriptors[removeIndex].Destructor; d != nil {
		d(A.columns[removeIndex].At(loc.row))
	}

	moved, hasMoved := A.swapRemoveRow(loc.row, false)
	if hasMoved {
		s.entityLocation[moved] = entityLocation{archetype: A, row: loc.row}
	}
	s.entityLocation[id] = entityLocation{archetype: B, row: rNew}
	Config.fireEntityMigrated(id, A, B)
	return nil
}

// CommandBuffer returns a fresh, empty command buffer bound to this
// storage for recording structural mutations during query iteration.
func (s *storage) CommandBuffer() *CommandBuffer {
	return newCommandBuffer(s)
}

// Teardown destroys every live component instance exactly once and drops
// all archetypes. The storage is unusable afterward.
func (s *storage) Teardown() {
	for _, a := range s.archetypesByID {
		a.destroyAllEntities()
	}
	s.entityLocation = make(map[EntityID]entityLocation)
	s.archetypes = make(map[bitset.Set]*archetype)
	s.archetypesByID = nil
	s.archetypesOfComponent = make(map[ComponentID]map[*archetype]struct{})
}
