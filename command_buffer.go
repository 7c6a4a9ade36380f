package warehouse

import (
	"runtime"
	"unsafe"
)

type recordKind uint8

const (
	recCreateEntity recordKind = iota
	recDeleteEntity
	recAddComponent
	recRemoveComponent
)

// record is one entry of a CommandBuffer's insertion-ordered log. Only
// recAddComponent carries payload bytes (via offset into the buffer's
// aligned byte arena); the others are pure metadata.
type record struct {
	kind        recordKind
	entity      EntityID
	componentID ComponentID
	size        uintptr
	offset      int
	destructor  Destructor
}

// CommandBuffer records structural mutations (entity creation/deletion,
// component add/remove) for deferred execution, so they can be issued
// safely from inside active query iteration where direct mutation would
// panic. Component payloads are copied into an internal byte arena
// immediately on Enqueue, laid out at each component type's natural
// alignment; only each record's (kind, entity, component id, size,
// offset) metadata and destructor function value live outside that
// arena, since a Go func value cannot be memcpy'd into raw bytes the way
// a C function pointer can.
//
// Exactly one of Run or Discard must be called on every CommandBuffer
// that records at least one AddComponent; a buffer dropped without
// either leaks the logical resources owned by its un-run payloads until
// garbage collected, at which point a finalizer runs Discard as a last
// resort.
type CommandBuffer struct {
	storage  *storage
	records  []record
	payload  []byte
	finished bool
}

func newCommandBuffer(s *storage) *CommandBuffer {
	cmd := &CommandBuffer{storage: s}
	runtime.SetFinalizer(cmd, (*CommandBuffer).finalize)
	return cmd
}

func (cmd *CommandBuffer) finalize() {
	if !cmd.finished {
		cmd.Discard()
	}
}

// CreateEntity mints the new entity's EntityID immediately (so it can be
// used as the target of further Enqueue calls within this same buffer)
// but defers giving it a row in any archetype until Run.
func (cmd *CommandBuffer) CreateEntity() PendingEntity {
	id := cmd.storage.mintEntityID()
	cmd.records = append(cmd.records, record{kind: recCreateEntity, entity: id})
	return PendingEntity{id: id}
}

// DeleteEntity defers deleting e until Run. Idempotent, including against
// an e created earlier in this same buffer and never materialized.
func (cmd *CommandBuffer) DeleteEntity(e entityRef) {
	cmd.records = append(cmd.records, record{kind: recDeleteEntity, entity: e.entityID()})
}

func (cmd *CommandBuffer) enqueueAddComponent(id EntityID, desc ComponentDescriptor, src unsafe.Pointer) {
	offset := cmd.alignedAppend(src, desc.Size, desc.Align)
	cmd.records = append(cmd.records, record{
		kind:        recAddComponent,
		entity:      id,
		componentID: desc.ID,
		size:        desc.Size,
		offset:      offset,
		destructor:  desc.Destructor,
	})
}

func (cmd *CommandBuffer) enqueueRemoveComponent(id EntityID, cid ComponentID) {
	cmd.records = append(cmd.records, record{kind: recRemoveComponent, entity: id, componentID: cid})
}

// alignedAppend copies size bytes from src into the arena at the next
// offset that is a multiple of align, padding with zero bytes first if
// needed, and returns that offset.
func (cmd *CommandBuffer) alignedAppend(src unsafe.Pointer, size, align uintptr) int {
	if size == 0 {
		return len(cmd.payload)
	}
	if align == 0 {
		align = 1
	}
	for uintptr(len(cmd.payload))%align != 0 {
		cmd.payload = append(cmd.payload, 0)
	}
	offset := len(cmd.payload)
	cmd.payload = append(cmd.payload, make([]byte, size)...)
	dst := unsafe.Pointer(&cmd.payload[offset])
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
	return offset
}

// payloadPtr returns a pointer to the bytes at offset, or a harmless
// non-nil pointer when offset lands past the end of the arena (which
// happens for a zero-sized component's record when no later record
// appended bytes; such a pointer is never dereferenced for a non-zero
// length).
func (cmd *CommandBuffer) payloadPtr(offset int) unsafe.Pointer {
	if offset >= len(cmd.payload) {
		return unsafe.Pointer(cmd)
	}
	return unsafe.Pointer(&cmd.payload[offset])
}

// Run executes every recorded mutation in insertion order against the
// owning storage. Panics if this buffer has already been run or
// discarded.
func (cmd *CommandBuffer) Run() {
	cmd.finish()
	for _, r := range cmd.records {
		switch r.kind {
		case recCreateEntity:
			cmd.storage.materializeCreatedEntity(r.entity)
		case recDeleteEntity:
			cmd.storage.deleteEntityIdempotent(r.entity)
		case recAddComponent:
			if _, alive := cmd.storage.entityLocation[r.entity]; !alive {
				if r.destructor != nil {
					r.destructor(cmd.payloadPtr(r.offset))
				}
				continue
			}
			desc := ComponentDescriptor{ID: r.componentID, Size: r.size, Destructor: r.destructor}
			cmd.storage.addComponentBytes(r.entity, desc, cmd.payloadPtr(r.offset))
		case recRemoveComponent:
			if _, alive := cmd.storage.entityLocation[r.entity]; !alive {
				continue
			}
			cmd.storage.removeComponentByID(r.entity, r.componentID)
		}
	}
	cmd.records = nil
	cmd.payload = nil
}

// Discard abandons every recorded mutation without applying any of them,
// running the destructor of any enqueued AddComponent payload exactly
// once so no component instance is leaked. Panics if this buffer has
// already been run or discarded.
func (cmd *CommandBuffer) Discard() {
	cmd.finish()
	for _, r := range cmd.records {
		if r.kind == recAddComponent && r.destructor != nil {
			r.destructor(cmd.payloadPtr(r.offset))
		}
	}
	cmd.records = nil
	cmd.payload = nil
}

func (cmd *CommandBuffer) finish() {
	if cmd.finished {
		panic("warehouse: CommandBuffer already run or discarded")
	}
	cmd.finished = true
	runtime.SetFinalizer(cmd, nil)
}
