package warehouse

import (
	"iter"
	"unsafe"
)

// Cursor walks the archetypes matched by a Query, one entity row at a
// time. While a cursor is active, storage is locked against direct
// structural mutation (AddComponent, RemoveComponent, CreateEntity,
// DeleteEntity); deferred mutation through a CommandBuffer remains legal
// throughout.
type Cursor struct {
	query   *Query
	storage *storage

	matched []*archetype
	archIdx int
	row     int

	started bool
	done    bool
}

// NewCursor returns a cursor over q's matches against s. The cursor does
// not lock storage or snapshot the match set until it is first advanced.
func NewCursor(q *Query, s Storage) *Cursor {
	return &Cursor{query: q, storage: s.(*storage)}
}

func (c *Cursor) start() {
	if c.started {
		return
	}
	c.started = true
	c.storage.lock()
	c.matched = c.query.matches(c.storage)
	c.archIdx = 0
	c.row = -1
	c.skipEmptyArchetypes()
}

// skipEmptyArchetypes advances archIdx past any matched archetype that
// currently has no rows, so Next/done checks never have to special-case
// a zero-length archetype.
func (c *Cursor) skipEmptyArchetypes() {
	for c.archIdx < len(c.matched) && c.matched[c.archIdx].Len() == 0 {
		c.archIdx++
	}
}

// Next advances the cursor to the next matching entity, returning false
// once exhausted. Exhausting a cursor releases its lock on storage
// automatically; breaking out of a Next loop early does not, and Close
// must be called instead.
func (c *Cursor) Next() bool {
	c.start()
	if c.done {
		return false
	}
	if c.archIdx >= len(c.matched) {
		c.Close()
		return false
	}
	c.row++
	if c.row >= c.matched[c.archIdx].Len() {
		c.archIdx++
		c.row = 0
		c.skipEmptyArchetypes()
		if c.archIdx >= len(c.matched) {
			c.Close()
			return false
		}
	}
	return true
}

// Close releases the cursor's lock on storage. Safe to call multiple
// times, and automatically called once Next returns false.
func (c *Cursor) Close() {
	if c.started && !c.done {
		c.storage.unlock()
	}
	c.done = true
}

// Entity returns the handle for the entity the cursor currently stands
// on. Only valid after a call to Next that returned true.
func (c *Cursor) Entity() ReadOnlyEntity {
	a := c.matched[c.archIdx]
	return ReadOnlyEntity{id: a.entities[c.row], storage: c.storage}
}

// componentPtr returns a pointer to the current row's instance of cid,
// panicking if the current archetype does not carry it (a query used
// without declaring the component it reads via With).
func (c *Cursor) componentPtr(cid ComponentID) unsafe.Pointer {
	a := c.matched[c.archIdx]
	idx := a.indexOf(cid)
	if idx < 0 {
		panic("warehouse: component not present on archetype matched by cursor's query; add it to the query's With list")
	}
	return a.columns[idx].At(c.row)
}

// Entities ranges over every entity the cursor's query matches, in
// archetype order then row order. Breaking out of the range releases the
// cursor's lock on storage, same as exhausting it normally.
func (c *Cursor) Entities() iter.Seq[ReadOnlyEntity] {
	return func(yield func(ReadOnlyEntity) bool) {
		for c.Next() {
			if !yield(c.Entity()) {
				c.Close()
				return
			}
		}
	}
}

// Len returns the total number of entities the cursor's query currently
// matches, without consuming the cursor. Safe to call before, during, or
// after iteration.
func (c *Cursor) Len() int {
	matched := c.query.matches(c.storage)
	total := 0
	for _, a := range matched {
		total += a.Len()
	}
	return total
}
