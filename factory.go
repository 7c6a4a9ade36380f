package warehouse

type factory struct{}

// Factory is the single entry point for constructing the top-level types
// in this package: storages, queries, and cursors. Component types are
// constructed with the free functions NewComponent/NewComponentWithDestructor
// instead, since Go does not allow a method to introduce a new type
// parameter.
var Factory factory

// NewStorage returns a fresh, empty archetype storage engine.
func (f factory) NewStorage() Storage {
	return newStorage()
}

// NewQuery returns a fresh, empty query.
func (f factory) NewQuery() *Query {
	return NewQuery()
}

// NewCursor returns a cursor over q's matches against s.
func (f factory) NewCursor(q *Query, s Storage) *Cursor {
	return NewCursor(q, s)
}

// FactoryNewCache returns a string-keyed cache with a fixed capacity.
func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}
