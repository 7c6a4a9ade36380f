package warehouse

import "fmt"

// LockedStorageError is the panic value when a caller attempts a direct
// structural mutation (AddComponent, RemoveComponent, CreateEntity,
// DeleteEntity) while storage is locked for query iteration. Use a
// CommandBuffer's Enqueue methods instead.
type LockedStorageError struct {
	Op string
}

func (e LockedStorageError) Error() string {
	return fmt.Sprintf("warehouse: %s: storage is locked for query iteration", e.Op)
}

// ComponentExistsError describes a duplicate-Add condition: the entity
// already carries an instance of the component type. Add itself treats
// this as a no-op (see ComponentType.Add), so the storage engine never
// constructs one; it's exported for a caller that wants to distinguish
// "already present" from "newly added" itself, by checking Has before
// calling Add and building this value directly.
type ComponentExistsError struct {
	ComponentID ComponentID
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("warehouse: component %d already exists on entity", e.ComponentID)
}

// ComponentNotFoundError describes a missing-component condition: the
// entity does not carry an instance of the component type. Remove treats
// this as a no-op (see ComponentType.Remove) rather than constructing
// one; it's exported for the same reason as ComponentExistsError.
type ComponentNotFoundError struct {
	ComponentID ComponentID
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("warehouse: component %d not found on entity", e.ComponentID)
}

// UnknownEntityError is the panic value when an operation names an
// EntityID that either never existed or has already been deleted —
// AddComponent and RemoveComponent against such an id are a programmer
// error, not a recoverable one, so it travels via panic/recover rather
// than a returned error.
type UnknownEntityError struct {
	EntityID EntityID
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("warehouse: entity %d is unknown or already deleted", e.EntityID)
}
