/*
Package warehouse provides an archetype-based Entity-Component-System
storage engine for games and simulations.

Warehouse keeps every entity's components in contiguous, type-erased
columns grouped by archetype: the exact set of component types an entity
carries. Looking up, iterating, and migrating entities between archetypes
all operate on raw bytes, never reflection, once a component type has
been registered.

Core Concepts:

  - Entity: a stable identity for one object in the simulation.
  - Component: a plain Go type registered once via NewComponent, giving it
    a stable ComponentID and a destructor.
  - Archetype: the set of all entities sharing one exact component
    signature, stored together in column form.
  - Query: a With/Without predicate over component signatures, matched
    against every archetype storage currently holds.
  - CommandBuffer: a deferred log of structural mutations, for use from
    inside query iteration where direct mutation would panic.

Basic Usage:

	storage := warehouse.Factory.NewStorage()

	position := warehouse.NewComponent[Position]()
	velocity := warehouse.NewComponent[Velocity]()

	e := storage.CreateEntity()
	position.Add(e, Position{X: 0, Y: 0})
	velocity.Add(e, Velocity{X: 1, Y: 0})

	query := warehouse.NewQuery().With(position, velocity)
	cursor := warehouse.Factory.NewCursor(query, storage)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

Mutating structure (adding or removing a component, creating or deleting
an entity) while a cursor is active panics; enqueue the mutation on a
CommandBuffer instead and Run it once iteration completes:

	cmd := storage.CommandBuffer()
	cursor = warehouse.Factory.NewCursor(query, storage)
	for e := range cursor.Entities() {
		if healthIsZero(e) {
			velocity.EnqueueRemove(cmd, e)
		}
	}
	cmd.Run()
*/
package warehouse
