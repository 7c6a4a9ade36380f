package warehouse

// Config holds optional lifecycle hooks invoked by a Storage as it runs.
// Hooks are plain callbacks, not a logging facility: a caller that wants
// structured logging wires one up itself and calls into it from here.
// Config is intentionally mutable global state, mirroring how the rest of
// this package favors a single package-level Factory over per-call
// configuration threading.
var Config config = config{}

type config struct {
	onArchetypeCreated func(Archetype)
	onEntityMigrated   func(id EntityID, from, to Archetype)
}

// OnArchetypeCreated registers a hook invoked whenever storage creates a
// brand new archetype (the first time a distinct component signature is
// seen). Useful for instrumentation that wants to track schema growth
// without storage exposing its internals.
func (c *config) OnArchetypeCreated(hook func(Archetype)) {
	c.onArchetypeCreated = hook
}

// OnEntityMigrated registers a hook invoked whenever an entity moves from
// one archetype to another as a result of AddComponent or RemoveComponent.
func (c *config) OnEntityMigrated(hook func(id EntityID, from, to Archetype)) {
	c.onEntityMigrated = hook
}

func (c *config) fireArchetypeCreated(a Archetype) {
	if c.onArchetypeCreated != nil {
		c.onArchetypeCreated(a)
	}
}

func (c *config) fireEntityMigrated(id EntityID, from, to Archetype) {
	if c.onEntityMigrated != nil {
		c.onEntityMigrated(id, from, to)
	}
}
