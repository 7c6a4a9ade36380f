package warehouse

import "fmt"

var _ Cache[any] = &SimpleCache[any]{}

// SimpleCache is a fixed-capacity, string-keyed registry. It has no
// notion of eviction: Register fails once maxCapacity items are stored.
// Used by callers that want to hand a stable, cache-friendly integer
// index to each of a known, bounded set of named resources (for example,
// named Query objects a game's systems share) instead of looking them up
// by string on every frame.
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, fmt.Errorf("warehouse: cache key %q already registered", key)
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("warehouse: cache at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

func (c *SimpleCache[T]) Clear() {
	c.items = c.items[:0]
	c.itemIndices = make(map[string]int)
}
