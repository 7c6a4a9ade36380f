package warehouse

import (
	"sort"

	"github.com/lattice-ecs/warehouse/internal/bitset"
)

// Query names a combination of required (With) and forbidden (Without)
// component types. It matches every archetype whose signature is a
// superset of the include set and disjoint from the exclude set.
//
// A Query caches the archetypes it last matched against storage's
// archetype generation counter: since an archetype's signature never
// changes once registered, the match set for a fixed include/exclude
// pair can only grow, and only grows when storage registers a brand new
// archetype. Re-evaluating from scratch on every cursor is wasted work
// once a model has been running long enough to have discovered its
// archetypes.
type Query struct {
	includeIDs []ComponentID
	includeSet bitset.Set
	excludeSet bitset.Set
	hasExclude bool

	cachedGeneration int
	cachedMatches    []*archetype
}

// NewQuery returns an empty query; chain With/Without to build up its
// predicate.
func NewQuery() *Query {
	return &Query{}
}

// With requires every matching archetype to carry all of the given
// component types.
func (q *Query) With(components ...Component) *Query {
	for _, c := range components {
		q.includeIDs = append(q.includeIDs, c.ID())
		q.includeSet.Mark(int(c.ID()))
	}
	q.invalidate()
	return q
}

// Without excludes any archetype that carries any of the given component
// types.
func (q *Query) Without(components ...Component) *Query {
	for _, c := range components {
		q.excludeSet.Mark(int(c.ID()))
		q.hasExclude = true
	}
	q.invalidate()
	return q
}

func (q *Query) invalidate() {
	q.cachedGeneration = -1
	q.cachedMatches = nil
}

// matches returns every archetype in s currently satisfying the query,
// recomputing only when s has registered new archetypes since the last
// call. Per the data model's inverted component->archetypes index, the
// candidate set is narrowed to the archetypes carrying the include
// component with the fewest archetypes registered against it, before the
// full signature is checked against that candidate via the archetype's
// own bitset key — so a query over a rare component never has to walk
// every archetype storage has ever created.
func (q *Query) matches(s *storage) []*archetype {
	gen := s.archetypeGeneration()
	if q.cachedMatches != nil && q.cachedGeneration == gen {
		return q.cachedMatches
	}

	var candidates map[*archetype]struct{}
	if len(q.includeIDs) == 0 {
		candidates = make(map[*archetype]struct{}, len(s.archetypesByID))
		for _, a := range s.archetypesByID {
			candidates[a] = struct{}{}
		}
	} else {
		narrowest := q.includeIDs[0]
		for _, cid := range q.includeIDs[1:] {
			if len(s.archetypesOfComponent[cid]) < len(s.archetypesOfComponent[narrowest]) {
				narrowest = cid
			}
		}
		candidates = s.archetypesOfComponent[narrowest]
	}

	matches := make([]*archetype, 0, len(candidates))
	for a := range candidates {
		if !a.key.ContainsAll(q.includeSet) {
			continue
		}
		if q.hasExclude && !a.key.ContainsNone(q.excludeSet) {
			continue
		}
		matches = append(matches, a)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].id < matches[j].id })

	q.cachedMatches = matches
	q.cachedGeneration = gen
	return matches
}

// Each runs fn once for every entity the query currently matches, pulling
// through a Cursor internally. It is the closure-based counterpart to
// the pull-based Cursor — the Go shape of the original's
// for_each_entities iteration macro — for callers who just want to do
// something per entity without driving Next themselves.
func (q *Query) Each(s Storage, fn func(ReadOnlyEntity)) {
	cursor := NewCursor(q, s)
	for cursor.Next() {
		fn(cursor.Entity())
	}
}
