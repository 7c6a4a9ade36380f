package warehouse

import "testing"

func countMatches(t *testing.T, s Storage, q *Query) int {
	t.Helper()
	cursor := Factory.NewCursor(q, s)
	count := 0
	for cursor.Next() {
		count++
	}
	return count
}

func makeEntities(s Storage, n int, add func(Entity)) {
	for i := 0; i < n; i++ {
		e := s.CreateEntity()
		add(e)
	}
}

func TestQueryWithMatchesIntersection(t *testing.T) {
	s := Factory.NewStorage()
	position := NewComponent[Position]()
	velocity := NewComponent[Velocity]()
	health := NewComponent[Health]()

	makeEntities(s, 5, func(e Entity) { position.Add(e, Position{}); velocity.Add(e, Velocity{}) })
	makeEntities(s, 10, func(e Entity) { position.Add(e, Position{}) })
	makeEntities(s, 15, func(e Entity) { velocity.Add(e, Velocity{}) })
	makeEntities(s, 20, func(e Entity) { health.Add(e, Health{}) })

	q := NewQuery().With(position, velocity)
	if got := countMatches(t, s, q); got != 5 {
		t.Errorf("With(position, velocity) matched %d entities, want 5", got)
	}
}

func TestQueryWithoutExcludes(t *testing.T) {
	s := Factory.NewStorage()
	position := NewComponent[Position]()
	velocity := NewComponent[Velocity]()

	makeEntities(s, 5, func(e Entity) { position.Add(e, Position{}); velocity.Add(e, Velocity{}) })
	makeEntities(s, 10, func(e Entity) { position.Add(e, Position{}) })

	q := NewQuery().With(position).Without(velocity)
	if got := countMatches(t, s, q); got != 10 {
		t.Errorf("With(position).Without(velocity) matched %d entities, want 10", got)
	}
}

func TestQueryMatchesNewArchetypesCreatedAfterFirstEvaluation(t *testing.T) {
	s := Factory.NewStorage()
	position := NewComponent[Position]()
	velocity := NewComponent[Velocity]()

	q := NewQuery().With(position)
	if got := countMatches(t, s, q); got != 0 {
		t.Fatalf("expected 0 matches on empty storage, got %d", got)
	}

	e := s.CreateEntity()
	position.Add(e, Position{})
	velocity.Add(e, Velocity{})

	if got := countMatches(t, s, q); got != 1 {
		t.Errorf("expected query to pick up newly created archetype, got %d matches", got)
	}
}

func TestQueryNoMatches(t *testing.T) {
	s := Factory.NewStorage()
	position := NewComponent[Position]()
	health := NewComponent[Health]()

	e := s.CreateEntity()
	position.Add(e, Position{})

	q := NewQuery().With(health)
	if got := countMatches(t, s, q); got != 0 {
		t.Errorf("expected 0 matches, got %d", got)
	}
}

func TestCursorLenMatchesIterationCount(t *testing.T) {
	s := Factory.NewStorage()
	position := NewComponent[Position]()
	velocity := NewComponent[Velocity]()

	makeEntities(s, 7, func(e Entity) { position.Add(e, Position{}) })
	makeEntities(s, 3, func(e Entity) { position.Add(e, Position{}); velocity.Add(e, Velocity{}) })

	q := NewQuery().With(position)
	cursor := Factory.NewCursor(q, s)
	want := cursor.Len()

	got := 0
	for cursor.Next() {
		got++
	}
	if got != want || got != 10 {
		t.Errorf("iterated %d entities, Len() reported %d, want 10", got, want)
	}
}

func TestQueryEachVisitsEveryMatch(t *testing.T) {
	s := Factory.NewStorage()
	position := NewComponent[Position]()
	velocity := NewComponent[Velocity]()

	makeEntities(s, 4, func(e Entity) { position.Add(e, Position{}); velocity.Add(e, Velocity{}) })
	makeEntities(s, 6, func(e Entity) { position.Add(e, Position{}) })

	seen := map[EntityID]bool{}
	NewQuery().With(position).Each(s, func(e ReadOnlyEntity) {
		seen[e.ID()] = true
	})

	if len(seen) != 10 {
		t.Errorf("Each visited %d entities, want 10", len(seen))
	}
}

func TestQueryComponentAccessThroughCursor(t *testing.T) {
	s := Factory.NewStorage()
	position := NewComponent[Position]()
	velocity := NewComponent[Velocity]()

	for i := 0; i < 10; i++ {
		e := s.CreateEntity()
		position.Add(e, Position{X: float64(i)})
		velocity.Add(e, Velocity{X: 1})
	}

	q := NewQuery().With(position, velocity)
	cursor := Factory.NewCursor(q, s)
	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
	}

	verifyCursor := Factory.NewCursor(NewQuery().With(position), s)
	seen := map[float64]bool{}
	for verifyCursor.Next() {
		pos := position.GetFromCursor(verifyCursor)
		seen[pos.X] = true
	}
	for i := 1; i <= 10; i++ {
		if !seen[float64(i)] {
			t.Errorf("position %d not found after in-place update via cursor", i)
		}
	}
}
