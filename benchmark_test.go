package warehouse

import "testing"

const (
	nPosVel = 1000
	nPos    = 9000
)

func BenchmarkIterGet(b *testing.B) {
	b.StopTimer()

	velocity := NewComponent[Velocity]()
	position := NewComponent[Position]()
	s := Factory.NewStorage()

	for i := 0; i < nPosVel; i++ {
		e := s.CreateEntity()
		position.Add(e, Position{})
		velocity.Add(e, Velocity{})
	}
	for i := 0; i < nPos; i++ {
		e := s.CreateEntity()
		position.Add(e, Position{})
	}

	query := NewQuery().With(velocity, position)
	cursor := Factory.NewCursor(query, s)

	b.StartTimer()

	for i := 0; i < b.N; i++ {
		cursor = Factory.NewCursor(query, s)
		for cursor.Next() {
			pos := position.GetFromCursor(cursor)
			vel := velocity.GetFromCursor(cursor)

			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
}

func BenchmarkAddRemoveComponent(b *testing.B) {
	b.StopTimer()

	position := NewComponent[Position]()
	velocity := NewComponent[Velocity]()
	s := Factory.NewStorage()

	e := s.CreateEntity()
	position.Add(e, Position{})

	b.StartTimer()

	for i := 0; i < b.N; i++ {
		velocity.Add(e, Velocity{})
		velocity.Remove(e)
	}
}
