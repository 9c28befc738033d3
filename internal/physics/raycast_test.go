package physics

import (
	"testing"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaycastSphere(t *testing.T) {
	e := newTestEngine()
	e.AddSphereCollider(vec.New(0, 0, 5), 1, Tag{Kind: entity.KindTree})

	hit, ok := e.Raycast(vec.Zero, vec.New(0, 0, 1), 100)
	require.True(t, ok)
	assert.InDelta(t, 4.0, hit.Distance, 1e-9)
	assert.True(t, hit.Point.Equals(vec.New(0, 0, 4), 1e-9))
	assert.Equal(t, entity.KindTree, hit.Tag.Kind)
}

func TestRaycastMaxDistanceExclusive(t *testing.T) {
	e := newTestEngine()
	e.AddSphereCollider(vec.New(0, 0, 5), 1, Tag{})

	_, ok := e.Raycast(vec.Zero, vec.New(0, 0, 1), 4)
	assert.False(t, ok, "Попадание ровно на maxDistance не учитывается")

	_, ok = e.Raycast(vec.Zero, vec.New(0, 0, 1), 4.0001)
	assert.True(t, ok)

	for _, unlimited := range []float64{0, -1} {
		hit, ok := e.Raycast(vec.Zero, vec.New(0, 0, 1), unlimited)
		require.True(t, ok, "maxDistance %v без ограничения", unlimited)
		assert.InDelta(t, 4.0, hit.Distance, 1e-9)
	}
}

func TestRaycastBoxNearest(t *testing.T) {
	e := newTestEngine()
	e.AddBoxCollider(vec.New(0, 0, 20), vec.New(2, 2, 2), Tag{Kind: entity.KindBuilding, ID: 2})
	e.AddBoxCollider(vec.New(0, 0, 10), vec.New(2, 2, 2), Tag{Kind: entity.KindBuilding, ID: 1})

	hit, ok := e.Raycast(vec.Zero, vec.New(0, 0, 2), 0)
	require.True(t, ok)
	assert.InDelta(t, 9.0, hit.Distance, 1e-9)
	assert.Equal(t, entity.ID(1), hit.Tag.ID)

	_, ok = e.Raycast(vec.Zero, vec.New(0, 1, 0), 0)
	assert.False(t, ok, "Луч вверх ничего не задевает")
}

func TestRaycastFromInside(t *testing.T) {
	e := newTestEngine()
	e.AddBoxCollider(vec.Zero, vec.New(4, 4, 4), Tag{})

	hit, ok := e.Raycast(vec.Zero, vec.New(1, 0, 0), 0)
	require.True(t, ok)
	assert.InDelta(t, 2.0, hit.Distance, 1e-9, "Изнутри возвращается точка выхода")
}

func TestRaycastBodiesAndFilter(t *testing.T) {
	e := newTestEngine()
	e.AddBoxCollider(vec.New(0, 0, 30), vec.New(2, 2, 2), Tag{Kind: entity.KindBuilding})
	shooter := e.AddBody(NewBody(80, NewSphere(0.5), vec.Zero, Tag{Kind: entity.KindPlayer, ID: 1}))
	zombie := e.AddBody(NewBody(70, NewSphere(0.4), vec.New(0, 0, 10), Tag{Kind: entity.KindZombie, ID: 2}))

	hit, ok := e.RaycastWith(shooter.Position, vec.New(0, 0, 1), 100, RaycastOptions{
		IncludeBodies: true,
		Exclude:       1,
	})
	require.True(t, ok)
	assert.Same(t, zombie, hit.Body)
	assert.InDelta(t, 9.6, hit.Distance, 1e-9)

	hit, ok = e.RaycastWith(shooter.Position, vec.New(0, 0, 1), 100, RaycastOptions{
		IncludeBodies: true,
		Exclude:       1,
		Filter:        OnlyKinds(entity.KindBuilding),
	})
	require.True(t, ok)
	assert.Nil(t, hit.Body)
	assert.InDelta(t, 29.0, hit.Distance, 1e-9)

	_, ok = e.Raycast(vec.Zero, vec.Zero, 100)
	assert.False(t, ok, "Нулевое направление")
}
