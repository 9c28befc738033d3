package physics

import (
	"testing"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(Config{Gravity: 10, WorldSize: 2000})
}

func TestStepIntegration(t *testing.T) {
	e := newTestEngine()
	b := e.AddBody(NewBody(2, NewSphere(0.5), vec.New(0, 100, 0), Tag{}))
	kinematic := e.AddBody(NewBody(0, NewSphere(0.5), vec.New(10, 100, 0), Tag{}))

	b.ApplyForce(vec.New(4, 0, 0))
	e.Step(0.5)

	// a = F/m + g = (2, -10, 0); v = a*dt; p += v*dt
	assert.True(t, b.Velocity.Equals(vec.New(1, -5, 0), 1e-9), "скорость %+v", b.Velocity)
	assert.True(t, b.Position.Equals(vec.New(0.5, 97.5, 0), 1e-9), "позиция %+v", b.Position)
	assert.Equal(t, vec.Zero, b.Force(), "Аккумулятор сил обнуляется после шага")

	assert.Equal(t, vec.New(10, 100, 0), kinematic.Position, "Тело с нулевой массой не двигается")
	assert.Equal(t, vec.Zero, kinematic.Velocity)
}

func TestStepTorque(t *testing.T) {
	e := newTestEngine()
	b := e.AddBody(NewBody(1, NewSphere(0.5), vec.New(0, 10, 0), Tag{}))
	b.ApplyForceAt(vec.New(0, 0, 1), vec.New(1, 10, 0))
	e.Step(1)

	// r x F = (1,0,0) x (0,0,1) = (0,-1,0)
	assert.True(t, b.AngularVelocity.Equals(vec.New(0, -1, 0), 1e-9), "угловая скорость %+v", b.AngularVelocity)
	assert.Equal(t, vec.Zero, b.Torque())
}

func TestStaticCollisionResponse(t *testing.T) {
	e := newTestEngine()
	e.AddBoxCollider(vec.Zero, vec.New(2, 2, 2), Tag{Kind: entity.KindBuilding})
	b := e.AddBody(NewBody(1, NewSphere(1), vec.New(1.5, 0, 0), Tag{Kind: entity.KindZombie, ID: 7}))
	b.Velocity = vec.New(-4, 0, 2)

	contacts := e.CheckCollisions()
	require.Len(t, contacts, 1)
	assert.Equal(t, entity.KindBuilding, contacts[0].Static.Tag.Kind)

	assert.True(t, b.Position.Equals(vec.New(2, 0, 0), 1e-9), "Тело выталкивается на полный вектор, %+v", b.Position)
	// отражение (4,0,2), затем затухание 0.5
	assert.True(t, b.Velocity.Equals(vec.New(2, 0, 1), 1e-9), "скорость %+v", b.Velocity)
}

func TestBodyCollisionMassSplit(t *testing.T) {
	e := newTestEngine()
	a := e.AddBody(NewBody(3, NewSphere(1), vec.New(-0.75, 0, 0), Tag{}))
	b := e.AddBody(NewBody(1, NewSphere(1), vec.New(0.75, 0, 0), Tag{}))
	a.Velocity = vec.New(2, 0, 5)
	b.Velocity = vec.New(-2, 0, 0)

	contacts := e.CheckCollisions()
	require.Len(t, contacts, 1)

	// проникновение 0.5 по -X; a сдвигается на 0.5*1/4, b на 0.5*3/4
	assert.InDelta(t, -0.875, a.Position.X, 1e-9)
	assert.InDelta(t, 1.125, b.Position.X, 1e-9)

	// нормаль -X: v1 = -2, v2 = 2
	// v1f = (-2*(3-1) + 2*1*2)/4*0.3 = 0; v2f = (2*(1-3) + 2*3*(-2))/4*0.3 = -1.2
	assert.InDelta(t, 0.0, a.Velocity.X, 1e-9)
	assert.InDelta(t, 1.2, b.Velocity.X, 1e-9)
	assert.InDelta(t, 5.0, a.Velocity.Z, 1e-9, "Касательная составляющая не меняется")
}

func TestBodyCollisionWithKinematic(t *testing.T) {
	e := newTestEngine()
	wall := e.AddBody(NewBody(0, NewSphere(1), vec.Zero, Tag{}))
	b := e.AddBody(NewBody(1, NewSphere(1), vec.New(1.5, 0, 0), Tag{}))
	b.Velocity = vec.New(-10, 0, 0)

	e.CheckCollisions()

	assert.Equal(t, vec.Zero, wall.Position, "Кинематическое тело не сдвигается")
	assert.InDelta(t, 2.0, b.Position.X, 1e-9)
	assert.InDelta(t, 3.0, b.Velocity.X, 1e-9, "Отскок с коэффициентом 0.3")
}

func TestInertBodiesSkipped(t *testing.T) {
	e := newTestEngine()
	e.AddSphereCollider(vec.Zero, 1, Tag{Kind: entity.KindTree})
	corpse := e.AddBody(NewBody(1, NewSphere(1), vec.New(0.5, 0, 0), Tag{}))
	corpse.Inert = true

	assert.Empty(t, e.CheckCollisions())
	e.Step(1)
	assert.Equal(t, vec.New(0.5, 0, 0), corpse.Position)
}

func TestClampToWorld(t *testing.T) {
	e := NewEngine(Config{Gravity: 9.8, WorldSize: 100})
	b := e.AddBody(NewBody(1, NewSphere(0.5), vec.New(80, -3, -70), Tag{}))
	b.Velocity = vec.New(0, -5, 0)

	e.ClampToWorld()

	assert.Equal(t, vec.New(50, 0.5, -50), b.Position)
	assert.Equal(t, 0.0, b.Velocity.Y)
	assert.True(t, b.Grounded)
}

func TestClampSkipsKinematicBodies(t *testing.T) {
	e := NewEngine(Config{Gravity: 9.8, WorldSize: 100})
	k := e.AddBody(NewBody(0, NewBox(vec.New(2, 2, 2)), vec.New(80, -3, 0), Tag{}))

	e.Update(0.016)

	assert.Equal(t, vec.New(80, -3, 0), k.Position, "тело с нулевой массой не сдвигается")
	assert.False(t, k.Grounded)
}

func TestStaticRegistry(t *testing.T) {
	e := newTestEngine()
	h1 := e.AddBoxCollider(vec.Zero, vec.New(1, 1, 1), Tag{Kind: entity.KindBuilding})
	h2 := e.AddSphereCollider(vec.New(5, 0, 0), 1, Tag{Kind: entity.KindTree})

	assert.NotEqual(t, h1, h2)
	s, ok := e.Static(h2)
	require.True(t, ok)
	assert.Equal(t, ShapeSphere, s.Shape.Kind)

	_, ok = e.Static(99)
	assert.False(t, ok)

	e.ClearStatics()
	assert.Empty(t, e.StaticColliders())
}

func TestContactListener(t *testing.T) {
	e := newTestEngine()
	e.AddSphereCollider(vec.Zero, 1, Tag{Kind: entity.KindTree})
	e.AddBody(NewBody(1, NewSphere(1), vec.New(1, 0, 0), Tag{}))

	var got []Contact
	e.OnContact(func(c Contact) { got = append(got, c) })
	e.CheckCollisions()

	assert.Len(t, got, 1)
}
