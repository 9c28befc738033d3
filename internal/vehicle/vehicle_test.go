package vehicle

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sedan(t *testing.T) config.VehicleType {
	spec, ok := config.DefaultCatalog().Vehicle("Sedan")
	require.True(t, ok)
	return *spec
}

// working машина, которой не нужен ремонт
func working(t *testing.T) *Vehicle {
	v := New(1, sedan(t), vec.Zero, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, v.Repair())
	return v
}

func TestNewVehicle(t *testing.T) {
	v := New(1, sedan(t), vec.New(5, 0, 5), 0, rand.New(rand.NewSource(1)))
	assert.Equal(t, 30.0, v.Fuel())
	assert.Equal(t, 100.0, v.Health())
	assert.True(t, v.Position().Equals(vec.New(5, 0, 5), 1e-9))
	assert.InDelta(t, 0.75, v.Body().Position.Y, 1e-9)
	assert.Equal(t, 1200.0, v.Body().Mass)
}

func TestRepairIsIdempotent(t *testing.T) {
	v := working(t)
	before := *v
	require.NoError(t, v.Repair())
	assert.Equal(t, before.health, v.health)
	assert.Equal(t, before.needsRepair, v.needsRepair)
	assert.False(t, v.NeedsRepair())
	assert.Equal(t, v.MaxHealth(), v.Health())
}

func TestEnterExit(t *testing.T) {
	spec := sedan(t)
	spec.Seats = 3
	v := New(1, spec, vec.Zero, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, v.Repair())

	seat, err := v.Enter(10)
	require.NoError(t, err)
	assert.Equal(t, SeatDriver, seat)
	assert.True(t, v.Running())

	seat, err = v.Enter(11)
	require.NoError(t, err)
	assert.Equal(t, SeatPassenger, seat)
	_, err = v.Enter(12)
	require.NoError(t, err)

	_, err = v.Enter(13)
	assert.True(t, errors.Is(err, entity.ErrInvalidOperation), "full vehicle")

	_, err = v.Enter(11)
	assert.Error(t, err, "already inside")

	require.NoError(t, v.Exit(10))
	assert.Equal(t, entity.ID(11), v.Driver())
	assert.Equal(t, []entity.ID{12}, v.Passengers())

	require.NoError(t, v.Exit(12))
	assert.True(t, errors.Is(v.Exit(99), entity.ErrNotFound))
}

func TestBrokenVehicleDoesNotStart(t *testing.T) {
	v := working(t)
	v.needsRepair = true
	seat, err := v.Enter(10)
	require.NoError(t, err)
	assert.Equal(t, SeatDriver, seat)
	assert.False(t, v.Running())

	v.needsRepair = false
	v.fuel = 0
	assert.True(t, errors.Is(v.StartEngine(), entity.ErrResourceExhausted))
}

func TestDestroyEjectsEveryone(t *testing.T) {
	v := working(t)
	for _, id := range []entity.ID{10, 11, 12} {
		_, err := v.Enter(id)
		require.NoError(t, err)
	}

	var ejected []entity.ID
	calls := 0
	v.OnDestroyed = func(_ *Vehicle, ids []entity.ID) {
		calls++
		ejected = ids
	}

	v.TakeDamage(60)
	assert.False(t, v.Destroyed())
	v.TakeDamage(60)
	assert.True(t, v.Destroyed())
	assert.Equal(t, 0.0, v.Health())
	assert.Equal(t, []entity.ID{10, 11, 12}, ejected)
	assert.Equal(t, entity.None, v.Driver())
	assert.Empty(t, v.Passengers())
	assert.False(t, v.Running())

	// уничтожение окончательно
	v.TakeDamage(10)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.Is(v.Repair(), entity.ErrInvalidOperation))
	_, err := v.Enter(10)
	assert.Error(t, err)
}

func TestRefuelClamps(t *testing.T) {
	v := working(t)
	assert.Equal(t, 20.0, v.Refuel(20))
	assert.Equal(t, 10.0, v.Refuel(20))
	assert.Equal(t, 60.0, v.Fuel())
}

func TestDriveModel(t *testing.T) {
	v := working(t)
	_, err := v.Enter(10)
	require.NoError(t, err)

	dt := 0.1
	v.Update(dt, Controls{Forward: true})
	throttle, brake, _ := v.Pedals()
	assert.InDelta(t, 0.2, throttle, 1e-9)
	assert.Equal(t, 0.0, brake)

	// yaw 0: вперёд это +Z
	vel := v.Body().Velocity
	assert.InDelta(t, 0.2*10*dt*0.95, vel.Z, 1e-9)
	assert.InDelta(t, 0, vel.X, 1e-9)
	assert.InDelta(t, 30-0.2*0.01*dt, v.Fuel(), 1e-12)

	v.Update(dt, Controls{Back: true})
	throttle, brake, _ = v.Pedals()
	assert.Equal(t, 0.0, throttle)
	assert.InDelta(t, 0.2, brake, 1e-9)
	assert.Less(t, v.Body().Velocity.Z, vel.Z)

	v.Update(dt, Controls{Right: true})
	_, _, steering := v.Pedals()
	assert.InDelta(t, 0.2, steering, 1e-9)
}

func TestOutOfFuelStopsEngine(t *testing.T) {
	v := working(t)
	_, err := v.Enter(10)
	require.NoError(t, err)
	v.fuel = 0.0001

	for i := 0; i < 10; i++ {
		v.Update(1, Controls{Forward: true})
	}
	assert.Equal(t, 0.0, v.Fuel())
	assert.False(t, v.Running())

	v.Update(1, Controls{Forward: true})
	assert.Equal(t, 0.0, v.Speed(), "parked vehicle does not roll")
}
