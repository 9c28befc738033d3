package item

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVehicle struct {
	fuel     float64
	repairs  int
	repairEr error
}

func (f *fakeVehicle) Refuel(amount float64) float64 { f.fuel += amount; return amount }
func (f *fakeVehicle) Repair() error {
	if f.repairEr != nil {
		return f.repairEr
	}
	f.repairs++
	return nil
}

type fakeUser struct {
	healed  float64
	ate     float64
	drank   float64
	vehicle *fakeVehicle
	ammo    int
	armed   bool
}

func (u *fakeUser) Heal(a float64)  { u.healed += a }
func (u *fakeUser) Eat(a float64)   { u.ate += a }
func (u *fakeUser) Drink(a float64) { u.drank += a }
func (u *fakeUser) ServiceVehicle() (VehicleService, bool) {
	if u.vehicle == nil {
		return nil, false
	}
	return u.vehicle, true
}
func (u *fakeUser) AddAmmo(n int) error {
	if !u.armed {
		return entity.ErrInvalidOperation
	}
	u.ammo += n
	return nil
}

func medkit(id entity.ID, qty int) *Item {
	tpl := LootTable[1]
	tpl.Quantity = qty
	return New(id, tpl, vec.Zero)
}

func TestInventoryStacking(t *testing.T) {
	inv := NewInventory(1, 20, 50)

	require.NoError(t, inv.Add(medkit(10, 3)))
	require.NoError(t, inv.Add(medkit(11, 4)))

	// 3 + 4 при maxStack 5: одна полная стопка и одна с остатком
	assert.Equal(t, 7, inv.Count("Bandagem", TypeMedkit))
	first, idx, ok := inv.FirstByType(TypeMedkit)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 5, first.Quantity)
	assert.InDelta(t, 3.5, inv.Weight(), 1e-9)
}

func TestInventoryFullStackMergeKeepsSlotsFree(t *testing.T) {
	inv := NewInventory(1, 1, 50)
	require.NoError(t, inv.Add(medkit(10, 2)))

	extra := medkit(11, 3)
	require.NoError(t, inv.Add(extra))
	assert.Equal(t, 0, extra.Quantity)
	assert.True(t, extra.PickedUp())
	assert.Equal(t, 5, inv.Count("Bandagem", TypeMedkit))
}

func TestInventoryRejectsWithoutChanges(t *testing.T) {
	t.Run("weight", func(t *testing.T) {
		inv := NewInventory(1, 20, 1)
		err := inv.Add(New(10, LootTable[2], vec.Zero))
		require.NoError(t, err)

		err = inv.Add(New(11, LootTable[3], vec.Zero))
		assert.True(t, errors.Is(err, entity.ErrResourceExhausted))
		assert.InDelta(t, 1.0, inv.Weight(), 1e-9)
		assert.Equal(t, 0, inv.Count("Água", TypeDrink))
	})

	t.Run("slots", func(t *testing.T) {
		inv := NewInventory(1, 1, 50)
		require.NoError(t, inv.Add(medkit(10, 5)))

		more := medkit(11, 1)
		err := inv.Add(more)
		assert.True(t, errors.Is(err, entity.ErrResourceExhausted))
		assert.Equal(t, 1, more.Quantity)
		assert.False(t, more.PickedUp())
		assert.Equal(t, 5, inv.Count("Bandagem", TypeMedkit))
	})
}

func TestUseConsumesAndFreesSlot(t *testing.T) {
	inv := NewInventory(1, 20, 50)
	require.NoError(t, inv.Add(medkit(10, 1)))

	u := &fakeUser{}
	require.NoError(t, inv.Use(0, u))
	assert.Equal(t, 20.0, u.healed)

	_, ok := inv.Item(0)
	assert.False(t, ok)
	assert.InDelta(t, 0, inv.Weight(), 1e-9)

	err := inv.Use(0, u)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestUseAmmoAddsReserve(t *testing.T) {
	inv := NewInventory(1, 20, 50)
	require.NoError(t, inv.Add(New(10, LootTable[0], vec.Zero)))

	unarmed := &fakeUser{}
	err := inv.Use(0, unarmed)
	assert.True(t, errors.Is(err, entity.ErrInvalidOperation))
	it, _ := inv.Item(0)
	assert.Equal(t, 10, it.Quantity, "failed use must not consume")

	armed := &fakeUser{armed: true}
	require.NoError(t, inv.Use(0, armed))
	assert.Equal(t, 10, armed.ammo)
	assert.Equal(t, 9, it.Quantity)
}

func TestUseVehicleSupplies(t *testing.T) {
	fuel, ok := FindTemplate("Galão de Combustível")
	require.True(t, ok)
	repair, ok := FindTemplate("Kit de Reparo")
	require.True(t, ok)

	noCar := &fakeUser{}
	assert.ErrorIs(t, New(1, fuel, vec.Zero).Use(noCar), entity.ErrInvalidOperation)
	assert.ErrorIs(t, New(2, repair, vec.Zero).Use(noCar), entity.ErrInvalidOperation)

	car := &fakeVehicle{}
	u := &fakeUser{vehicle: car}
	require.NoError(t, New(3, fuel, vec.Zero).Use(u))
	require.NoError(t, New(4, repair, vec.Zero).Use(u))
	assert.Equal(t, 20.0, car.fuel)
	assert.Equal(t, 1, car.repairs)

	car.repairEr = entity.ErrInvalidOperation
	kit := New(5, repair, vec.Zero)
	assert.Error(t, kit.Use(u))
	assert.Equal(t, 1, kit.Quantity)
}

func TestDrop(t *testing.T) {
	inv := NewInventory(7, 20, 50)
	it := medkit(10, 2)
	require.NoError(t, inv.Add(it))
	assert.Equal(t, entity.ID(7), it.Owner())

	pos := DropPosition(vec.New(10, 0, 10), 0)
	dropped, err := inv.Drop(0, pos)
	require.NoError(t, err)
	assert.Same(t, it, dropped)
	assert.False(t, dropped.PickedUp())
	assert.Equal(t, entity.None, dropped.Owner())
	// yaw 0 смотрит в -Z
	assert.True(t, dropped.Position().Equals(vec.New(10, 0, 8.5), 1e-9))
	assert.InDelta(t, 0, inv.Weight(), 1e-9)
}

func TestRandomLootDeterministic(t *testing.T) {
	a := RandomLoot(rand.New(rand.NewSource(3)))
	b := RandomLoot(rand.New(rand.NewSource(3)))
	assert.Equal(t, a, b)
}
