package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/eventbus"
	"github.com/annel0/deadcity/internal/item"
	"github.com/annel0/deadcity/internal/progression"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/annel0/deadcity/internal/world"
	"github.com/annel0/deadcity/internal/zombie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// events копит события шины
type events struct {
	mu  sync.Mutex
	got []*eventbus.Envelope
}

func (e *events) handle(_ context.Context, ev *eventbus.Envelope) {
	e.mu.Lock()
	e.got = append(e.got, ev)
	e.mu.Unlock()
}

func (e *events) byType(eventType string) []*eventbus.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*eventbus.Envelope
	for _, ev := range e.got {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (e *events) wait(t *testing.T, eventType string, n int) []*eventbus.Envelope {
	t.Helper()
	require.Eventually(t, func() bool { return len(e.byType(eventType)) >= n }, time.Second, 5*time.Millisecond,
		"ожидалось %d событий %s", n, eventType)
	return e.byType(eventType)
}

type fixture struct {
	sim    *Simulation
	events *events
	input  *ManualInput
}

// newFixture симуляция на пустой карте без стартовой волны
func newFixture(t *testing.T, catalog *config.Catalog, layout *world.Layout) *fixture {
	t.Helper()
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	catalog.Zombies.WanderChance = 0
	catalog.Zombies.SpawnRate = 0
	if layout == nil {
		layout = &world.Layout{Size: catalog.World.Size, CitySize: catalog.World.CitySize}
	}

	bus := eventbus.NewMemoryBus(256)
	t.Cleanup(func() { _ = bus.Close() })
	ev := &events{}
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, ev.handle)
	require.NoError(t, err)

	input := NewManualInput()
	s, err := New(Options{
		Catalog:       catalog,
		Seed:          42,
		Layout:        layout,
		MaxDelta:      0.5,
		Bus:           bus,
		Input:         input,
		NoInitialWave: true,
	})
	require.NoError(t, err)
	return &fixture{sim: s, events: ev, input: input}
}

func TestNewSimulationBuildsWorld(t *testing.T) {
	s, err := New(Options{Seed: 7, Bus: eventbus.NewMemoryBus(0)})
	require.NoError(t, err)

	assert.Equal(t, 10, s.ZombieManager().ActiveCount())
	assert.Len(t, s.Vehicles(), 30)
	assert.NotEmpty(t, s.World().Layout().Buildings)
	assert.Equal(t, len(s.World().Layout().Buildings)+len(s.World().Layout().Trees), len(s.Engine().StaticColliders()))

	w, ok := s.Player().CurrentWeapon()
	require.True(t, ok)
	assert.Equal(t, StartingWeapon, w.Name())
	assert.Equal(t, 12, w.CurrentAmmo())
	assert.Equal(t, StartingReserve, w.TotalAmmo())

	for _, z := range s.Zombies() {
		assert.GreaterOrEqual(t, z.Position().DistanceTo(s.Player().Position()), 50.0)
	}
}

func TestTickClampsDelta(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.sim.Tick(0)
	f.sim.Tick(-1)
	assert.Equal(t, uint64(0), f.sim.Ticks())

	f.sim.Tick(3)
	assert.Equal(t, 0.5, f.sim.Now())
	assert.Equal(t, uint64(1), f.sim.Ticks())
}

func TestRaycastQueryHitsStatics(t *testing.T) {
	layout := &world.Layout{
		Size:      2000,
		Buildings: []world.Building{{Center: vec.New(0, 5, -20), Size: vec.New(10, 10, 10)}},
	}
	f := newFixture(t, nil, layout)

	hit, ok := f.sim.RaycastQuery(vec.New(0, 1, 0), vec.New(0, 0, -1), 0)
	require.True(t, ok)
	assert.InDelta(t, 15, hit.Distance, 1e-9)
	assert.Equal(t, entity.KindBuilding, hit.Tag.Kind)

	_, ok = f.sim.RaycastQuery(vec.New(0, 1, 0), vec.New(0, 0, -1), 15)
	assert.False(t, ok, "попадание ровно на границе не считается")
}

func TestZombieAttackIsQueued(t *testing.T) {
	f := newFixture(t, nil, nil)
	z, err := f.sim.SpawnZombie("Comum", vec.New(1, 0, 0))
	require.NoError(t, err)

	f.sim.Tick(0.25)
	assert.Equal(t, zombie.StateAttack, z.State())
	assert.Equal(t, 90.0, f.sim.Player().Health())

	// темп атаки 1 с: следующий удар в 1.25
	for i := 0; i < 3; i++ {
		f.sim.Tick(0.25)
	}
	assert.Equal(t, 90.0, f.sim.Player().Health())
	f.sim.Tick(0.25)
	assert.Equal(t, 80.0, f.sim.Player().Health())

	damaged := f.events.wait(t, eventbus.TypePlayerDamaged, 2)
	var payload eventbus.PlayerDamaged
	require.NoError(t, damaged[0].Decode(&payload))
	assert.Equal(t, uint64(z.ID()), payload.SourceID)
	assert.Equal(t, 90.0, payload.Health)
	assert.Equal(t, uint64(1), damaged[0].Tick)
}

func TestBuildingsBlockDetection(t *testing.T) {
	wall := &world.Layout{
		Size:      2000,
		Buildings: []world.Building{{Center: vec.New(0, 5, -10), Size: vec.New(10, 10, 2)}},
	}

	t.Run("wall hides the player", func(t *testing.T) {
		f := newFixture(t, nil, wall)
		z, err := f.sim.SpawnZombie("Comum", vec.New(0, 0, -20))
		require.NoError(t, err)
		f.sim.Tick(0.1)
		assert.Equal(t, zombie.StateIdle, z.State())
	})

	t.Run("open field", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		z, err := f.sim.SpawnZombie("Comum", vec.New(0, 0, -20))
		require.NoError(t, err)
		f.sim.Tick(0.1)
		assert.Equal(t, zombie.StateChase, z.State())
		assert.Equal(t, f.sim.Player().ID(), z.Target())
	})
}

func TestFireKillsZombieAndDropsLoot(t *testing.T) {
	catalog := config.DefaultCatalog()
	catalog.Weapons[0].Damage = 60
	catalog.Weapons[0].Recoil = 0
	catalog.Player.CameraHeight = 1.6
	catalog.Zombies.LootChance = 1
	f := newFixture(t, catalog, nil)

	z, err := f.sim.SpawnZombie("Comum", vec.New(0, 0, -5))
	require.NoError(t, err)

	res, err := f.sim.Fire()
	require.NoError(t, err)
	require.True(t, res.Hit)
	assert.True(t, res.Killed)
	assert.True(t, z.IsDead())

	items := f.sim.Items()
	require.Len(t, items, 1)
	assert.Equal(t, z.Position(), items[0].Position())

	assert.Equal(t, 1.0, f.sim.Progression().Stat(progression.StatZombiesKilled))
	assert.Equal(t, KillExperience, f.sim.Progression().Experience())

	killed := f.events.wait(t, eventbus.TypeZombieKilled, 1)
	var payload eventbus.ZombieKilled
	require.NoError(t, killed[0].Decode(&payload))
	assert.Equal(t, items[0].Name, payload.Loot)
	f.events.wait(t, eventbus.TypeWeaponFired, 1)

	// темп стрельбы пистолета 0.5 с
	_, err = f.sim.Fire()
	assert.True(t, errors.Is(err, entity.ErrInvalidOperation))

	// труп убирается через 10 с
	for i := 0; i < 19; i++ {
		f.sim.Tick(0.5)
	}
	assert.Equal(t, 1, f.sim.ZombieManager().ActiveCount())
	f.sim.Tick(0.5)
	assert.Equal(t, 0, f.sim.ZombieManager().ActiveCount())
}

func TestPickUpLootAndUseAmmo(t *testing.T) {
	f := newFixture(t, nil, nil)
	ammo, ok := item.FindTemplate("Munição")
	require.True(t, ok)
	f.sim.addItem(item.New(f.sim.table.NextID(), ammo, vec.New(1, 0, 0)))

	f.sim.Tick(0.1)
	assert.Equal(t, "Pressione E para pegar Munição", f.sim.Prompt())

	action, err := f.sim.Interact()
	require.NoError(t, err)
	assert.Equal(t, "pick up Munição", action)
	assert.Empty(t, f.sim.Items())
	assert.Equal(t, 1.0, f.sim.Progression().Stat(progression.StatItemsCollected))

	require.NoError(t, f.sim.UseItem(0))
	w, _ := f.sim.Player().CurrentWeapon()
	assert.Equal(t, StartingReserve+10, w.TotalAmmo())

	_, err = f.sim.Interact()
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestDropItem(t *testing.T) {
	f := newFixture(t, nil, nil)
	water, _ := item.FindTemplate("Água")
	require.NoError(t, f.sim.Player().Inventory().Add(item.New(f.sim.table.NextID(), water, vec.Zero)))

	require.NoError(t, f.sim.DropItem(0))
	items := f.sim.Items()
	require.Len(t, items, 1)
	assert.InDelta(t, 1.5, items[0].Position().DistanceTo(f.sim.Player().Position()), 1e-9)
	f.events.wait(t, eventbus.TypeItemDropped, 1)

	err := f.sim.DropItem(0)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestVehicleEnterRepairExit(t *testing.T) {
	layout := &world.Layout{
		Size:     2000,
		Vehicles: []world.VehiclePlacement{{Type: "Sedan", Feet: vec.New(2, 0, 0)}},
	}
	f := newFixture(t, nil, layout)
	require.Len(t, f.sim.Vehicles(), 1)
	car := f.sim.Vehicles()[0]

	kit := item.Supplies[1]
	require.Equal(t, item.TypeRepair, kit.Type)
	require.NoError(t, f.sim.Player().Inventory().Add(item.New(f.sim.table.NextID(), kit, vec.Zero)))
	require.NoError(t, f.sim.UseItem(0))
	assert.False(t, car.NeedsRepair())
	assert.Equal(t, 1.0, f.sim.Progression().Stat(progression.StatVehiclesRepaired))

	action, err := f.sim.Interact()
	require.NoError(t, err)
	assert.Equal(t, "drive Sedan", action)
	assert.True(t, f.sim.Player().InVehicle())
	assert.True(t, car.Running())

	_, err = f.sim.Fire()
	assert.True(t, errors.Is(err, entity.ErrInvalidOperation))

	f.input.SetKey(KeyForward, true)
	for i := 0; i < 10; i++ {
		f.sim.Tick(0.1)
	}
	f.input.SetKey(KeyForward, false)
	assert.Greater(t, car.Position().Z, 0.0, "машина едет вперёд по своей оси")
	assert.Equal(t, car.Position(), f.sim.Player().Position())
	assert.Greater(t, f.sim.Progression().Stat(progression.StatDistanceDriven), 0.0)
	assert.Equal(t, "Pressione E para sair do veículo", f.sim.Prompt())

	action, err = f.sim.Interact()
	require.NoError(t, err)
	assert.Equal(t, "exit Sedan", action)
	assert.False(t, f.sim.Player().InVehicle())
	assert.False(t, car.Occupied())
}

func TestVehicleDestructionEjectsPlayer(t *testing.T) {
	layout := &world.Layout{
		Size:     2000,
		Vehicles: []world.VehiclePlacement{{Type: "Sedan", Feet: vec.New(2, 0, 0)}},
	}
	f := newFixture(t, nil, layout)
	car := f.sim.Vehicles()[0]

	_, err := f.sim.Interact()
	require.NoError(t, err)
	require.True(t, f.sim.Player().InVehicle())

	car.TakeDamage(car.MaxHealth())
	assert.True(t, car.Destroyed())
	assert.False(t, f.sim.Player().InVehicle())
	assert.False(t, f.sim.Player().Body().Inert)

	destroyed := f.events.wait(t, eventbus.TypeVehicleDestroyed, 1)
	var payload eventbus.VehicleDestroyed
	require.NoError(t, destroyed[0].Decode(&payload))
	assert.Equal(t, []uint64{uint64(f.sim.Player().ID())}, payload.Ejected)

	// уничтоженная машина больше не предлагается
	_, err = f.sim.Interact()
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestPlayerDeathEndsGame(t *testing.T) {
	f := newFixture(t, nil, nil)
	var survived float64
	f.sim.OnGameOver = func(ts float64) { survived = ts }

	ring := []vec.Vec3{
		vec.New(5, 0, 0), vec.New(-5, 0, 0), vec.New(0, 0, 5), vec.New(0, 0, -5),
		vec.New(3.5, 0, 3.5), vec.New(-3.5, 0, 3.5), vec.New(3.5, 0, -3.5),
	}
	for _, p := range ring {
		_, err := f.sim.SpawnZombie("Spitter", p)
		require.NoError(t, err)
	}

	f.sim.Tick(0.25)
	require.True(t, f.sim.GameOver())
	assert.True(t, f.sim.Player().IsDead())
	assert.Equal(t, 0.25, survived)
	assert.Equal(t, 1.0, f.sim.Progression().Stat(progression.StatDeaths))
	f.events.wait(t, eventbus.TypePlayerDied, 1)

	// после конца игры время стоит, действия отклоняются
	f.sim.Tick(0.25)
	assert.Equal(t, uint64(1), f.sim.Ticks())
	_, err := f.sim.Fire()
	assert.True(t, errors.Is(err, entity.ErrInvalidOperation))

	f.sim.Reset()
	assert.False(t, f.sim.GameOver())
	assert.Equal(t, 100.0, f.sim.Player().Health())
	assert.Equal(t, 0, f.sim.ZombieManager().ActiveCount())
	assert.Equal(t, 0.0, f.sim.TimeSurvived())

	f.sim.Tick(0.25)
	assert.Equal(t, uint64(2), f.sim.Ticks())
}

func TestModificationAndSkills(t *testing.T) {
	f := newFixture(t, nil, nil)

	err := f.sim.AddModification("Nada")
	assert.True(t, errors.Is(err, entity.ErrNotFound))

	require.NoError(t, f.sim.AddModification("Silenciador"))
	assert.Equal(t, 1.0, f.sim.Progression().Stat(progression.StatWeaponsCustomized))

	err = f.sim.UpgradeSkill(progression.SkillHealth)
	assert.True(t, errors.Is(err, entity.ErrResourceExhausted), "очков навыков ещё нет")

	f.sim.Progression().AddExperience(progression.ExperienceForLevel(2))
	require.NoError(t, f.sim.UpgradeSkill(progression.SkillHealth))
	assert.Greater(t, f.sim.Player().MaxHealth(), 100.0)
}

func TestStateSnapshot(t *testing.T) {
	layout := &world.Layout{
		Size:     2000,
		Vehicles: []world.VehiclePlacement{{Type: "SUV", Feet: vec.New(30, 0, 0)}},
	}
	f := newFixture(t, nil, layout)
	_, err := f.sim.SpawnZombie("Tanque", vec.New(0, 0, 100))
	require.NoError(t, err)
	f.sim.Tick(0.1)

	st := f.sim.State()
	assert.Equal(t, uint64(1), st.Tick)
	assert.Equal(t, "player", st.Player.Kind)
	assert.Equal(t, StartingWeapon, st.Player.Weapon)
	assert.Equal(t, 12, st.Player.Ammo.Current)
	require.Len(t, st.Zombies, 1)
	assert.Equal(t, "Tanque", st.Zombies[0].Name)
	assert.Equal(t, 200.0, st.Zombies[0].MaxHealth)
	require.Len(t, st.Vehicles, 1)
	assert.Contains(t, []string{"parked", "broken"}, st.Vehicles[0].State)
	assert.Equal(t, 1, f.sim.DespawnAll())
	assert.Empty(t, f.sim.State().Zombies)
}
