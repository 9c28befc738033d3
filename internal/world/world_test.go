package world

import (
	"math"
	"testing"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, seed int64) *Layout {
	catalog := config.DefaultCatalog()
	layout := NewGenerator(catalog.World, catalog.Vehicles, seed).Generate()
	require.NotNil(t, layout)
	return layout
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := generate(t, 12345)
	b := generate(t, 12345)
	assert.Equal(t, a, b)

	c := generate(t, 54321)
	assert.NotEqual(t, a.Buildings, c.Buildings)
}

func TestBuildingsFollowGrid(t *testing.T) {
	cfg := config.DefaultCatalog().World
	layout := generate(t, 7)
	grid, spacing := BuildingGrid(cfg.BuildingCount, cfg.CitySize)
	assert.Equal(t, 8, grid)

	require.NotEmpty(t, layout.Buildings)
	assert.Less(t, len(layout.Buildings), grid*grid-16+1)

	half := cfg.CitySize / 2
	for _, b := range layout.Buildings {
		assert.InDelta(t, b.Size.Y/2, b.Center.Y, 1e-9, "box centre sits at half height")
		assert.GreaterOrEqual(t, b.Size.X, 10.0)
		assert.Less(t, b.Size.X, 30.0)
		assert.GreaterOrEqual(t, b.Size.Y, 10.0)
		assert.Less(t, b.Size.Y, 50.0)

		i := int(math.Floor((b.Center.X + half) / spacing))
		j := int(math.Floor((b.Center.Z + half) / spacing))
		assert.False(t, i%2 == 0 && j%2 == 0, "cell %d,%d is reserved for streets", i, j)
	}
}

func TestRoadsGrid(t *testing.T) {
	layout := generate(t, 1)
	require.Len(t, layout.Roads, 12)

	horizontal := 0
	for _, r := range layout.Roads {
		if r.Horizontal() {
			horizontal++
			assert.Equal(t, vec.New(1500, 0, 15), r.Size)
		} else {
			assert.Equal(t, vec.New(15, 0, 1500), r.Size)
		}
	}
	assert.Equal(t, 6, horizontal)
	assert.Equal(t, vec.New(0, 0, -750), layout.Roads[0].Center)
	assert.Equal(t, vec.New(-450, 0, 0), layout.Roads[7].Center)
}

func TestTreesOutsideCity(t *testing.T) {
	layout := generate(t, 99)
	require.Len(t, layout.Trees, 100)
	for _, tr := range layout.Trees {
		outside := math.Abs(tr.Position.X) >= 750 || math.Abs(tr.Position.Z) >= 750
		assert.True(t, outside, "tree at %v", tr.Position)
		assert.LessOrEqual(t, math.Abs(tr.Position.X), 1000.0)
		assert.LessOrEqual(t, math.Abs(tr.Position.Z), 1000.0)
		assert.Equal(t, 1.5, tr.Radius)
	}
}

func TestVehiclesOnRoads(t *testing.T) {
	catalog := config.DefaultCatalog()
	layout := generate(t, 5)
	require.Len(t, layout.Vehicles, 30)

	for _, v := range layout.Vehicles {
		_, known := catalog.Vehicle(v.Type)
		assert.True(t, known, v.Type)

		onRoad := false
		for _, r := range layout.Roads {
			if r.Contains(v.Feet) {
				onRoad = true
				break
			}
		}
		assert.True(t, onRoad, "vehicle at %v", v.Feet)
		assert.GreaterOrEqual(t, v.Yaw, 0.0)
		assert.Less(t, v.Yaw, 2*math.Pi)
	}
}

func TestRegisterColliders(t *testing.T) {
	layout := &Layout{
		Buildings: []Building{{Center: vec.New(10, 5, 10), Size: vec.New(20, 10, 20)}},
		Trees:     []Tree{{Position: vec.New(-800, 0, 0), Radius: 1.5}},
	}
	w := New(layout, 1)
	engine := physics.NewEngine(physics.DefaultConfig())

	handles := w.Register(engine)
	require.Len(t, handles, 2)
	assert.Len(t, w.Register(engine), 2, "second registration is a no-op")
	require.Len(t, engine.StaticColliders(), 2)

	building, ok := engine.Static(handles[0])
	require.True(t, ok)
	assert.Equal(t, entity.KindBuilding, building.Tag.Kind)
	assert.Equal(t, vec.New(10, 0, 10), building.Position.WithY(0))
	assert.Equal(t, vec.New(10, 5, 10), building.Position)

	tree, ok := engine.Static(handles[1])
	require.True(t, ok)
	assert.Equal(t, entity.KindTree, tree.Tag.Kind)
	assert.Equal(t, vec.New(-800, 1.5, 0), tree.Position)

	// луч на уровне глаз упирается в здание
	hit, ok := engine.Raycast(vec.New(-10, 1.8, 10), vec.New(1, 0, 0), 0)
	require.True(t, ok)
	assert.InDelta(t, 10, hit.Distance, 1e-9)
}

func TestEnvironmentCycle(t *testing.T) {
	env := NewEnvironment(1)
	assert.Equal(t, 0.5, env.TimeOfDay)
	assert.False(t, env.IsNight())

	env.Update(60)
	assert.InDelta(t, 0.1, env.TimeOfDay, 1e-9)

	env.Update(50)
	assert.InDelta(t, 0.6, env.TimeOfDay, 1e-9)
	assert.True(t, env.IsNight())
	assert.Less(t, env.Light(1, 0.2), 0.5)

	env.Weather = WeatherFog
	env.Reset()
	assert.Equal(t, 0.5, env.TimeOfDay)
	assert.Equal(t, WeatherClear, env.Weather)
}

func TestAreaOf(t *testing.T) {
	assert.Equal(t, "0:0", AreaOf(vec.New(-1000, 0, -1000), 2000))
	assert.Equal(t, "2:2", AreaOf(vec.Zero, 2000))
	assert.Equal(t, "4:4", AreaOf(vec.New(1000, 0, 1000), 2000))
	assert.Equal(t, "4:0", AreaOf(vec.New(5000, 0, -5000), 2000))
}

func TestNearestRoad(t *testing.T) {
	w := New(generate(t, 3), 1)
	// дороги идут через каждые 300 от края города: ближайшая x = 150
	r, ok := w.NearestRoad(vec.New(3, 0, 2))
	require.True(t, ok)
	assert.False(t, r.Horizontal())
	assert.Equal(t, 150.0, r.Center.X)

	r, _ = w.NearestRoad(vec.New(600, 0, 440))
	assert.True(t, r.Horizontal())
	assert.Equal(t, 450.0, r.Center.Z)
}
