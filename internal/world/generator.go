package world

import (
	"math"
	"math/rand"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/vec"
)

// Параметры генерации города
const (
	buildingSkipChance = 0.3
	buildingMinSide    = 10.0
	buildingMaxSide    = 30.0
	buildingMinHeight  = 10.0
	buildingMaxHeight  = 50.0

	roadGrid = 5
	// vehicleRoadMargin отступ машины от концов дороги
	vehicleRoadMargin = 5.0

	// treeAttempts попыток на одно дерево, прежде чем шум игнорируется
	treeAttempts = 1000
)

// Building здание. Center центр коробки, по Y это половина высоты.
type Building struct {
	Center vec.Vec3 `json:"center" msgpack:"center"`
	Size   vec.Vec3 `json:"size" msgpack:"size"`
}

// Feet точка основания здания на земле
func (b Building) Feet() vec.Vec3 { return b.Center.WithY(0) }

// Road полоса дороги на земле, без коллайдера. Size.Y всегда 0.
type Road struct {
	Center vec.Vec3 `json:"center" msgpack:"center"`
	Size   vec.Vec3 `json:"size" msgpack:"size"`
}

// Horizontal дорога вытянута вдоль X
func (r Road) Horizontal() bool { return r.Size.X > r.Size.Z }

// Contains лежит ли точка на дороге (по XZ)
func (r Road) Contains(p vec.Vec3) bool {
	return math.Abs(p.X-r.Center.X) <= r.Size.X/2 && math.Abs(p.Z-r.Center.Z) <= r.Size.Z/2
}

// Tree дерево: Position точка у земли, коллайдер сфера радиуса Radius
type Tree struct {
	Position vec.Vec3 `json:"position" msgpack:"position"`
	Radius   float64  `json:"radius" msgpack:"radius"`
}

// VehiclePlacement брошенная машина на дороге
type VehiclePlacement struct {
	Type string   `json:"type" msgpack:"type"`
	Feet vec.Vec3 `json:"feet" msgpack:"feet"`
	Yaw  float64  `json:"yaw" msgpack:"yaw"`
}

// Layout неизменяемая раскладка мира
type Layout struct {
	Seed      int64              `json:"seed" msgpack:"seed"`
	Size      float64            `json:"size" msgpack:"size"`
	CitySize  float64            `json:"citySize" msgpack:"city_size"`
	Buildings []Building         `json:"buildings" msgpack:"buildings"`
	Roads     []Road             `json:"roads" msgpack:"roads"`
	Trees     []Tree             `json:"trees" msgpack:"trees"`
	Vehicles  []VehiclePlacement `json:"vehicles" msgpack:"vehicles"`
}

// Generator генерирует город: сетку зданий, дороги, лес вокруг и машины
type Generator struct {
	Seed int64
	// NoiseScale масштаб шума для плотности леса
	NoiseScale float64

	cfg      config.WorldConfig
	vehicles []config.VehicleType
	noise    *Noise
}

// NewGenerator создаёт генератор мира
func NewGenerator(cfg config.WorldConfig, vehicles []config.VehicleType, seed int64) *Generator {
	return &Generator{
		Seed:       seed,
		NoiseScale: 0.01,
		cfg:        cfg,
		vehicles:   vehicles,
		noise:      NewNoise(seed),
	}
}

// Generate строит раскладку. Одинаковый сид даёт одинаковый мир.
func (g *Generator) Generate() *Layout {
	rng := rand.New(rand.NewSource(g.Seed))

	layout := &Layout{
		Seed:     g.Seed,
		Size:     g.cfg.Size,
		CitySize: g.cfg.CitySize,
	}
	layout.Buildings = g.buildings(rng)
	layout.Roads = g.roads()
	layout.Trees = g.trees(rng)
	layout.Vehicles = g.placeVehicles(rng, layout.Roads)
	return layout
}

// BuildingGrid размер сетки и шаг клетки для заданного числа зданий
func BuildingGrid(count int, citySize float64) (int, float64) {
	grid := int(math.Ceil(math.Sqrt(float64(count))))
	if grid < 1 {
		grid = 1
	}
	return grid, citySize / float64(grid)
}

func (g *Generator) buildings(rng *rand.Rand) []Building {
	half := g.cfg.CitySize / 2
	grid, spacing := BuildingGrid(g.cfg.BuildingCount, g.cfg.CitySize)

	var out []Building
	for i := 0; i < grid; i++ {
		for j := 0; j < grid; j++ {
			// Пропускаем клетки под улицы
			if (i%2 == 0 && j%2 == 0) || rng.Float64() < buildingSkipChance {
				continue
			}
			x := -half + float64(i)*spacing + rng.Float64()*spacing*0.5
			z := -half + float64(j)*spacing + rng.Float64()*spacing*0.5

			width := vec.RandomRange(rng, buildingMinSide, buildingMaxSide)
			height := vec.RandomRange(rng, buildingMinHeight, buildingMaxHeight)
			depth := vec.RandomRange(rng, buildingMinSide, buildingMaxSide)

			out = append(out, Building{
				Center: vec.New(x, height/2, z),
				Size:   vec.New(width, height, depth),
			})
		}
	}
	return out
}

func (g *Generator) roads() []Road {
	half := g.cfg.CitySize / 2
	spacing := g.cfg.CitySize / roadGrid
	width := g.cfg.RoadWidth
	if width <= 0 {
		width = 15
	}

	out := make([]Road, 0, 2*(roadGrid+1))
	for i := 0; i <= roadGrid; i++ {
		z := -half + float64(i)*spacing
		out = append(out, Road{Center: vec.New(0, 0, z), Size: vec.New(g.cfg.CitySize, 0, width)})
	}
	for i := 0; i <= roadGrid; i++ {
		x := -half + float64(i)*spacing
		out = append(out, Road{Center: vec.New(x, 0, 0), Size: vec.New(width, 0, g.cfg.CitySize)})
	}
	return out
}

// insideCity точка внутри квадрата города
func (g *Generator) insideCity(x, z float64) bool {
	half := g.cfg.CitySize / 2
	return math.Abs(x) < half && math.Abs(z) < half
}

// trees раскидывает деревья вне города. Плотность задаёт шум Перлина:
// точка принимается с вероятностью, равной значению шума.
func (g *Generator) trees(rng *rand.Rand) []Tree {
	half := g.cfg.Size / 2
	radius := g.cfg.TreeRadius
	if radius <= 0 {
		radius = 1.5
	}
	if g.cfg.CitySize >= g.cfg.Size {
		return nil
	}

	out := make([]Tree, 0, g.cfg.TreeCount)
	for i := 0; i < g.cfg.TreeCount; i++ {
		var x, z float64
		for attempt := 0; ; attempt++ {
			x = vec.RandomRange(rng, -half, half)
			z = vec.RandomRange(rng, -half, half)
			if g.insideCity(x, z) {
				continue
			}
			if attempt >= treeAttempts || rng.Float64() < g.noise.At(x*g.NoiseScale, z*g.NoiseScale) {
				break
			}
		}
		out = append(out, Tree{Position: vec.New(x, 0, z), Radius: radius})
	}
	return out
}

func (g *Generator) placeVehicles(rng *rand.Rand, roads []Road) []VehiclePlacement {
	if len(roads) == 0 || len(g.vehicles) == 0 {
		return nil
	}

	out := make([]VehiclePlacement, 0, g.cfg.VehicleCount)
	for i := 0; i < g.cfg.VehicleCount; i++ {
		road := roads[rng.Intn(len(roads))]
		var x, z float64
		if road.Horizontal() {
			x = vec.RandomRange(rng, road.Center.X-road.Size.X/2+vehicleRoadMargin, road.Center.X+road.Size.X/2-vehicleRoadMargin)
			z = road.Center.Z
		} else {
			x = road.Center.X
			z = vec.RandomRange(rng, road.Center.Z-road.Size.Z/2+vehicleRoadMargin, road.Center.Z+road.Size.Z/2-vehicleRoadMargin)
		}

		spec := g.vehicles[rng.Intn(len(g.vehicles))]
		out = append(out, VehiclePlacement{
			Type: spec.Name,
			Feet: vec.New(x, 0, z),
			Yaw:  rng.Float64() * math.Pi * 2,
		})
	}
	return out
}
