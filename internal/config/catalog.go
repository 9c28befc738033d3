package config

import (
	"fmt"
	"os"

	"github.com/annel0/deadcity/internal/vec"
	"gopkg.in/yaml.v3"
)

// ZombieType статические характеристики типа зомби
type ZombieType struct {
	Name           string  `yaml:"name"`
	Health         float64 `yaml:"health"`
	Damage         float64 `yaml:"damage"`
	Speed          float64 `yaml:"speed"` // единиц в секунду
	DetectionRange float64 `yaml:"detection_range"`
	AttackRange    float64 `yaml:"attack_range"`
	AttackRate     float64 `yaml:"attack_rate"` // секунд между атаками
}

// WeaponType базовые характеристики оружия до модификаций
type WeaponType struct {
	Name         string  `yaml:"name"`
	Kind         string  `yaml:"kind"` // pistol | shotgun | rifle | smg
	Damage       float64 `yaml:"damage"`
	FireRate     float64 `yaml:"fire_rate"`   // секунд между выстрелами
	ReloadTime   float64 `yaml:"reload_time"` // секунды
	MagazineSize int     `yaml:"magazine_size"`
	Range        float64 `yaml:"range"`
	Recoil       float64 `yaml:"recoil"`
}

// VehicleType характеристики машины
type VehicleType struct {
	Name         string   `yaml:"name"`
	MaxSpeed     float64  `yaml:"max_speed"`
	Acceleration float64  `yaml:"acceleration"`
	Handling     float64  `yaml:"handling"`
	Seats        int      `yaml:"seats"`
	Health       float64  `yaml:"health"`
	FuelCapacity float64  `yaml:"fuel_capacity"`
	Size         vec.Vec3 `yaml:"size"`
	Mass         float64  `yaml:"mass"`
}

// ModSlot слот модификации оружия
type ModSlot string

const (
	SlotScope    ModSlot = "scope"
	SlotBarrel   ModSlot = "barrel"
	SlotGrip     ModSlot = "grip"
	SlotMagazine ModSlot = "magazine"
)

// Slots все слоты в порядке применения
var Slots = []ModSlot{SlotScope, SlotBarrel, SlotGrip, SlotMagazine}

// Modification модификация оружия. Незаданные множители трактуются как 1.
type Modification struct {
	Name                 string  `yaml:"name"`
	Slot                 ModSlot `yaml:"slot"`
	ZoomFactor           float64 `yaml:"zoom_factor,omitempty"`
	Accuracy             float64 `yaml:"accuracy,omitempty"`
	RecoilReduction      float64 `yaml:"recoil_reduction,omitempty"`
	NoiseFactor          float64 `yaml:"noise_factor,omitempty"`
	StabilityFactor      float64 `yaml:"stability_factor,omitempty"`
	CapacityMultiplier   float64 `yaml:"capacity_multiplier,omitempty"`
	ReloadTimeMultiplier float64 `yaml:"reload_time_multiplier,omitempty"`
}

// Factor возвращает множитель или 1, если он не задан
func Factor(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// WorldConfig размеры мира и генерация города
type WorldConfig struct {
	Gravity       float64 `yaml:"gravity"`
	Size          float64 `yaml:"size"`
	CitySize      float64 `yaml:"city_size"`
	BuildingCount int     `yaml:"building_count"`
	VehicleCount  int     `yaml:"vehicle_count"`
	TreeCount     int     `yaml:"tree_count"`
	TreeRadius    float64 `yaml:"tree_radius"`
	RoadWidth     float64 `yaml:"road_width"`
	TimeScale     float64 `yaml:"time_scale"`
}

// PlayerConfig параметры игрока
type PlayerConfig struct {
	MoveSpeed        float64 `yaml:"move_speed"`
	SprintSpeed      float64 `yaml:"sprint_speed"`
	JumpForce        float64 `yaml:"jump_force"`
	CameraHeight     float64 `yaml:"camera_height"`
	Health           float64 `yaml:"health"`
	Stamina          float64 `yaml:"stamina"`
	StaminaRegen     float64 `yaml:"stamina_regen"`
	Radius           float64 `yaml:"radius"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
	InteractionRange float64 `yaml:"interaction_range"`
	InventorySlots   int     `yaml:"inventory_slots"`
	InventoryWeight  float64 `yaml:"inventory_weight"`
}

// ZombiesConfig правила популяции зомби
type ZombiesConfig struct {
	MaxCount          int          `yaml:"max_count"`
	SpawnRate         float64      `yaml:"spawn_rate"` // секунды
	InitialCount      int          `yaml:"initial_count"`
	MinPlayerDistance float64      `yaml:"min_player_distance"`
	PlacementAttempts int          `yaml:"placement_attempts"`
	RemovalDelay      float64      `yaml:"removal_delay"` // секунды после смерти
	LootChance        float64      `yaml:"loot_chance"`
	StunDuration      float64      `yaml:"stun_duration"`
	WanderChance      float64      `yaml:"wander_chance"` // вероятность Idle->Wander за тик
	Height            float64      `yaml:"height"`
	Radius            float64      `yaml:"radius"`
	Types             []ZombieType `yaml:"types"`
}

// SurvivalConfig системы, заявленные в данных, но не влияющие на симуляцию
type SurvivalConfig struct {
	FallDamageThreshold float64 `yaml:"fall_damage_threshold"`
	HungerRate          float64 `yaml:"hunger_rate"`
	ThirstRate          float64 `yaml:"thirst_rate"`
	Weather             string  `yaml:"weather"`
}

// Catalog статические таблицы игры, только для чтения после старта
type Catalog struct {
	World         WorldConfig    `yaml:"world"`
	Player        PlayerConfig   `yaml:"player"`
	Zombies       ZombiesConfig  `yaml:"zombies"`
	Weapons       []WeaponType   `yaml:"weapons"`
	Vehicles      []VehicleType  `yaml:"vehicles"`
	Modifications []Modification `yaml:"modifications"`
	Survival      SurvivalConfig `yaml:"survival"`
}

// DefaultCatalog таблицы по умолчанию
func DefaultCatalog() *Catalog {
	return &Catalog{
		World: WorldConfig{
			Gravity:       9.8,
			Size:          2000,
			CitySize:      1500,
			BuildingCount: 50,
			VehicleCount:  30,
			TreeCount:     100,
			TreeRadius:    1.5,
			RoadWidth:     15,
			TimeScale:     1,
		},
		Player: PlayerConfig{
			MoveSpeed:        5,
			SprintSpeed:      8,
			JumpForce:        10,
			CameraHeight:     1.8,
			Health:           100,
			Stamina:          100,
			StaminaRegen:     0.5,
			Radius:           0.5,
			MouseSensitivity: 0.2,
			InteractionRange: 3,
			InventorySlots:   20,
			InventoryWeight:  50,
		},
		Zombies: ZombiesConfig{
			MaxCount:          50,
			SpawnRate:         10,
			InitialCount:      10,
			MinPlayerDistance: 50,
			PlacementAttempts: 50,
			RemovalDelay:      10,
			LootChance:        0.3,
			StunDuration:      0.5,
			WanderChance:      0.01,
			Height:            1.8,
			Radius:            0.4,
			Types: []ZombieType{
				{Name: "Comum", Health: 50, Damage: 10, Speed: 2, DetectionRange: 30, AttackRange: 1.5, AttackRate: 1.0},
				{Name: "Corredor", Health: 40, Damage: 8, Speed: 4, DetectionRange: 40, AttackRange: 1.5, AttackRate: 0.8},
				{Name: "Tanque", Health: 200, Damage: 25, Speed: 1.5, DetectionRange: 25, AttackRange: 2, AttackRate: 1.5},
				{Name: "Spitter", Health: 60, Damage: 15, Speed: 2.5, DetectionRange: 50, AttackRange: 10, AttackRate: 2.0},
			},
		},
		Weapons: []WeaponType{
			{Name: "Pistola", Kind: "pistol", Damage: 15, FireRate: 0.5, ReloadTime: 1.5, MagazineSize: 12, Range: 50, Recoil: 0.1},
			{Name: "Shotgun", Kind: "shotgun", Damage: 50, FireRate: 0.8, ReloadTime: 2.5, MagazineSize: 8, Range: 20, Recoil: 0.4},
			{Name: "Rifle", Kind: "rifle", Damage: 25, FireRate: 0.2, ReloadTime: 2.0, MagazineSize: 30, Range: 100, Recoil: 0.2},
			{Name: "Metralhadora", Kind: "smg", Damage: 10, FireRate: 0.1, ReloadTime: 2.2, MagazineSize: 50, Range: 40, Recoil: 0.15},
		},
		Vehicles: []VehicleType{
			{Name: "Sedan", MaxSpeed: 120, Acceleration: 10, Handling: 0.8, Seats: 4, Health: 100, FuelCapacity: 60, Size: vec.New(2, 1.5, 4.5), Mass: 1200},
			{Name: "SUV", MaxSpeed: 100, Acceleration: 8, Handling: 0.7, Seats: 6, Health: 150, FuelCapacity: 80, Size: vec.New(2.2, 1.8, 4.8), Mass: 1800},
			{Name: "Pickup", MaxSpeed: 110, Acceleration: 9, Handling: 0.6, Seats: 4, Health: 120, FuelCapacity: 70, Size: vec.New(2.2, 1.8, 5.2), Mass: 2000},
			{Name: "Moto", MaxSpeed: 150, Acceleration: 15, Handling: 0.9, Seats: 2, Health: 70, FuelCapacity: 30, Size: vec.New(1, 1.2, 2.2), Mass: 300},
			{Name: "Caminhão", MaxSpeed: 90, Acceleration: 5, Handling: 0.5, Seats: 3, Health: 200, FuelCapacity: 120, Size: vec.New(2.5, 2.5, 7), Mass: 5000},
		},
		Modifications: []Modification{
			{Name: "Mira Padrão", Slot: SlotScope, ZoomFactor: 1, Accuracy: 1},
			{Name: "Red Dot", Slot: SlotScope, ZoomFactor: 1.2, Accuracy: 1.2},
			{Name: "Scope 4x", Slot: SlotScope, ZoomFactor: 4, Accuracy: 1.5},
			{Name: "Cano Padrão", Slot: SlotBarrel, RecoilReduction: 1, NoiseFactor: 1},
			{Name: "Silenciador", Slot: SlotBarrel, RecoilReduction: 1.1, NoiseFactor: 0.3},
			{Name: "Compensador", Slot: SlotBarrel, RecoilReduction: 1.5, NoiseFactor: 1.2},
			{Name: "Empunhadura Padrão", Slot: SlotGrip, StabilityFactor: 1},
			{Name: "Empunhadura Vertical", Slot: SlotGrip, StabilityFactor: 1.3},
			{Name: "Empunhadura Angular", Slot: SlotGrip, StabilityFactor: 1.2},
			{Name: "Carregador Padrão", Slot: SlotMagazine, CapacityMultiplier: 1, ReloadTimeMultiplier: 1},
			{Name: "Carregador Estendido", Slot: SlotMagazine, CapacityMultiplier: 1.5, ReloadTimeMultiplier: 1.1},
			{Name: "Carregador Rápido", Slot: SlotMagazine, CapacityMultiplier: 1, ReloadTimeMultiplier: 0.8},
		},
		Survival: SurvivalConfig{
			FallDamageThreshold: 10,
			HungerRate:          0.1,
			ThirstRate:          0.15,
			Weather:             "clear",
		},
	}
}

// LoadCatalog читает каталог из YAML. Разделы, отсутствующие в файле,
// берутся из DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	return ParseCatalog(data, path)
}

// ParseCatalog разбирает каталог из байт; source используется в сообщениях об ошибках
func ParseCatalog(data []byte, source string) (*Catalog, error) {
	catalog := DefaultCatalog()
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML from %s: %w", source, err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog in %s: %w", source, err)
	}

	return catalog, nil
}

// Validate проверяет полноту и корректность таблиц
func (c *Catalog) Validate() error {
	if c.World.Size <= 0 {
		return fmt.Errorf("world size must be positive, got %v", c.World.Size)
	}
	if c.World.CitySize <= 0 || c.World.CitySize > c.World.Size {
		return fmt.Errorf("city size must be in (0, %v], got %v", c.World.Size, c.World.CitySize)
	}
	if c.Zombies.MaxCount < 0 {
		return fmt.Errorf("zombies: max_count cannot be negative, got %d", c.Zombies.MaxCount)
	}
	if c.Zombies.PlacementAttempts < 1 {
		return fmt.Errorf("zombies: placement_attempts must be at least 1, got %d", c.Zombies.PlacementAttempts)
	}
	if c.Zombies.LootChance < 0 || c.Zombies.LootChance > 1 {
		return fmt.Errorf("zombies: loot_chance must be in [0,1], got %v", c.Zombies.LootChance)
	}

	if len(c.Zombies.Types) == 0 {
		return fmt.Errorf("at least one zombie type is required")
	}
	for _, z := range c.Zombies.Types {
		if z.Name == "" {
			return fmt.Errorf("zombie type without name")
		}
		if z.Health <= 0 {
			return fmt.Errorf("zombie %s: health must be positive, got %v", z.Name, z.Health)
		}
		if z.Speed < 0 || z.Damage < 0 {
			return fmt.Errorf("zombie %s: speed and damage cannot be negative", z.Name)
		}
		if z.AttackRange <= 0 || z.DetectionRange < z.AttackRange {
			return fmt.Errorf("zombie %s: need 0 < attack_range <= detection_range, got %v/%v", z.Name, z.AttackRange, z.DetectionRange)
		}
	}

	if len(c.Weapons) == 0 {
		return fmt.Errorf("at least one weapon is required")
	}
	for _, w := range c.Weapons {
		if w.MagazineSize < 1 {
			return fmt.Errorf("weapon %s: magazine_size must be at least 1, got %d", w.Name, w.MagazineSize)
		}
		if w.Damage < 0 || w.FireRate < 0 || w.ReloadTime < 0 || w.Range <= 0 {
			return fmt.Errorf("weapon %s: invalid stats", w.Name)
		}
	}

	for _, v := range c.Vehicles {
		if v.Seats < 1 {
			return fmt.Errorf("vehicle %s: seats must be at least 1, got %d", v.Name, v.Seats)
		}
		if v.MaxSpeed <= 0 || v.Health <= 0 || v.FuelCapacity <= 0 {
			return fmt.Errorf("vehicle %s: max_speed, health and fuel_capacity must be positive", v.Name)
		}
	}

	for _, m := range c.Modifications {
		switch m.Slot {
		case SlotScope, SlotBarrel, SlotGrip, SlotMagazine:
		default:
			return fmt.Errorf("modification %s: unknown slot %q", m.Name, m.Slot)
		}
	}

	return nil
}

// ZombieType ищет тип зомби по имени
func (c *Catalog) ZombieType(name string) (*ZombieType, bool) {
	for i := range c.Zombies.Types {
		if c.Zombies.Types[i].Name == name {
			return &c.Zombies.Types[i], true
		}
	}
	return nil, false
}

// Weapon ищет оружие по имени или виду
func (c *Catalog) Weapon(name string) (*WeaponType, bool) {
	for i := range c.Weapons {
		if c.Weapons[i].Name == name || c.Weapons[i].Kind == name {
			return &c.Weapons[i], true
		}
	}
	return nil, false
}

// Vehicle ищет тип машины по имени
func (c *Catalog) Vehicle(name string) (*VehicleType, bool) {
	for i := range c.Vehicles {
		if c.Vehicles[i].Name == name {
			return &c.Vehicles[i], true
		}
	}
	return nil, false
}

// Modification ищет модификацию по имени
func (c *Catalog) Modification(name string) (*Modification, bool) {
	for i := range c.Modifications {
		if c.Modifications[i].Name == name {
			return &c.Modifications[i], true
		}
	}
	return nil, false
}

// ModificationsFor все модификации для слота
func (c *Catalog) ModificationsFor(slot ModSlot) []Modification {
	var out []Modification
	for _, m := range c.Modifications {
		if m.Slot == slot {
			out = append(out, m)
		}
	}
	return out
}
