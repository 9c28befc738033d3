package eventbus

// Типы событий симуляции
const (
	TypeZombieSpawned       = "zombie.spawned"
	TypeZombieKilled        = "zombie.killed"
	TypeWeaponFired         = "weapon.fired"
	TypeVehicleDestroyed    = "vehicle.destroyed"
	TypePlayerDamaged       = "player.damaged"
	TypePlayerDied          = "player.died"
	TypeItemDropped         = "item.dropped"
	TypeLevelUp             = "progression.level_up"
	TypeAchievementUnlocked = "progression.achievement"
)

// Приоритеты событий. Всё, что ниже PriorityHigh, может быть отброшено
// при переполнении буфера.
const (
	PriorityLow      = 1
	PriorityNormal   = 3
	PriorityHigh     = 5
	PriorityCritical = 9
)

// Point координаты в полезной нагрузке
type Point struct {
	X float64 `msgpack:"x" json:"x"`
	Y float64 `msgpack:"y" json:"y"`
	Z float64 `msgpack:"z" json:"z"`
}

type ZombieSpawned struct {
	ZombieID uint64 `msgpack:"zombie_id" json:"zombieId"`
	Type     string `msgpack:"type" json:"type"`
	Position Point  `msgpack:"position" json:"position"`
}

type ZombieKilled struct {
	ZombieID uint64 `msgpack:"zombie_id" json:"zombieId"`
	Type     string `msgpack:"type" json:"type"`
	Position Point  `msgpack:"position" json:"position"`
	// Loot имя выпавшего предмета, пусто если ничего не выпало
	Loot string `msgpack:"loot,omitempty" json:"loot,omitempty"`
}

type WeaponFired struct {
	ShooterID uint64  `msgpack:"shooter_id" json:"shooterId"`
	Weapon    string  `msgpack:"weapon" json:"weapon"`
	Hit       bool    `msgpack:"hit" json:"hit"`
	Target    string  `msgpack:"target,omitempty" json:"target,omitempty"`
	Damage    float64 `msgpack:"damage" json:"damage"`
	Killed    bool    `msgpack:"killed" json:"killed"`
	Ammo      int     `msgpack:"ammo" json:"ammo"`
}

type VehicleDestroyed struct {
	VehicleID uint64   `msgpack:"vehicle_id" json:"vehicleId"`
	Type      string   `msgpack:"type" json:"type"`
	Position  Point    `msgpack:"position" json:"position"`
	Ejected   []uint64 `msgpack:"ejected,omitempty" json:"ejected,omitempty"`
}

type PlayerDamaged struct {
	PlayerID uint64  `msgpack:"player_id" json:"playerId"`
	SourceID uint64  `msgpack:"source_id" json:"sourceId"`
	Amount   float64 `msgpack:"amount" json:"amount"`
	Health   float64 `msgpack:"health" json:"health"`
}

type PlayerDied struct {
	PlayerID      uint64  `msgpack:"player_id" json:"playerId"`
	TimeSurvived  float64 `msgpack:"time_survived" json:"timeSurvived"`
	ZombiesKilled int     `msgpack:"zombies_killed" json:"zombiesKilled"`
}

type ItemDropped struct {
	ItemID   uint64 `msgpack:"item_id" json:"itemId"`
	Name     string `msgpack:"name" json:"name"`
	Quantity int    `msgpack:"quantity" json:"quantity"`
	Position Point  `msgpack:"position" json:"position"`
}

type LevelUp struct {
	Level       int `msgpack:"level" json:"level"`
	SkillPoints int `msgpack:"skill_points" json:"skillPoints"`
}

type AchievementUnlocked struct {
	Key    string `msgpack:"key" json:"key"`
	Name   string `msgpack:"name" json:"name"`
	Reward int    `msgpack:"reward" json:"reward"`
}
