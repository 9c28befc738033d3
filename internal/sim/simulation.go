// Package sim собирает мир, игрока, зомби и машины в одну симуляцию с
// фиксированным шагом. Состояние меняется только внутри Tick и в
// действиях между тиками, из одного потока.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/annel0/deadcity/internal/combat"
	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/eventbus"
	"github.com/annel0/deadcity/internal/item"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/observability"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/player"
	"github.com/annel0/deadcity/internal/progression"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/annel0/deadcity/internal/vehicle"
	"github.com/annel0/deadcity/internal/world"
	"github.com/annel0/deadcity/internal/zombie"
)

const (
	// Source источник событий симуляции
	Source = "deadcity-sim"

	// DefaultMaxDelta потолок шага, защищает от рывков после паузы
	DefaultMaxDelta = 0.1

	// KillExperience опыт за убитого зомби
	KillExperience = 10

	StartingWeapon  = "Pistola"
	StartingReserve = 24
)

// Options параметры сборки симуляции
type Options struct {
	Catalog *config.Catalog
	Seed    int64
	// Layout готовая раскладка мира; nil = сгенерировать по Seed
	Layout   *world.Layout
	MaxDelta float64

	// Bus шина событий; nil = глобальная eventbus
	Bus     eventbus.EventBus
	Metrics *observability.SimMetrics

	Scene Scene
	Input Input
	HUD   HUD

	// NoInitialWave не заселять мир зомби при старте
	NoInitialWave bool
}

// Simulation контекст одной игры
type Simulation struct {
	catalog  *config.Catalog
	rng      *rand.Rand
	maxDelta float64

	engine   *physics.Engine
	table    *entity.Table
	world    *world.World
	player   *player.Player
	vehicles []*vehicle.Vehicle
	items    []*item.Item
	weapons  []*combat.Weapon
	zombies  *zombie.Manager
	resolver *combat.Resolver
	progress *progression.System

	scene   Scene
	input   Input
	hud     HUD
	bus     eventbus.EventBus
	metrics *observability.SimMetrics

	now       float64
	startedAt float64
	ticks     uint64
	gameOver  bool
	prompt    string
	noWave    bool

	// OnGameOver сигнал гибели игрока со временем выживания
	OnGameOver func(timeSurvived float64)

	logger *logging.Logger
}

// New строит мир, игрока со стартовым оружием, машины и стартовую волну зомби
func New(opts Options) (*Simulation, error) {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	s := &Simulation{
		catalog:  catalog,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		maxDelta: opts.MaxDelta,
		table:    entity.NewTable(),
		scene:    opts.Scene,
		input:    opts.Input,
		hud:      opts.HUD,
		bus:      opts.Bus,
		metrics:  opts.Metrics,
		noWave:   opts.NoInitialWave,
		logger:   logging.GetSimLogger(),
	}
	if s.maxDelta <= 0 {
		s.maxDelta = DefaultMaxDelta
	}
	if s.scene == nil {
		s.scene = noopScene{}
	}
	if s.input == nil {
		s.input = NewManualInput()
	}
	if s.hud == nil {
		s.hud = noopHUD{}
	}

	s.engine = physics.NewEngine(physics.Config{Gravity: catalog.World.Gravity, WorldSize: catalog.World.Size})

	layout := opts.Layout
	if layout == nil {
		layout = world.NewGenerator(catalog.World, catalog.Vehicles, opts.Seed).Generate()
	}
	s.world = world.New(layout, catalog.World.TimeScale)
	s.world.Register(s.engine)

	s.player = player.New(s.table.NextID(), catalog.Player, vec.Zero)
	s.player.OnDeath = s.handlePlayerDeath
	s.table.Add(s.player)
	s.engine.AddBody(s.player.Body())
	s.scene.Register(s.player.ID(), entity.KindPlayer)

	if err := s.giveStartingWeapon(); err != nil {
		return nil, err
	}

	s.spawnVehicles()

	s.zombies = zombie.NewManager(catalog.Zombies, catalog.World.Size, s.engine, s.table, s.rng)
	s.zombies.OnSpawned = s.handleZombieSpawned
	s.zombies.OnKilled = s.handleZombieKilled
	s.zombies.OnRemoved = func(z *zombie.Zombie) { s.scene.Unregister(z.ID()) }

	s.resolver = combat.NewResolver(s.engine, s.table, s.rng)

	s.progress = progression.New()
	s.progress.OnSkillsChanged = s.applyAttributes
	s.progress.OnLevelUp = func(level int) {
		s.emit(eventbus.TypeLevelUp, eventbus.PriorityNormal, eventbus.LevelUp{
			Level:       level,
			SkillPoints: s.progress.SkillPoints(),
		})
	}
	s.progress.OnAchievement = func(a progression.Achievement) {
		s.emit(eventbus.TypeAchievementUnlocked, eventbus.PriorityNormal, eventbus.AchievementUnlocked{
			Key:    a.Key,
			Name:   a.Name,
			Reward: a.Reward,
		})
	}
	s.applyAttributes(s.progress.Attributes())

	if !s.noWave {
		s.zombies.SpawnInitial(s.player.Position())
	}

	s.logger.Info("🌆 Симуляция готова: сид %d, %d машин, %d зомби",
		layout.Seed, len(s.vehicles), s.zombies.ActiveCount())
	return s, nil
}

func (s *Simulation) giveStartingWeapon() error {
	spec, ok := s.catalog.Weapon(StartingWeapon)
	if !ok {
		// каталог без пистолета: берём первое оружие
		spec = &s.catalog.Weapons[0]
	}
	w := combat.NewWeapon(s.table.NextID(), *spec, s.player.Position())
	w.SetAmmo(w.MagazineSize(), StartingReserve)
	return s.player.AddWeapon(w)
}

func (s *Simulation) spawnVehicles() {
	for _, pl := range s.world.Layout().Vehicles {
		spec, ok := s.catalog.Vehicle(pl.Type)
		if !ok {
			s.logger.Warn("⚠️ Неизвестный тип машины %q в раскладке", pl.Type)
			continue
		}
		v := vehicle.New(s.table.NextID(), *spec, pl.Feet, pl.Yaw, s.rng)
		v.OnDestroyed = s.handleVehicleDestroyed
		s.vehicles = append(s.vehicles, v)
		s.table.Add(v)
		s.engine.AddBody(v.Body())
		s.scene.Register(v.ID(), entity.KindVehicle)
	}
}

func (s *Simulation) applyAttributes(a progression.Attributes) {
	s.player.ApplyAttributes(a.MaxHealth, a.MaxStamina, a.SpeedMultiplier, a.RegenMultiplier, a.JumpMultiplier)
}

// Tick продвигает симуляцию на dt секунд. Порядок фаз фиксирован:
// снимок восприятия, ввод, физика, ИИ, урон из очереди, перезарядки,
// популяция зомби, прогресс, окружение и представление.
func (s *Simulation) Tick(dt float64) {
	if dt <= 0 || s.gameOver {
		return
	}
	if dt > s.maxDelta {
		dt = s.maxDelta
	}
	start := time.Now()

	// ИИ видит мир таким, каким его оставил прошлый тик
	view := s.capture()

	s.now += dt
	s.ticks++
	s.zombies.SetClock(s.now)

	in := readInput(s.input)
	before := s.player.Position()
	s.drive(dt, in)

	s.engine.Update(dt)
	if v := s.currentVehicle(); v != nil {
		s.player.FollowVehicle(v)
	}
	s.trackDistance(before)

	s.zombies.Think(view, s.now, dt)
	s.applyAttacks(view.attacks)

	for _, w := range s.player.Weapons() {
		if w.Update(s.now) {
			s.logger.Debug("🔄 %s перезаряжен: %d/%d", w.Name(), w.CurrentAmmo(), w.TotalAmmo())
		}
	}

	s.zombies.Maintain(s.now, dt, s.player.Position())

	if !s.gameOver {
		s.progress.Update(dt)
		s.progress.VisitArea(world.AreaOf(s.player.Position(), s.catalog.World.Size))
	}

	s.world.Update(dt)
	s.present()
	s.metrics.ObserveTick(time.Since(start))
}

// drive применяет ввод к игроку или к машине, за рулём которой он сидит.
// Машины без водителя стоят.
func (s *Simulation) drive(dt float64, in player.Input) {
	current := s.currentVehicle()
	if current == nil {
		s.player.Look(in.LookDX, in.LookDY)
		s.player.Move(dt, in)
	}

	for _, v := range s.vehicles {
		var c vehicle.Controls
		if v == current && v.Driver() == s.player.ID() {
			c = vehicle.Controls{Forward: in.Forward, Back: in.Back, Left: in.Left, Right: in.Right}
		}
		v.Update(dt, c)
	}
}

func (s *Simulation) trackDistance(before vec.Vec3) {
	d := s.player.Position().Sub(before).WithY(0).Length()
	if d <= 0 {
		return
	}
	if s.player.InVehicle() {
		s.progress.UpdateStat(progression.StatDistanceDriven, d)
	} else {
		s.progress.UpdateStat(progression.StatDistanceTraveled, d)
	}
}

// applyAttacks применяет урон, поставленный зомби в очередь за этот тик
func (s *Simulation) applyAttacks(attacks []attack) {
	for _, a := range attacks {
		if a.target != s.player.ID() || s.player.IsDead() {
			continue
		}
		s.player.TakeDamage(a.damage)
		s.emit(eventbus.TypePlayerDamaged, eventbus.PriorityNormal, eventbus.PlayerDamaged{
			PlayerID: uint64(s.player.ID()),
			SourceID: uint64(a.attacker),
			Amount:   a.damage,
			Health:   s.player.Health(),
		})
	}
}

// present передаёт состояние сцене, HUD и метрикам
func (s *Simulation) present() {
	s.scene.SetCamera(s.player.EyePosition(), s.player.Rotation())

	var ammo combat.AmmoState
	if w, ok := s.player.CurrentWeapon(); ok {
		ammo = w.Ammo()
	}
	s.prompt = s.promptText()
	s.hud.UpdateHUD(s.player.Health()/s.player.MaxHealth()*100, ammo, s.prompt)

	if s.metrics != nil {
		byState := make(map[string]int)
		for _, z := range s.zombies.Zombies() {
			byState[z.State()]++
		}
		s.metrics.SetZombies(byState, zombie.States)
		s.metrics.PlayerHealth(s.player.Health())
	}
}

func (s *Simulation) currentVehicle() *vehicle.Vehicle {
	if !s.player.InVehicle() {
		return nil
	}
	return s.vehicle(s.player.Vehicle())
}

func (s *Simulation) vehicle(id entity.ID) *vehicle.Vehicle {
	for _, v := range s.vehicles {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

func (s *Simulation) handleZombieSpawned(z *zombie.Zombie) {
	s.scene.Register(z.ID(), entity.KindZombie)
	s.metrics.Spawned()
	s.emit(eventbus.TypeZombieSpawned, eventbus.PriorityLow, eventbus.ZombieSpawned{
		ZombieID: uint64(z.ID()),
		Type:     z.Type(),
		Position: point(z.Position()),
	})
}

// handleZombieKilled: статистика, опыт и выпавшая добыча
func (s *Simulation) handleZombieKilled(z *zombie.Zombie, loot *item.Template) {
	s.progress.UpdateStat(progression.StatZombiesKilled, 1)
	s.progress.AddExperience(KillExperience)
	s.metrics.Killed(z.Type())

	payload := eventbus.ZombieKilled{
		ZombieID: uint64(z.ID()),
		Type:     z.Type(),
		Position: point(z.Position()),
	}
	if loot != nil {
		it := item.New(s.table.NextID(), *loot, z.Position())
		s.addItem(it)
		payload.Loot = it.Name
	}
	s.emit(eventbus.TypeZombieKilled, eventbus.PriorityNormal, payload)
}

func (s *Simulation) handleVehicleDestroyed(v *vehicle.Vehicle, ejected []entity.ID) {
	payload := eventbus.VehicleDestroyed{
		VehicleID: uint64(v.ID()),
		Type:      v.Name(),
		Position:  point(v.Position()),
	}
	for _, id := range ejected {
		payload.Ejected = append(payload.Ejected, uint64(id))
		if id == s.player.ID() {
			s.player.Eject(v)
		}
	}
	s.emit(eventbus.TypeVehicleDestroyed, eventbus.PriorityHigh, payload)
}

func (s *Simulation) handlePlayerDeath(p *player.Player) {
	s.gameOver = true
	survived := s.now - s.startedAt

	s.logger.Info("☠️ Игра окончена: продержался %.0f с", survived)
	s.progress.Reset()
	s.metrics.GameOver()
	s.emit(eventbus.TypePlayerDied, eventbus.PriorityCritical, eventbus.PlayerDied{
		PlayerID:      uint64(p.ID()),
		TimeSurvived:  survived,
		ZombiesKilled: int(s.progress.Stat(progression.StatZombiesKilled)),
	})
	if s.OnGameOver != nil {
		s.OnGameOver(survived)
	}
}

// addItem кладёт предмет в мир
func (s *Simulation) addItem(it *item.Item) {
	s.items = append(s.items, it)
	s.table.Add(it)
	s.scene.Register(it.ID(), entity.KindItem)
}

func (s *Simulation) removeItem(it *item.Item) {
	for i, cur := range s.items {
		if cur == it {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.table.Remove(it.ID())
	s.scene.Unregister(it.ID())
}

func (s *Simulation) addWeapon(w *combat.Weapon) {
	s.weapons = append(s.weapons, w)
	s.table.Add(w)
	s.scene.Register(w.ID(), entity.KindWeapon)
}

func (s *Simulation) removeWeapon(w *combat.Weapon) {
	for i, cur := range s.weapons {
		if cur == w {
			s.weapons = append(s.weapons[:i], s.weapons[i+1:]...)
			break
		}
	}
	s.table.Remove(w.ID())
	s.scene.Unregister(w.ID())
}

// emit публикует событие с номером текущего тика
func (s *Simulation) emit(eventType string, priority int, payload any) {
	ev, err := eventbus.NewEnvelope(eventType, Source, priority, payload)
	if err != nil {
		s.logger.Warn("⚠️ Событие %s не собрано: %v", eventType, err)
		return
	}
	ev.Tick = s.ticks

	if s.bus != nil {
		err = s.bus.Publish(context.Background(), ev)
	} else {
		err = eventbus.Publish(context.Background(), ev)
	}
	if err != nil {
		s.logger.Debug("Событие %s не опубликовано: %v", eventType, err)
	}
}

func point(v vec.Vec3) eventbus.Point {
	return eventbus.Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Now игровое время в секундах
func (s *Simulation) Now() float64                     { return s.now }
func (s *Simulation) Ticks() uint64                    { return s.ticks }
func (s *Simulation) GameOver() bool                   { return s.gameOver }
func (s *Simulation) Player() *player.Player           { return s.player }
func (s *Simulation) Engine() *physics.Engine          { return s.engine }
func (s *Simulation) World() *world.World              { return s.world }
func (s *Simulation) Progression() *progression.System { return s.progress }
func (s *Simulation) ZombieManager() *zombie.Manager   { return s.zombies }
func (s *Simulation) Catalog() *config.Catalog         { return s.catalog }
func (s *Simulation) Prompt() string                   { return s.prompt }
func (s *Simulation) TimeSurvived() float64            { return s.now - s.startedAt }

// Zombies зомби в мире, включая трупы
func (s *Simulation) Zombies() []*zombie.Zombie { return s.zombies.Zombies() }

// Vehicles машины в мире
func (s *Simulation) Vehicles() []*vehicle.Vehicle {
	out := make([]*vehicle.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// Items предметы, лежащие в мире
func (s *Simulation) Items() []*item.Item {
	out := make([]*item.Item, len(s.items))
	copy(out, s.items)
	return out
}

// GroundWeapons оружие, лежащее в мире
func (s *Simulation) GroundWeapons() []*combat.Weapon {
	out := make([]*combat.Weapon, len(s.weapons))
	copy(out, s.weapons)
	return out
}

// Entity поиск любой сущности по ID
func (s *Simulation) Entity(id entity.ID) (entity.Positioned, bool) {
	return s.table.Get(id)
}
