package zombie

import (
	"fmt"
	"math/rand"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/item"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
)

// Manager владеет популяцией зомби: создаёт их, гоняет ИИ,
// периодически подселяет новых и убирает трупы.
// Тела регистрируются в физическом движке, сущности в общей таблице.
type Manager struct {
	cfg       config.ZombiesConfig
	worldSize float64
	engine    *physics.Engine
	table     *entity.Table
	rng       *rand.Rand
	logger    *logging.Logger

	zombies    []*Zombie
	spawnTimer float64
	now        float64

	// OnSpawned вызывается после появления зомби
	OnSpawned func(z *Zombie)
	// OnKilled вызывается при смерти; loot != nil, если выпал предмет
	OnKilled func(z *Zombie, loot *item.Template)
	// OnRemoved вызывается, когда труп убран из мира
	OnRemoved func(z *Zombie)
}

// NewManager создаёт менеджер
func NewManager(cfg config.ZombiesConfig, worldSize float64, engine *physics.Engine, table *entity.Table, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Manager{
		cfg:       cfg,
		worldSize: worldSize,
		engine:    engine,
		table:     table,
		rng:       rng,
		logger:    logging.GetZombieLogger(),
	}
}

// ActiveCount число зомби, включая ещё не убранные трупы
func (m *Manager) ActiveCount() int {
	return len(m.zombies)
}

// Alive число живых зомби
func (m *Manager) Alive() int {
	n := 0
	for _, z := range m.zombies {
		if !z.IsDead() {
			n++
		}
	}
	return n
}

// Zombies копия списка зомби
func (m *Manager) Zombies() []*Zombie {
	out := make([]*Zombie, len(m.zombies))
	copy(out, m.zombies)
	return out
}

// Get ищет зомби по ID
func (m *Manager) Get(id entity.ID) (*Zombie, bool) {
	for _, z := range m.zombies {
		if z.id == id {
			return z, true
		}
	}
	return nil, false
}

// SetClock задаёт игровое время для всех зомби. Урон, нанесённый после
// фазы ИИ в том же тике, помечает смерть этим временем.
func (m *Manager) SetClock(now float64) {
	m.now = now
	for _, z := range m.zombies {
		z.SetClock(now)
	}
}

// SpawnInitial стартовая волна: min(InitialCount, MaxCount) зомби
func (m *Manager) SpawnInitial(avoid ...vec.Vec3) int {
	count := m.cfg.InitialCount
	if count > m.cfg.MaxCount {
		count = m.cfg.MaxCount
	}
	spawned := 0
	for i := 0; i < count; i++ {
		if _, err := m.SpawnRandom(avoid...); err != nil {
			m.logger.Warn("⚠️ Стартовая волна прервана: %v", err)
			break
		}
		spawned++
	}
	m.logger.Info("🧟 Стартовая волна: %d зомби", spawned)
	return spawned
}

// Think прогоняет ИИ всех живых зомби
func (m *Manager) Think(p Perception, now, dt float64) {
	m.now = now
	for _, z := range m.zombies {
		z.Think(p, now, dt)
	}
}

// Maintain периодическое появление и уборка трупов
func (m *Manager) Maintain(now, dt float64, avoid ...vec.Vec3) {
	m.now = now
	if m.cfg.SpawnRate > 0 {
		m.spawnTimer += dt
		for m.spawnTimer >= m.cfg.SpawnRate {
			m.spawnTimer -= m.cfg.SpawnRate
			if m.ActiveCount() < m.cfg.MaxCount {
				if _, err := m.SpawnRandom(avoid...); err != nil {
					m.logger.Debug("Периодическое появление пропущено: %v", err)
				}
			}
		}
	}
	m.Prune(now)
}

// Spawn создаёт зомби заданного типа, стоящим в точке feet
func (m *Manager) Spawn(typeName string, feet vec.Vec3) (*Zombie, error) {
	if m.ActiveCount() >= m.cfg.MaxCount {
		return nil, fmt.Errorf("%w: zombie limit %d reached", entity.ErrResourceExhausted, m.cfg.MaxCount)
	}
	stats, ok := m.findType(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: zombie type %q", entity.ErrNotFound, typeName)
	}
	return m.spawn(stats, feet), nil
}

// SpawnRandom создаёт зомби случайного типа в допустимой точке
func (m *Manager) SpawnRandom(avoid ...vec.Vec3) (*Zombie, error) {
	if m.ActiveCount() >= m.cfg.MaxCount {
		return nil, fmt.Errorf("%w: zombie limit %d reached", entity.ErrResourceExhausted, m.cfg.MaxCount)
	}
	if len(m.cfg.Types) == 0 {
		return nil, fmt.Errorf("%w: no zombie types configured", entity.ErrNotFound)
	}
	stats := m.cfg.Types[m.rng.Intn(len(m.cfg.Types))]
	pos, ok := m.FindSpawnPosition(avoid...)
	if !ok {
		m.logger.Debug("Не найдено место для зомби за %d попыток, используется %v", m.attempts(), pos)
	}
	return m.spawn(stats, pos), nil
}

func (m *Manager) spawn(stats config.ZombieType, feet vec.Vec3) *Zombie {
	id := m.table.NextID()
	z := New(id, stats, feet, Options{
		Height:       m.cfg.Height,
		Radius:       m.cfg.Radius,
		StunDuration: m.cfg.StunDuration,
		WanderChance: m.cfg.WanderChance,
		Rng:          m.rng,
		OnDeath:      m.handleDeath,
	})
	z.SetClock(m.now)

	m.zombies = append(m.zombies, z)
	m.table.Add(z)
	if m.engine != nil {
		m.engine.AddBody(z.body)
	}

	m.logger.Debug("🧟 Появился %s #%d в %v", stats.Name, id, feet)
	if m.OnSpawned != nil {
		m.OnSpawned(z)
	}
	return z
}

func (m *Manager) findType(name string) (config.ZombieType, bool) {
	for _, t := range m.cfg.Types {
		if t.Name == name {
			return t, true
		}
	}
	return config.ZombieType{}, false
}

func (m *Manager) attempts() int {
	if m.cfg.PlacementAttempts > 0 {
		return m.cfg.PlacementAttempts
	}
	return 50
}

// handleDeath бросок на выпадение добычи в точке смерти
func (m *Manager) handleDeath(z *Zombie) {
	var loot *item.Template
	if m.rng.Float64() < m.cfg.LootChance {
		tpl := item.RandomLoot(m.rng)
		loot = &tpl
		m.logger.Debug("🎁 Зомби #%d оставил %s", z.id, tpl.Name)
	}
	if m.OnKilled != nil {
		m.OnKilled(z, loot)
	}
}

// Prune убирает трупы, пролежавшие RemovalDelay секунд
func (m *Manager) Prune(now float64) []*Zombie {
	var removed []*Zombie
	kept := m.zombies[:0]
	for _, z := range m.zombies {
		if z.IsDead() && now >= z.deathTime+m.cfg.RemovalDelay {
			removed = append(removed, z)
			continue
		}
		kept = append(kept, z)
	}
	for i := len(kept); i < len(m.zombies); i++ {
		m.zombies[i] = nil
	}
	m.zombies = kept

	for _, z := range removed {
		m.detach(z)
	}
	return removed
}

// DespawnAll убирает всех зомби и сбрасывает таймер появления
func (m *Manager) DespawnAll() int {
	n := len(m.zombies)
	for _, z := range m.zombies {
		m.detach(z)
	}
	m.zombies = nil
	m.spawnTimer = 0
	if n > 0 {
		m.logger.Info("🧹 Убрано зомби: %d", n)
	}
	return n
}

func (m *Manager) detach(z *Zombie) {
	m.table.Remove(z.id)
	if m.engine != nil {
		m.engine.RemoveBody(z.body)
	}
	if m.OnRemoved != nil {
		m.OnRemoved(z)
	}
}

// FindSpawnPosition ищет точку на земле не ближе MinPlayerDistance к каждой
// из точек avoid, вне зданий и деревьев. После исчерпания попыток
// возвращает непроверенную случайную точку и false.
func (m *Manager) FindSpawnPosition(avoid ...vec.Vec3) (vec.Vec3, bool) {
	half := m.worldSize / 2
	for i := 0; i < m.attempts(); i++ {
		p := m.randomPoint(half)
		if m.acceptable(p, avoid) {
			return p, true
		}
	}
	return m.randomPoint(half), false
}

func (m *Manager) randomPoint(half float64) vec.Vec3 {
	return vec.RandomPosition(m.rng, -half, half, -half, half)
}

func (m *Manager) acceptable(p vec.Vec3, avoid []vec.Vec3) bool {
	for _, a := range avoid {
		if p.DistanceTo(a) < m.cfg.MinPlayerDistance {
			return false
		}
	}
	if m.engine == nil {
		return true
	}
	for _, s := range m.engine.StaticColliders() {
		switch s.Tag.Kind {
		case entity.KindBuilding:
			e := s.Shape.Extents()
			if p.XZ().InArea(s.Position.X-e.X, s.Position.X+e.X, s.Position.Z-e.Z, s.Position.Z+e.Z) {
				return false
			}
		case entity.KindTree:
			if p.XZ().InCircle(s.Position.XZ(), s.Shape.Extents().X) {
				return false
			}
		}
	}
	return true
}
