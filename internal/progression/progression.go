// Package progression ведёт уровень, опыт, навыки, достижения и статистику
// выживания игрока. Уровень и навыки переживают смерть, статистика копится.
package progression

import (
	"fmt"
	"math"
	"sort"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/logging"
)

// Навыки
const (
	SkillHealth            = "health"
	SkillStamina           = "stamina"
	SkillHunger            = "hunger"
	SkillThirst            = "thirst"
	SkillDamage            = "damage"
	SkillAccuracy          = "accuracy"
	SkillReloadSpeed       = "reload_speed"
	SkillCriticalHit       = "critical_hit"
	SkillSpeed             = "speed"
	SkillSprintDuration    = "sprint_duration"
	SkillJumpHeight        = "jump_height"
	SkillFallDamage        = "fall_damage"
	SkillDriving           = "driving"
	SkillVehicleEfficiency = "vehicle_efficiency"
	SkillRepair            = "repair"
	SkillScavenging        = "scavenging"
	SkillStealth           = "stealth"
	SkillCrafting          = "crafting"
)

// Статистика
const (
	StatZombiesKilled     = "zombies_killed"
	StatTimeSurvived      = "time_survived"
	StatDistanceTraveled  = "distance_traveled"
	StatVehiclesRepaired  = "vehicles_repaired"
	StatWeaponsCustomized = "weapons_customized"
	StatItemsCollected    = "items_collected"
	StatDistanceDriven    = "distance_driven"
	StatDeaths            = "deaths"
	StatHeadshots         = "headshots"
	StatCriticalHits      = "critical_hits"
)

// Достижения
const (
	AchievementZombieKiller = "zombie_killer"
	AchievementSurvivor     = "survivor"
	AchievementExplorer     = "explorer"
	AchievementMechanic     = "mechanic"
	AchievementGunsmith     = "gunsmith"
	AchievementHoarder      = "hoarder"
	AchievementDriver       = "driver"
)

const (
	pointsPerLevel = 2
	// achievementCheckPeriod как часто время выживания проверяет достижения
	achievementCheckPeriod = 10.0
)

// Skill улучшаемый навык. Value растёт на Increment за уровень.
type Skill struct {
	Key         string
	Name        string
	Description string
	Level       int
	MaxLevel    int
	Value       float64
	Increment   float64
}

// Achievement достижение с целевым значением и наградой в опыте
type Achievement struct {
	Key         string
	Name        string
	Description string
	Progress    float64
	Target      float64
	Completed   bool
	Reward      int
	// stat статистика, из которой берётся прогресс; пусто для ручных достижений
	stat string
}

// Attributes производные от навыков параметры игрока
type Attributes struct {
	MaxHealth       float64
	MaxStamina      float64
	SpeedMultiplier float64
	RegenMultiplier float64
	JumpMultiplier  float64
}

func defaultSkills() []*Skill {
	return []*Skill{
		{Key: SkillHealth, Name: "Saúde", Description: "Aumenta a saúde máxima", MaxLevel: 10, Value: 100, Increment: 20},
		{Key: SkillStamina, Name: "Resistência", Description: "Aumenta a stamina máxima", MaxLevel: 10, Value: 100, Increment: 20},
		{Key: SkillHunger, Name: "Metabolismo", Description: "Reduz a taxa de fome", MaxLevel: 5, Value: 1, Increment: -0.1},
		{Key: SkillThirst, Name: "Hidratação", Description: "Reduz a taxa de sede", MaxLevel: 5, Value: 1, Increment: -0.1},
		{Key: SkillDamage, Name: "Força", Description: "Aumenta o dano corpo-a-corpo", MaxLevel: 10, Value: 1, Increment: 0.1},
		{Key: SkillAccuracy, Name: "Precisão", Description: "Aumenta a precisão com armas", MaxLevel: 10, Value: 1, Increment: 0.1},
		{Key: SkillReloadSpeed, Name: "Recarga Rápida", Description: "Reduz o tempo de recarga", MaxLevel: 5, Value: 1, Increment: -0.1},
		{Key: SkillCriticalHit, Name: "Golpe Crítico", Description: "Aumenta a chance de acerto crítico", MaxLevel: 5, Value: 0.05, Increment: 0.05},
		{Key: SkillSpeed, Name: "Velocidade", Description: "Aumenta a velocidade de movimento", MaxLevel: 5, Value: 1, Increment: 0.1},
		{Key: SkillSprintDuration, Name: "Sprint", Description: "Aumenta a duração do sprint", MaxLevel: 5, Value: 1, Increment: 0.2},
		{Key: SkillJumpHeight, Name: "Salto", Description: "Aumenta a altura do pulo", MaxLevel: 3, Value: 1, Increment: 0.15},
		{Key: SkillFallDamage, Name: "Aterrissagem", Description: "Reduz o dano de queda", MaxLevel: 3, Value: 1, Increment: -0.25},
		{Key: SkillDriving, Name: "Direção", Description: "Melhora o controle de veículos", MaxLevel: 5, Value: 1, Increment: 0.15},
		{Key: SkillVehicleEfficiency, Name: "Eficiência", Description: "Reduz o consumo de combustível", MaxLevel: 5, Value: 1, Increment: -0.1},
		{Key: SkillRepair, Name: "Mecânica", Description: "Aumenta a eficiência de reparos", MaxLevel: 5, Value: 1, Increment: 0.2},
		{Key: SkillScavenging, Name: "Coleta", Description: "Aumenta a quantidade de itens encontrados", MaxLevel: 5, Value: 1, Increment: 0.2},
		{Key: SkillStealth, Name: "Furtividade", Description: "Reduz a detecção por zumbis", MaxLevel: 5, Value: 1, Increment: 0.2},
		{Key: SkillCrafting, Name: "Fabricação", Description: "Melhora a qualidade dos itens fabricados", MaxLevel: 5, Value: 1, Increment: 0.2},
	}
}

func defaultAchievements() []*Achievement {
	return []*Achievement{
		{Key: AchievementZombieKiller, Name: "Caçador de Zumbis", Description: "Elimine 100 zumbis", Target: 100, Reward: 500, stat: StatZombiesKilled},
		{Key: AchievementSurvivor, Name: "Sobrevivente", Description: "Sobreviva por 1 hora", Target: 3600, Reward: 1000, stat: StatTimeSurvived},
		{Key: AchievementExplorer, Name: "Explorador", Description: "Visite todas as áreas do mapa", Target: 10, Reward: 750},
		{Key: AchievementMechanic, Name: "Mecânico", Description: "Repare 10 veículos", Target: 10, Reward: 500, stat: StatVehiclesRepaired},
		{Key: AchievementGunsmith, Name: "Armeiro", Description: "Customize 5 armas", Target: 5, Reward: 500, stat: StatWeaponsCustomized},
		{Key: AchievementHoarder, Name: "Acumulador", Description: "Colete 200 itens", Target: 200, Reward: 500, stat: StatItemsCollected},
		{Key: AchievementDriver, Name: "Piloto", Description: "Dirija por 10km", Target: 10000, Reward: 500, stat: StatDistanceDriven},
	}
}

var statNames = []string{
	StatZombiesKilled, StatTimeSurvived, StatDistanceTraveled, StatVehiclesRepaired,
	StatWeaponsCustomized, StatItemsCollected, StatDistanceDriven, StatDeaths,
	StatHeadshots, StatCriticalHits,
}

// ExperienceForLevel опыт, необходимый для перехода на уровень level
func ExperienceForLevel(level int) int {
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// System прогресс одного игрока. Не потокобезопасен: принадлежит
// симуляции и меняется только внутри тика.
type System struct {
	level       int
	experience  int
	toNext      int
	skillPoints int

	skills       map[string]*Skill
	skillOrder   []string
	achievements map[string]*Achievement
	achOrder     []string
	stats        map[string]float64
	visited      map[string]struct{}

	// OnLevelUp вызывается на каждом новом уровне
	OnLevelUp func(level int)
	// OnAchievement вызывается при получении достижения
	OnAchievement func(a Achievement)
	// OnSkillsChanged вызывается, когда меняются производные параметры
	OnSkillsChanged func(a Attributes)

	logger *logging.Logger
}

// New создаёт прогресс первого уровня
func New() *System {
	s := &System{
		level:        1,
		toNext:       ExperienceForLevel(2),
		skills:       make(map[string]*Skill),
		achievements: make(map[string]*Achievement),
		stats:        make(map[string]float64, len(statNames)),
		visited:      make(map[string]struct{}),
		logger:       logging.GetComponentLogger("progression"),
	}
	for _, sk := range defaultSkills() {
		sk.Level = 1
		s.skills[sk.Key] = sk
		s.skillOrder = append(s.skillOrder, sk.Key)
	}
	for _, a := range defaultAchievements() {
		s.achievements[a.Key] = a
		s.achOrder = append(s.achOrder, a.Key)
	}
	for _, name := range statNames {
		s.stats[name] = 0
	}
	return s
}

func (s *System) Level() int            { return s.level }
func (s *System) Experience() int       { return s.experience }
func (s *System) ExperienceToNext() int { return s.toNext }
func (s *System) SkillPoints() int      { return s.skillPoints }

// ProgressPercent доля опыта до следующего уровня в процентах
func (s *System) ProgressPercent() float64 {
	return float64(s.experience) / float64(s.toNext) * 100
}

// AddExperience начисляет опыт; за раз можно подняться на несколько уровней
func (s *System) AddExperience(amount int) {
	if amount <= 0 {
		return
	}
	s.experience += amount
	s.logger.Debug("✨ +%d XP (%d/%d)", amount, s.experience, s.toNext)
	for s.experience >= s.toNext {
		s.levelUp()
	}
}

func (s *System) levelUp() {
	s.experience -= s.toNext
	s.level++
	s.toNext = ExperienceForLevel(s.level + 1)
	s.skillPoints += pointsPerLevel

	s.logger.Info("🆙 Уровень %d! +%d очка навыков", s.level, pointsPerLevel)
	if s.OnLevelUp != nil {
		s.OnLevelUp(s.level)
	}
}

// Skill копия навыка
func (s *System) Skill(key string) (Skill, bool) {
	sk, ok := s.skills[key]
	if !ok {
		return Skill{}, false
	}
	return *sk, true
}

// Skills навыки в каноническом порядке
func (s *System) Skills() []Skill {
	out := make([]Skill, 0, len(s.skillOrder))
	for _, k := range s.skillOrder {
		out = append(out, *s.skills[k])
	}
	return out
}

// SkillValue значение навыка; для неизвестного 1.0
func (s *System) SkillValue(key string) float64 {
	if sk, ok := s.skills[key]; ok {
		return sk.Value
	}
	return 1
}

// SkillLevel уровень навыка; для неизвестного 1
func (s *System) SkillLevel(key string) int {
	if sk, ok := s.skills[key]; ok {
		return sk.Level
	}
	return 1
}

// SkillDescription строка для интерфейса
func (s *System) SkillDescription(key string) string {
	sk, ok := s.skills[key]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s (Nível %d/%d): %s", sk.Name, sk.Level, sk.MaxLevel, sk.Description)
}

// UpgradeSkill тратит очко навыка на повышение уровня
func (s *System) UpgradeSkill(key string) error {
	sk, ok := s.skills[key]
	if !ok {
		return fmt.Errorf("%w: skill %q", entity.ErrNotFound, key)
	}
	if sk.Level >= sk.MaxLevel {
		return fmt.Errorf("%w: %s is at max level", entity.ErrInvalidOperation, sk.Name)
	}
	if s.skillPoints <= 0 {
		return fmt.Errorf("%w: no skill points", entity.ErrResourceExhausted)
	}

	sk.Level++
	sk.Value += sk.Increment
	s.skillPoints--
	s.logger.Info("📈 %s: уровень %d, значение %.2f", sk.Name, sk.Level, sk.Value)

	s.notifySkills()
	return nil
}

// Attributes параметры игрока, выведенные из навыков
func (s *System) Attributes() Attributes {
	return Attributes{
		MaxHealth:       s.SkillValue(SkillHealth),
		MaxStamina:      s.SkillValue(SkillStamina),
		SpeedMultiplier: s.SkillValue(SkillSpeed),
		RegenMultiplier: s.SkillValue(SkillSprintDuration),
		JumpMultiplier:  s.SkillValue(SkillJumpHeight),
	}
}

func (s *System) notifySkills() {
	if s.OnSkillsChanged != nil {
		s.OnSkillsChanged(s.Attributes())
	}
}

// Stat значение статистики
func (s *System) Stat(name string) float64 {
	return s.stats[name]
}

// Stats копия статистики
func (s *System) Stats() map[string]float64 {
	out := make(map[string]float64, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// UpdateStat увеличивает статистику и проверяет достижения.
// Неизвестные имена игнорируются.
func (s *System) UpdateStat(name string, delta float64) bool {
	if _, ok := s.stats[name]; !ok {
		return false
	}
	s.stats[name] += delta
	s.CheckAchievements()
	return true
}

// VisitArea отмечает посещённую область карты для достижения «Explorador»
func (s *System) VisitArea(area string) {
	if _, ok := s.visited[area]; ok {
		return
	}
	s.visited[area] = struct{}{}
	s.logger.Debug("🗺️ Новая область: %s (%d)", area, len(s.visited))
	s.CheckAchievements()
}

// VisitedAreas отсортированный список посещённых областей
func (s *System) VisitedAreas() []string {
	out := make([]string, 0, len(s.visited))
	for a := range s.visited {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Achievement копия достижения
func (s *System) Achievement(key string) (Achievement, bool) {
	a, ok := s.achievements[key]
	if !ok {
		return Achievement{}, false
	}
	return *a, true
}

// Achievements достижения в каноническом порядке
func (s *System) Achievements() []Achievement {
	out := make([]Achievement, 0, len(s.achOrder))
	for _, k := range s.achOrder {
		out = append(out, *s.achievements[k])
	}
	return out
}

// CheckAchievements пересчитывает прогресс и выдаёт выполненные достижения
func (s *System) CheckAchievements() {
	for _, k := range s.achOrder {
		a := s.achievements[k]
		if a.Completed {
			continue
		}
		switch {
		case a.stat != "":
			a.Progress = s.stats[a.stat]
		case a.Key == AchievementExplorer:
			a.Progress = float64(len(s.visited))
		}
		if a.Progress >= a.Target {
			s.complete(a)
		}
	}
}

func (s *System) complete(a *Achievement) {
	if a.Completed {
		return
	}
	a.Completed = true
	s.logger.Info("🏆 Достижение: %s (%s)", a.Name, a.Description)
	s.AddExperience(a.Reward)
	if s.OnAchievement != nil {
		s.OnAchievement(*a)
	}
}

// Update копит время выживания и раз в 10 секунд проверяет достижения
func (s *System) Update(dt float64) {
	if dt <= 0 {
		return
	}
	prev := s.stats[StatTimeSurvived]
	s.stats[StatTimeSurvived] = prev + dt
	if math.Floor(prev/achievementCheckPeriod) != math.Floor((prev+dt)/achievementCheckPeriod) {
		s.CheckAchievements()
	}
}

// Reset вызывается при смерти игрока: уровень и навыки сохраняются
func (s *System) Reset() {
	s.stats[StatDeaths]++
	s.logger.Info("☠️ Смерть #%.0f, прогресс сохранён", s.stats[StatDeaths])
}
