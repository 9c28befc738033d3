// Package zombie реализует ИИ зомби на конечном автомате и менеджер
// популяции: размещение, периодическое появление и уборку трупов.
package zombie

import (
	"math"
	"math/rand"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
)

const (
	// Mass масса тела зомби
	Mass = 70.0
	// eyeFactor доля роста, на которой находятся глаза
	eyeFactor = 0.8
	// wanderDuration максимальная длительность блуждания, секунды
	wanderDuration    = 5.0
	wanderSpeedFactor = 0.5
	wanderArrival     = 0.1
	wanderMinDistance = 5.0
	wanderMaxDistance = 15.0
)

// Target снимок цели на начало тика
type Target struct {
	ID   entity.ID
	Feet vec.Vec3
	Eye  vec.Vec3
}

// Perception то, что зомби видит в мире. Все данные относятся к
// зафиксированному состоянию предыдущего тика, а урон не применяется
// сразу, а ставится в очередь.
type Perception interface {
	// Player живой игрок, если он есть
	Player() (Target, bool)
	// LineOfSight true, если между точками нет зданий
	LineOfSight(from, to vec.Vec3) bool
	// Attack ставит урон цели в очередь
	Attack(attacker, target entity.ID, damage float64)
}

// Zombie один зомби
type Zombie struct {
	id      entity.ID
	stats   config.ZombieType
	body    *physics.Body
	height  float64
	machine *entity.Machine[*Zombie]

	health float64
	yaw    float64

	// цель хранится как ID, позиция из снимка текущего тика
	target    entity.ID
	targetPos vec.Vec3

	wanderTarget *vec.Vec3
	wanderTime   float64

	stunTime     float64
	stunDuration float64
	wanderChance float64

	lastAttack float64
	attacked   bool

	deathTime float64

	rng        *rand.Rand
	now        float64
	perception Perception

	onDeath func(z *Zombie)
}

// Options параметры создания зомби
type Options struct {
	Height       float64
	Radius       float64
	StunDuration float64
	// WanderChance вероятность начать блуждание за тик
	WanderChance float64
	Rng          *rand.Rand
	OnDeath      func(z *Zombie)
}

// New создаёт зомби стоящим в точке feet в состоянии Idle
func New(id entity.ID, stats config.ZombieType, feet vec.Vec3, opts Options) *Zombie {
	if opts.Height <= 0 {
		opts.Height = 1.8
	}
	if opts.Radius <= 0 {
		opts.Radius = 0.4
	}
	if opts.StunDuration <= 0 {
		opts.StunDuration = 0.5
	}
	if opts.WanderChance <= 0 {
		opts.WanderChance = 0.01
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(int64(id)))
	}

	body := physics.NewBody(Mass, physics.NewBox(vec.New(opts.Radius*2, opts.Height, opts.Radius*2)), vec.Zero,
		physics.Tag{Kind: entity.KindZombie, ID: id})
	body.PlaceFeet(feet)

	z := &Zombie{
		id:           id,
		stats:        stats,
		body:         body,
		height:       opts.Height,
		health:       stats.Health,
		stunDuration: opts.StunDuration,
		wanderChance: opts.WanderChance,
		rng:          opts.Rng,
		onDeath:      opts.OnDeath,
	}
	z.machine = entity.NewMachine[*Zombie](z, Idle, StateDead)
	return z
}

func (z *Zombie) ID() entity.ID             { return z.id }
func (z *Zombie) Kind() entity.Kind         { return entity.KindZombie }
func (z *Zombie) Position() vec.Vec3        { return z.body.Feet() }
func (z *Zombie) Rotation() entity.Rotation { return entity.Rotation{Yaw: z.yaw} }
func (z *Zombie) Body() *physics.Body       { return z.body }
func (z *Zombie) Type() string              { return z.stats.Name }
func (z *Zombie) Stats() config.ZombieType  { return z.stats }
func (z *Zombie) Health() float64           { return z.health }
func (z *Zombie) MaxHealth() float64        { return z.stats.Health }
func (z *Zombie) IsDead() bool              { return z.machine.Is(StateDead) }
func (z *Zombie) Inert() bool               { return z.body.Inert }
func (z *Zombie) State() string             { return z.machine.Current().Name() }
func (z *Zombie) Target() entity.ID         { return z.target }
func (z *Zombie) DeathTime() float64        { return z.deathTime }
func (z *Zombie) StunRemaining() float64    { return z.stunTime }

// EyePosition точка, из которой зомби проверяет видимость
func (z *Zombie) EyePosition() vec.Vec3 {
	return z.Position().Add(vec.New(0, z.height*eyeFactor, 0))
}

// Think один тик ИИ: выбор состояния по приоритетам, затем его поведение
func (z *Zombie) Think(p Perception, now, dt float64) {
	if z.IsDead() {
		return
	}
	z.now = now
	z.perception = p
	defer func() { z.perception = nil }()

	if z.machine.Is(StateStunned) {
		z.stunTime -= dt
		if z.stunTime > 0 {
			z.machine.Update(dt)
			return
		}
		z.stunTime = 0
		z.machine.Set(Idle)
	}

	if t, ok := z.detect(p); ok {
		z.target = t.ID
		z.targetPos = t.Feet
		if z.Position().DistanceTo(t.Feet) <= z.stats.AttackRange {
			z.machine.Set(Attack)
		} else {
			z.machine.Set(Chase)
		}
	} else {
		z.target = entity.None
		switch {
		case z.machine.Is(StateIdle):
			if z.rng.Float64() < z.wanderChance {
				z.machine.Set(Wander)
			}
		case z.machine.Is(StateWander):
			z.wanderTime += dt
			if z.wanderTime >= wanderDuration {
				z.machine.Set(Idle)
			}
		default:
			z.machine.Set(Idle)
		}
	}

	z.machine.Update(dt)
}

// detect ищет игрока в радиусе обнаружения с прямой видимостью
func (z *Zombie) detect(p Perception) (Target, bool) {
	t, ok := p.Player()
	if !ok {
		return Target{}, false
	}
	if z.Position().DistanceTo(t.Feet) > z.stats.DetectionRange {
		return Target{}, false
	}
	if !p.LineOfSight(z.EyePosition(), t.Eye) {
		return Target{}, false
	}
	return t, true
}

// TakeDamage наносит урон. Живой зомби оглушается, при здоровье <= 0
// сразу умирает, минуя оглушение.
func (z *Zombie) TakeDamage(amount float64) {
	if z.IsDead() || amount <= 0 {
		return
	}
	z.health -= amount
	if z.health <= 0 {
		z.health = 0
		z.machine.Set(Dead)
		return
	}
	z.stunTime = z.stunDuration
	z.machine.Set(Stunned)
}

// SetClock обновляет игровое время, которым помечаются смерть и атаки
func (z *Zombie) SetClock(now float64) {
	z.now = now
}

// face поворачивает зомби по направлению движения
func (z *Zombie) face(dir vec.Vec3) {
	z.yaw = math.Atan2(dir.X, dir.Z)
}

func (z *Zombie) stop() {
	z.body.Velocity = vec.Zero.WithY(z.body.Velocity.Y)
}

func (z *Zombie) moveTowards(dir vec.Vec3, speed float64) {
	z.body.Velocity = vec.New(dir.X*speed, z.body.Velocity.Y, dir.Z*speed)
	z.face(dir)
}

func (z *Zombie) pickWanderTarget() {
	angle := z.rng.Float64() * math.Pi * 2
	distance := wanderMinDistance + z.rng.Float64()*(wanderMaxDistance-wanderMinDistance)
	p := z.Position()
	t := vec.New(p.X+math.Cos(angle)*distance, 0, p.Z+math.Sin(angle)*distance)
	z.wanderTarget = &t
}
