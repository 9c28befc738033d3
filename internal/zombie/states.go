package zombie

import (
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/logging"
)

// Имена состояний
const (
	StateIdle    = "idle"
	StateWander  = "wander"
	StateChase   = "chase"
	StateAttack  = "attack"
	StateStunned = "stunned"
	StateDead    = "dead"
)

// States все имена состояний в порядке объявления
var States = []string{StateIdle, StateWander, StateChase, StateAttack, StateStunned, StateDead}

// Состояния не хранят данных, всё состояние живёт в Zombie,
// поэтому экземпляры общие для всех зомби.
var (
	Idle    entity.State[*Zombie] = idleState{}
	Wander  entity.State[*Zombie] = wanderState{}
	Chase   entity.State[*Zombie] = chaseState{}
	Attack  entity.State[*Zombie] = attackState{}
	Stunned entity.State[*Zombie] = stunnedState{}
	Dead    entity.State[*Zombie] = deadState{}
)

type idleState struct{}

func (idleState) Name() string                { return StateIdle }
func (idleState) Enter(z *Zombie)             { z.stop() }
func (idleState) Update(z *Zombie, _ float64) { z.stop() }
func (idleState) Exit(*Zombie)                {}

type wanderState struct{}

func (wanderState) Name() string { return StateWander }

func (wanderState) Enter(z *Zombie) {
	z.wanderTime = 0
	z.pickWanderTarget()
}

func (wanderState) Update(z *Zombie, _ float64) {
	if z.wanderTarget == nil {
		z.pickWanderTarget()
	}
	delta := z.wanderTarget.Sub(z.Position()).WithY(0)
	if delta.Length() <= wanderArrival {
		z.wanderTarget = nil
		z.stop()
		z.machine.Set(Idle)
		return
	}
	z.moveTowards(delta.Normalized(), z.stats.Speed*wanderSpeedFactor)
}

func (wanderState) Exit(z *Zombie) {
	z.wanderTarget = nil
}

type chaseState struct{}

func (chaseState) Name() string    { return StateChase }
func (chaseState) Enter(z *Zombie) {}

func (chaseState) Update(z *Zombie, _ float64) {
	delta := z.targetPos.Sub(z.Position()).WithY(0)
	if delta.Length() == 0 {
		z.stop()
		return
	}
	z.moveTowards(delta.Normalized(), z.stats.Speed)
}

func (chaseState) Exit(*Zombie) {}

type attackState struct{}

func (attackState) Name() string    { return StateAttack }
func (attackState) Enter(z *Zombie) { z.stop() }

func (attackState) Update(z *Zombie, _ float64) {
	z.stop()
	delta := z.targetPos.Sub(z.Position()).WithY(0)
	if delta.Length() > 0 {
		z.face(delta.Normalized())
	}

	if z.attacked && z.now-z.lastAttack < z.stats.AttackRate {
		return
	}
	if z.target == entity.None || z.perception == nil {
		return
	}
	if z.Position().DistanceTo(z.targetPos) <= z.stats.AttackRange {
		z.perception.Attack(z.id, z.target, z.stats.Damage)
	}
	z.lastAttack = z.now
	z.attacked = true
}

func (attackState) Exit(*Zombie) {}

type stunnedState struct{}

func (stunnedState) Name() string                { return StateStunned }
func (stunnedState) Enter(z *Zombie)             { z.stop() }
func (stunnedState) Update(z *Zombie, _ float64) { z.stop() }
func (stunnedState) Exit(*Zombie)                {}

type deadState struct{}

func (deadState) Name() string { return StateDead }

func (deadState) Enter(z *Zombie) {
	z.body.Stop()
	z.body.Inert = true
	z.deathTime = z.now
	z.target = entity.None
	z.wanderTarget = nil
	z.stunTime = 0

	logging.GetZombieLogger().Debug("💀 Зомби %s #%d погиб в %v", z.stats.Name, z.id, z.Position())
	if z.onDeath != nil {
		z.onDeath(z)
	}
}

func (deadState) Update(*Zombie, float64) {}
func (deadState) Exit(*Zombie)            {}
