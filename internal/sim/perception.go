package sim

import (
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/annel0/deadcity/internal/zombie"
)

// attack урон, поставленный в очередь зомби
type attack struct {
	attacker entity.ID
	target   entity.ID
	damage   float64
}

// perception снимок мира на начало тика. Атаки копятся и применяются
// после того, как отработал ИИ всех зомби.
type perception struct {
	engine    *physics.Engine
	target    zombie.Target
	hasTarget bool
	attacks   []attack
}

var lineOfSightBlockers = physics.OnlyKinds(entity.KindBuilding)

// capture фиксирует положение живого игрока
func (s *Simulation) capture() *perception {
	p := &perception{engine: s.engine}
	if !s.player.IsDead() {
		p.target = zombie.Target{
			ID:   s.player.ID(),
			Feet: s.player.Position(),
			Eye:  s.player.EyePosition(),
		}
		p.hasTarget = true
	}
	return p
}

func (p *perception) Player() (zombie.Target, bool) {
	return p.target, p.hasTarget
}

// LineOfSight проверяет, что отрезок не пересекает здания.
// Деревья и машины взгляд не закрывают.
func (p *perception) LineOfSight(from, to vec.Vec3) bool {
	dir := to.Sub(from)
	dist := dir.Length()
	if dist == 0 {
		return true
	}
	_, blocked := p.engine.RaycastWith(from, dir, dist, physics.RaycastOptions{Filter: lineOfSightBlockers})
	return !blocked
}

func (p *perception) Attack(attacker, target entity.ID, damage float64) {
	p.attacks = append(p.attacks, attack{attacker: attacker, target: target, damage: damage})
}
