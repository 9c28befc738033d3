package combat

import (
	"errors"
	"math/rand"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
)

// VehicleDamageFactor доля урона, которую получает машина
const VehicleDamageFactor = 0.5

// muzzleOffset вынос точки выстрела от глаз вдоль взгляда
const muzzleOffset = 0.5

// Shooter сущность, которая стреляет
type Shooter interface {
	ID() entity.ID
	EyePosition() vec.Vec3
	Rotation() entity.Rotation
	// ApplyRecoil сдвигает взгляд; ограничение pitch на стороне стрелка
	ApplyRecoil(pitchDelta, yawDelta float64)
}

// Raycaster источник лучевых запросов (physics.Engine)
type Raycaster interface {
	RaycastWith(origin, direction vec.Vec3, maxDistance float64, opts physics.RaycastOptions) (physics.Hit, bool)
}

// Targets разрешает теги попаданий в сущности
type Targets interface {
	Damageable(id entity.ID) (entity.Damageable, bool)
}

// ShotResult итог попытки выстрела
type ShotResult struct {
	Fired         bool
	ReloadStarted bool
	Origin        vec.Vec3
	Direction     vec.Vec3
	Hit           bool
	Point         vec.Vec3
	Distance      float64
	Target        physics.Tag
	Damage        float64
	Killed        bool
}

// Resolver разрешает выстрелы лучом против застройки, машин и зомби
type Resolver struct {
	rays    Raycaster
	targets Targets
	rng     *rand.Rand
	logger  *logging.Logger
}

// NewResolver создаёт резолвер
func NewResolver(rays Raycaster, targets Targets, rng *rand.Rand) *Resolver {
	return &Resolver{
		rays:    rays,
		targets: targets,
		rng:     rng,
		logger:  logging.GetCombatLogger(),
	}
}

var hitscanTargets = physics.OnlyKinds(
	entity.KindBuilding,
	entity.KindTree,
	entity.KindVehicle,
	entity.KindZombie,
)

// Fire пытается выстрелить в момент now. Отказ возвращается ошибкой
// ErrInvalidOperation; пустой магазин при этом запускает перезарядку.
func (r *Resolver) Fire(w *Weapon, s Shooter, now float64) (ShotResult, error) {
	var res ShotResult

	if err := w.CanFire(now); err != nil {
		if errors.Is(err, ErrNoAmmo) {
			res.ReloadStarted = w.Reload(now) == nil
		}
		r.logger.Debug("🔫 %s не стреляет: %v", w.Name(), err)
		return res, err
	}

	w.consumeShot(now)
	res.Fired = true

	recoil := w.stats.Recoil
	s.ApplyRecoil(
		-recoil*(0.5+r.rng.Float64()*0.5),
		(r.rng.Float64()-0.5)*recoil*0.5,
	)

	rot := s.Rotation()
	res.Direction = vec.Direction(rot.Yaw, rot.Pitch)
	res.Origin = s.EyePosition().Add(res.Direction.Mul(muzzleOffset))

	hit, ok := r.rays.RaycastWith(res.Origin, res.Direction, w.stats.Range, physics.RaycastOptions{
		IncludeBodies: true,
		Exclude:       s.ID(),
		Filter:        hitscanTargets,
	})
	if !ok {
		r.logger.Trace("🔫 %s: промах", w.Name())
		return res, nil
	}

	res.Hit = true
	res.Point = hit.Point
	res.Distance = hit.Distance
	res.Target = hit.Tag

	switch hit.Tag.Kind {
	case entity.KindZombie:
		res.Damage = w.stats.Damage
	case entity.KindVehicle:
		res.Damage = w.stats.Damage * VehicleDamageFactor
	default:
		// застройка: только след попадания
		r.logger.Trace("🔫 %s попал в %s", w.Name(), hit.Tag.Kind)
		return res, nil
	}

	target, found := r.targets.Damageable(hit.Tag.ID)
	if !found || target.IsDead() {
		res.Damage = 0
		return res, nil
	}
	target.TakeDamage(res.Damage)
	res.Killed = target.IsDead()
	r.logger.Debug("🎯 %s попал в %s #%d: урон %.1f", w.Name(), hit.Tag.Kind, hit.Tag.ID, res.Damage)
	return res, nil
}

// Reload запускает перезарядку с журналированием отказа
func (r *Resolver) Reload(w *Weapon, now float64) error {
	if err := w.Reload(now); err != nil {
		r.logger.Debug("🔫 %s не перезаряжается: %v", w.Name(), err)
		return err
	}
	r.logger.Debug("🔄 Перезарядка %s до %.2f", w.Name(), w.ReloadDeadline())
	return nil
}
