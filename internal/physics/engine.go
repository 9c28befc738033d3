package physics

import (
	"math"

	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/vec"
)

// Коэффициенты отклика на столкновения
const (
	// BodyRestitution упругость столкновения двух тел
	BodyRestitution = 0.3
	// StaticDamping затухание скорости после отражения от статического коллайдера
	StaticDamping = 0.5
)

// Config параметры физического мира
type Config struct {
	Gravity float64
	// WorldSize сторона квадрата мира, центр в начале координат
	WorldSize float64
}

// DefaultConfig параметры по умолчанию
func DefaultConfig() Config {
	return Config{Gravity: 9.8, WorldSize: 2000}
}

// Contact результат разрешённого столкновения.
// Для столкновения со статикой B == nil и заполнен Static.
type Contact struct {
	A      *Body
	B      *Body
	Static *StaticCollider
	// Normal направлен от второго участника к A
	Normal vec.Vec3
	Depth  float64
}

// ContactListener получает уведомления о столкновениях
type ContactListener func(c Contact)

// Engine движок столкновений без широкой фазы: попарная проверка
// тело-статика O(n*m) и тело-тело O(n^2).
// Реестр статических коллайдеров принадлежит движку.
type Engine struct {
	cfg        Config
	statics    []StaticCollider
	bodies     []*Body
	nextHandle ColliderHandle
	listeners  []ContactListener
	logger     *logging.Logger
}

// NewEngine создаёт физический движок
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:        cfg,
		nextHandle: 1,
		logger:     logging.GetPhysicsLogger(),
	}
}

// Config возвращает параметры движка
func (e *Engine) Config() Config {
	return e.cfg
}

// AddStaticCollider регистрирует неподвижный коллайдер
func (e *Engine) AddStaticCollider(shape Shape, position vec.Vec3, tag Tag) ColliderHandle {
	h := e.nextHandle
	e.nextHandle++
	e.statics = append(e.statics, StaticCollider{
		Handle:   h,
		Shape:    shape,
		Position: position,
		Tag:      tag,
	})
	return h
}

// AddBoxCollider регистрирует статический бокс по полному размеру
func (e *Engine) AddBoxCollider(position, size vec.Vec3, tag Tag) ColliderHandle {
	return e.AddStaticCollider(NewBox(size), position, tag)
}

// AddSphereCollider регистрирует статическую сферу
func (e *Engine) AddSphereCollider(position vec.Vec3, radius float64, tag Tag) ColliderHandle {
	return e.AddStaticCollider(NewSphere(radius), position, tag)
}

// StaticColliders возвращает реестр статических коллайдеров (только чтение)
func (e *Engine) StaticColliders() []StaticCollider {
	return e.statics
}

// Static возвращает коллайдер по дескриптору
func (e *Engine) Static(h ColliderHandle) (StaticCollider, bool) {
	// дескрипторы выдаются по порядку, поэтому индекс = h - 1
	idx := int(h) - 1
	if idx < 0 || idx >= len(e.statics) || e.statics[idx].Handle != h {
		return StaticCollider{}, false
	}
	return e.statics[idx], true
}

// ClearStatics очищает реестр статики (пересборка мира)
func (e *Engine) ClearStatics() {
	e.logger.Debug("Реестр статики очищен (%d коллайдеров)", len(e.statics))
	e.statics = nil
	e.nextHandle = 1
}

// AddBody добавляет тело в симуляцию
func (e *Engine) AddBody(b *Body) *Body {
	e.bodies = append(e.bodies, b)
	return b
}

// RemoveBody удаляет тело. Возвращает false, если тела не было.
func (e *Engine) RemoveBody(b *Body) bool {
	for i, other := range e.bodies {
		if other == b {
			e.bodies = append(e.bodies[:i], e.bodies[i+1:]...)
			return true
		}
	}
	return false
}

// Bodies возвращает список тел
func (e *Engine) Bodies() []*Body {
	return e.bodies
}

// OnContact подписывает слушателя на столкновения
func (e *Engine) OnContact(l ContactListener) {
	e.listeners = append(e.listeners, l)
}

// Update выполняет полный шаг физики: интегрирование, столкновения, ограничение мира
func (e *Engine) Update(dt float64) []Contact {
	e.Step(dt)
	contacts := e.CheckCollisions()
	e.ClampToWorld()
	return contacts
}

// Step полунеявный метод Эйлера для всех тел с массой > 0:
// гравитация, v += F/m*dt, p += v*dt, момент в угловую скорость,
// затем аккумуляторы сил обнуляются.
func (e *Engine) Step(dt float64) {
	for _, b := range e.bodies {
		if b.IsStatic() || b.Inert {
			continue
		}

		b.ApplyForce(vec.New(0, -e.cfg.Gravity*b.Mass, 0))

		acceleration := b.force.Div(b.Mass)
		b.Velocity = b.Velocity.Add(acceleration.Mul(dt))
		b.Position = b.Position.Add(b.Velocity.Mul(dt))

		b.AngularVelocity = b.AngularVelocity.Add(b.torque.Mul(dt))
		b.Rotation = b.Rotation.Add(b.AngularVelocity.Mul(dt))

		b.resetAccumulators()
	}
}

// CheckCollisions проверяет все пары тело-статика и тело-тело и разрешает проникновения
func (e *Engine) CheckCollisions() []Contact {
	var contacts []Contact

	for _, b := range e.bodies {
		if b.Inert || b.Shape.Kind == ShapeNone {
			continue
		}
		for i := range e.statics {
			s := &e.statics[i]
			if !ShapesOverlap(b.Shape, b.Position, s.Shape, s.Position) {
				continue
			}
			if c, ok := e.resolveStatic(b, s); ok {
				contacts = append(contacts, c)
			}
		}
	}

	for i := 0; i < len(e.bodies); i++ {
		a := e.bodies[i]
		if a.Inert || a.Shape.Kind == ShapeNone {
			continue
		}
		for j := i + 1; j < len(e.bodies); j++ {
			b := e.bodies[j]
			if b.Inert || b.Shape.Kind == ShapeNone {
				continue
			}
			if !ShapesOverlap(a.Shape, a.Position, b.Shape, b.Position) {
				continue
			}
			if c, ok := e.resolveBodies(a, b); ok {
				contacts = append(contacts, c)
			}
		}
	}

	for _, c := range contacts {
		for _, l := range e.listeners {
			l(c)
		}
	}
	return contacts
}

// resolveStatic выталкивает тело из статики на полный вектор проникновения
// и отражает скорость относительно нормали с затуханием.
func (e *Engine) resolveStatic(b *Body, s *StaticCollider) (Contact, bool) {
	if b.IsStatic() {
		return Contact{}, false
	}

	penetration := Penetration(b.Shape, b.Position, s.Shape, s.Position)
	depth := penetration.Length()
	if depth == 0 {
		return Contact{}, false
	}

	b.Position = b.Position.Add(penetration)
	normal := penetration.Normalized()
	b.Velocity = b.Velocity.Reflect(normal).Mul(StaticDamping)
	e.logger.Trace("Столкновение %s#%d со статикой %s, глубина %.3f", b.Tag.Kind, b.Tag.ID, s.Tag.Kind, depth)

	return Contact{A: b, Static: s, Normal: normal, Depth: depth}, true
}

// resolveBodies разводит два тела пропорционально массам и меняет
// нормальные составляющие скоростей. Касательная составляющая не меняется.
func (e *Engine) resolveBodies(a, b *Body) (Contact, bool) {
	if a.IsStatic() && b.IsStatic() {
		return Contact{}, false
	}

	penetration := Penetration(a.Shape, a.Position, b.Shape, b.Position)
	depth := penetration.Length()
	if depth == 0 {
		return Contact{}, false
	}

	totalMass := a.Mass + b.Mass
	switch {
	case a.IsStatic():
		b.Position = b.Position.Sub(penetration)
	case b.IsStatic():
		a.Position = a.Position.Add(penetration)
	default:
		a.Position = a.Position.Add(penetration.Mul(b.Mass / totalMass))
		b.Position = b.Position.Sub(penetration.Mul(a.Mass / totalMass))
	}

	normal := penetration.Normalized()
	v1 := a.Velocity.Dot(normal)
	v2 := b.Velocity.Dot(normal)

	var v1Final, v2Final float64
	switch {
	case a.IsStatic():
		v2Final = -v2 * BodyRestitution
	case b.IsStatic():
		v1Final = -v1 * BodyRestitution
	default:
		v1Final = (v1*(a.Mass-b.Mass) + 2*b.Mass*v2) / totalMass * BodyRestitution
		v2Final = (v2*(b.Mass-a.Mass) + 2*a.Mass*v1) / totalMass * BodyRestitution
	}

	if !a.IsStatic() {
		a.Velocity = a.Velocity.Add(normal.Mul(v1Final - v1))
	}
	if !b.IsStatic() {
		b.Velocity = b.Velocity.Add(normal.Mul(v2Final - v2))
	}

	return Contact{A: a, B: b, Normal: normal, Depth: depth}, true
}

// ClampToWorld молча возвращает тела в границы мира и на уровень земли.
// Выход за границы не считается ошибкой. Кинематические тела не трогаются.
func (e *Engine) ClampToWorld() {
	half := e.cfg.WorldSize / 2
	for _, b := range e.bodies {
		if b.Inert || b.IsStatic() {
			continue
		}
		e.clampBody(b, half)
	}
}

func (e *Engine) clampBody(b *Body, half float64) {
	if half > 0 {
		b.Position.X = vec.Clamp(b.Position.X, -half, half)
		b.Position.Z = vec.Clamp(b.Position.Z, -half, half)
	}

	floor := b.Shape.BottomOffset()
	b.Grounded = false
	if b.Position.Y <= floor {
		b.Position.Y = floor
		if b.Velocity.Y < 0 {
			b.Velocity.Y = 0
		}
		b.Grounded = true
	}
}

// InBounds проверяет, лежит ли точка внутри квадрата мира
func (e *Engine) InBounds(p vec.Vec3) bool {
	half := e.cfg.WorldSize / 2
	return math.Abs(p.X) <= half && math.Abs(p.Z) <= half
}
