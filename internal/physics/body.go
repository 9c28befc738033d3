package physics

import (
	"github.com/annel0/deadcity/internal/vec"
)

// Body динамическое тело. Mass == 0 означает кинематическое тело:
// оно не подвержено гравитации и никогда не сдвигается при столкновениях.
type Body struct {
	Mass            float64
	Shape           Shape
	Position        vec.Vec3
	Velocity        vec.Vec3
	AngularVelocity vec.Vec3
	Rotation        vec.Vec3
	Tag             Tag

	// Inert тело не интегрируется и не участвует в столкновениях
	// (труп зомби, игрок внутри машины)
	Inert bool
	// Grounded тело стоит на земле после последнего тика
	Grounded bool

	force  vec.Vec3
	torque vec.Vec3
}

// NewBody создаёт тело
func NewBody(mass float64, shape Shape, position vec.Vec3, tag Tag) *Body {
	return &Body{
		Mass:     mass,
		Shape:    shape,
		Position: position,
		Tag:      tag,
	}
}

// IsStatic true для тел с нулевой массой
func (b *Body) IsStatic() bool {
	return b.Mass <= 0
}

// ApplyForce добавляет силу в аккумулятор текущего шага
func (b *Body) ApplyForce(force vec.Vec3) {
	b.force = b.force.Add(force)
}

// ApplyForceAt добавляет силу, приложенную в точке, вместе с моментом
func (b *Body) ApplyForceAt(force, point vec.Vec3) {
	b.force = b.force.Add(force)
	relative := point.Sub(b.Position)
	b.torque = b.torque.Add(relative.Cross(force))
}

// Force накопленная сила
func (b *Body) Force() vec.Vec3 { return b.force }

// Torque накопленный момент
func (b *Body) Torque() vec.Vec3 { return b.torque }

// Bottom высота нижней точки тела
func (b *Body) Bottom() float64 {
	return b.Position.Y - b.Shape.BottomOffset()
}

// Feet точка опоры тела на земле
func (b *Body) Feet() vec.Vec3 {
	return b.Position.WithY(b.Bottom())
}

// PlaceFeet ставит тело так, чтобы нижняя точка оказалась в p
func (b *Body) PlaceFeet(p vec.Vec3) {
	b.Position = p.WithY(p.Y + b.Shape.BottomOffset())
}

// Stop обнуляет скорости и накопленные силы
func (b *Body) Stop() {
	b.Velocity = vec.Zero
	b.AngularVelocity = vec.Zero
	b.force = vec.Zero
	b.torque = vec.Zero
}

func (b *Body) resetAccumulators() {
	b.force = vec.Zero
	b.torque = vec.Zero
}
