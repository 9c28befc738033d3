package physics

import (
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
)

// ShapeKind вид формы коллайдера
type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeBox
	ShapeSphere
)

// String возвращает строковое представление формы
func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	default:
		return "none"
	}
}

// Shape форма коллайдера: бокс с полуразмерами или сфера с радиусом.
// Центр хранится отдельно (у статического коллайдера или тела).
type Shape struct {
	Kind        ShapeKind
	HalfExtents vec.Vec3
	Radius      float64
}

// NewBox создаёт бокс по полному размеру
func NewBox(size vec.Vec3) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: size.Mul(0.5)}
}

// NewSphere создаёт сферу
func NewSphere(radius float64) Shape {
	return Shape{Kind: ShapeSphere, Radius: radius}
}

// Size полный размер ограничивающего бокса
func (s Shape) Size() vec.Vec3 {
	return s.Extents().Mul(2)
}

// Extents полуразмеры ограничивающего бокса
func (s Shape) Extents() vec.Vec3 {
	if s.Kind == ShapeSphere {
		return vec.New(s.Radius, s.Radius, s.Radius)
	}
	return s.HalfExtents
}

// BottomOffset расстояние от центра до нижней точки формы
func (s Shape) BottomOffset() float64 {
	return s.Extents().Y
}

// Bounds возвращает углы ограничивающего бокса формы с центром center
func (s Shape) Bounds(center vec.Vec3) (min, max vec.Vec3) {
	e := s.Extents()
	return center.Sub(e), center.Add(e)
}

// Tag непрозрачные метаданные коллайдера: вид владельца и обратная ссылка на него
type Tag struct {
	Kind entity.Kind
	ID   entity.ID
}

// ColliderHandle идентификатор статического коллайдера в реестре
type ColliderHandle uint32

// StaticCollider неподвижный коллайдер, регистрируется один раз при постройке мира
type StaticCollider struct {
	Handle   ColliderHandle
	Shape    Shape
	Position vec.Vec3
	Tag      Tag
}
