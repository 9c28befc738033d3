package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 представляет трехмерный вектор с плавающими координатами.
// Ось Y направлена вверх, плоскость земли XZ.
type Vec3 struct {
	X float64 `json:"x" msgpack:"x" yaml:"x"`
	Y float64 `json:"y" msgpack:"y" yaml:"y"`
	Z float64 `json:"z" msgpack:"z" yaml:"z"`
}

var (
	Zero = Vec3{}
	Up   = Vec3{Y: 1}
	// Forward направление взгляда камеры без поворота
	Forward = Vec3{Z: -1}
)

// New создает вектор
func New(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// FromMgl преобразует вектор mathgl
func FromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Mgl возвращает вектор в представлении mathgl
func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3) Mul(scalar float64) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Div делит вектор на скаляр
func (v Vec3) Div(scalar float64) Vec3 {
	return Vec3{X: v.X / scalar, Y: v.Y / scalar, Z: v.Z / scalar}
}

// Neg возвращает противоположный вектор
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot скалярное произведение
func (v Vec3) Dot(other Vec3) float64 {
	return v.Mgl().Dot(other.Mgl())
}

// Cross векторное произведение
func (v Vec3) Cross(other Vec3) Vec3 {
	return FromMgl(v.Mgl().Cross(other.Mgl()))
}

// Length возвращает длину вектора
func (v Vec3) Length() float64 {
	return v.Mgl().Len()
}

// LengthSq возвращает квадрат длины
func (v Vec3) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalized возвращает нормализованный вектор. Нулевой вектор остаётся нулевым.
func (v Vec3) Normalized() Vec3 {
	if v.LengthSq() == 0 {
		return Zero
	}
	return FromMgl(v.Mgl().Normalize())
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Length()
}

// DistanceXZ расстояние в плоскости земли
func (v Vec3) DistanceXZ(other Vec3) float64 {
	return v.XZ().DistanceTo(other.XZ())
}

// Equals проверяет равенство векторов с допуском eps
func (v Vec3) Equals(other Vec3, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps &&
		math.Abs(v.Y-other.Y) <= eps &&
		math.Abs(v.Z-other.Z) <= eps
}

// WithY возвращает копию с заменённой координатой Y
func (v Vec3) WithY(y float64) Vec3 {
	v.Y = y
	return v
}

// Component возвращает координату по индексу оси (0 - X, 1 - Y, 2 - Z)
func (v Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// SetComponent возвращает копию с заменённой координатой по индексу оси
func (v Vec3) SetComponent(axis int, value float64) Vec3 {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// Reflect отражает вектор относительно нормали n (n должна быть единичной)
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Direction возвращает единичный вектор направления взгляда для углов yaw/pitch.
// Порядок поворотов YXZ, базовое направление (0,0,-1).
func Direction(yaw, pitch float64) Vec3 {
	q := mgl64.AnglesToQuat(yaw, pitch, 0, mgl64.YXZ)
	return FromMgl(q.Rotate(Forward.Mgl()))
}

// RotateY поворачивает вектор вокруг оси Y на угол yaw
func (v Vec3) RotateY(yaw float64) Vec3 {
	q := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
	return FromMgl(q.Rotate(v.Mgl()))
}

// XZ проекция на плоскость земли
func (v Vec3) XZ() Vec2 {
	return Vec2{X: v.X, Y: v.Z}
}
