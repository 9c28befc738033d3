package vec

import "math"

// Vec2 представляет 2D координаты в плоскости земли (X, Z мира)
type Vec2 struct {
	X, Y float64
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Length возвращает длину вектора
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	return v.Sub(other).Length()
}

// InArea проверяет попадание точки в прямоугольник (границы включены)
func (v Vec2) InArea(minX, maxX, minY, maxY float64) bool {
	return v.X >= minX && v.X <= maxX && v.Y >= minY && v.Y <= maxY
}

// InCircle проверяет попадание точки в круг (граница исключена)
func (v Vec2) InCircle(center Vec2, radius float64) bool {
	return v.DistanceTo(center) < radius
}
