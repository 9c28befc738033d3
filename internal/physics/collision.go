package physics

import (
	"math"

	"github.com/annel0/deadcity/internal/vec"
)

// SphereSphereOverlap пересекаются ли две сферы. Касание не считается пересечением.
func SphereSphereOverlap(c1 vec.Vec3, r1 float64, c2 vec.Vec3, r2 float64) bool {
	return c1.DistanceTo(c2) < r1+r2
}

// ClosestPointOnBox ближайшая к p точка бокса (p зажимается в границы по каждой оси)
func ClosestPointOnBox(p, boxCenter, half vec.Vec3) vec.Vec3 {
	var closest vec.Vec3
	for axis := 0; axis < 3; axis++ {
		lo := boxCenter.Component(axis) - half.Component(axis)
		hi := boxCenter.Component(axis) + half.Component(axis)
		closest = closest.SetComponent(axis, math.Max(lo, math.Min(hi, p.Component(axis))))
	}
	return closest
}

// SphereBoxOverlap пересекаются ли сфера и бокс
func SphereBoxOverlap(c vec.Vec3, r float64, boxCenter, half vec.Vec3) bool {
	closest := ClosestPointOnBox(c, boxCenter, half)
	return closest.DistanceTo(c) < r
}

// BoxBoxOverlap проверка разделяющих осей: пересечение есть, только если интервалы
// перекрываются по всем трём осям. Касающиеся грани считаются пересечением.
func BoxBoxOverlap(c1, h1, c2, h2 vec.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		min1 := c1.Component(axis) - h1.Component(axis)
		max1 := c1.Component(axis) + h1.Component(axis)
		min2 := c2.Component(axis) - h2.Component(axis)
		max2 := c2.Component(axis) + h2.Component(axis)

		if max1 < min2 || min1 > max2 {
			return false
		}
	}
	return true
}

// ShapesOverlap проверяет пересечение двух форм с центрами pa и pb
func ShapesOverlap(a Shape, pa vec.Vec3, b Shape, pb vec.Vec3) bool {
	switch {
	case a.Kind == ShapeSphere && b.Kind == ShapeSphere:
		return SphereSphereOverlap(pa, a.Radius, pb, b.Radius)
	case a.Kind == ShapeSphere && b.Kind == ShapeBox:
		return SphereBoxOverlap(pa, a.Radius, pb, b.HalfExtents)
	case a.Kind == ShapeBox && b.Kind == ShapeSphere:
		return SphereBoxOverlap(pb, b.Radius, pa, a.HalfExtents)
	case a.Kind == ShapeBox && b.Kind == ShapeBox:
		return BoxBoxOverlap(pa, a.HalfExtents, pb, b.HalfExtents)
	}
	return false
}

// PenetrationSphereSphere вектор, на который нужно сдвинуть первую сферу,
// чтобы разделить сферы. Направление от центра второй к центру первой.
func PenetrationSphereSphere(c1 vec.Vec3, r1 float64, c2 vec.Vec3, r2 float64) vec.Vec3 {
	distance := c1.DistanceTo(c2)
	penetration := r1 + r2 - distance
	if penetration <= 0 {
		return vec.Zero
	}
	direction := c1.Sub(c2).Normalized()
	if direction == vec.Zero {
		// совпадающие центры: выталкиваем вверх
		direction = vec.Up
	}
	return direction.Mul(penetration)
}

// PenetrationSphereBox вектор выталкивания сферы из бокса:
// направление от ближайшей точки бокса к центру сферы, длина radius - distance.
// Если центр сферы внутри бокса, используется ось наименьшего проникновения.
func PenetrationSphereBox(c vec.Vec3, r float64, boxCenter, half vec.Vec3) vec.Vec3 {
	closest := ClosestPointOnBox(c, boxCenter, half)
	distance := closest.DistanceTo(c)
	if distance == 0 {
		return leastPenetration(c, vec.New(r, r, r), boxCenter, half)
	}
	penetration := r - distance
	if penetration <= 0 {
		return vec.Zero
	}
	return c.Sub(closest).Normalized().Mul(penetration)
}

// PenetrationBoxBox вектор выталкивания первого бокса из второго.
// Сдвиг по оси наименьшего перекрытия (минимальный вектор переноса).
func PenetrationBoxBox(c1, h1, c2, h2 vec.Vec3) vec.Vec3 {
	return leastPenetration(c1, h1, c2, h2)
}

func leastPenetration(c1, h1, c2, h2 vec.Vec3) vec.Vec3 {
	bestAxis := -1
	best := math.Inf(1)
	sign := 1.0
	for axis := 0; axis < 3; axis++ {
		d := c1.Component(axis) - c2.Component(axis)
		overlap := h1.Component(axis) + h2.Component(axis) - math.Abs(d)
		if overlap <= 0 {
			return vec.Zero
		}
		if overlap < best {
			best = overlap
			bestAxis = axis
			sign = 1
			if d < 0 {
				sign = -1
			}
		}
	}
	return vec.Zero.SetComponent(bestAxis, sign*best)
}

// Penetration вектор, на который нужно сдвинуть форму a, чтобы вывести её из b
func Penetration(a Shape, pa vec.Vec3, b Shape, pb vec.Vec3) vec.Vec3 {
	switch {
	case a.Kind == ShapeSphere && b.Kind == ShapeSphere:
		return PenetrationSphereSphere(pa, a.Radius, pb, b.Radius)
	case a.Kind == ShapeSphere && b.Kind == ShapeBox:
		return PenetrationSphereBox(pa, a.Radius, pb, b.HalfExtents)
	case a.Kind == ShapeBox && b.Kind == ShapeSphere:
		return PenetrationSphereBox(pb, b.Radius, pa, a.HalfExtents).Neg()
	case a.Kind == ShapeBox && b.Kind == ShapeBox:
		return PenetrationBoxBox(pa, a.HalfExtents, pb, b.HalfExtents)
	}
	return vec.Zero
}
