package physics

import (
	"math"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
)

// Hit результат пересечения луча
type Hit struct {
	Point    vec.Vec3
	Distance float64
	// Collider заполнен при попадании в статику, Body при попадании в тело
	Collider *StaticCollider
	Body     *Body
	Tag      Tag
}

// RaycastOptions расширяет луч за пределы статического реестра
type RaycastOptions struct {
	// IncludeBodies проверять также динамические тела
	IncludeBodies bool
	// Exclude владелец луча, его тело пропускается
	Exclude entity.ID
	// Filter если задан, учитываются только цели, для которых он вернул true
	Filter func(Tag) bool
}

// OnlyKinds фильтр по видам целей
func OnlyKinds(kinds ...entity.Kind) func(Tag) bool {
	return func(t Tag) bool {
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}
		return false
	}
}

// Raycast ближайшее пересечение луча со статическими коллайдерами,
// строго ближе maxDistance. maxDistance <= 0 означает без ограничения.
func (e *Engine) Raycast(origin, direction vec.Vec3, maxDistance float64) (Hit, bool) {
	return e.RaycastWith(origin, direction, maxDistance, RaycastOptions{})
}

// RaycastWith луч с дополнительными параметрами
func (e *Engine) RaycastWith(origin, direction vec.Vec3, maxDistance float64, opts RaycastOptions) (Hit, bool) {
	dir := direction.Normalized()
	if dir == vec.Zero {
		return Hit{}, false
	}
	if maxDistance <= 0 {
		maxDistance = math.Inf(1)
	}

	var best Hit
	found := false
	closest := maxDistance

	for i := range e.statics {
		s := &e.statics[i]
		if opts.Filter != nil && !opts.Filter(s.Tag) {
			continue
		}
		t, ok := IntersectRay(origin, dir, s.Shape, s.Position)
		if !ok || t >= closest {
			continue
		}
		closest = t
		found = true
		best = Hit{Point: origin.Add(dir.Mul(t)), Distance: t, Collider: s, Tag: s.Tag}
	}

	if opts.IncludeBodies {
		for _, b := range e.bodies {
			if b.Inert || b.Shape.Kind == ShapeNone {
				continue
			}
			if opts.Exclude != entity.None && b.Tag.ID == opts.Exclude {
				continue
			}
			if opts.Filter != nil && !opts.Filter(b.Tag) {
				continue
			}
			t, ok := IntersectRay(origin, dir, b.Shape, b.Position)
			if !ok || t >= closest {
				continue
			}
			closest = t
			found = true
			best = Hit{Point: origin.Add(dir.Mul(t)), Distance: t, Body: b, Tag: b.Tag}
		}
	}

	return best, found
}

// IntersectRay расстояние вдоль единичного луча до формы.
// Если начало луча внутри формы, возвращается точка выхода.
func IntersectRay(origin, dir vec.Vec3, shape Shape, center vec.Vec3) (float64, bool) {
	switch shape.Kind {
	case ShapeBox:
		min, max := shape.Bounds(center)
		return intersectBox(origin, dir, min, max)
	case ShapeSphere:
		return intersectSphere(origin, dir, center, shape.Radius)
	}
	return 0, false
}

// intersectBox метод пластин
func intersectBox(origin, dir, min, max vec.Vec3) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := origin.Component(axis)
		d := dir.Component(axis)
		lo := min.Component(axis)
		hi := max.Component(axis)

		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false
	}
	if tmin >= 0 {
		return tmin, true
	}
	return tmax, true
}

// intersectSphere решение квадратного уравнения через проекцию центра на луч
func intersectSphere(origin, dir, center vec.Vec3, radius float64) (float64, bool) {
	toCenter := center.Sub(origin)
	tca := toCenter.Dot(dir)
	d2 := toCenter.Dot(toCenter) - tca*tca
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}

	thc := math.Sqrt(r2 - d2)
	t0 := tca - thc
	t1 := tca + thc

	if t1 < 0 {
		return 0, false
	}
	if t0 < 0 {
		return t1, true
	}
	return t0, true
}
