// Package world генерирует раскладку города и регистрирует её
// статические коллайдеры в физическом движке. Также ведёт смену дня и ночи.
package world

import (
	"fmt"
	"math"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
)

// areaCells число областей карты по каждой оси (для достижения исследователя)
const areaCells = 5

// World раскладка мира вместе с окружением
type World struct {
	layout     *Layout
	env        *Environment
	handles    []physics.ColliderHandle
	registered bool
	logger     *logging.Logger
}

// New оборачивает готовую раскладку
func New(layout *Layout, timeScale float64) *World {
	return &World{
		layout: layout,
		env:    NewEnvironment(timeScale),
		logger: logging.GetComponentLogger("world"),
	}
}

func (w *World) Layout() *Layout           { return w.layout }
func (w *World) Environment() *Environment { return w.env }

// Register добавляет здания (боксы) и деревья (сферы) в реестр статики.
// Повторный вызов ничего не делает.
func (w *World) Register(engine *physics.Engine) []physics.ColliderHandle {
	if w.registered {
		return w.handles
	}
	for i, b := range w.layout.Buildings {
		h := engine.AddBoxCollider(b.Center, b.Size, physics.Tag{Kind: entity.KindBuilding, ID: entity.ID(i + 1)})
		w.handles = append(w.handles, h)
	}
	for i, t := range w.layout.Trees {
		center := t.Position.WithY(t.Position.Y + t.Radius)
		h := engine.AddSphereCollider(center, t.Radius, physics.Tag{Kind: entity.KindTree, ID: entity.ID(i + 1)})
		w.handles = append(w.handles, h)
	}
	w.registered = true

	w.logger.Info("🏙️ Мир зарегистрирован: %d зданий, %d деревьев, %d дорог",
		len(w.layout.Buildings), len(w.layout.Trees), len(w.layout.Roads))
	return w.handles
}

// Update продвигает время суток
func (w *World) Update(dt float64) {
	w.env.Update(dt)
}

// Reset возвращает полдень и ясную погоду
func (w *World) Reset() {
	w.env.Reset()
}

// NearestRoad ближайшая к точке дорога
func (w *World) NearestRoad(p vec.Vec3) (Road, bool) {
	best := math.Inf(1)
	var out Road
	for _, r := range w.layout.Roads {
		dx := math.Max(math.Abs(p.X-r.Center.X)-r.Size.X/2, 0)
		dz := math.Max(math.Abs(p.Z-r.Center.Z)-r.Size.Z/2, 0)
		if d := math.Hypot(dx, dz); d < best {
			best = d
			out = r
		}
	}
	return out, !math.IsInf(best, 1)
}

// AreaOf имя области карты, в которой находится точка.
// Карта делится на сетку 5x5, точки за краем попадают в крайние клетки.
func AreaOf(p vec.Vec3, worldSize float64) string {
	cell := func(v float64) int {
		c := int(math.Floor((v + worldSize/2) / worldSize * areaCells))
		if c < 0 {
			return 0
		}
		if c >= areaCells {
			return areaCells - 1
		}
		return c
	}
	return fmt.Sprintf("%d:%d", cell(p.X), cell(p.Z))
}
