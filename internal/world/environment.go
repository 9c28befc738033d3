package world

import (
	"math"

	"github.com/annel0/deadcity/internal/vec"
)

const (
	// dayCycleRate доля суток за секунду при TimeScale = 1
	dayCycleRate = 0.01
	noon         = 0.5
	sunRadius    = 1000.0
	sunLift      = 200.0

	WeatherClear = "clear"
	WeatherRain  = "rain"
	WeatherFog   = "fog"
)

// Environment время суток и погода. Погода пока не влияет на симуляцию.
type Environment struct {
	// TimeOfDay 0 полночь, 0.5 полдень
	TimeOfDay float64
	Weather   string
	TimeScale float64
}

// NewEnvironment начинает с полудня и ясной погоды
func NewEnvironment(timeScale float64) *Environment {
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Environment{TimeOfDay: noon, Weather: WeatherClear, TimeScale: timeScale}
}

// Update двигает время суток по кругу
func (e *Environment) Update(dt float64) {
	e.TimeOfDay += dt * e.TimeScale * dayCycleRate
	if e.TimeOfDay >= 1 {
		e.TimeOfDay = math.Mod(e.TimeOfDay, 1)
	}
}

// Reset полдень, ясно
func (e *Environment) Reset() {
	e.TimeOfDay = noon
	e.Weather = WeatherClear
}

// SunPosition положение солнца для освещения сцены
func (e *Environment) SunPosition() vec.Vec3 {
	angle := e.TimeOfDay * math.Pi * 2
	height := math.Sin(angle) * sunRadius
	horizontal := math.Cos(angle) * sunRadius
	return vec.New(horizontal, height+sunLift, -horizontal)
}

// IsNight солнце под горизонтом
func (e *Environment) IsNight() bool {
	return math.Sin(e.TimeOfDay*math.Pi*2) < 0
}

// Light яркость окружения между night и day по высоте солнца
func (e *Environment) Light(day, night float64) float64 {
	height := math.Sin(e.TimeOfDay * math.Pi * 2)
	if height > 0 {
		return vec.Lerp(day*0.5, day, height)
	}
	return vec.Lerp(night, day*0.5, height+1)
}
