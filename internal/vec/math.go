package vec

import (
	"fmt"
	"math"
	"math/rand"
)

// Clamp ограничивает значение отрезком [min, max]
func Clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// Lerp линейная интерполяция
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RandomRange случайное число в [min, max)
func RandomRange(rng *rand.Rand, min, max float64) float64 {
	return rng.Float64()*(max-min) + min
}

// RandomPosition случайная точка на земле (y = 0) внутри прямоугольника
func RandomPosition(rng *rand.Rand, minX, maxX, minZ, maxZ float64) Vec3 {
	return Vec3{
		X: RandomRange(rng, minX, maxX),
		Y: 0,
		Z: RandomRange(rng, minZ, maxZ),
	}
}

// FormatTime форматирует секунды как MM:SS
func FormatTime(seconds float64) string {
	minutes := int(seconds) / 60
	secs := int(math.Mod(seconds, 60))
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
