package world

import (
	"github.com/aquilax/go-perlin"
)

// Noise генератор шума Перлина со значениями от 0 до 1
type Noise struct {
	p    *perlin.Perlin
	seed int64
}

// NewNoise создаёт генератор шума с указанным сидом
func NewNoise(seed int64) *Noise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Noise{p: perlin.NewPerlin(alpha, beta, n, seed), seed: seed}
}

// At значение шума в точке (x, z), от 0 до 1
func (n *Noise) At(x, z float64) float64 {
	v := (n.p.Noise2D(x, z) + 1.0) / 2.0
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Seed сид генератора
func (n *Noise) Seed() int64 { return n.seed }
