package vec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Basics(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, 6, 3)

	assert.Equal(t, New(5, 8, 6), a.Add(b))
	assert.Equal(t, New(-3, -4, 0), a.Sub(b))
	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-9, "Расстояние 3-4-5")
	assert.InDelta(t, 3.0, a.DistanceXZ(b), 1e-9, "Y не учитывается")
	assert.Equal(t, Zero, Zero.Normalized(), "Нулевой вектор не должен давать NaN")
	assert.InDelta(t, 1.0, b.Normalized().Length(), 1e-9)
	assert.Equal(t, New(0, 0, 1), New(1, 0, 0).Cross(New(0, 1, 0)))
}

func TestReflect(t *testing.T) {
	v := New(1, -2, 0)
	r := v.Reflect(Up)
	assert.True(t, r.Equals(New(1, 2, 0), 1e-9))
}

func TestDirection(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		want       Vec3
	}{
		{"вперёд", 0, 0, New(0, 0, -1)},
		{"поворот налево", math.Pi / 2, 0, New(-1, 0, 0)},
		{"взгляд вверх", 0, math.Pi / 2, New(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Direction(tt.yaw, tt.pitch)
			assert.True(t, got.Equals(tt.want, 1e-9), "получено %+v", got)
		})
	}
}

func TestRotateY(t *testing.T) {
	got := New(0, 0, 1).RotateY(math.Pi / 2)
	assert.True(t, got.Equals(New(1, 0, 0), 1e-9), "получено %+v", got)
}

func TestScalarHelpers(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(5, -1, 1))
	assert.Equal(t, -1.0, Clamp(-5, -1, 1))
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
	assert.Equal(t, "01:05", FormatTime(65))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		r := RandomRange(rng, 5, 15)
		assert.GreaterOrEqual(t, r, 5.0)
		assert.Less(t, r, 15.0)
		p := RandomPosition(rng, -2, 2, 10, 20)
		assert.Zero(t, p.Y)
		assert.True(t, p.XZ().InArea(-2, 2, 10, 20))
	}
}

func TestVec2Area(t *testing.T) {
	p := Vec2{X: 1, Y: 1}
	assert.True(t, p.InArea(0, 1, 0, 1))
	assert.False(t, p.InCircle(Vec2{}, math.Sqrt2))
	assert.True(t, p.InCircle(Vec2{}, 1.5))
	assert.InDelta(t, 5.0, Vec2{X: 3, Y: 4}.DistanceTo(Vec2{}), 1e-9)
}
