package coord

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"jmxv-importer/internal/mathutil"
)

func TestPositionAxes(t *testing.T) {
	assert.Equal(t, mathutil.Vec3{1, -3, 2}, Position(mathutil.Vec3{1, 2, 3}))
}

func TestPositionInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := mathutil.Vec3{rng.NormFloat64() * 50, rng.NormFloat64() * 50, rng.NormFloat64() * 50}
		back := PositionInverse(Position(v))
		for k := 0; k < 3; k++ {
			assert.InDelta(t, v[k], back[k], 1e-9)
		}
	}
}

func TestOrientationInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	probe := mathutil.Vec3{0.2, 1.5, -0.7}
	for i := 0; i < 100; i++ {
		q := mathutil.Quat{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize()
		back := OrientationInverse(Orientation(q))
		want := q.Rotate(probe)
		got := back.Rotate(probe)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, want[k], got[k], 1e-9)
		}
	}
}

// A rotated point converted to target space equals the converted point
// rotated by the converted orientation.
func TestOrientationConsistentWithPosition(t *testing.T) {
	q := mathutil.Quat{0, math.Sin(0.3), 0, math.Cos(0.3)}
	v := mathutil.Vec3{1, 2, 3}
	want := Position(q.Rotate(v))
	got := Orientation(q).Rotate(Position(v))
	for k := 0; k < 3; k++ {
		assert.InDelta(t, want[k], got[k], 1e-9)
	}
}
