package mathutil

import "math"

// Bounds is an axis-aligned box accumulated from points.
type Bounds struct {
	Min, Max Vec3
	n        int
}

// NewBounds returns an empty box.
func NewBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// Extend grows the box to contain p.
func (b *Bounds) Extend(p Vec3) {
	for k := 0; k < 3; k++ {
		b.Min[k] = math.Min(b.Min[k], p[k])
		b.Max[k] = math.Max(b.Max[k], p[k])
	}
	b.n++
}

// Empty reports whether no point was added.
func (b Bounds) Empty() bool { return b.n == 0 }

func (b Bounds) Size() Vec3 {
	if b.Empty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

func (b Bounds) Center() Vec3 {
	if b.Empty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}
