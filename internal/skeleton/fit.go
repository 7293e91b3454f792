package skeleton

import "jmxv-importer/internal/mathutil"

// minFitDimension is the smallest extent either box may have for fitting.
const minFitDimension = 0.001

// Fit is a uniform scale followed by a translation.
type Fit struct {
	Scale  float64       `json:"scale"`
	Offset mathutil.Vec3 `json:"offset"`
}

func (f Fit) Apply(p mathutil.Vec3) mathutil.Vec3 {
	return p.Scale(f.Scale).Add(f.Offset)
}

// FitToBounds computes the transform that makes the skeleton's largest
// dimension match the mesh's and centers it on the mesh. It reports false
// when either box is degenerate.
func FitToBounds(sk *Skeleton, mesh mathutil.Bounds) (Fit, bool) {
	arm := sk.Bounds()
	if arm.Empty() || mesh.Empty() {
		return Fit{}, false
	}
	armDim := arm.Size().MaxComponent()
	meshDim := mesh.Size().MaxComponent()
	if armDim <= minFitDimension || meshDim <= minFitDimension {
		return Fit{}, false
	}
	scale := meshDim / armDim
	return Fit{
		Scale:  scale,
		Offset: mesh.Center().Sub(arm.Center().Scale(scale)),
	}, true
}

// Apply moves every head and tail of sk in place.
func (sk *Skeleton) Apply(f Fit) {
	for i := range sk.Bones {
		sk.Bones[i].Head = f.Apply(sk.Bones[i].Head)
		sk.Bones[i].Tail = f.Apply(sk.Bones[i].Tail)
	}
}
