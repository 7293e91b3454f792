// Package coord converts positions and orientations from the source engine's
// axis convention (Y up) to the target convention (Z up).
//
// Target X = source X, target Y = −source Z, target Z = source Y: a 90°
// rotation about X. Every decoded position and orientation must pass through
// this package so skeleton and mesh data stay in the same space.
package coord

import "jmxv-importer/internal/mathutil"

// Basis is the source→target basis change, row-major.
var Basis = mathutil.Mat3{
	1, 0, 0,
	0, 0, -1,
	0, 1, 0,
}

// basisInv is the transpose of Basis (it is orthonormal).
var basisInv = Basis.Transpose()

// Position converts a source-space point.
func Position(v mathutil.Vec3) mathutil.Vec3 {
	return Basis.MulVec3(v)
}

// PositionInverse converts a target-space point back to source space.
func PositionInverse(v mathutil.Vec3) mathutil.Vec3 {
	return basisInv.MulVec3(v)
}

// Orientation converts a source-space rotation by similarity:
// B · R(q) · B⁻¹, returned as a unit quaternion.
func Orientation(q mathutil.Quat) mathutil.Quat {
	return conjugate(Basis, basisInv, q)
}

// OrientationInverse converts a target-space rotation back to source space.
func OrientationInverse(q mathutil.Quat) mathutil.Quat {
	return conjugate(basisInv, Basis, q)
}

func conjugate(b, bInv mathutil.Mat3, q mathutil.Quat) mathutil.Quat {
	m := mathutil.QuatToMat3(q.Normalize())
	return mathutil.Mat3ToQuat(mathutil.Mat3Mul(mathutil.Mat3Mul(b, m), bInv)).Normalize()
}

// Position32 converts a float32 triple straight from a container.
func Position32(v [3]float32) mathutil.Vec3 {
	return Position(mathutil.Vec3From32(v))
}

// Orientation32 converts a float32 quaternion (x, y, z, w) straight from a container.
func Orientation32(q [4]float32) mathutil.Quat {
	return Orientation(mathutil.QuatFrom32(q))
}
