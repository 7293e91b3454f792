package mathutil

// Mat3 is a row-major 3×3 matrix.
type Mat3 [9]float64

// Mat3Mul returns a·b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		row := a[r*3 : r*3+3]
		for c := 0; c < 3; c++ {
			m[r*3+c] = row[0]*b[c] + row[1]*b[3+c] + row[2]*b[6+c]
		}
	}
	return m
}

func (m Mat3) MulVec3(v Vec3) Vec3 {
	var out Vec3
	for r := 0; r < 3; r++ {
		out[r] = m[r*3]*v[0] + m[r*3+1]*v[1] + m[r*3+2]*v[2]
	}
	return out
}

// Transpose is the inverse of an orthonormal m.
func (m Mat3) Transpose() Mat3 {
	var t Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			t[c*3+r] = m[r*3+c]
		}
	}
	return t
}
