package bms

import "jmxv-importer/internal/mathutil"

// EmptySlot marks an unused bone-index slot.
const EmptySlot = 255

// Vertex flag bits that append extra per-vertex data.
const (
	FlagSecondaryUV = 0x400 // 8 bytes
	FlagMorph       = 0x800 // 32 bytes
)

// Skin is one vertex's four bone slots. Weights are Raw normalized by their
// sum, or all zero when the sum is zero.
type Skin struct {
	Bones   [4]uint8
	Raw     [4]uint8
	Weights [4]float64
}

// Sum returns the total normalized weight across all slots.
func (s Skin) Sum() float64 {
	return s.Weights[0] + s.Weights[1] + s.Weights[2] + s.Weights[3]
}

// Mesh is a decoded mesh container. Positions are in target space and UVs
// already have V flipped.
type Mesh struct {
	Signature    string
	Header       [12]uint32
	SubPrimCount uint32
	VertexFlag   uint32
	Unknown      uint32
	Name         string
	Material     string

	Positions []mathutil.Vec3
	UVs       [][2]float64
	Skins     []Skin
	Faces     [][3]int
}

func (m *Mesh) VertexCount() int { return len(m.Positions) }

// Bounds covers every vertex position.
func (m *Mesh) Bounds() mathutil.Bounds {
	b := mathutil.NewBounds()
	for _, p := range m.Positions {
		b.Extend(p)
	}
	return b
}

// Combine concatenates meshes into one, offsetting face indices by the
// vertices that precede each part. The material comes from the first part
// that names one.
func Combine(name string, meshes []*Mesh) *Mesh {
	out := &Mesh{Name: name}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		if out.Material == "" {
			out.Material = m.Material
		}
		base := len(out.Positions)
		out.Positions = append(out.Positions, m.Positions...)
		out.UVs = append(out.UVs, m.UVs...)
		out.Skins = append(out.Skins, m.Skins...)
		for _, f := range m.Faces {
			out.Faces = append(out.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
		}
	}
	return out
}
