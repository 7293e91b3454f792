package bmt

// Colour slots in Material.Colors.
const (
	ColorDiffuse = iota
	ColorAmbient
	ColorSpecular
	ColorEmissive
)

// NormalMapFlag marks a material that carries a normal-map path.
const NormalMapFlag = 1 << 13

// Material is one decoded material record.
type Material struct {
	Index  int
	Name   string
	Colors [4][4]float32 // RGBA
	// Unknown is the float that follows the colours. It is kept for
	// inspection and never interpreted.
	Unknown float32
	Flags   uint32

	DiffuseMap string
	NormalMap  string

	// Trailer holds the fixed fields after the diffuse path.
	Trailer Trailer
	// NormalMapParam is the integer that follows the normal-map path.
	NormalMapParam uint32
}

type Trailer struct {
	Float float32
	A, B  uint8
	Flag  bool
}

// HasNormalMap reports whether the record carries a normal-map path.
func (m Material) HasNormalMap() bool { return m.Flags&NormalMapFlag != 0 }

// BaseColor is the diffuse colour.
func (m Material) BaseColor() [4]float32 { return m.Colors[ColorDiffuse] }

type File struct {
	Signature string
	Materials []Material
}

// Find returns the material named name.
func (f *File) Find(name string) (Material, bool) {
	for _, m := range f.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return Material{}, false
}
