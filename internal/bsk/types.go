package bsk

// Bone is one skeleton record, kept exactly as declared in the container.
// Rotations are quaternions stored x, y, z, w in source space.
type Bone struct {
	// Index is the declaration order, assigned at parse time.
	Index  int
	Type   uint8 // unused by reconstruction
	Name   string
	Parent string // empty for roots

	ParentRotation    [4]float32
	ParentTranslation [3]float32

	// Rotation and Translation are the transform used for reconstruction.
	Rotation    [4]float32
	Translation [3]float32

	LocalRotation    [4]float32
	LocalTranslation [3]float32

	// Children mirrors the parent references; topology is rebuilt from Parent.
	Children []string
}

// File is a decoded skeleton container.
type File struct {
	Signature string
	Bones     []Bone
}

// Names returns the bone names in declaration order.
func (f *File) Names() []string {
	names := make([]string, len(f.Bones))
	for i, b := range f.Bones {
		names[i] = b.Name
	}
	return names
}
