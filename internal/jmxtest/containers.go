package jmxtest

// BoneSpec describes one skeleton record.
type BoneSpec struct {
	Name, Parent string
	Rotation     [4]float32 // x, y, z, w; zero means identity
	Translation  [3]float32
	Children     []string
}

// Skeleton returns a skeleton container. Unused transforms are filled with
// recognisable values so misaligned reads show up.
func Skeleton(bones []BoneSpec) []byte {
	b := newBuilder()
	b.sig("JMXVBSK 0101")
	b.num(uint32(len(bones)))
	for i, bone := range bones {
		rot := bone.Rotation
		if rot == [4]float32{} {
			rot = [4]float32{0, 0, 0, 1}
		}
		b.num(uint8(i % 3))
		b.str(bone.Name)
		b.str(bone.Parent)
		b.floats(0, 0, 0, 1, 11, 12, 13)
		b.floats(rot[0], rot[1], rot[2], rot[3])
		b.floats(bone.Translation[0], bone.Translation[1], bone.Translation[2])
		b.floats(0, 0, 0, 1, 21, 22, 23)
		b.num(uint32(len(bone.Children)))
		for _, c := range bone.Children {
			b.str(c)
		}
	}
	return b.bytes()
}

// VertexSpec describes one mesh vertex in source space.
type VertexSpec struct {
	Position [3]float32
	UV       [2]float32
	Bones    [4]uint8
	Weights  [4]uint8
}

// MeshSpec describes a mesh container.
type MeshSpec struct {
	Name, Material string
	Flag           uint32
	Vertices       []VertexSpec
	Faces          [][3]uint16
	// Gap is the number of filler bytes placed before each block, so the
	// blocks are not contiguous with the header.
	Gap int
}

const (
	FlagSecondaryUV = 0x400
	FlagMorph       = 0x800
)

// Mesh returns a mesh container.
func Mesh(m MeshSpec) []byte {
	vb := newBuilder()
	vb.num(uint32(len(m.Vertices)))
	for _, v := range m.Vertices {
		vb.floats(v.Position[0], v.Position[1], v.Position[2])
		vb.floats(0, 1, 0)
		vb.floats(v.UV[0], v.UV[1])
		vb.floats(0)
		vb.raw(v.Bones[:])
		vb.raw(v.Weights[:])
		if m.Flag&FlagSecondaryUV != 0 {
			vb.floats(0.5, 0.5)
		}
		if m.Flag&FlagMorph != 0 {
			vb.raw(make([]byte, 32))
		}
	}
	vblock := vb.bytes()

	fb := newBuilder()
	fb.num(uint32(len(m.Faces)))
	for _, f := range m.Faces {
		fb.num(f[0], f[1], f[2])
	}
	fblock := fb.bytes()

	headerLen := 12 + 48 + 12 + 4 + len(m.Name) + 4 + len(m.Material)
	vertexOff := headerLen + m.Gap
	faceOff := vertexOff + len(vblock) + m.Gap

	b := newBuilder()
	b.raw([]byte("JMXVBMS 0110"))
	header := [12]uint32{uint32(vertexOff), 0, uint32(faceOff)}
	for _, h := range header {
		b.num(h)
	}
	b.num(uint32(1), m.Flag, uint32(0))
	b.str(m.Name)
	b.str(m.Material)
	b.raw(make([]byte, m.Gap))
	b.raw(vblock)
	b.raw(make([]byte, m.Gap))
	b.raw(fblock)
	return b.bytes()
}

// MaterialSpec describes one material record.
type MaterialSpec struct {
	Name    string
	Colors  [4][4]float32
	Flags   uint32
	Diffuse string
	Normal  string // written only when Flags has NormalMapFlag
}

const NormalMapFlag = 1 << 13

// Materials returns a material container.
func Materials(mats []MaterialSpec) []byte {
	b := newBuilder()
	b.raw([]byte("JMXVBMT 0102"))
	b.num(uint32(len(mats)))
	for _, m := range mats {
		b.str(m.Name)
		for _, c := range m.Colors {
			b.floats(c[0], c[1], c[2], c[3])
		}
		b.floats(1)
		b.num(m.Flags)
		b.str(m.Diffuse)
		b.floats(0.5)
		b.num(uint8(1), uint8(2), uint8(1))
		if m.Flags&NormalMapFlag != 0 {
			b.str(m.Normal)
			b.num(uint32(7))
		}
	}
	return b.bytes()
}

// Texture wraps payload in a texture container.
func Texture(payload []byte) []byte {
	b := newBuilder()
	b.raw([]byte("JMXVDDJ 1000"))
	b.num(uint32(len(payload)), uint32(3))
	b.raw(payload)
	return b.bytes()
}
