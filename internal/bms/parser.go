// Package bms decodes JMXV mesh containers.
package bms

import (
	"fmt"
	"os"

	"jmxv-importer/internal/binreader"
	"jmxv-importer/internal/coord"
	"jmxv-importer/internal/mathutil"
)

const (
	// Signature is the prefix shared by every JMXV mesh version.
	Signature     = "JMXV"
	signatureSize = 12
	headerWords   = 12

	// DefaultName is used when the container names no mesh.
	DefaultName = "Mesh"

	// position + normal + uv + float + indices + weights
	minVertexSize = 12 + 12 + 8 + 4 + 4 + 4
	faceSize      = 6
)

// ErrFaceIndexOutOfRange is returned when a face refers past the vertex
// block. It is treated as truncated input.
var ErrFaceIndexOutOfRange = fmt.Errorf("%w: face index out of range", binreader.ErrTruncatedInput)

// Parse reads and decodes a mesh container from disk.
func Parse(path string, opts ...binreader.Option) (*Mesh, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bms: read %s: %w", path, err)
	}
	return Decode(raw, opts...)
}

// Decode decodes a mesh container held in memory. The vertex and face
// blocks are located through the header offsets.
func Decode(data []byte, opts ...binreader.Option) (*Mesh, error) {
	r := binreader.New(data, "bms", opts...)

	m := &Mesh{}
	m.Signature = r.Signature(signatureSize, Signature, false)
	for i := range m.Header {
		m.Header[i] = r.U32()
	}
	m.SubPrimCount = r.U32()
	m.VertexFlag = r.U32()
	m.Unknown = r.U32()
	m.Name = r.String()
	m.Material = r.String()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = DefaultName
	}

	if err := decodeVertices(r, m); err != nil {
		return nil, err
	}
	if err := decodeFaces(r, m); err != nil {
		return nil, err
	}
	return m, nil
}

func vertexStride(flag uint32) int {
	n := minVertexSize
	if flag&FlagSecondaryUV != 0 {
		n += 8
	}
	if flag&FlagMorph != 0 {
		n += 32
	}
	return n
}

func decodeVertices(r *binreader.Reader, m *Mesh) error {
	r.Seek(int(m.Header[0]))
	count := r.U32()
	if !r.CheckCount(count, vertexStride(m.VertexFlag)) {
		return r.Err()
	}

	m.Positions = make([]mathutil.Vec3, count)
	m.UVs = make([][2]float64, count)
	m.Skins = make([]Skin, count)
	extra := vertexStride(m.VertexFlag) - minVertexSize

	for i := range m.Positions {
		m.Positions[i] = coord.Position32(r.Vec3f())
		r.Skip(12) // normal
		u, v := r.F32(), r.F32()
		m.UVs[i] = [2]float64{float64(u), 1 - float64(v)}
		r.Skip(4)

		var s Skin
		copy(s.Bones[:], r.Bytes(4))
		copy(s.Raw[:], r.Bytes(4))
		s.Weights = normalizeWeights(s.Raw)
		m.Skins[i] = s

		r.Skip(extra)
	}
	return r.Err()
}

func normalizeWeights(raw [4]uint8) [4]float64 {
	var w [4]float64
	total := int(raw[0]) + int(raw[1]) + int(raw[2]) + int(raw[3])
	if total == 0 {
		return w
	}
	for k, v := range raw {
		w[k] = float64(v) / float64(total)
	}
	return w
}

func decodeFaces(r *binreader.Reader, m *Mesh) error {
	r.Seek(int(m.Header[2]))
	count := r.U32()
	if !r.CheckCount(count, faceSize) {
		return r.Err()
	}

	start := r.Offset()
	m.Faces = make([][3]int, count)
	n := len(m.Positions)
	for i := range m.Faces {
		var f [3]int
		for k := range f {
			f[k] = int(r.U16())
		}
		if err := r.Err(); err != nil {
			return err
		}
		for _, idx := range f {
			if idx >= n {
				return binreader.NewError("bms", start+i*faceSize, fmt.Errorf("%w: %d >= %d", ErrFaceIndexOutOfRange, idx, n))
			}
		}
		m.Faces[i] = f
	}
	return r.Err()
}
