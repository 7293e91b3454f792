// Package bmt decodes JMXV material containers.
package bmt

import (
	"bytes"
	"fmt"
	"os"

	"jmxv-importer/internal/binreader"
	"jmxv-importer/internal/ddj"
)

const (
	Signature     = "JMXVBMT 0102"
	signatureSize = 12

	// name length + colours + unknown + flags + diffuse length + trailer
	minMaterialSize = 4 + 64 + 4 + 4 + 4 + 4 + 3
)

// ErrTextureContainer is returned when a texture container is decoded as a
// material container.
var ErrTextureContainer = fmt.Errorf("%w: texture container supplied where a material container was expected", binreader.ErrInvalidSignature)

// Parse reads and decodes a material container from disk.
func Parse(path string, opts ...binreader.Option) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bmt: read %s: %w", path, err)
	}
	return Decode(raw, opts...)
}

// Decode decodes a material container held in memory.
func Decode(data []byte, opts ...binreader.Option) (*File, error) {
	if bytes.HasPrefix(data, []byte(ddj.SignaturePrefix)) {
		return nil, binreader.NewError("bmt", 0, ErrTextureContainer)
	}

	r := binreader.New(data, "bmt", opts...)
	f := &File{Signature: r.Signature(signatureSize, Signature, true)}
	count := r.U32()
	if !r.CheckCount(count, minMaterialSize) {
		return nil, r.Err()
	}

	f.Materials = make([]Material, 0, count)
	for i := 0; i < int(count); i++ {
		m := Material{Index: i}
		m.Name = r.String()
		for c := range m.Colors {
			m.Colors[c] = r.Quatf()
		}
		m.Unknown = r.F32()
		m.Flags = r.U32()
		m.DiffuseMap = r.String()

		m.Trailer.Float = r.F32()
		m.Trailer.A = r.U8()
		m.Trailer.B = r.U8()
		m.Trailer.Flag = r.U8() != 0

		if m.HasNormalMap() {
			m.NormalMap = r.String()
			m.NormalMapParam = r.U32()
		}

		if err := r.Err(); err != nil {
			return nil, err
		}
		f.Materials = append(f.Materials, m)
	}
	return f, r.Err()
}
