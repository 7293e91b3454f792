// Package bsk decodes JMXV skeleton containers.
package bsk

import (
	"fmt"
	"os"

	"jmxv-importer/internal/binreader"
)

const (
	// Signature is the prefix of the 12-byte skeleton signature.
	Signature = "JMXVBSK"
	// DefaultSignature is written by Encode when the file carries none.
	DefaultSignature = "JMXVBSK 0101"
	signatureSize    = 12

	// type + two string lengths + three transforms + child count
	minBoneSize = 1 + 4 + 4 + 3*(16+12) + 4
)

// Parse reads and decodes a skeleton container from disk.
func Parse(path string, opts ...binreader.Option) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bsk: read %s: %w", path, err)
	}
	return Decode(raw, opts...)
}

// Decode decodes a skeleton container held in memory.
func Decode(data []byte, opts ...binreader.Option) (*File, error) {
	r := binreader.New(data, "bsk", opts...)

	sig := r.Signature(signatureSize, Signature, false)
	count := r.U32()
	if !r.CheckCount(count, minBoneSize) {
		return nil, r.Err()
	}

	f := &File{Signature: sig, Bones: make([]Bone, 0, count)}
	for i := 0; i < int(count); i++ {
		b := Bone{Index: i}
		b.Type = r.U8()
		b.Name = r.String()
		b.Parent = r.String()

		b.ParentRotation = r.Quatf()
		b.ParentTranslation = r.Vec3f()
		b.Rotation = r.Quatf()
		b.Translation = r.Vec3f()
		b.LocalRotation = r.Quatf()
		b.LocalTranslation = r.Vec3f()

		// The child list is redundant with parent references but must be
		// consumed to stay aligned with the next bone.
		nChildren := r.U32()
		if !r.CheckCount(nChildren, 4) {
			return nil, r.Err()
		}
		if nChildren > 0 {
			b.Children = make([]string, nChildren)
			for c := range b.Children {
				b.Children[c] = r.String()
			}
		}

		if err := r.Err(); err != nil {
			return nil, err
		}
		f.Bones = append(f.Bones, b)
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return f, nil
}
