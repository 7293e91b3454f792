package bsk

import (
	"io"

	"github.com/anaminus/parse"
)

// Encode writes f as a skeleton container. Decoding the output yields the
// same recognised fields.
func Encode(w io.Writer, f *File) error {
	fw := parse.NewBinaryWriter(w)

	sig := make([]byte, signatureSize)
	copy(sig, DefaultSignature)
	if f.Signature != "" {
		for i := range sig {
			sig[i] = ' '
		}
		copy(sig, f.Signature)
	}
	fw.Bytes(sig)
	fw.Number(uint32(len(f.Bones)))

	for _, b := range f.Bones {
		fw.Number(b.Type)
		writeString(fw, b.Name)
		writeString(fw, b.Parent)
		writeFloats(fw, b.ParentRotation[:])
		writeFloats(fw, b.ParentTranslation[:])
		writeFloats(fw, b.Rotation[:])
		writeFloats(fw, b.Translation[:])
		writeFloats(fw, b.LocalRotation[:])
		writeFloats(fw, b.LocalTranslation[:])
		fw.Number(uint32(len(b.Children)))
		for _, c := range b.Children {
			writeString(fw, c)
		}
	}

	_, err := fw.End()
	return err
}

func writeString(fw *parse.BinaryWriter, s string) (failed bool) {
	if fw.Number(uint32(len(s))) {
		return true
	}
	return fw.Bytes([]byte(s))
}

func writeFloats(fw *parse.BinaryWriter, v []float32) (failed bool) {
	for _, f := range v {
		if fw.Number(f) {
			return true
		}
	}
	return false
}
