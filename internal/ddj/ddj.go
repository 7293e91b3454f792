// Package ddj reads and writes JMXV texture containers: a 20-byte header
// wrapping an image payload, usually DDS.
package ddj

import (
	"fmt"
	"io"
	"os"

	"github.com/anaminus/parse"

	"jmxv-importer/internal/binreader"
)

const (
	Signature = "JMXVDDJ 1000"
	// SignaturePrefix identifies any texture container version.
	SignaturePrefix = "JMXVDDJ"
	signatureSize   = 12
	HeaderSize      = signatureSize + 8

	// Ext is the texture container file extension.
	Ext = ".ddj"
)

// Texture is a decoded texture container.
type Texture struct {
	Signature string
	Type      uint32
	Payload   []byte
}

// Parse reads and decodes a texture container from disk.
func Parse(path string) (*Texture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ddj: read %s: %w", path, err)
	}
	return Decode(raw)
}

// Decode splits a texture container into header fields and payload. The
// payload aliases data.
func Decode(data []byte) (*Texture, error) {
	r := binreader.New(data, "ddj")
	t := &Texture{Signature: r.Signature(signatureSize, Signature, true)}
	size := r.U32()
	t.Type = r.U32()
	t.Payload = r.Bytes(int(size))
	if err := r.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Encode writes payload wrapped in a texture container header.
func Encode(w io.Writer, typ uint32, payload []byte) error {
	fw := parse.NewBinaryWriter(w)
	fw.Bytes([]byte(Signature))
	fw.Number(uint32(len(payload)))
	fw.Number(typ)
	fw.Bytes(payload)
	if _, err := fw.End(); err != nil {
		return fmt.Errorf("ddj: encode: %w", err)
	}
	return nil
}
