// Package jmxtest builds JMXV container bytes for tests.
package jmxtest

import (
	"bytes"

	"github.com/anaminus/parse"
)

type builder struct {
	buf bytes.Buffer
	fw  *parse.BinaryWriter
}

func newBuilder() *builder {
	b := &builder{}
	b.fw = parse.NewBinaryWriter(&b.buf)
	return b
}

func (b *builder) num(v ...interface{}) {
	for _, n := range v {
		b.fw.Number(n)
	}
}

func (b *builder) floats(v ...float32) {
	for _, f := range v {
		b.fw.Number(f)
	}
}

func (b *builder) str(s string) {
	b.fw.Number(uint32(len(s)))
	b.fw.Bytes([]byte(s))
}

func (b *builder) raw(p []byte) {
	b.fw.Bytes(p)
}

func (b *builder) sig(s string) {
	p := make([]byte, 12)
	for i := range p {
		p[i] = ' '
	}
	copy(p, s)
	b.raw(p)
}

func (b *builder) bytes() []byte {
	if _, err := b.fw.End(); err != nil {
		panic(err)
	}
	return b.buf.Bytes()
}
