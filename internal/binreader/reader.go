// Package binreader is the cursor decoder shared by every JMXV container
// parser: fixed-width fields, length-prefixed strings, signatures and
// absolute seeks over an in-memory buffer.
package binreader

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding"
)

// Reader is a forward cursor over a byte buffer. Errors are sticky: after the
// first failed read every accessor returns a zero value and Err reports the
// failure.
type Reader struct {
	data      []byte
	off       int
	container string
	order     binary.ByteOrder
	enc       encoding.Encoding
	err       *DecodeError
}

// Option configures a Reader.
type Option func(*Reader)

// WithByteOrder overrides the default little-endian byte order.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(r *Reader) { r.order = order }
}

// WithEncoding sets the text encoding used by String. A nil encoding keeps
// the default.
func WithEncoding(enc encoding.Encoding) Option {
	return func(r *Reader) {
		if enc != nil {
			r.enc = enc
		}
	}
}

// New returns a Reader over data. container names the container kind in
// errors.
func New(data []byte, container string, opts ...Option) *Reader {
	r := &Reader{
		data:      data,
		container: container,
		order:     binary.LittleEndian,
		enc:       DefaultEncoding,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Offset returns the cursor position.
func (r *Reader) Offset() int { return r.off }

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of bytes after the cursor.
func (r *Reader) Remaining() int {
	if r.off >= len(r.data) {
		return 0
	}
	return len(r.data) - r.off
}

// Fail records err at the current offset unless an error is already set.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = NewError(r.container, r.off, err)
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.data)-r.off {
		r.Fail(ErrTruncatedInput)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Seek moves the cursor to an absolute offset. Seeking to the end of the
// buffer is allowed; beyond it is a truncation.
func (r *Reader) Seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.data) {
		r.Fail(ErrTruncatedInput)
		return
	}
	r.off = off
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// Bytes returns the next n bytes. The slice aliases the buffer.
func (r *Reader) Bytes(n int) []byte {
	return r.take(n)
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return r.order.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// Vec3f reads three float32 values.
func (r *Reader) Vec3f() [3]float32 {
	return [3]float32{r.F32(), r.F32(), r.F32()}
}

// Quatf reads a quaternion stored as x, y, z, w.
func (r *Reader) Quatf() [4]float32 {
	return [4]float32{r.F32(), r.F32(), r.F32(), r.F32()}
}

// String reads a u32 length followed by that many bytes of text. Invalid
// sequences are replaced, never fatal.
func (r *Reader) String() string {
	start := r.off
	n := r.U32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.off = start
		r.Fail(ErrTruncatedInput)
		return ""
	}
	b := r.take(int(n))
	if len(b) == 0 {
		return ""
	}
	return decodeText(r.enc, b)
}

// Signature reads n bytes and checks them against want. With exact set the
// whole field must equal want; otherwise want is a prefix. The raw signature
// is returned even on mismatch.
func (r *Reader) Signature(n int, want string, exact bool) string {
	start := r.off
	b := r.take(n)
	if b == nil {
		return ""
	}
	sig := string(b)
	ok := sig == want
	if !exact {
		ok = len(sig) >= len(want) && sig[:len(want)] == want
	}
	if !ok {
		r.off = start
		r.Fail(ErrInvalidSignature)
	}
	return sig
}

// CheckCount fails with a truncation when count records of at least
// minSize bytes cannot fit in the remaining buffer.
func (r *Reader) CheckCount(count uint32, minSize int) bool {
	if r.err != nil {
		return false
	}
	if minSize > 0 && uint64(count)*uint64(minSize) > uint64(r.Remaining()) {
		r.Fail(ErrTruncatedInput)
		return false
	}
	return true
}
