package jmxtest

// DDS returns an uncompressed 32-bit A8R8G8B8 DDS image. pix holds RGBA
// bytes row by row.
func DDS(width, height int, pix []byte) []byte {
	b := newBuilder()
	b.raw([]byte("DDS "))
	b.num(uint32(124), uint32(0x1|0x2|0x4|0x1000|0x8), uint32(height), uint32(width), uint32(width*4))
	b.num(uint32(0), uint32(1))
	b.raw(make([]byte, 11*4))
	// pixel format
	b.num(uint32(32), uint32(0x41), uint32(0), uint32(32))
	b.num(uint32(0x00ff0000), uint32(0x0000ff00), uint32(0x000000ff), uint32(0xff000000))
	b.num(uint32(0x1000), uint32(0), uint32(0), uint32(0), uint32(0))
	for i := 0; i+3 < len(pix); i += 4 {
		b.raw([]byte{pix[i+2], pix[i+1], pix[i], pix[i+3]})
	}
	return b.bytes()
}

// DXT1 returns a DXT1 DDS image of one 4×4 block using the given 565 colours
// and 2-bit index rows.
func DXT1(c0, c1 uint16, rows [4]uint8) []byte {
	return Compressed("DXT1", 4, 4, []byte{byte(c0), byte(c0 >> 8), byte(c1), byte(c1 >> 8), rows[0], rows[1], rows[2], rows[3]})
}

// Compressed returns a block-compressed DDS image with the given FourCC and
// raw block data.
func Compressed(fourCC string, width, height int, blocks []byte) []byte {
	b := newBuilder()
	b.raw([]byte("DDS "))
	b.num(uint32(124), uint32(0x1|0x2|0x4|0x1000|0x80000), uint32(height), uint32(width), uint32(len(blocks)))
	b.num(uint32(0), uint32(1))
	b.raw(make([]byte, 11*4))
	b.num(uint32(32), uint32(0x4))
	b.raw([]byte(fourCC))
	b.num(uint32(0), uint32(0), uint32(0), uint32(0), uint32(0))
	b.num(uint32(0x1000), uint32(0), uint32(0), uint32(0), uint32(0))
	b.raw(blocks)
	return b.bytes()
}
