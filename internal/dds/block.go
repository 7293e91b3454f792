package dds

import (
	"encoding/binary"
	"image"
	"image/color"
)

func rgb565(c uint16) [3]int {
	r := int(c>>11) & 31
	g := int(c>>5) & 63
	b := int(c) & 31
	return [3]int{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2}
}

// colorBlock expands the 8-byte colour half of a DXT block into its four
// palette entries. With fourColor unset, c0 <= c1 selects three colours plus
// transparent black.
func colorBlock(block []byte, fourColor bool) [4]color.NRGBA {
	c0 := binary.LittleEndian.Uint16(block[0:])
	c1 := binary.LittleEndian.Uint16(block[2:])
	a, b := rgb565(c0), rgb565(c1)

	var pal [4]color.NRGBA
	pal[0] = color.NRGBA{uint8(a[0]), uint8(a[1]), uint8(a[2]), 255}
	pal[1] = color.NRGBA{uint8(b[0]), uint8(b[1]), uint8(b[2]), 255}
	if fourColor || c0 > c1 {
		pal[2] = color.NRGBA{mix(a[0], b[0]), mix(a[1], b[1]), mix(a[2], b[2]), 255}
		pal[3] = color.NRGBA{mix(b[0], a[0]), mix(b[1], a[1]), mix(b[2], a[2]), 255}
	} else {
		pal[2] = color.NRGBA{uint8((a[0] + b[0]) / 2), uint8((a[1] + b[1]) / 2), uint8((a[2] + b[2]) / 2), 255}
		pal[3] = color.NRGBA{}
	}
	return pal
}

// mix returns (2a+b)/3.
func mix(a, b int) uint8 { return uint8((2*a + b) / 3) }

func putColors(img *image.NRGBA, block []byte, pal [4]color.NRGBA, x0, y0 int, alpha func(i int) (uint8, bool)) {
	idx := binary.LittleEndian.Uint32(block[4:])
	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			x, y := x0+px, y0+py
			i := py*4 + px
			c := pal[idx>>(2*i)&3]
			if alpha != nil {
				if a, ok := alpha(i); ok {
					c.A = a
				}
			}
			if (image.Point{x, y}).In(img.Rect) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func decodeDXT1(img *image.NRGBA, block []byte, x, y int) {
	putColors(img, block, colorBlock(block, false), x, y, nil)
}

func decodeDXT3(img *image.NRGBA, block []byte, x, y int) {
	alphas := binary.LittleEndian.Uint64(block)
	putColors(img, block[8:], colorBlock(block[8:], true), x, y, func(i int) (uint8, bool) {
		return uint8(alphas>>(4*i)&0xf) * 17, true
	})
}

func decodeDXT5(img *image.NRGBA, block []byte, x, y int) {
	a0, a1 := int(block[0]), int(block[1])
	var pal [8]uint8
	pal[0], pal[1] = uint8(a0), uint8(a1)
	if a0 > a1 {
		for i := 1; i < 7; i++ {
			pal[i+1] = uint8(((7-i)*a0 + i*a1) / 7)
		}
	} else {
		for i := 1; i < 5; i++ {
			pal[i+1] = uint8(((5-i)*a0 + i*a1) / 5)
		}
		pal[6], pal[7] = 0, 255
	}
	var idx uint64
	for k := 7; k >= 2; k-- {
		idx = idx<<8 | uint64(block[k])
	}
	putColors(img, block[8:], colorBlock(block[8:], true), x, y, func(i int) (uint8, bool) {
		return pal[idx>>(3*i)&7], true
	})
}
