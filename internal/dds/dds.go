// Package dds decodes DirectDraw Surface images: DXT1, DXT3, DXT5 and
// uncompressed RGB(A) with arbitrary channel masks. Only the top mip level
// is decoded. Importing the package registers the format with image.
package dds

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math/bits"

	"jmxv-importer/internal/binreader"
)

const (
	Magic      = "DDS "
	headerSize = 124

	pfAlphaPixels = 0x1
	pfFourCC      = 0x4
	pfRGB         = 0x40
)

var ErrUnsupportedFormat = errors.New("dds: unsupported pixel format")

func init() {
	image.RegisterFormat("dds", Magic, Decode, DecodeConfig)
}

type pixelFormat struct {
	flags    uint32
	fourCC   string
	bitCount uint32
	masks    [4]uint32 // R, G, B, A
}

type header struct {
	width, height int
	pf            pixelFormat
}

func readHeader(r *binreader.Reader) (header, error) {
	var h header
	r.Signature(len(Magic), Magic, true)
	if size := r.U32(); r.Err() == nil && size != headerSize {
		return h, binreader.NewError("dds", 4, fmt.Errorf("header size %d", size))
	}
	r.U32() // flags
	h.height = int(r.U32())
	h.width = int(r.U32())
	r.Skip(4 + 4 + 4 + 11*4) // pitch, depth, mip count, reserved

	r.U32() // pixel format size
	h.pf.flags = r.U32()
	h.pf.fourCC = string(r.Bytes(4))
	h.pf.bitCount = r.U32()
	for i := range h.pf.masks {
		h.pf.masks[i] = r.U32()
	}
	r.Skip(5 * 4) // caps
	return h, r.Err()
}

// DecodeConfig returns the image dimensions without decoding pixels.
func DecodeConfig(rd io.Reader) (image.Config, error) {
	buf := make([]byte, len(Magic)+headerSize)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return image.Config{}, fmt.Errorf("dds: read header: %w", err)
	}
	h, err := readHeader(binreader.New(buf, "dds"))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: h.width, Height: h.height}, nil
}

// Decode decodes the top mip level of a DDS image.
func Decode(rd io.Reader) (image.Image, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("dds: read: %w", err)
	}
	r := binreader.New(data, "dds")
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.width <= 0 || h.height <= 0 || h.width > 1<<15 || h.height > 1<<15 {
		return nil, binreader.NewError("dds", 12, fmt.Errorf("dimensions %dx%d", h.width, h.height))
	}

	switch {
	case h.pf.flags&pfFourCC != 0:
		var blockSize int
		var decode func(img *image.NRGBA, block []byte, x, y int)
		switch h.pf.fourCC {
		case "DXT1":
			blockSize, decode = 8, decodeDXT1
		case "DXT3":
			blockSize, decode = 16, decodeDXT3
		case "DXT5":
			blockSize, decode = 16, decodeDXT5
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, h.pf.fourCC)
		}
		bw, bh := (h.width+3)/4, (h.height+3)/4
		// Size the block data before allocating the raster.
		if !r.CheckCount(uint32(bw*bh), blockSize) {
			return nil, r.Err()
		}
		img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
		for by := 0; by < bh; by++ {
			for bx := 0; bx < bw; bx++ {
				decode(img, r.Bytes(blockSize), bx*4, by*4)
			}
		}
		return img, r.Err()
	case h.pf.flags&pfRGB != 0:
		img, err := decodeRGB(r, h)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: flags %#x", ErrUnsupportedFormat, h.pf.flags)
}

func decodeRGB(r *binreader.Reader, h header) (*image.NRGBA, error) {
	pf := h.pf
	bpp := int(pf.bitCount) / 8
	if bpp < 1 || bpp > 4 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, pf.bitCount)
	}
	masks := pf.masks
	if pf.flags&pfAlphaPixels == 0 {
		masks[3] = 0
	}
	w, hgt := h.width, h.height
	if !r.CheckCount(uint32(w*hgt), bpp) {
		return nil, r.Err()
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, hgt))
	for y := 0; y < hgt; y++ {
		for x := 0; x < w; x++ {
			p := r.Bytes(bpp)
			var v uint32
			for i := bpp - 1; i >= 0; i-- {
				v = v<<8 | uint32(p[i])
			}
			a := uint8(255)
			if masks[3] != 0 {
				a = channel(v, masks[3])
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: channel(v, masks[0]),
				G: channel(v, masks[1]),
				B: channel(v, masks[2]),
				A: a,
			})
		}
	}
	return img, r.Err()
}

// channel extracts the bits selected by mask and scales them to 8 bits.
func channel(v, mask uint32) uint8 {
	if mask == 0 {
		return 0
	}
	shift := bits.TrailingZeros32(mask)
	full := uint64(mask >> shift)
	return uint8(uint64((v&mask)>>shift) * 255 / full)
}
