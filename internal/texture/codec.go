package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"jmxv-importer/internal/dds"
)

// Payload formats recognized by Sniff.
const (
	PayloadDDS  = "dds"
	PayloadPNG  = "png"
	PayloadJPEG = "jpeg"
	PayloadBMP  = "bmp"
	PayloadWebP = "webp"
	PayloadTGA  = "tga"
)

type payloadDecoder struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var payloadDecoders = map[string]payloadDecoder{
	PayloadDDS:  {dds.Decode, dds.DecodeConfig},
	PayloadPNG:  {png.Decode, png.DecodeConfig},
	PayloadJPEG: {jpeg.Decode, jpeg.DecodeConfig},
	PayloadBMP:  {bmp.Decode, bmp.DecodeConfig},
	PayloadWebP: {webp.Decode, webp.DecodeConfig},
	PayloadTGA:  {tga.Decode, tga.DecodeConfig},
}

// Sniff names the format of a texture payload from its leading bytes.
// TGA has no magic and is the fallback.
func Sniff(payload []byte) string {
	switch {
	case bytes.HasPrefix(payload, []byte(dds.Magic)):
		return PayloadDDS
	case bytes.HasPrefix(payload, []byte("\x89PNG\r\n\x1a\n")):
		return PayloadPNG
	case bytes.HasPrefix(payload, []byte{0xff, 0xd8}):
		return PayloadJPEG
	case bytes.HasPrefix(payload, []byte("BM")):
		return PayloadBMP
	case len(payload) >= 12 && string(payload[:4]) == "RIFF" && string(payload[8:12]) == "WEBP":
		return PayloadWebP
	}
	return PayloadTGA
}

// DecodeConfig returns the dimensions and format of a texture payload.
func DecodeConfig(payload []byte) (image.Config, string, error) {
	format := Sniff(payload)
	cfg, err := payloadDecoders[format].decodeConfig(bytes.NewReader(payload))
	return cfg, format, err
}

// Codec decodes texture payloads and writes converted rasters.
type Codec interface {
	Decode(payload []byte) (*image.NRGBA, error)
	Encode(w io.Writer, img image.Image) error
	// Ext is the extension of encoded files, with the dot.
	Ext() string
}

// Output formats.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// ImageCodec decodes DDS, PNG, JPEG, BMP, WebP and TGA payloads and encodes
// WebP or PNG. Payloads are routed by Sniff: the TGA package registers an
// empty image magic, so image.Decode would hand it every payload.
type ImageCodec struct {
	format string
	// MaxSize bounds the longer edge of encoded rasters; 0 keeps the size.
	MaxSize int
}

// NewCodec returns a codec writing format ("webp" or "png").
func NewCodec(format string) (*ImageCodec, error) {
	switch format {
	case "", FormatWebP:
		return &ImageCodec{format: FormatWebP}, nil
	case FormatPNG:
		return &ImageCodec{format: FormatPNG}, nil
	}
	return nil, fmt.Errorf("texture: unknown output format %q", format)
}

func (c *ImageCodec) Ext() string { return "." + c.format }

func (c *ImageCodec) Decode(payload []byte) (*image.NRGBA, error) {
	format := Sniff(payload)
	img, err := payloadDecoders[format].decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s payload: %w", format, err)
	}
	n := toNRGBA(img)
	if c.MaxSize > 0 {
		n = Downsample(n, c.MaxSize)
	}
	return n, nil
}

func (c *ImageCodec) Encode(w io.Writer, img image.Image) error {
	if c.format == FormatPNG {
		return png.Encode(w, img)
	}
	return nativewebp.Encode(w, img, nil)
}

// toNRGBA converts any image to NRGBA. Sources without alpha come out
// opaque.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
