package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"jmxv-importer/internal/jmxtest"
)

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func redTexture() []byte {
	pix := bytes.Repeat([]byte{255, 0, 0, 255}, 4)
	return jmxtest.Texture(jmxtest.DDS(2, 2, pix))
}

func TestContainerName(t *testing.T) {
	assert.Equal(t, "Body_Tex.ddj", ContainerName(`item\char\Body_Tex.dds`))
	assert.Equal(t, "hair.ddj", ContainerName("hair"))
	assert.Equal(t, "a.b.ddj", ContainerName("dir/a.b.tga"))
}

func TestIndexLookup(t *testing.T) {
	idx := NewIndex([]string{"/tex/Body_Tex.DDJ", "/other/body_tex.ddj", "/tex/hair.ddj"})
	assert.Equal(t, 2, idx.Len())

	p, ok := idx.Lookup(`item\BODY_TEX.dds`)
	assert.True(t, ok)
	assert.Equal(t, "/tex/Body_Tex.DDJ", p)

	_, ok = idx.Lookup("missing.dds")
	assert.False(t, ok)
	_, ok = idx.Lookup("")
	assert.False(t, ok)
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "One.DDJ"), redTexture())
	writeFile(t, filepath.Join(dir, "b", "two.ddj"), redTexture())
	writeFile(t, filepath.Join(dir, "b", "notes.txt"), []byte("x"))

	idx, err := ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	_, ok := idx.Lookup("one.dds")
	assert.True(t, ok)

	_, err = ScanDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCacheConvert(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "in", "red.ddj"), redTexture())
	codec, err := NewCodec(FormatPNG)
	require.NoError(t, err)
	cache := NewCache(codec, filepath.Join(dir, "out"))

	out, err := cache.Convert(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", OutputName(src, ".png")), out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, color.NRGBAModel.Convert(img.At(1, 1)))

	// The second request is served from the cache even if the source is gone.
	require.NoError(t, os.Remove(src))
	again, err := cache.Convert(src)
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, map[string]string{src: out}, cache.Converted())
}

func TestCacheRemembersFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "bad.ddj"), jmxtest.Texture([]byte("not an image")))
	codec, _ := NewCodec(FormatPNG)
	cache := NewCache(codec, "")

	_, err := cache.Convert(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTextureDecode))

	writeFile(t, src, redTexture())
	_, again := cache.Convert(src)
	assert.Equal(t, err, again)
	assert.Empty(t, cache.Converted())
}

func TestCacheConcurrent(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "red.ddj"), redTexture())
	codec, _ := NewCodec(FormatWebP)
	cache := NewCache(codec, "")

	var wg sync.WaitGroup
	paths := make([]string, 8)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], _ = cache.Convert(src)
		}(i)
	}
	wg.Wait()
	for _, p := range paths {
		assert.Equal(t, paths[0], p)
	}
	assert.Equal(t, filepath.Join(dir, OutputName(src, ".webp")), paths[0])
}

func TestCacheResolve(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "Red.ddj"), redTexture())
	codec, _ := NewCodec(FormatPNG)
	cache := NewCache(codec, "")
	idx := NewIndex([]string{src})

	out, err := cache.Resolve(idx, `data\red.dds`)
	require.NoError(t, err)
	assert.FileExists(t, out)

	_, err = cache.Resolve(idx, "blue.dds")
	assert.True(t, errors.Is(err, ErrNotIndexed))
}

func TestWebPRoundTrip(t *testing.T) {
	codec, err := NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, ".webp", codec.Ext())

	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&buf, src))

	img, err := codec.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestNewCodecUnknown(t *testing.T) {
	_, err := NewCodec("gif")
	assert.Error(t, err)
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []byte{10, 200, 30, 255})
	}
	dst := Downsample(src, 16)
	assert.Equal(t, image.Rect(0, 0, 16, 8), dst.Bounds())
	c := dst.NRGBAAt(8, 4)
	assert.InDelta(t, 200, int(c.G), 2)
	assert.Equal(t, uint8(255), c.A)

	assert.Same(t, src, Downsample(src, 64))
}

func TestCodecMaxSize(t *testing.T) {
	codec, _ := NewCodec(FormatPNG)
	codec.MaxSize = 1
	img, err := codec.Decode(jmxtest.DDS(2, 2, bytes.Repeat([]byte{255, 0, 0, 255}, 4)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())
}

func TestCodecDecodesPayloadFormats(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 255})

	var pngBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, src))
	require.NoError(t, bmp.Encode(&bmpBuf, src))
	dds := jmxtest.DDS(2, 1, []byte{255, 0, 0, 255, 0, 0, 255, 255})

	codec, err := NewCodec(FormatPNG)
	require.NoError(t, err)

	for _, tc := range []struct {
		name    string
		payload []byte
	}{
		{PayloadDDS, dds},
		{PayloadPNG, pngBuf.Bytes()},
		{PayloadBMP, bmpBuf.Bytes()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, Sniff(tc.payload))

			cfg, format, err := DecodeConfig(tc.payload)
			require.NoError(t, err)
			assert.Equal(t, tc.name, format)
			assert.Equal(t, 2, cfg.Width)
			assert.Equal(t, 1, cfg.Height)

			img, err := codec.Decode(tc.payload)
			require.NoError(t, err)
			assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(0, 0))
			assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(1, 0))
		})
	}
}

func TestSniffFallsBackToTGA(t *testing.T) {
	assert.Equal(t, PayloadTGA, Sniff([]byte{0, 0, 2, 0}))
	assert.Equal(t, PayloadJPEG, Sniff([]byte{0xff, 0xd8, 0xff}))
	assert.Equal(t, PayloadWebP, Sniff([]byte("RIFF\x00\x00\x00\x00WEBPVP8L")))

	codec, err := NewCodec(FormatPNG)
	require.NoError(t, err)
	_, err = codec.Decode([]byte{0, 0, 2, 0})
	assert.Error(t, err)
}
