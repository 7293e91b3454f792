package material

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmxv-importer/internal/bmt"
	"jmxv-importer/internal/jmxtest"
	"jmxv-importer/internal/texture"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "Body.ddj")
	bad := filepath.Join(dir, "broken.ddj")
	pix := bytes.Repeat([]byte{0, 255, 0, 255}, 4)
	require.NoError(t, os.WriteFile(good, jmxtest.Texture(jmxtest.DDS(2, 2, pix)), 0o644))
	require.NoError(t, os.WriteFile(bad, jmxtest.Texture([]byte("junk")), 0o644))

	f, err := bmt.Decode(jmxtest.Materials([]jmxtest.MaterialSpec{
		{Name: "body", Colors: [4][4]float32{{0.5, 0.5, 0.5, 1}}, Diffuse: `tex\body.dds`},
		{Name: "body2", Diffuse: `tex\BODY.tga`},
		{Name: "broken", Diffuse: "broken.dds"},
		{Name: "missing", Diffuse: "nowhere.dds"},
		{Name: "plain"},
	}))
	require.NoError(t, err)

	codec, err := texture.NewCodec(texture.FormatPNG)
	require.NoError(t, err)
	cache := texture.NewCache(codec, filepath.Join(dir, "out"))
	idx := texture.NewIndex([]string{good, bad})

	mats, st, warnings := Resolve(f, idx, cache)
	require.Len(t, mats, 5)
	assert.Equal(t, Stats{Materials: 5, Textured: 2, Missing: 1, Failed: 1}, st)
	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], texture.ErrTextureDecode))

	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, mats[0].BaseColor)
	assert.FileExists(t, mats[0].Texture)
	assert.Equal(t, mats[0].Texture, mats[1].Texture)
	assert.Equal(t, 2, cache.Len())

	assert.Empty(t, mats[2].Texture)
	assert.NotEmpty(t, mats[2].TextureError)
	assert.Empty(t, mats[3].Texture)
	assert.Empty(t, mats[3].TextureSource)
	assert.Empty(t, mats[4].Texture)
}

func TestResolveWithoutTextures(t *testing.T) {
	f := &bmt.File{Materials: []bmt.Material{{Name: "a", DiffuseMap: "a.dds"}}}
	mats, st, warnings := Resolve(f, nil, nil)
	require.Len(t, mats, 1)
	assert.Equal(t, "a.dds", mats[0].DiffuseMap)
	assert.Equal(t, Stats{Materials: 1}, st)
	assert.Empty(t, warnings)
}

func TestMatch(t *testing.T) {
	mats := []Material{{Name: "skin"}, {Name: "hair.001"}, {Name: "hair"}, {Name: "cloth.002"}}

	i, kind := Match("hair", mats)
	assert.Equal(t, 2, i)
	assert.Equal(t, MatchExact, kind)

	i, kind = Match("cloth", mats)
	assert.Equal(t, 3, i)
	assert.Equal(t, MatchPrefix, kind)

	i, kind = Match("armor", mats)
	assert.Equal(t, 0, i)
	assert.Equal(t, MatchFallback, kind)

	i, kind = Match("", mats)
	assert.Equal(t, 0, i)
	assert.Equal(t, MatchFallback, kind)

	i, kind = Match("skin", nil)
	assert.Equal(t, -1, i)
	assert.Equal(t, MatchNone, kind)
}
