package importer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmxv-importer/internal/binreader"
	"jmxv-importer/internal/jmxtest"
	"jmxv-importer/internal/material"
	"jmxv-importer/internal/skin"
	"jmxv-importer/internal/texture"
)

type fixture struct {
	dir   string
	model Model
}

func write(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newFixture(t *testing.T) fixture {
	dir := t.TempDir()
	bones := []jmxtest.BoneSpec{
		{Name: "Root", Children: []string{"Spine"}},
		{Name: "Spine", Parent: "Root", Translation: [3]float32{0, 10, 0}, Children: []string{"ArmL", "ArmR"}},
		{Name: "ArmL", Parent: "Spine", Translation: [3]float32{5, 10, 0}},
		{Name: "ArmR", Parent: "Spine", Translation: [3]float32{-5, 10, 0}},
	}
	body := jmxtest.MeshSpec{
		Name:     "body",
		Material: "body_mat",
		Gap:      4,
		Vertices: []jmxtest.VertexSpec{
			{Position: [3]float32{0, 0, 0}, Bones: [4]uint8{0, 1, 255, 255}, Weights: [4]uint8{128, 128, 0, 0}},
			{Position: [3]float32{0, 20, 0}, Bones: [4]uint8{1, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
			{Position: [3]float32{5, 10, 0}, Bones: [4]uint8{2, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
		},
		Faces: [][3]uint16{{0, 1, 2}},
	}
	head := jmxtest.MeshSpec{
		Name:     "head",
		Material: "head_mat",
		Vertices: []jmxtest.VertexSpec{
			{Position: [3]float32{0, 22, 0}, Bones: [4]uint8{1, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
			{Position: [3]float32{1, 22, 0}, Bones: [4]uint8{1, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
			{Position: [3]float32{0, 23, 0}, Bones: [4]uint8{3, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
		},
		Faces: [][3]uint16{{0, 1, 2}},
	}
	mats := []jmxtest.MaterialSpec{
		{Name: "body_mat", Colors: [4][4]float32{{1, 1, 1, 1}}, Diffuse: `char\body.dds`},
		{Name: "head_mat", Diffuse: `char\head.dds`},
	}
	pix := bytes.Repeat([]byte{10, 20, 30, 255}, 4)

	m := Model{
		Name:     "warrior",
		Skeleton: write(t, filepath.Join(dir, "warrior.bsk"), jmxtest.Skeleton(bones)),
		Meshes: []string{
			write(t, filepath.Join(dir, "body.bms"), jmxtest.Mesh(body)),
			write(t, filepath.Join(dir, "head.bms"), jmxtest.Mesh(head)),
		},
		Material: write(t, filepath.Join(dir, "warrior.bmt"), jmxtest.Materials(mats)),
		Textures: []string{filepath.Join(dir, "tex")},
	}
	write(t, filepath.Join(dir, "tex", "Body.ddj"), jmxtest.Texture(jmxtest.DDS(2, 2, pix)))
	return fixture{dir: dir, model: m}
}

func newImporter(t *testing.T, opts Options) *Importer {
	t.Helper()
	codec, err := texture.NewCodec(texture.FormatPNG)
	require.NoError(t, err)
	opts.Codec = codec
	im, err := New(opts, nil)
	require.NoError(t, err)
	return im
}

func TestImportCombined(t *testing.T) {
	fx := newFixture(t)
	opts := DefaultOptions()
	opts.TextureDir = filepath.Join(fx.dir, "out")
	opts.Skeleton.Split = true
	im := newImporter(t, opts)

	res, err := im.Import(fx.model)
	require.NoError(t, err)
	assert.True(t, res.OK(), "%v", res.Errors)

	require.NotNil(t, res.Skeleton)
	assert.Len(t, res.Skeleton.Bones, 4)
	assert.Len(t, res.Skeleton.Groups, 3)

	require.Len(t, res.Meshes, 1)
	mesh := res.Meshes[0]
	assert.Equal(t, "body", mesh.Name)
	assert.Len(t, mesh.Sources, 2)
	assert.Len(t, mesh.Positions, 6)
	assert.Equal(t, [][3]int{{0, 1, 2}, {3, 4, 5}}, mesh.Faces)

	require.NotNil(t, mesh.Binding)
	assert.Equal(t, skin.PolicyIndexed, mesh.Binding.Policy)
	assert.Len(t, mesh.Binding.Weights["Spine"], 4)
	for v, total := range mesh.Binding.VertexTotals(6) {
		assert.InDelta(t, 1, total, 1e-9, "vertex %d", v)
	}

	require.Len(t, res.Materials, 2)
	assert.Equal(t, material.Stats{Materials: 2, Textured: 1, Missing: 1}, *res.MaterialStats)
	assert.FileExists(t, res.Materials[0].Texture)
	assert.Equal(t, 0, mesh.MaterialIndex)
	assert.Equal(t, material.MatchExact, mesh.MaterialMatch)

	require.NotNil(t, res.Fit)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestImportSeparateMeshes(t *testing.T) {
	fx := newFixture(t)
	opts := DefaultOptions()
	opts.Combine = false
	opts.Fit = false
	opts.Textures = false
	im := newImporter(t, opts)

	res, err := im.Import(fx.model)
	require.NoError(t, err)
	require.Len(t, res.Meshes, 2)
	assert.Equal(t, "head", res.Meshes[1].Name)
	assert.Equal(t, 1, res.Meshes[1].MaterialIndex)
	assert.Len(t, res.Meshes[1].Binding.Weights["ArmR"], 1)
	assert.Nil(t, res.Fit)
	assert.Empty(t, res.Materials[0].Texture)
	assert.Zero(t, im.Cache().Len())
}

func TestImportKeepsGoingAfterContainerFailure(t *testing.T) {
	fx := newFixture(t)
	bad := write(t, filepath.Join(fx.dir, "broken.bms"), []byte("JMXVBMS 0110 short"))
	fx.model.Meshes = append([]string{bad}, fx.model.Meshes...)
	im := newImporter(t, DefaultOptions())

	res, err := im.Import(fx.model)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindMesh, res.Errors[0].Kind)
	assert.Equal(t, bad, res.Errors[0].Path)
	assert.True(t, strings.Contains(res.Errors[0].Error, "truncated input"), res.Errors[0].Error)
	require.Len(t, res.Meshes, 1)
	assert.Len(t, res.Meshes[0].Sources, 2)
}

func TestImportWrongMaterialContainer(t *testing.T) {
	fx := newFixture(t)
	fx.model.Material = filepath.Join(fx.dir, "tex", "Body.ddj")
	im := newImporter(t, DefaultOptions())

	res, err := im.Import(fx.model)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindMaterial, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Error, "texture container")
	assert.Equal(t, -1, res.Meshes[0].MaterialIndex)
}

func TestImportSkeletonOnly(t *testing.T) {
	fx := newFixture(t)
	im := newImporter(t, DefaultOptions())
	res, err := im.Import(Model{Name: "bones", Skeleton: fx.model.Skeleton})
	require.NoError(t, err)
	assert.Empty(t, res.Meshes)
	assert.Nil(t, res.Fit)
	assert.Len(t, res.Skeleton.Groups, 1)
}

func TestImportFailures(t *testing.T) {
	im := newImporter(t, DefaultOptions())

	_, err := im.Import(Model{Name: "empty"})
	assert.Equal(t, ErrEmptyModel, err)

	res, err := im.Import(Model{Name: "gone", Skeleton: filepath.Join(t.TempDir(), "missing.bsk")})
	assert.Equal(t, ErrNothingDecoded, err)
	require.NotNil(t, res)
	assert.Len(t, res.Errors, 1)
}

func TestImportDecodeErrorKeepsCause(t *testing.T) {
	dir := t.TempDir()
	path := write(t, filepath.Join(dir, "bad.bsk"), []byte("JMXVBSK 0101\x05"))
	im := newImporter(t, DefaultOptions())
	res, err := im.Import(Model{Skeleton: path})
	assert.Equal(t, ErrNothingDecoded, err)
	assert.Contains(t, res.Errors[0].Error, "bsk "+path)
	assert.Contains(t, res.Errors[0].Error, binreader.ErrTruncatedInput.Error())
}

func TestNewRejectsUnknownEncoding(t *testing.T) {
	opts := DefaultOptions()
	opts.Encoding = "no-such-charset"
	_, err := New(opts, nil)
	assert.Error(t, err)
}
