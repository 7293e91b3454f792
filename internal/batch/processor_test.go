package batch

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmxv-importer/internal/importer"
	"jmxv-importer/internal/jmxtest"
	"jmxv-importer/internal/modellist"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testEntries(t *testing.T, dir string) []modellist.Entry {
	sk := writeFile(t, filepath.Join(dir, "a.bsk"), jmxtest.Skeleton([]jmxtest.BoneSpec{
		{Name: "Root", Children: []string{"Tip"}},
		{Name: "Tip", Parent: "Root", Translation: [3]float32{0, 4, 0}},
	}))
	mesh := writeFile(t, filepath.Join(dir, "a.bms"), jmxtest.Mesh(jmxtest.MeshSpec{
		Name: "a",
		Vertices: []jmxtest.VertexSpec{
			{Position: [3]float32{0, 0, 0}, Bones: [4]uint8{0, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
			{Position: [3]float32{0, 4, 0}, Bones: [4]uint8{1, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
			{Position: [3]float32{1, 4, 0}, Bones: [4]uint8{1, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
		},
		Faces: [][3]uint16{{0, 1, 2}},
	}))
	broken := writeFile(t, filepath.Join(dir, "broken.bms"), []byte("JMXVBMS 0110"))

	return []modellist.Entry{
		{Group: "chars", Model: importer.Model{Name: "a", Skeleton: sk, Meshes: []string{mesh}}},
		{Model: importer.Model{Name: "broken", Meshes: []string{broken}}},
		{Model: importer.Model{Name: "mesh_only", Meshes: []string{mesh}}},
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	entries := testEntries(t, dir)

	results, err := Run(Config{
		OutputDir: out,
		Options:   importer.DefaultOptions(),
		Workers:   2,
		Log:       quietLogger(),
	}, entries)
	require.NoError(t, err)
	require.Len(t, results, 3)

	a := results[0]
	assert.True(t, a.Success, a.Error)
	assert.Equal(t, filepath.Join(out, "chars", "a.json"), a.Output)

	raw, err := os.ReadFile(a.Output)
	require.NoError(t, err)
	var res importer.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, "a", res.Name)
	require.NotNil(t, res.Skeleton)
	assert.Len(t, res.Skeleton.Bones, 2)
	require.Len(t, res.Meshes, 1)
	assert.NotNil(t, res.Meshes[0].Binding)

	b := results[1]
	assert.False(t, b.Success)
	assert.Equal(t, 1, b.Failed)
	assert.Contains(t, b.Error, importer.ErrNothingDecoded.Error())
	assert.NoFileExists(t, filepath.Join(out, "broken.json"))

	assert.True(t, results[2].Success)
	assert.FileExists(t, filepath.Join(out, "mesh_only.json"))
}

func TestRunRejectsBadOptions(t *testing.T) {
	opts := importer.DefaultOptions()
	opts.Encoding = "no-such-encoding"
	_, err := Run(Config{OutputDir: t.TempDir(), Options: opts, Log: quietLogger()}, nil)
	assert.Error(t, err)
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	entries := []modellist.Entry{
		{Group: "chars", Model: importer.Model{Name: "a", Skeleton: "a.bsk"}},
		{Model: importer.Model{Name: "b", Meshes: []string{"b.bms"}}},
	}
	results := []Result{
		{Name: "a", Success: true, Output: filepath.Join(dir, "chars", "a.json")},
		{Name: "b", Error: "broken"},
	}
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, WriteManifest(path, entries, results))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []ManifestEntry
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "chars/a.json", got[0].Result)
	assert.Equal(t, "a.bsk", got[0].Skeleton)
	assert.Equal(t, "broken", got[1].Error)
	assert.Empty(t, got[1].Result)
}

func TestOutputPathStaysInDir(t *testing.T) {
	dir := filepath.FromSlash("/out")
	for _, tc := range []struct {
		group, name, want string
	}{
		{"", "warrior", "warrior.json"},
		{"chars", "warrior", filepath.Join("chars", "warrior.json")},
		{"../../etc", "../../x", filepath.Join("etc", "x.json")},
		{"", `..\..\evil`, "evil.json"},
		{"..", "..", filepath.Join("_", "_.json")},
		{"", "a/b/c", "c.json"},
	} {
		e := modellist.Entry{Group: tc.group, Model: importer.Model{Name: tc.name}}
		assert.Equal(t, filepath.Join(dir, tc.want), OutputPath(dir, e), "%q/%q", tc.group, tc.name)
	}
}

func TestRunKeepsTraversingNamesInOutputDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	entries := testEntries(t, dir)[:1]
	entries[0].Group = ".."
	entries[0].Model.Name = "../escaped"

	results, err := Run(Config{OutputDir: out, Options: importer.DefaultOptions(), Workers: 1, Log: quietLogger()}, entries)
	require.NoError(t, err)
	require.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, filepath.Join(out, "_", "escaped.json"), results[0].Output)
	assert.NoFileExists(t, filepath.Join(dir, "escaped.json"))
}
