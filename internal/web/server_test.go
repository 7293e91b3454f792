package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jmxv-importer/internal/importer"
	"jmxv-importer/internal/jmxtest"
	"jmxv-importer/internal/modellist"
	"jmxv-importer/internal/texture"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	put := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, data, 0o644))
		return p
	}

	sk := put("char/a.bsk", jmxtest.Skeleton([]jmxtest.BoneSpec{
		{Name: "Root", Children: []string{"Tip"}},
		{Name: "Tip", Parent: "Root", Translation: [3]float32{0, 4, 0}},
	}))
	mesh := put("char/a.bms", jmxtest.Mesh(jmxtest.MeshSpec{
		Name: "a",
		Vertices: []jmxtest.VertexSpec{
			{Position: [3]float32{0, 0, 0}, Bones: [4]uint8{0, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
			{Position: [3]float32{0, 4, 0}, Bones: [4]uint8{1, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
			{Position: [3]float32{1, 4, 0}, Bones: [4]uint8{1, 255, 255, 255}, Weights: [4]uint8{255, 0, 0, 0}},
		},
		Faces: [][3]uint16{{0, 1, 2}},
	}))
	put("char/a.bmt", jmxtest.Materials([]jmxtest.MaterialSpec{{Name: "a_mat", Diffuse: "a.dds"}}))
	put("char/a.ddj", jmxtest.Texture(jmxtest.DDS(2, 1, []byte{255, 0, 0, 255, 0, 0, 255, 128})))
	broken := put("char/broken.bms", []byte("JMXV"))

	opts := importer.DefaultOptions()
	opts.Textures = false
	codec, err := texture.NewCodec(texture.FormatWebP)
	require.NoError(t, err)
	opts.Codec = codec
	entries := []modellist.Entry{
		{Group: "chars", Model: importer.Model{Name: "a", Skeleton: sk, Meshes: []string{mesh}}},
		{Model: importer.Model{Name: "broken", Meshes: []string{broken}}},
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	s, err := NewServer(dir, entries, opts, log)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler(io.Discard))
	t.Cleanup(ts.Close)
	return ts, dir
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestModels(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/json/models")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var models []ModelInfo
	require.NoError(t, json.Unmarshal(body, &models))
	require.Len(t, models, 2)
	assert.Equal(t, "a", models[0].Name)
	assert.Equal(t, "chars", models[0].Group)
	assert.Equal(t, "broken", models[1].Name)
}

func TestModelImport(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/json/models/a")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res importer.Result
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotNil(t, res.Skeleton)
	assert.Len(t, res.Skeleton.Bones, 2)
	require.Len(t, res.Meshes, 1)

	resp, body = get(t, ts, "/json/models/broken")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "error")

	resp, _ = get(t, ts, "/json/models/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContainer(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/json/container/bsk/char/a.bsk")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var sk struct {
		File struct {
			Bones []json.RawMessage
		} `json:"file"`
		Assembly struct {
			Groups []json.RawMessage `json:"groups"`
		} `json:"assembly"`
	}
	require.NoError(t, json.Unmarshal(body, &sk))
	assert.Len(t, sk.File.Bones, 2)
	assert.NotEmpty(t, sk.Assembly.Groups)

	resp, body = get(t, ts, "/json/container/bmt/char/a.bmt")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "a_mat")

	resp, body = get(t, ts, "/json/container/ddj/char/a.ddj")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var tex TextureInfo
	require.NoError(t, json.Unmarshal(body, &tex))
	assert.Equal(t, "dds", tex.Format)
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, 1, tex.Height)

	resp, _ = get(t, ts, "/json/container/bms/char/broken.bms")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = get(t, ts, "/json/container/bms/char/missing.bms")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts, "/json/container/xyz/char/a.bms")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTexture(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := get(t, ts, "/texture/char/a.ddj")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, body)
}

func TestTexturePNG(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "t.ddj")
	require.NoError(t, os.WriteFile(p, jmxtest.Texture(jmxtest.DDS(1, 1, []byte{1, 2, 3, 255})), 0o644))

	opts := importer.DefaultOptions()
	opts.Codec = nil
	s, err := NewServer(dir, nil, opts, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/texture/t.ddj", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
}
