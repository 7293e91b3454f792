package web

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"jmxv-importer/internal/bms"
	"jmxv-importer/internal/bmt"
	"jmxv-importer/internal/bsk"
	"jmxv-importer/internal/ddj"
	"jmxv-importer/internal/importer"
	"jmxv-importer/internal/skeleton"
	"jmxv-importer/internal/texture"
)

// ModelInfo lists one model and its containers.
type ModelInfo struct {
	Name  string         `json:"name"`
	Group string         `json:"group,omitempty"`
	Model importer.Model `json:"model"`
}

// TextureInfo summarizes a texture container without its payload.
type TextureInfo struct {
	Signature   string `json:"signature"`
	Type        uint32 `json:"type"`
	PayloadSize int    `json:"payload_size"`
	Format      string `json:"format,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// SkeletonInfo is a decoded skeleton container with its assembly.
type SkeletonInfo struct {
	File     *bsk.File          `json:"file"`
	Assembly *skeleton.Assembly `json:"assembly"`
	Warnings []string           `json:"warnings,omitempty"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	out := make([]ModelInfo, 0, len(s.names))
	for _, name := range s.names {
		e := s.models[name]
		out = append(out, ModelInfo{Name: name, Group: e.Group, Model: e.Model})
	}
	WriteJSON(w, out)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	e, ok := s.models[name]
	if !ok {
		WriteError(w, withStatus(http.StatusNotFound, errors.Errorf("model %q not found", name)))
		return
	}

	im, err := importer.New(s.opts, s.log.WithField("model", name))
	if err != nil {
		WriteError(w, err)
		return
	}
	res, err := im.Import(e.Model)
	if err != nil {
		WriteError(w, withStatus(http.StatusUnprocessableEntity, errors.Wrapf(err, "import %s", name)))
		return
	}
	WriteJSON(w, res)
}

func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	p, err := s.resolve(vars["path"])
	if err != nil {
		WriteError(w, err)
		return
	}

	var data interface{}
	switch kind := strings.ToLower(vars["kind"]); kind {
	case importer.KindSkeleton:
		var f *bsk.File
		if f, err = bsk.Parse(p, s.decode...); err == nil {
			asm := skeleton.Assemble(f.Bones, s.opts.Skeleton)
			info := SkeletonInfo{File: f, Assembly: asm}
			for _, warn := range asm.Warnings {
				info.Warnings = append(info.Warnings, warn.Error())
			}
			data = info
		}
	case importer.KindMesh:
		data, err = bms.Parse(p, s.decode...)
	case importer.KindMaterial:
		data, err = bmt.Parse(p, s.decode...)
	case importer.KindTexture:
		data, err = textureInfo(p)
	default:
		err = withStatus(http.StatusBadRequest, errors.Errorf("unknown container kind %q", kind))
	}
	if err != nil {
		WriteError(w, asDecodeStatus(err))
		return
	}
	WriteJSON(w, data)
}

func (s *Server) handleTexture(w http.ResponseWriter, r *http.Request) {
	p, err := s.resolve(mux.Vars(r)["path"])
	if err != nil {
		WriteError(w, err)
		return
	}
	tex, err := ddj.Parse(p)
	if err != nil {
		WriteError(w, asDecodeStatus(err))
		return
	}
	img, err := s.codec.Decode(tex.Payload)
	if err != nil {
		WriteError(w, withStatus(http.StatusUnprocessableEntity, errors.Wrap(err, "decode payload")))
		return
	}

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, img); err != nil {
		WriteError(w, errors.Wrap(err, "encode"))
		return
	}
	w.Header().Set("Content-Type", "image/"+strings.TrimPrefix(s.codec.Ext(), "."))
	writeResult(w, buf.Bytes())
}

// resolve maps a request path onto a file below the data directory. The
// path is cleaned as rooted so it cannot climb out.
func (s *Server) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" {
		return "", withStatus(http.StatusBadRequest, errors.New("empty path"))
	}
	return filepath.Join(s.dataDir, filepath.FromSlash(clean)), nil
}

func textureInfo(p string) (*TextureInfo, error) {
	tex, err := ddj.Parse(p)
	if err != nil {
		return nil, err
	}
	info := &TextureInfo{
		Signature:   tex.Signature,
		Type:        tex.Type,
		PayloadSize: len(tex.Payload),
	}
	if cfg, format, err := texture.DecodeConfig(tex.Payload); err == nil {
		info.Format = format
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info, nil
}

// asDecodeStatus maps missing files to 404 and decode failures to 422.
func asDecodeStatus(err error) error {
	if statusOf(err) != http.StatusInternalServerError {
		return err
	}
	if errors.Is(err, os.ErrNotExist) {
		return withStatus(http.StatusNotFound, err)
	}
	return withStatus(http.StatusUnprocessableEntity, err)
}
