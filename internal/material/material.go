// Package material resolves decoded material records against texture
// containers and matches them to meshes by name.
package material

import (
	"strings"

	"jmxv-importer/internal/bmt"
	"jmxv-importer/internal/texture"
)

// Material is a material record with its diffuse texture resolved.
type Material struct {
	Name       string        `json:"name"`
	BaseColor  [4]float32    `json:"base_color"`
	Colors     [4][4]float32 `json:"colors"`
	Flags      uint32        `json:"flags"`
	DiffuseMap string        `json:"diffuse_map,omitempty"`
	NormalMap  string        `json:"normal_map,omitempty"`

	// Texture is the converted raster path, empty when unresolved.
	Texture       string `json:"texture,omitempty"`
	TextureSource string `json:"texture_source,omitempty"`
	TextureError  string `json:"texture_error,omitempty"`
}

type Stats struct {
	Materials int `json:"materials"`
	Textured  int `json:"textured"`
	Missing   int `json:"missing"`
	Failed    int `json:"failed"`
}

// Resolve converts every material record and attaches its diffuse texture
// when idx has a container for it. Texture problems never fail a material:
// they are returned as warnings and the material keeps its base colour.
// A nil idx or cache skips texture resolution.
func Resolve(f *bmt.File, idx *texture.Index, cache *texture.Cache) ([]Material, Stats, []error) {
	var (
		out      = make([]Material, 0, len(f.Materials))
		st       Stats
		warnings []error
	)
	for _, rec := range f.Materials {
		m := Material{
			Name:       rec.Name,
			BaseColor:  rec.BaseColor(),
			Colors:     rec.Colors,
			Flags:      rec.Flags,
			DiffuseMap: rec.DiffuseMap,
			NormalMap:  rec.NormalMap,
		}
		st.Materials++

		if rec.DiffuseMap != "" && idx != nil && cache != nil {
			src, ok := idx.Lookup(rec.DiffuseMap)
			if !ok {
				st.Missing++
			} else {
				m.TextureSource = src
				path, err := cache.Convert(src)
				if err != nil {
					st.Failed++
					m.TextureError = err.Error()
					warnings = append(warnings, err)
				} else {
					st.Textured++
					m.Texture = path
				}
			}
		}
		out = append(out, m)
	}
	return out, st, warnings
}

// MatchKind tells how Match picked a material.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchPrefix   MatchKind = "prefix"
	MatchFallback MatchKind = "fallback"
	MatchNone     MatchKind = "none"
)

// Match picks the material for a mesh: the one named name, or one named
// "name.<suffix>", or else the first material. It returns -1 and MatchNone
// when mats is empty.
func Match(name string, mats []Material) (int, MatchKind) {
	if len(mats) == 0 {
		return -1, MatchNone
	}
	if name != "" {
		for i, m := range mats {
			if m.Name == name {
				return i, MatchExact
			}
		}
		for i, m := range mats {
			if strings.HasPrefix(m.Name, name+".") {
				return i, MatchPrefix
			}
		}
	}
	return 0, MatchFallback
}
