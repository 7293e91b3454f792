package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	"jmxv-importer/internal/modellist"
)

// ManifestEntry represents one model in the output manifest.
type ManifestEntry struct {
	Group    string   `json:"group,omitempty"`
	Name     string   `json:"name"`
	Skeleton string   `json:"skeleton,omitempty"`
	Meshes   []string `json:"meshes,omitempty"`
	Material string   `json:"material,omitempty"`
	Result   string   `json:"result,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// WriteManifest writes manifest.json describing every entry and, when
// results is parallel to entries, where its output went.
func WriteManifest(path string, entries []modellist.Entry, results []Result) error {
	base := filepath.Dir(path)
	out := make([]ManifestEntry, len(entries))
	for i, e := range entries {
		out[i] = ManifestEntry{
			Group:    e.Group,
			Name:     e.Model.Name,
			Skeleton: e.Model.Skeleton,
			Meshes:   e.Model.Meshes,
			Material: e.Model.Material,
		}
		if len(results) != len(entries) {
			continue
		}
		r := results[i]
		if r.Success {
			if rel, err := filepath.Rel(base, r.Output); err == nil {
				out[i].Result = filepath.ToSlash(rel)
			} else {
				out[i].Result = r.Output
			}
		} else {
			out[i].Error = r.Error
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
