package texture

import (
	"io/fs"
	"path/filepath"
	"strings"

	"jmxv-importer/internal/ddj"
)

// Index maps lowercase texture container file names to filesystem paths.
type Index struct {
	entries map[string]string // "name.ddj" → full path
}

// NewIndex indexes the given container paths. The first path wins when two
// share a file name.
func NewIndex(paths []string) *Index {
	idx := &Index{entries: make(map[string]string, len(paths))}
	for _, p := range paths {
		idx.Add(p)
	}
	return idx
}

// ScanDir indexes every texture container under dir.
func ScanDir(dir string) (*Index, error) {
	idx := NewIndex(nil)
	if err := idx.AddDir(dir); err != nil {
		return nil, err
	}
	return idx, nil
}

// AddDir indexes every texture container under dir.
func (idx *Index) AddDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ddj.Ext) {
			return nil
		}
		idx.Add(path)
		return nil
	})
}

// Add indexes path under its lowercase file name and reports whether it was
// new.
func (idx *Index) Add(path string) bool {
	key := strings.ToLower(filepath.Base(normalize(path)))
	if _, exists := idx.entries[key]; exists {
		return false
	}
	idx.entries[key] = path
	return true
}

// ContainerName maps a material's texture reference to the texture
// container file name it is stored under:
// `item\Body_Tex.dds` → "Body_Tex.ddj".
func ContainerName(ref string) string {
	base := filepath.Base(normalize(ref))
	return strings.TrimSuffix(base, filepath.Ext(base)) + ddj.Ext
}

// Lookup returns the container path for a texture reference, ignoring case.
func (idx *Index) Lookup(ref string) (string, bool) {
	if strings.TrimSpace(ref) == "" {
		return "", false
	}
	path, ok := idx.entries[strings.ToLower(ContainerName(ref))]
	return path, ok
}

// Len returns the number of indexed containers.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// normalize turns Windows separators into slashes so references written on
// either platform split the same way.
func normalize(p string) string {
	return filepath.ToSlash(strings.ReplaceAll(p, "\\", "/"))
}
