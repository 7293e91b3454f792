// Package texture locates texture containers referenced by materials and
// converts their payloads to ordinary raster files.
package texture

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"jmxv-importer/internal/ddj"
)

var (
	// ErrTextureDecode marks a texture that could not be unwrapped or decoded.
	ErrTextureDecode = errors.New("texture decode failed")
	// ErrNotIndexed marks a reference with no matching container.
	ErrNotIndexed = errors.New("texture not indexed")
)

// Cache converts texture containers once per source path and remembers the
// outcome, failures included. It is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	items  map[string]*cacheEntry
	codec  Codec
	outDir string
}

type cacheEntry struct {
	once sync.Once
	path string
	err  error
}

// NewCache returns a cache writing converted rasters to outDir, or next to
// each source when outDir is empty.
func NewCache(codec Codec, outDir string) *Cache {
	return &Cache{
		items:  make(map[string]*cacheEntry),
		codec:  codec,
		outDir: outDir,
	}
}

// Convert returns the raster path for the texture container at src,
// converting it on first use.
func (c *Cache) Convert(src string) (string, error) {
	c.mu.Lock()
	entry, ok := c.items[src]
	if !ok {
		entry = &cacheEntry{}
		c.items[src] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		path, err := c.convert(src)
		c.mu.Lock()
		entry.path, entry.err = path, err
		c.mu.Unlock()
	})
	return entry.path, entry.err
}

// Resolve looks ref up in idx and converts the container it names.
func (c *Cache) Resolve(idx *Index, ref string) (string, error) {
	src, ok := idx.Lookup(ref)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotIndexed, ContainerName(ref))
	}
	return c.Convert(src)
}

func (c *Cache) convert(src string) (string, error) {
	tex, err := ddj.Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextureDecode, err)
	}
	img, err := c.codec.Decode(tex.Payload)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTextureDecode, src, err)
	}

	dir := c.outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("texture: mkdir %s: %w", dir, err)
	}
	out := filepath.Join(dir, OutputName(src, c.codec.Ext()))

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("texture: create %s: %w", out, err)
	}
	if err := c.codec.Encode(f, img); err != nil {
		f.Close()
		os.Remove(out)
		return "", fmt.Errorf("texture: encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("texture: close %s: %w", out, err)
	}
	return out, nil
}

// OutputName derives the converted file name for src. The hash suffix keeps
// same-named containers from different directories apart.
func OutputName(src, ext string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	sum := blake2b.Sum256([]byte(filepath.Clean(src)))
	return stem + "-" + hex.EncodeToString(sum[:4]) + ext
}

// Converted returns source → raster paths for every successful conversion.
func (c *Cache) Converted() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string)
	for src, e := range c.items {
		if e.path != "" {
			out[src] = e.path
		}
	}
	return out
}

// Len returns the number of sources attempted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
