package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"jmxv-importer/internal/importer"
	"jmxv-importer/internal/skeleton"
	"jmxv-importer/internal/skin"
	"jmxv-importer/internal/texture"
)

// Config holds all configurable paths and import settings.
type Config struct {
	// Paths
	DataDir    string `json:"data_dir" yaml:"data_dir"`
	ModelList  string `json:"model_list" yaml:"model_list"`
	OutputDir  string `json:"output_dir" yaml:"output_dir"`
	TextureDir string `json:"texture_dir" yaml:"texture_dir"`

	// Decode settings
	Encoding       string `json:"encoding" yaml:"encoding"`
	TextureFormat  string `json:"texture_format" yaml:"texture_format"`
	TextureMaxSize int    `json:"texture_max_size" yaml:"texture_max_size"`
	Workers        int    `json:"workers" yaml:"workers"`
	Listen         string `json:"listen" yaml:"listen"`

	// Pipeline toggles. Unset keeps the default: splitting off, the rest on.
	Split             *bool `json:"split,omitempty" yaml:"split,omitempty"`
	SplitRootChildren *bool `json:"split_root_children,omitempty" yaml:"split_root_children,omitempty"`
	Combine           *bool `json:"combine,omitempty" yaml:"combine,omitempty"`
	Bind              *bool `json:"bind,omitempty" yaml:"bind,omitempty"`
	Fit               *bool `json:"fit,omitempty" yaml:"fit,omitempty"`
	Textures          *bool `json:"textures,omitempty" yaml:"textures,omitempty"`

	// Binder tuning
	Epsilon       float64         `json:"epsilon" yaml:"epsilon"`
	FallbackRatio float64         `json:"fallback_ratio" yaml:"fallback_ratio"`
	Categories    []skin.Category `json:"categories,omitempty" yaml:"categories,omitempty"`
	Order         []string        `json:"order,omitempty" yaml:"order,omitempty"`
}

// Load reads a JSON or YAML config file, chosen by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir       string
	ModelList     string
	OutputDir     string
	TextureFormat string
	Encoding      string
	Workers       int
	Listen        string
}

// Resolve applies flag overrides, then fills empty fields with defaults.
// Relative paths are resolved against DataDir.
func (c *Config) Resolve(flags Flags) {
	if flags.DataDir != "" {
		c.DataDir = flags.DataDir
	}
	if flags.ModelList != "" {
		c.ModelList = flags.ModelList
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TextureFormat != "" {
		c.TextureFormat = flags.TextureFormat
	}
	if flags.Encoding != "" {
		c.Encoding = flags.Encoding
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}

	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.ModelList == "" {
		c.ModelList = findModelList(c.DataDir)
	} else {
		c.ModelList = c.abs(c.ModelList)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.DataDir, "imported")
	} else {
		c.OutputDir = c.abs(c.OutputDir)
	}
	if c.TextureDir == "" {
		c.TextureDir = filepath.Join(c.OutputDir, "textures")
	} else {
		c.TextureDir = c.abs(c.TextureDir)
	}

	if c.TextureFormat == "" {
		c.TextureFormat = texture.FormatWebP
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Epsilon <= 0 {
		c.Epsilon = skin.DefaultEpsilon
	}
	if c.FallbackRatio <= 0 {
		c.FallbackRatio = skin.DefaultFallbackRatio
	}
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

// Binder builds the skin binder described by the tuning fields.
func (c *Config) Binder() *skin.Binder {
	b := skin.NewBinder()
	if c.Epsilon > 0 {
		b.Epsilon = c.Epsilon
	}
	if c.FallbackRatio > 0 {
		b.FallbackRatio = c.FallbackRatio
	}
	if len(c.Categories) > 0 || len(c.Order) > 0 {
		r := skin.NewCategoryRemapper()
		if len(c.Categories) > 0 {
			r.Categories = c.Categories
		}
		if len(c.Order) > 0 {
			r.Order = c.Order
		}
		b.Remap = r
	}
	return b
}

// ImporterOptions builds pipeline options from the config.
func (c *Config) ImporterOptions() (importer.Options, error) {
	codec, err := texture.NewCodec(c.TextureFormat)
	if err != nil {
		return importer.Options{}, err
	}
	codec.MaxSize = c.TextureMaxSize

	sk := skeleton.DefaultOptions()
	sk.Split = flag(c.Split, sk.Split)
	sk.SplitRootChildren = flag(c.SplitRootChildren, sk.SplitRootChildren)

	return importer.Options{
		Skeleton:   sk,
		Combine:    enabled(c.Combine),
		Bind:       enabled(c.Bind),
		Fit:        enabled(c.Fit),
		Materials:  true,
		Textures:   enabled(c.Textures),
		Encoding:   c.Encoding,
		Binder:     c.Binder(),
		Codec:      codec,
		TextureDir: c.TextureDir,
	}, nil
}

func enabled(p *bool) bool { return flag(p, true) }

func flag(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func findModelList(dataDir string) string {
	candidates := []string{
		filepath.Join(dataDir, "models.xml"),
		filepath.Join(dataDir, "Data", "models.xml"),
		filepath.Join(dataDir, "ModelList.xml"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}
