// Package modellist reads XML model lists that name the containers of each
// model for batch imports.
//
//	<Models>
//	  <Group Name="characters" Dir="char">
//	    <Model Name="warrior" Skeleton="warrior.bsk" Material="warrior.bmt">
//	      <Mesh Path="warrior_body.bms"/>
//	      <Texture Path="tex"/>
//	    </Model>
//	  </Group>
//	</Models>
//
// Relative paths are resolved against the group directory, which is itself
// relative to the list file.
package modellist

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jmxv-importer/internal/importer"
)

type xmlModelList struct {
	Groups []xmlGroup `xml:"Group"`
	Models []xmlModel `xml:"Model"`
}

type xmlGroup struct {
	Name   string     `xml:"Name,attr"`
	Dir    string     `xml:"Dir,attr"`
	Models []xmlModel `xml:"Model"`
}

type xmlModel struct {
	Name     string    `xml:"Name,attr"`
	Skeleton string    `xml:"Skeleton,attr"`
	Material string    `xml:"Material,attr"`
	Meshes   []xmlPath `xml:"Mesh"`
	Textures []xmlPath `xml:"Texture"`
}

type xmlPath struct {
	Path string `xml:"Path,attr"`
}

// Parse reads a model list file.
func Parse(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modellist: read %s: %w", path, err)
	}
	entries, err := Decode(raw, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("modellist: parse %s: %w", path, err)
	}
	return entries, nil
}

// Decode parses a model list held in memory, resolving relative paths
// against baseDir. Models without a name or without any container are
// skipped.
func Decode(raw []byte, baseDir string) ([]Entry, error) {
	var list xmlModelList
	if err := xml.Unmarshal(raw, &list); err != nil {
		return nil, err
	}

	var entries []Entry
	add := func(group, dir string, models []xmlModel) {
		for _, m := range models {
			if m.Name == "" {
				continue
			}
			model := importer.Model{
				Name:     m.Name,
				Skeleton: resolve(dir, m.Skeleton),
				Material: resolve(dir, m.Material),
			}
			for _, p := range m.Meshes {
				if p.Path != "" {
					model.Meshes = append(model.Meshes, resolve(dir, p.Path))
				}
			}
			for _, p := range m.Textures {
				if p.Path != "" {
					model.Textures = append(model.Textures, resolve(dir, p.Path))
				}
			}
			if model.Skeleton == "" && model.Material == "" && len(model.Meshes) == 0 {
				continue
			}
			entries = append(entries, Entry{Group: group, Model: model})
		}
	}

	add("", baseDir, list.Models)
	for _, g := range list.Groups {
		add(g.Name, resolve(baseDir, g.Dir), g.Models)
	}
	return entries, nil
}

// resolve joins a list path onto dir. Backslash separators are accepted.
func resolve(dir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}
