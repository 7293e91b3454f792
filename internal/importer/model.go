package importer

import (
	"jmxv-importer/internal/material"
	"jmxv-importer/internal/mathutil"
	"jmxv-importer/internal/skeleton"
	"jmxv-importer/internal/skin"
)

// Model names the containers that make up one importable model. Paths may
// be empty except that at least one container must be given.
type Model struct {
	Name     string   `json:"name"`
	Skeleton string   `json:"skeleton,omitempty"`
	Meshes   []string `json:"meshes,omitempty"`
	Material string   `json:"material,omitempty"`
	// Textures lists texture containers or directories holding them.
	Textures []string `json:"textures,omitempty"`
}

// Result is the host-independent outcome of an import. A scene adapter
// materializes bones, meshes, weights and materials from it.
type Result struct {
	Name          string              `json:"name"`
	Skeleton      *SkeletonResult     `json:"skeleton,omitempty"`
	Meshes        []MeshResult        `json:"meshes,omitempty"`
	Materials     []material.Material `json:"materials,omitempty"`
	MaterialStats *material.Stats     `json:"material_stats,omitempty"`
	Fit           *skeleton.Fit       `json:"fit,omitempty"`
	Errors        []ContainerError    `json:"errors,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
}

type SkeletonResult struct {
	Source string           `json:"source"`
	Bones  []skeleton.Bone  `json:"bones"`
	Groups []skeleton.Group `json:"groups"`
	Stats  skeleton.Stats   `json:"stats"`
}

type MeshResult struct {
	Name          string             `json:"name"`
	Sources       []string           `json:"sources"`
	Material      string             `json:"material,omitempty"`
	MaterialIndex int                `json:"material_index"`
	MaterialMatch material.MatchKind `json:"material_match,omitempty"`
	Positions     []mathutil.Vec3    `json:"positions"`
	UVs           [][2]float64       `json:"uvs"`
	Faces         [][3]int           `json:"faces"`
	Binding       *skin.Binding      `json:"binding,omitempty"`
}

// ContainerError records a container that failed to decode. Its siblings
// are still imported.
type ContainerError struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

// OK reports whether every container decoded.
func (r *Result) OK() bool { return len(r.Errors) == 0 }
