// Package skin distributes mesh skin weights onto skeleton bones.
package skin

import (
	"math"
	"sort"

	"jmxv-importer/internal/bms"
	"jmxv-importer/internal/mathutil"
	"jmxv-importer/internal/skeleton"
)

const (
	DefaultEpsilon       = 0.001
	DefaultFallbackRatio = 0.20
)

type Policy string

const (
	PolicyIndexed     Policy = "indexed"
	PolicyNearestBone Policy = "nearest_bone"
)

// VertexWeight is one vertex's share of a bone.
type VertexWeight struct {
	Vertex int     `json:"vertex"`
	Weight float64 `json:"weight"`
}

// Stats summarizes binding anomalies. None of them fail a binding.
type Stats struct {
	Vertices     int `json:"vertices"`
	Slots        int `json:"slots"`
	Direct       int `json:"direct"`
	Remapped     int `json:"remapped"`
	SkippedEmpty int `json:"skipped_empty"`
	SkippedZero  int `json:"skipped_zero"`
	Unweighted   int `json:"unweighted_vertices"`

	// RemappedIndices counts each out-of-range index seen.
	RemappedIndices map[int]int `json:"remapped_indices,omitempty"`

	OutOfRangeRatio     float64 `json:"out_of_range_ratio"`
	FallbackRecommended bool    `json:"fallback_recommended"`
}

// Binding maps bone names to the vertices they influence, in vertex order.
type Binding struct {
	Policy  Policy                    `json:"policy"`
	Weights map[string][]VertexWeight `json:"weights"`
	Stats   Stats                     `json:"stats"`
}

// VertexTotals sums the weights each vertex received across all bones.
func (b *Binding) VertexTotals(vertices int) []float64 {
	totals := make([]float64, vertices)
	for _, list := range b.Weights {
		for _, vw := range list {
			if vw.Vertex >= 0 && vw.Vertex < vertices {
				totals[vw.Vertex] += vw.Weight
			}
		}
	}
	return totals
}

// Bones returns the bone names that received weights, sorted.
func (b *Binding) Bones() []string {
	out := make([]string, 0, len(b.Weights))
	for name := range b.Weights {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Binder binds mesh skins against the full skeleton.
type Binder struct {
	// Epsilon is the weight at or below which a slot is ignored.
	Epsilon float64
	// FallbackRatio is the out-of-range share of slots at which the
	// nearest-bone policy is recommended.
	FallbackRatio float64
	// Remap resolves out-of-range indices. Nil uses NewCategoryRemapper.
	Remap Remapper
}

func NewBinder() *Binder {
	return &Binder{
		Epsilon:       DefaultEpsilon,
		FallbackRatio: DefaultFallbackRatio,
		Remap:         NewCategoryRemapper(),
	}
}

// Bind distributes every vertex's skin slots onto bones of sk. Empty slots
// and negligible weights are dropped and the remaining weights are
// re-normalized so each vertex's total is 1 or 0.
func (bd *Binder) Bind(sk *skeleton.Skeleton, mesh *bms.Mesh) *Binding {
	eps := bd.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	remapper := bd.Remap
	if remapper == nil {
		remapper = NewCategoryRemapper()
	}

	names := sk.Names()
	n := len(names)
	remap := remapper.Plan(names)

	out := &Binding{Policy: PolicyIndexed, Weights: make(map[string][]VertexWeight)}
	st := &out.Stats
	st.Vertices = len(mesh.Skins)

	type slot struct {
		bone   int
		weight float64
	}
	var slots []slot

	for v, s := range mesh.Skins {
		slots = slots[:0]
		var total float64
		for k := 0; k < 4; k++ {
			idx := int(s.Bones[k])
			w := s.Weights[k]
			if idx == bms.EmptySlot {
				if s.Raw[k] > 0 {
					st.SkippedEmpty++
				}
				continue
			}
			if w <= eps {
				st.SkippedZero++
				continue
			}
			st.Slots++
			if idx >= n {
				st.Remapped++
				if st.RemappedIndices == nil {
					st.RemappedIndices = make(map[int]int)
				}
				st.RemappedIndices[idx]++
				idx = remap(idx)
				if idx < 0 || idx >= n {
					continue
				}
			} else {
				st.Direct++
			}
			slots = append(slots, slot{idx, w})
			total += w
		}
		if total <= 0 {
			st.Unweighted++
			continue
		}

		// Merge slots that resolved to the same bone.
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].bone < slots[j].bone })
		for i := 0; i < len(slots); {
			bone, w := slots[i].bone, 0.0
			for ; i < len(slots) && slots[i].bone == bone; i++ {
				w += slots[i].weight
			}
			name := names[bone]
			out.Weights[name] = append(out.Weights[name], VertexWeight{Vertex: v, Weight: w / total})
		}
	}

	if st.Slots > 0 {
		st.OutOfRangeRatio = float64(st.Remapped) / float64(st.Slots)
	}
	ratio := bd.FallbackRatio
	if ratio <= 0 {
		ratio = DefaultFallbackRatio
	}
	st.FallbackRecommended = st.Remapped > 0 && st.OutOfRangeRatio >= ratio
	return out
}

// BindOrFallback binds by index and switches to NearestBone when the
// out-of-range ratio reaches FallbackRatio. The returned binding's Policy
// tells which one produced the weights; Stats always describe the indexed
// attempt.
func (bd *Binder) BindOrFallback(sk *skeleton.Skeleton, mesh *bms.Mesh) *Binding {
	b := bd.Bind(sk, mesh)
	if !b.Stats.FallbackRecommended {
		return b
	}
	fb := NearestBone(sk, mesh)
	fb.Stats = b.Stats
	return fb
}

// NearestBone gives each vertex full weight on the bone whose head is
// closest to it. Ties go to the lower bone index.
func NearestBone(sk *skeleton.Skeleton, mesh *bms.Mesh) *Binding {
	out := &Binding{Policy: PolicyNearestBone, Weights: make(map[string][]VertexWeight)}
	out.Stats.Vertices = len(mesh.Positions)
	if sk.Len() == 0 {
		out.Stats.Unweighted = len(mesh.Positions)
		return out
	}
	for v, p := range mesh.Positions {
		best, bestDist := 0, math.Inf(1)
		for i, b := range sk.Bones {
			if d := distSq(p, b.Head); d < bestDist {
				best, bestDist = i, d
			}
		}
		name := sk.Bones[best].Name
		out.Weights[name] = append(out.Weights[name], VertexWeight{Vertex: v, Weight: 1})
	}
	return out
}

func distSq(a, b mathutil.Vec3) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}
