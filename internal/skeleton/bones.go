package skeleton

import (
	"errors"
	"fmt"
	"strings"

	"jmxv-importer/internal/bsk"
	"jmxv-importer/internal/coord"
	"jmxv-importer/internal/mathutil"
)

// CombinedGroupName names the group that always holds every bone.
const CombinedGroupName = "ImportedSkeleton"

// connectTolerance is the largest head-to-parent-tail gap still treated as connected.
const connectTolerance = 0.01

var (
	ErrUnresolvedParent = errors.New("unresolved parent")
	ErrCyclicHierarchy  = errors.New("cyclic hierarchy")
	ErrDuplicateBone    = errors.New("duplicate bone name")
)

// HierarchyError is a non-fatal problem found while linking bones.
type HierarchyError struct {
	Bones []string
	Err   error
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("skeleton: %v: %s", e.Err, strings.Join(e.Bones, " -> "))
}

func (e *HierarchyError) Unwrap() error { return e.Err }

// Bone is an assembled bone in target space.
type Bone struct {
	Index      int           `json:"index"`
	Name       string        `json:"name"`
	Parent     int           `json:"parent"` // -1 for roots
	ParentName string        `json:"parent_name,omitempty"`
	Head       mathutil.Vec3 `json:"head"`
	Tail       mathutil.Vec3 `json:"tail"`
	Rotation   mathutil.Quat `json:"rotation"`
	Connected  bool          `json:"connected"`
}

// Length is the head-to-tail distance.
func (b Bone) Length() float64 { return b.Head.Dist(b.Tail) }

// Skeleton holds assembled bones in declared order.
type Skeleton struct {
	Bones []Bone `json:"bones"`
	tree  *Tree
}

func (s *Skeleton) Len() int { return len(s.Bones) }

// Index returns the declared index of the bone called name.
func (s *Skeleton) Index(name string) (int, bool) {
	if s.tree == nil {
		return 0, false
	}
	return s.tree.Index(name)
}

func (s *Skeleton) Names() []string {
	out := make([]string, len(s.Bones))
	for i, b := range s.Bones {
		out[i] = b.Name
	}
	return out
}

// Tree exposes the hierarchy the skeleton was built from.
func (s *Skeleton) Tree() *Tree { return s.tree }

// Bounds covers every head and tail.
func (s *Skeleton) Bounds() mathutil.Bounds {
	b := mathutil.NewBounds()
	for _, bone := range s.Bones {
		b.Extend(bone.Head)
		b.Extend(bone.Tail)
	}
	return b
}

// Group is a named subset of bones that is materialized as one armature.
type Group struct {
	Name     string `json:"name"`
	Root     int    `json:"root"` // -1 for the combined group
	Combined bool   `json:"combined"`
	Bones    []int  `json:"bones"`
}

// Options controls extent reconstruction and splitting.
type Options struct {
	Split             bool
	SplitRootChildren bool
	DefaultLength     float64
	MinLength         float64
}

func DefaultOptions() Options {
	return Options{
		SplitRootChildren: true,
		DefaultLength:     5,
		MinLength:         0.001,
	}
}

type Stats struct {
	Bones      int `json:"bones"`
	Roots      int `json:"roots"`
	Unresolved int `json:"unresolved_parents"`
	Duplicates int `json:"duplicate_names"`
	Cycles     int `json:"cycles"`
	Groups     int `json:"groups"`
}

// Assembly is the result of Assemble.
type Assembly struct {
	Full     *Skeleton `json:"skeleton"`
	Groups   []Group   `json:"groups"`
	Stats    Stats     `json:"stats"`
	Warnings []error   `json:"-"`
}

// Assemble links decoded bones into a hierarchy, reconstructs head and tail
// positions in target space and partitions the result into groups.
// Groups[0] is always the combined group unless there are no bones.
func Assemble(bones []bsk.Bone, opts Options) *Assembly {
	if opts.DefaultLength <= 0 {
		opts.DefaultLength = 5
	}
	if opts.MinLength <= 0 {
		opts.MinLength = 0.001
	}

	names := make([]string, len(bones))
	parents := make([]string, len(bones))
	for i, b := range bones {
		names[i] = b.Name
		parents[i] = b.Parent
	}
	tree := NewTree(names, parents)

	sk := &Skeleton{Bones: make([]Bone, len(bones)), tree: tree}
	for i, b := range bones {
		sk.Bones[i] = Bone{
			Index:      i,
			Name:       b.Name,
			Parent:     tree.Parent(i),
			ParentName: b.Parent,
			Head:       coord.Position32(b.Translation),
			Rotation:   coord.Orientation32(b.Rotation),
		}
	}
	computeExtents(sk, opts)

	a := &Assembly{Full: sk}
	a.Warnings = hierarchyWarnings(tree)
	a.Stats = Stats{
		Bones:      len(bones),
		Roots:      len(tree.Roots()),
		Unresolved: len(tree.Unresolved()),
		Duplicates: len(tree.Duplicates()),
		Cycles:     len(tree.Cycles()),
	}
	a.Groups = partition(tree, opts)
	a.Stats.Groups = len(a.Groups)
	return a
}

func computeExtents(sk *Skeleton, opts Options) {
	tree := sk.tree
	for _, i := range tree.Walk() {
		b := &sk.Bones[i]
		children := tree.Children(i)
		switch len(children) {
		case 0:
			length := opts.DefaultLength
			if b.Parent >= 0 {
				length = 0.5 * sk.Bones[b.Parent].Length()
			}
			b.Tail = b.Head.Add(b.Rotation.Rotate(mathutil.Vec3{0, length, 0}))
		case 1:
			b.Tail = sk.Bones[children[0]].Head
		default:
			var sum mathutil.Vec3
			for _, c := range children {
				sum = sum.Add(sk.Bones[c].Head)
			}
			b.Tail = sum.Scale(1 / float64(len(children)))
		}
		if b.Length() < opts.MinLength {
			b.Tail = b.Head.Add(mathutil.Vec3{0, 0.1, 0})
		}
		if b.Parent >= 0 {
			b.Connected = b.Head.Dist(sk.Bones[b.Parent].Tail) < connectTolerance
		}
	}
}

func partition(tree *Tree, opts Options) []Group {
	if tree.Len() == 0 {
		return nil
	}
	all := make([]int, tree.Len())
	for i := range all {
		all[i] = i
	}
	groups := []Group{{Name: CombinedGroupName, Root: -1, Combined: true, Bones: all}}
	if !opts.Split {
		return groups
	}

	roots := tree.Roots()
	split := roots
	if len(roots) == 1 {
		split = nil
		branch := tree.DescendToBranch(roots[0])
		if opts.SplitRootChildren && len(tree.Children(branch)) >= 2 {
			split = tree.Children(branch)
		}
	}
	for _, r := range split {
		groups = append(groups, Group{Name: tree.Name(r), Root: r, Bones: tree.Subtree(r)})
	}
	return groups
}

func hierarchyWarnings(tree *Tree) []error {
	var out []error
	for _, i := range tree.Duplicates() {
		out = append(out, &HierarchyError{Bones: []string{tree.Name(i)}, Err: ErrDuplicateBone})
	}
	for _, i := range tree.Unresolved() {
		out = append(out, &HierarchyError{Bones: []string{tree.Name(i)}, Err: ErrUnresolvedParent})
	}
	for _, cycle := range tree.Cycles() {
		names := make([]string, len(cycle))
		for k, i := range cycle {
			names[k] = tree.Name(i)
		}
		out = append(out, &HierarchyError{Bones: names, Err: ErrCyclicHierarchy})
	}
	return out
}
