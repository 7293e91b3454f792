package skin

import "strings"

// Remap resolves a bone index that is out of range for the target skeleton
// to an index inside it.
type Remap func(index int) int

// Remapper builds a Remap for a skeleton with the given bone names.
type Remapper interface {
	Plan(names []string) Remap
}

// ModuloRemapper wraps out-of-range indices with index mod N.
type ModuloRemapper struct{}

func (ModuloRemapper) Plan(names []string) Remap {
	n := len(names)
	return func(index int) int {
		if n == 0 {
			return -1
		}
		return index % n
	}
}

// Category classifies bones by name. A bone belongs to the category when its
// name contains any of Contains or starts with any of Prefixes. Matching is
// case-sensitive.
type Category struct {
	Name     string   `json:"name" yaml:"name"`
	Contains []string `json:"contains,omitempty" yaml:"contains,omitempty"`
	Prefixes []string `json:"prefixes,omitempty" yaml:"prefixes,omitempty"`
}

func (c Category) Match(name string) bool {
	for _, s := range c.Contains {
		if strings.Contains(name, s) {
			return true
		}
	}
	for _, p := range c.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// DefaultCategories returns the built-in bone classes. "tail" is classified
// but not part of DefaultOrder.
func DefaultCategories() []Category {
	return []Category{
		{Name: "spine", Contains: []string{"Spine", "Neck", "Head"}},
		{Name: "limb", Contains: []string{"Arm", "Hand", "Finger", "Clavicle"}},
		{Name: "leg", Contains: []string{"Thigh", "Calf", "Foot", "Toe", "HorseLink"}},
		{Name: "tail", Contains: []string{"Tail", "Ponytail"}},
		{Name: "generic", Prefixes: []string{"Bone"}},
	}
}

// DefaultOrder is the precedence in which categories are tried.
var DefaultOrder = []string{"spine", "limb", "leg", "generic"}

// CategoryRemapper maps an out-of-range index onto the first populated
// category in Order, cycling through that category's bones by the index's
// distance past the end of the skeleton. It is a heuristic: the result is a
// plausible bone, not the bone the mesh was authored against.
type CategoryRemapper struct {
	Categories []Category
	Order      []string
}

func NewCategoryRemapper() *CategoryRemapper {
	return &CategoryRemapper{Categories: DefaultCategories(), Order: DefaultOrder}
}

// Classify groups bone indices by category name. A bone may fall into
// several categories.
func (c *CategoryRemapper) Classify(names []string) map[string][]int {
	out := make(map[string][]int, len(c.Categories))
	for _, cat := range c.Categories {
		for i, name := range names {
			if cat.Match(name) {
				out[cat.Name] = append(out[cat.Name], i)
			}
		}
	}
	return out
}

func (c *CategoryRemapper) Plan(names []string) Remap {
	n := len(names)
	classes := c.Classify(names)
	var pool []int
	for _, name := range c.Order {
		if len(classes[name]) > 0 {
			pool = classes[name]
			break
		}
	}
	return func(index int) int {
		if n == 0 {
			return -1
		}
		if pool == nil {
			return index % n
		}
		offset := index - n
		if offset < 0 {
			offset = 0
		}
		return pool[offset%len(pool)]
	}
}
