package skeleton

import "sort"

// Tree is a bone forest built from parent-name references. It never holds
// cycles: bones whose parent chain loops back are cut at the lowest declared
// index, which becomes a root.
type Tree struct {
	names    []string
	index    map[string]int
	parent   []int
	children [][]int

	unresolved []int
	duplicates []int
	cycles     [][]int
}

// NewTree builds the forest for bones given as parallel name/parent slices
// in declaration order. An empty or unknown parent name makes a root.
func NewTree(names, parents []string) *Tree {
	n := len(names)
	t := &Tree{
		names:    names,
		index:    make(map[string]int, n),
		parent:   make([]int, n),
		children: make([][]int, n),
	}
	for i, name := range names {
		if _, dup := t.index[name]; dup {
			t.duplicates = append(t.duplicates, i)
			continue
		}
		t.index[name] = i
	}
	for i := range names {
		t.parent[i] = -1
		p := ""
		if i < len(parents) {
			p = parents[i]
		}
		if p == "" {
			continue
		}
		pi, ok := t.index[p]
		if !ok {
			t.unresolved = append(t.unresolved, i)
			continue
		}
		t.parent[i] = pi
	}
	t.breakCycles()
	for i, p := range t.parent {
		if p >= 0 {
			t.children[p] = append(t.children[p], i)
		}
	}
	return t
}

// breakCycles walks every parent chain once. A chain that reaches a bone
// still on the current path is a cycle.
func (t *Tree) breakCycles() {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]uint8, len(t.parent))
	var path []int
	for start := range t.parent {
		path = path[:0]
		cur := start
		for cur >= 0 && state[cur] == unvisited {
			state[cur] = onPath
			path = append(path, cur)
			cur = t.parent[cur]
		}
		if cur >= 0 && state[cur] == onPath {
			var cycle []int
			for k := len(path) - 1; k >= 0; k-- {
				cycle = append(cycle, path[k])
				if path[k] == cur {
					break
				}
			}
			sort.Ints(cycle)
			t.parent[cycle[0]] = -1
			t.cycles = append(t.cycles, cycle)
		}
		for _, i := range path {
			state[i] = done
		}
	}
}

func (t *Tree) Len() int { return len(t.names) }

func (t *Tree) Name(i int) string { return t.names[i] }

// Index returns the declared index of name.
func (t *Tree) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Parent returns the parent index, or -1 for roots.
func (t *Tree) Parent(i int) int { return t.parent[i] }

// Children returns the children of i in declaration order.
func (t *Tree) Children(i int) []int { return t.children[i] }

// Roots returns the root bones in declaration order.
func (t *Tree) Roots() []int {
	var roots []int
	for i, p := range t.parent {
		if p < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// DescendToBranch follows single-child chains from i and returns the first
// bone with zero or several children.
func (t *Tree) DescendToBranch(i int) int {
	for steps := 0; steps < len(t.names); steps++ {
		if len(t.children[i]) != 1 {
			return i
		}
		i = t.children[i][0]
	}
	return i
}

// Subtree returns i and all its descendants, sorted by declared index.
func (t *Tree) Subtree(i int) []int {
	seen := make(map[int]bool)
	stack := []int{i}
	var out []int
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		stack = append(stack, t.children[cur]...)
	}
	sort.Ints(out)
	return out
}

// Walk returns every bone ordered so parents precede their children; roots
// and siblings keep declaration order.
func (t *Tree) Walk() []int {
	out := make([]int, 0, len(t.names))
	queue := t.Roots()
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, t.children[cur]...)
	}
	return out
}

// Unresolved returns bones whose parent name matched no bone.
func (t *Tree) Unresolved() []int { return t.unresolved }

// Duplicates returns bones whose name was already taken by an earlier bone.
func (t *Tree) Duplicates() []int { return t.duplicates }

// Cycles returns the bone sets of every cycle that was cut.
func (t *Tree) Cycles() [][]int { return t.cycles }
