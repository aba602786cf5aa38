// Package tree turns a flat list of groups with embedded parent references
// into a flattened, render-ready hierarchy with connector-line metadata.
package tree

import (
	"jobtree/pkg/model"
)

// FlatNode is one row of the flattened hierarchy, decorated with the
// position metadata a renderer needs to draw connector lines.
type FlatNode struct {
	Group model.Group

	// Level is the zero-based depth; 0 for roots.
	Level int

	// IsLastChild is true if this node sorts last in its sibling group
	// (the root list counts as a sibling group).
	IsLastChild bool

	// AncestorLast holds, for each ancestor from the root down, that
	// ancestor's own IsLastChild. Length equals Level.
	AncestorLast []bool

	// IsLastDescendant is true for a leaf whose entire ancestor chain
	// consists of last children: the terminal row of the whole subtree.
	IsLastDescendant bool

	// ContinueVertical has one entry per ancestor depth s < Level:
	// true when a vertical connector line at that depth must be drawn
	// through this node's row.
	ContinueVertical []bool

	// HasChildren is true for internal nodes.
	HasChildren bool

	// Synthesized is true when the group never appeared as a standalone
	// record and was created from an embedded parent reference.
	Synthesized bool
}

// node is an arena entry. Relationships are integer indices into the
// arena, so no pointer cycle can ever form regardless of input.
type node struct {
	group       model.Group
	synthesized bool
	parent      int // arena index, -1 for roots
	children    []int
}

type builder struct {
	nodes []node
	index map[string]int // group ID -> arena index
}

// Flatten runs the whole pipeline: synthesize nodes from the input
// (including placeholders for parents referenced but absent), link and
// sort the hierarchy, and flatten it depth-first with connector
// annotations. It is a pure function: nothing survives between calls and
// concurrent callers never share state. The input slice is not modified.
func Flatten(groups []model.Group) []FlatNode {
	b := &builder{index: make(map[string]int, len(groups))}
	b.synthesize(groups)
	roots := b.link()
	flat := b.flatten(roots)
	computeConnectors(flat)
	return flat
}

// synthesize makes one pass over the input, creating exactly one node per
// distinct id seen either as a record or as a parent reference. A
// placeholder created from an embedded reference carries only the fields
// the reference supplied; if the full record shows up later in the same
// input it replaces the placeholder's fields. Duplicate standalone
// records keep the first occurrence.
func (b *builder) synthesize(groups []model.Group) {
	for i := range groups {
		g := groups[i]
		if g.ID != "" {
			if idx, ok := b.index[g.ID]; ok {
				if b.nodes[idx].synthesized {
					b.nodes[idx].group = g.Clone()
					b.nodes[idx].synthesized = false
				}
			} else {
				b.add(g.Clone(), false)
			}
		}

		if g.Parent == nil || g.Parent.ID == "" {
			continue
		}
		if _, ok := b.index[g.Parent.ID]; !ok {
			b.add(model.Group{
				ID:   g.Parent.ID,
				Name: g.Parent.Name,
				Kind: g.Parent.Kind,
			}, true)
		}
	}
}

func (b *builder) add(g model.Group, synthesized bool) {
	b.index[g.ID] = len(b.nodes)
	b.nodes = append(b.nodes, node{group: g, synthesized: synthesized, parent: -1})
}

// link resolves every node's parent index, breaks cycles, and builds the
// sorted children lists. Returns the sorted root indices.
func (b *builder) link() []int {
	// A node's parent comes from its own record; placeholders have none.
	for i := range b.nodes {
		n := &b.nodes[i]
		if n.synthesized || n.group.Parent == nil {
			continue
		}
		if p, ok := b.index[n.group.Parent.ID]; ok {
			n.parent = p
		}
	}

	b.breakCycles()

	var roots []int
	for i := range b.nodes {
		if p := b.nodes[i].parent; p >= 0 {
			b.nodes[p].children = append(b.nodes[p].children, i)
		} else {
			roots = append(roots, i)
		}
	}

	b.sortSiblings(roots)
	for i := range b.nodes {
		b.sortSiblings(b.nodes[i].children)
	}
	return roots
}

// Parent-chain walk states for cycle breaking.
const (
	chainUnvisited = iota
	chainOnPath
	chainDone
)

// breakCycles walks each node's parent chain with a visited set. When the
// walk revisits a node already on the current path there is a cycle; the
// first-detected revisiting node is forced to root. Silent structural
// degradation, never an error: the caller gets a forest regardless.
func (b *builder) breakCycles() {
	state := make([]int, len(b.nodes))
	path := make([]int, 0, 16)

	for i := range b.nodes {
		if state[i] != chainUnvisited {
			continue
		}
		path = path[:0]
		cur := i
		for cur != -1 && state[cur] == chainUnvisited {
			state[cur] = chainOnPath
			path = append(path, cur)
			cur = b.nodes[cur].parent
		}
		if cur != -1 && state[cur] == chainOnPath {
			b.nodes[cur].parent = -1
		}
		for _, p := range path {
			state[p] = chainDone
		}
	}
}
