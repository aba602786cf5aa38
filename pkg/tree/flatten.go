package tree

import (
	"sort"
	"strings"
)

// sortKey is the sibling ordering key: case-insensitive name, with a
// missing name sorting as the empty string.
func sortKey(n *node) string {
	return strings.ToLower(n.group.Name)
}

// sortSiblings orders a sibling group by name. The sort is stable so that
// equal names keep synthesis order, which makes repeated runs over the
// same input produce identical output.
func (b *builder) sortSiblings(idxs []int) {
	sort.SliceStable(idxs, func(i, j int) bool {
		return sortKey(&b.nodes[idxs[i]]) < sortKey(&b.nodes[idxs[j]])
	})
}

// frame is one pending node in the explicit traversal stack. An explicit
// stack rather than recursion keeps arbitrarily deep hierarchies from
// exhausting the call stack.
type frame struct {
	idx          int
	level        int
	isLast       bool
	ancestorLast []bool
}

// flatten walks the forest depth-first in pre-order, emitting one
// FlatNode per arena node with its local position metadata.
func (b *builder) flatten(roots []int) []FlatNode {
	out := make([]FlatNode, 0, len(b.nodes))
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{
			idx:    roots[i],
			isLast: i == len(roots)-1,
		})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &b.nodes[f.idx]

		allLast := f.isLast
		for _, last := range f.ancestorLast {
			if !last {
				allLast = false
				break
			}
		}

		out = append(out, FlatNode{
			Group:            n.group,
			Level:            f.level,
			IsLastChild:      f.isLast,
			AncestorLast:     f.ancestorLast,
			IsLastDescendant: allLast && len(n.children) == 0,
			HasChildren:      len(n.children) > 0,
			Synthesized:      n.synthesized,
		})

		if len(n.children) == 0 {
			continue
		}
		childAncestors := make([]bool, len(f.ancestorLast)+1)
		copy(childAncestors, f.ancestorLast)
		childAncestors[len(f.ancestorLast)] = f.isLast
		for k := len(n.children) - 1; k >= 0; k-- {
			stack = append(stack, frame{
				idx:          n.children[k],
				level:        f.level + 1,
				isLast:       k == len(n.children)-1,
				ancestorLast: childAncestors,
			})
		}
	}
	return out
}

// computeConnectors fills ContinueVertical for every flattened node. For
// node i and ancestor depth s, a bounded forward scan decides whether the
// vertical line at depth s continues through row i: the first later row
// at level s+1 means yes, and returning to level s or shallower (or
// running out of rows) means no. Worst case O(n²) over the sequence;
// fine for the list sizes a terminal tree view shows, but not linear.
func computeConnectors(flat []FlatNode) {
	for i := range flat {
		level := flat[i].Level
		if level == 0 {
			flat[i].ContinueVertical = nil
			continue
		}
		cv := make([]bool, level)
		for s := 0; s < level; s++ {
			for j := i + 1; j < len(flat); j++ {
				if flat[j].Level == s+1 {
					cv[s] = true
					break
				}
				if flat[j].Level <= s {
					break
				}
			}
		}
		flat[i].ContinueVertical = cv
	}
}

// Prefix renders the connector-line prefix for a row: one two-cell
// segment per ancestor depth, vertical bar where the line continues,
// then the corner chosen by IsLastChild. Roots get no prefix.
func Prefix(n FlatNode) string {
	if n.Level == 0 {
		return ""
	}
	var sb strings.Builder
	for s := 0; s < n.Level-1; s++ {
		if n.ContinueVertical[s] {
			sb.WriteString("│ ")
		} else {
			sb.WriteString("  ")
		}
	}
	if n.IsLastChild {
		sb.WriteString("└─")
	} else {
		sb.WriteString("├─")
	}
	return sb.String()
}
