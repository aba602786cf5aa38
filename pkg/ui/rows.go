package ui

import (
	"fmt"

	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"

	"jobtree/pkg/analysis"
	"jobtree/pkg/tree"
)

// Row is one rendered line of the group tree: the flattened node plus
// its job rollup.
type Row struct {
	Node   tree.FlatNode
	Rollup *analysis.GroupRollup
}

// FilterValue returns the text fuzzy matching runs against.
func (r Row) FilterValue() string {
	return r.Node.Group.Name + " " + r.Node.Group.ID
}

// buildRows flattens the group hierarchy and attaches rollups. Rollups
// may be nil for synthesized placeholder nodes.
func buildRows(nodes []tree.FlatNode, rollups map[string]*analysis.GroupRollup) []Row {
	rows := make([]Row, len(nodes))
	for i, n := range nodes {
		rows[i] = Row{Node: n, Rollup: rollups[n.Group.ID]}
	}
	return rows
}

// filterRows returns indices of rows whose name or ID fuzzy-matches the
// query, in match-score order. An empty query matches everything in
// tree order.
func filterRows(rows []Row, query string) []int {
	if query == "" {
		indices := make([]int, len(rows))
		for i := range rows {
			indices[i] = i
		}
		return indices
	}

	targets := make([]string, len(rows))
	for i, r := range rows {
		targets[i] = r.FilterValue()
	}

	matches := fuzzy.Find(query, targets)
	indices := make([]int, len(matches))
	for i, m := range matches {
		indices[i] = m.Index
	}
	return indices
}

// renderRow renders one tree line: connector prefix, name, and job
// counts. Selected rows get the highlight style.
func renderRow(r Row, width int, selected bool, t Theme) string {
	prefix := tree.Prefix(r.Node)

	name := r.Node.Group.Name
	if name == "" {
		name = r.Node.Group.ID
	}

	nameStyle := t.Renderer.NewStyle().Foreground(t.Text)
	if r.Node.Synthesized {
		// Placeholder parents referenced but never defined.
		nameStyle = t.Renderer.NewStyle().Foreground(t.Muted).Italic(true)
	}
	if selected {
		nameStyle = nameStyle.Bold(true).Foreground(t.Primary)
	}

	line := t.Renderer.NewStyle().Foreground(t.Muted).Render(prefix) + nameStyle.Render(name)

	if r.Node.Group.Kind != "" {
		kindStyle := t.Renderer.NewStyle().Foreground(t.Secondary)
		line += kindStyle.Render(" [" + r.Node.Group.Kind + "]")
	}

	if r.Rollup != nil && r.Rollup.Subtree > 0 {
		countStyle := t.Renderer.NewStyle().Foreground(t.Subtext)
		line += countStyle.Render(fmt.Sprintf("  %d", r.Rollup.Subtree))
		if r.Rollup.StaleCount > 0 {
			warn := t.Renderer.NewStyle().Foreground(t.Warning)
			line += warn.Render(fmt.Sprintf(" !%d", r.Rollup.StaleCount))
		}
	}

	if width > 0 {
		line = truncate.StringWithTail(line, uint(width), "…")
	}
	return line
}
