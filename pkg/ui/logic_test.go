package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobtree/pkg/analysis"
	"jobtree/pkg/config"
	"jobtree/pkg/loader"
	"jobtree/pkg/model"
	"jobtree/pkg/tree"
)

func testSnapshot() *loader.Snapshot {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &loader.Snapshot{
		Groups: []model.Group{
			{ID: "root", Name: "Platform", Active: true, CreatedAt: created},
			{ID: "ingest", Name: "Ingest", Parent: &model.GroupRef{ID: "root"}, Active: true, CreatedAt: created},
			{ID: "reports", Name: "Reports", Parent: &model.GroupRef{ID: "root"}, Active: true, CreatedAt: created},
		},
		Jobs: []model.Job{
			{ID: "j-1", GroupID: "ingest", Channel: "default", Status: model.StatusCompleted, Created: created},
			{ID: "j-2", GroupID: "reports", Channel: "reports", Status: model.StatusPending, Created: created},
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestNewModelBuildsTree(t *testing.T) {
	m := NewModel(testSnapshot(), config.Default())

	if len(m.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.rows))
	}
	// Pre-order: root first, then children sorted by name.
	if m.rows[0].Node.Group.ID != "root" {
		t.Errorf("first row should be root, got %s", m.rows[0].Node.Group.ID)
	}
	if m.rows[1].Node.Group.ID != "ingest" || m.rows[2].Node.Group.ID != "reports" {
		t.Errorf("children should be sorted by name: got %s, %s",
			m.rows[1].Node.Group.ID, m.rows[2].Node.Group.ID)
	}
}

func TestChannelFilterScopesJobs(t *testing.T) {
	cfg := config.Default()
	cfg.Channel = "reports"
	m := NewModel(testSnapshot(), cfg)

	if m.summary.Total != 1 {
		t.Errorf("summary should only count channel jobs, got %d", m.summary.Total)
	}
	if len(m.jobsByGroup["ingest"]) != 0 {
		t.Error("ingest jobs are on another channel and should be filtered out")
	}
}

func TestFilterRows(t *testing.T) {
	m := NewModel(testSnapshot(), config.Default())

	indices := filterRows(m.rows, "")
	if len(indices) != 3 {
		t.Fatalf("empty query should match all rows, got %d", len(indices))
	}
	for i, idx := range indices {
		if idx != i {
			t.Errorf("empty query should keep tree order, indices[%d] = %d", i, idx)
		}
	}

	indices = filterRows(m.rows, "rep")
	if len(indices) != 1 || m.rows[indices[0]].Node.Group.ID != "reports" {
		t.Errorf("query 'rep' should match only reports, got %v", indices)
	}
}

func TestNavigationKeys(t *testing.T) {
	m := NewModel(testSnapshot(), config.Default())
	m.width = 120
	m.height = 40

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("after j, cursor = %d, want 1", m.cursor)
	}

	next, _ = m.Update(keyMsg("G"))
	m = next.(Model)
	if m.cursor != 2 {
		t.Errorf("after G, cursor = %d, want 2", m.cursor)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("after k, cursor = %d, want 1", m.cursor)
	}

	next, _ = m.Update(keyMsg("g"))
	m = next.(Model)
	if m.cursor != 0 {
		t.Errorf("after g, cursor = %d, want 0", m.cursor)
	}
}

func TestSearchNarrowsAndRestores(t *testing.T) {
	m := NewModel(testSnapshot(), config.Default())

	next, _ := m.Update(keyMsg("/"))
	m = next.(Model)
	if !m.searching {
		t.Fatal("/ should enter search mode")
	}

	for _, ch := range "ing" {
		next, _ = m.Update(keyMsg(string(ch)))
		m = next.(Model)
	}
	if len(m.visible) != 1 || m.rows[m.visible[0]].Node.Group.ID != "ingest" {
		t.Fatalf("search 'ing' should narrow to ingest, visible = %v", m.visible)
	}

	next, _ = m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyEscape}))
	m = next.(Model)
	if m.searching {
		t.Error("esc should leave search mode")
	}
	if len(m.visible) != 3 {
		t.Errorf("esc should restore all rows, got %d", len(m.visible))
	}
}

func TestSnapshotMsgReloads(t *testing.T) {
	m := NewModel(testSnapshot(), config.Default())

	snap := testSnapshot()
	snap.Groups = append(snap.Groups, model.Group{
		ID: "new", Name: "Archive", Parent: &model.GroupRef{ID: "root"}, Active: true,
	})

	next, _ := m.Update(SnapshotMsg{Snapshot: snap})
	m = next.(Model)
	if len(m.rows) != 4 {
		t.Errorf("reload should pick up new group, got %d rows", len(m.rows))
	}
	if m.status == "" {
		t.Error("reload should flash a status message")
	}
}

func TestRenderRowShowsConnectorsAndCounts(t *testing.T) {
	renderer := lipgloss.DefaultRenderer()
	theme := DefaultTheme(renderer)

	m := NewModel(testSnapshot(), config.Default())

	// reports is the last child of root.
	row := m.rows[2]
	if !row.Node.IsLastChild {
		t.Fatal("reports should be last child")
	}
	line := renderRow(row, 80, false, theme)
	if !strings.Contains(line, "└─") {
		t.Errorf("last child should render corner glyph, got %q", line)
	}
	if !strings.Contains(line, "Reports") {
		t.Errorf("row should contain the group name, got %q", line)
	}
	if !strings.Contains(line, "1") {
		t.Errorf("row should show the subtree job count, got %q", line)
	}

	line = renderRow(m.rows[1], 80, false, theme)
	if !strings.Contains(line, "├─") {
		t.Errorf("middle child should render tee glyph, got %q", line)
	}
}

func TestRenderRowSynthesizedPlaceholder(t *testing.T) {
	renderer := lipgloss.DefaultRenderer()
	theme := DefaultTheme(renderer)

	snap := &loader.Snapshot{
		Groups: []model.Group{
			{ID: "child", Name: "Child", Parent: &model.GroupRef{ID: "ghost", Name: "Ghost"}},
		},
	}
	m := NewModel(snap, config.Default())

	if len(m.rows) != 2 {
		t.Fatalf("expected placeholder + child, got %d rows", len(m.rows))
	}
	if !m.rows[0].Node.Synthesized {
		t.Fatal("first row should be the synthesized placeholder")
	}
	line := renderRow(m.rows[0], 80, false, theme)
	if !strings.Contains(line, "Ghost") {
		t.Errorf("placeholder should render its referenced name, got %q", line)
	}
}

func TestStatsPanelRendersCounts(t *testing.T) {
	renderer := lipgloss.DefaultRenderer()
	theme := DefaultTheme(renderer)

	s := analysis.Summarize(testSnapshot().Jobs)
	panel := RenderStatsPanel(s, 60, theme)

	if !strings.Contains(panel, "2 jobs total") {
		t.Errorf("panel should show total, got %q", panel)
	}
	if !strings.Contains(panel, "reports") || !strings.Contains(panel, "default") {
		t.Errorf("panel should list channels, got %q", panel)
	}
	if !strings.Contains(panel, "oldest pending: j-2") {
		t.Errorf("panel should show oldest pending, got %q", panel)
	}
}

func TestPrefixDepth(t *testing.T) {
	snap := &loader.Snapshot{
		Groups: []model.Group{
			{ID: "a", Name: "A"},
			{ID: "b", Name: "B", Parent: &model.GroupRef{ID: "a"}},
			{ID: "c", Name: "C", Parent: &model.GroupRef{ID: "b"}},
		},
	}
	m := NewModel(snap, config.Default())

	if got := tree.Prefix(m.rows[0].Node); got != "" {
		t.Errorf("root prefix = %q, want empty", got)
	}
	if got := tree.Prefix(m.rows[2].Node); got != "  └─" {
		t.Errorf("grandchild prefix = %q", got)
	}
}
