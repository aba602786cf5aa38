package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"jobtree/pkg/analysis"
	"jobtree/pkg/model"
)

// statusOrder fixes the display order of status breakdowns.
var statusOrder = []model.Status{
	model.StatusPending,
	model.StatusRunning,
	model.StatusCompleted,
	model.StatusFailed,
	model.StatusCancelled,
}

// treeHeight is the number of tree rows that fit on screen after the
// header, footer, and panel borders.
func (m Model) treeHeight() int {
	h := m.height - 6
	if h < MinContentHeight {
		h = MinContentHeight
	}
	return h
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	if m.help.IsVisible() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View())
	}

	header := m.renderHeader()
	body := m.renderBody()
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render("jobtree")

	parts := []string{title}
	if m.cfg.Channel != "" {
		parts = append(parts, t.Renderer.NewStyle().Foreground(t.Running).Render("channel:"+m.cfg.Channel))
	}
	counts := fmt.Sprintf("%d groups · %d jobs", len(m.rows), m.summary.Total)
	parts = append(parts, t.Renderer.NewStyle().Foreground(t.Subtext).Render(counts))

	return strings.Join(parts, "  ") + "\n" + RenderDivider(m.width, t)
}

func (m Model) renderBody() string {
	h := m.treeHeight()

	if m.width < BreakpointNarrow {
		return m.renderTreePane(m.width-2, h, true)
	}

	treeWidth := m.width / 2
	if treeWidth < MinTreeWidth {
		treeWidth = MinTreeWidth
	}
	detailWidth := m.width - treeWidth - 4

	treePane := m.renderTreePane(treeWidth-2, h, !m.searching)

	var detail string
	if m.showStats {
		detail = RenderStatsPanel(m.summary, detailWidth, m.theme)
	} else {
		detail = m.renderDetailPane(detailWidth, h)
	}

	left := FocusedPanelStyle.Width(treeWidth).Height(h).Render(treePane)
	right := PanelStyle.Width(detailWidth + 2).Height(h).Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderTreePane(width, height int, _ bool) string {
	if len(m.visible) == 0 {
		empty := "no groups"
		if m.search.Value() != "" {
			empty = "no matches for " + m.search.Value()
		}
		return m.theme.Renderer.NewStyle().Foreground(m.theme.Muted).Render(empty)
	}

	var b strings.Builder
	end := m.offset + height
	if end > len(m.visible) {
		end = len(m.visible)
	}
	for i := m.offset; i < end; i++ {
		r := m.rows[m.visible[i]]
		b.WriteString(renderRow(r, width, i == m.cursor, m.theme))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderDetailPane(width, height int) string {
	t := m.theme
	r := m.selectedRow()
	if r == nil {
		return t.Renderer.NewStyle().Foreground(t.Muted).Render("nothing selected")
	}

	g := r.Node.Group
	var lines []string

	name := g.Name
	if name == "" {
		name = g.ID
	}
	lines = append(lines, t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render(name))

	sub := t.Renderer.NewStyle().Foreground(t.Subtext)
	lines = append(lines, sub.Render("id: "+g.ID))
	if g.Kind != "" {
		lines = append(lines, sub.Render("kind: "+g.Kind))
	}
	if r.Node.Synthesized {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Muted).Italic(true).Render("referenced but never defined"))
	} else if !g.Active {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Muted).Render("inactive"))
	}
	lines = append(lines, "")

	if r.Rollup != nil {
		lines = append(lines, renderRollup(r.Rollup, t)...)
		lines = append(lines, "")
	}

	jobs := m.jobsByGroup[g.ID]
	if len(jobs) > 0 {
		lines = append(lines, t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary).Render("JOBS"))
		shown := jobs
		maxJobs := height - len(lines) - 2
		if maxJobs < 1 {
			maxJobs = 1
		}
		if len(shown) > maxJobs {
			shown = shown[:maxJobs]
		}
		healthCfg := analysis.HealthConfig{
			StaleThreshold:   m.cfg.StaleThreshold,
			RunningThreshold: m.cfg.RunningThreshold,
		}
		now := time.Now().UTC()
		for i := range shown {
			j := &shown[i]
			label := j.Func
			if label == "" {
				label = j.ID
			}
			label = runewidth.Truncate(label, width-18, "…")
			line := fmt.Sprintf("%s %s", RenderStatusBadge(j.Status, t), label)
			if h := analysis.Classify(j, now, healthCfg); h != analysis.HealthOK {
				line += " " + RenderHealthBadge(h, t)
			}
			lines = append(lines, line)
		}
		if len(jobs) > len(shown) {
			lines = append(lines, sub.Render(fmt.Sprintf("… %d more", len(jobs)-len(shown))))
		}
	}

	return strings.Join(lines, "\n")
}

// renderRollup renders the per-status breakdown for a group's subtree.
func renderRollup(r *analysis.GroupRollup, t Theme) []string {
	total := r.Subtree
	if total == 0 {
		return []string{t.Renderer.NewStyle().Foreground(t.Muted).Render("no jobs")}
	}

	lines := []string{
		t.Renderer.NewStyle().Foreground(t.Subtext).Render(
			fmt.Sprintf("%d jobs here, %d in subtree", r.Direct, r.Subtree)),
	}
	for _, s := range statusOrder {
		count := r.ByStatus[s]
		if count == 0 {
			continue
		}
		bar := RenderMiniBar(float64(count)/float64(total), 10, t)
		dot := t.Renderer.NewStyle().Foreground(statusColor(s, t)).Render("●")
		lines = append(lines, fmt.Sprintf(" %s %-10s %3d %s", dot, s, count, bar))
	}
	if r.StaleCount > 0 {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Warning).Render(
			fmt.Sprintf(" ! %d stuck", r.StaleCount)))
	}
	return lines
}

func (m Model) renderFooter() string {
	t := m.theme

	if m.searching {
		return RenderDivider(m.width, t) + "\n" + m.search.View()
	}

	hints := "j/k move · / search · y yank · s stats · ? help · q quit"
	line := t.Renderer.NewStyle().Foreground(t.Muted).Render(hints)
	if m.status != "" {
		line += "  " + t.Renderer.NewStyle().Foreground(t.Warning).Render(m.status)
	}
	return RenderDivider(m.width, t) + "\n" + line
}
