package ui

import (
	"fmt"
	"strings"

	"jobtree/pkg/analysis"
)

// RenderStatsPanel renders the snapshot-wide summary: status breakdown
// with mini bars, then channels by volume.
func RenderStatsPanel(s analysis.Summary, width int, t Theme) string {
	var lines []string

	lines = append(lines, t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary).Render("SNAPSHOT"))
	lines = append(lines, t.Renderer.NewStyle().Foreground(t.Subtext).Render(
		fmt.Sprintf("%d jobs total", s.Total)))
	lines = append(lines, "")

	total := s.Total
	if total == 0 {
		total = 1
	}
	for _, st := range statusOrder {
		count := s.ByStatus[st]
		bar := RenderMiniBar(float64(count)/float64(total), 10, t)
		dot := t.Renderer.NewStyle().Foreground(statusColor(st, t)).Render("●")
		lines = append(lines, fmt.Sprintf(" %s %-10s %4d %s", dot, st, count, bar))
	}

	channels := s.Channels()
	if len(channels) > 0 {
		lines = append(lines, "")
		lines = append(lines, t.Renderer.NewStyle().Bold(true).Foreground(t.Secondary).Render("CHANNELS"))
		for _, ch := range channels {
			lines = append(lines, fmt.Sprintf("  %-16s %4d", ch, s.ByChannel[ch]))
		}
	}

	if s.OldestPending != nil {
		lines = append(lines, "")
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Warning).Render(
			"oldest pending: "+s.OldestPending.ID))
	}

	return strings.Join(lines, "\n")
}
