package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobtree/pkg/analysis"
	"jobtree/pkg/model"
)

// Layout breakpoints for responsive rendering.
const (
	// BreakpointNarrow is the width below which the detail pane is hidden.
	BreakpointNarrow = 80

	// MinTreeWidth is the minimum width reserved for the tree pane.
	MinTreeWidth = 30

	// MinContentHeight is the minimum height for the scrollable tree.
	MinContentHeight = 5
)

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#44475A"))

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#BD93F9"))
)

// statusColor maps a job status to its theme color.
func statusColor(s model.Status, t Theme) lipgloss.AdaptiveColor {
	switch s {
	case model.StatusPending:
		return t.Pending
	case model.StatusRunning:
		return t.Running
	case model.StatusCompleted:
		return t.Completed
	case model.StatusFailed:
		return t.Failed
	case model.StatusCancelled:
		return t.Cancelled
	}
	return t.Muted
}

// RenderStatusBadge returns a styled short badge for a job status
func RenderStatusBadge(s model.Status, t Theme) string {
	var label string
	switch s {
	case model.StatusPending:
		label = "PEND"
	case model.StatusRunning:
		label = "RUN "
	case model.StatusCompleted:
		label = "DONE"
	case model.StatusFailed:
		label = "FAIL"
	case model.StatusCancelled:
		label = "CNCL"
	default:
		label = "????"
	}
	return t.Renderer.NewStyle().
		Foreground(statusColor(s, t)).
		Bold(true).
		Render(label)
}

// RenderHealthBadge returns a styled badge for a health classification
func RenderHealthBadge(h analysis.Health, t Theme) string {
	var color lipgloss.AdaptiveColor
	var label string
	switch h {
	case analysis.HealthOK:
		color, label = t.Success, "OK"
	case analysis.HealthStale:
		color, label = t.Warning, "STALE"
	case analysis.HealthExpired:
		color, label = t.Danger, "EXPIRED"
	case analysis.HealthExhausted:
		color, label = t.Danger, "EXHAUSTED"
	case analysis.HealthRetrying:
		color, label = t.Warning, "RETRYING"
	default:
		color, label = t.Muted, "?"
	}
	return t.Renderer.NewStyle().Foreground(color).Bold(true).Render(label)
}

// RenderMiniBar renders a mini horizontal bar for a value between 0 and 1
func RenderMiniBar(value float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}

	var barColor lipgloss.AdaptiveColor
	switch {
	case value >= 0.75:
		barColor = t.Completed
	case value >= 0.5:
		barColor = t.Running
	case value >= 0.25:
		barColor = t.Pending
	default:
		barColor = t.Secondary
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(barColor).Render(bar)
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Border).
		Render(strings.Repeat("─", width))
}
