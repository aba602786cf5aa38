package ui

import "github.com/charmbracelet/lipgloss"

// Theme carries the adaptive colors used across the UI. All styles are
// created through the theme's renderer so tests can use a plain one.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Base
	Text    lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	// Accents
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	// Job status colors
	Pending   lipgloss.AdaptiveColor
	Running   lipgloss.AdaptiveColor
	Completed lipgloss.AdaptiveColor
	Failed    lipgloss.AdaptiveColor
	Cancelled lipgloss.AdaptiveColor

	// Health colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
}

// DefaultTheme returns the Dracula-inspired palette.
func DefaultTheme(renderer *lipgloss.Renderer) Theme {
	return Theme{
		Renderer: renderer,

		Text:    lipgloss.AdaptiveColor{Light: "#282A36", Dark: "#F8F8F2"},
		Subtext: lipgloss.AdaptiveColor{Light: "#44475A", Dark: "#BFBFBF"},
		Muted:   lipgloss.AdaptiveColor{Light: "#6272A4", Dark: "#6272A4"},
		Border:  lipgloss.AdaptiveColor{Light: "#BFBFBF", Dark: "#44475A"},

		Primary:   lipgloss.AdaptiveColor{Light: "#7C4DFF", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#6272A4", Dark: "#6272A4"},

		Pending:   lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F1FA8C"},
		Running:   lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#8BE9FD"},
		Completed: lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#50FA7B"},
		Failed:    lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF5555"},
		Cancelled: lipgloss.AdaptiveColor{Light: "#6272A4", Dark: "#6272A4"},

		Success: lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#50FA7B"},
		Warning: lipgloss.AdaptiveColor{Light: "#B8661B", Dark: "#FFB86C"},
		Danger:  lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF5555"},
	}
}
