package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/scholaradmin/internal/status"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorPink     lipgloss.Color = "#f5c2e7"
	colorPeach    lipgloss.Color = "#fab387"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface0 lipgloss.Color = "#313244"
	colorBase     lipgloss.Color = "#1e1e2e"
)

// Semantic aliases. Status colors come from the status package so badges and
// charts agree.
const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = status.Green
	colorError   = status.Red
	colorWarning = status.Amber
	colorInfo    = colorTeal
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
	textStyle     = lipgloss.NewStyle().Foreground(colorText)
	selectedStyle = lipgloss.NewStyle().Foreground(colorBase).Background(colorFocus).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)

	tabStyle       = lipgloss.NewStyle().Foreground(colorSubtext0).Padding(0, 2)
	activeTabStyle = lipgloss.NewStyle().Foreground(colorBase).Background(colorAccent).Bold(true).Padding(0, 2)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorOverlay1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface2).
			Padding(0, 2)
	cardLabelStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	cardValueStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFocus).
			Background(colorSurface0).
			Padding(1, 2)
)

// badge renders a status pill in its shared status color.
func badge(s status.Status) string {
	return lipgloss.NewStyle().
		Foreground(status.Color(s)).
		Bold(true).
		Render("● " + status.Label(s))
}

func alertStyle(kind alertKind) lipgloss.Style {
	border := colorError
	if kind == alertSuccess {
		border = colorSuccess
	}
	return modalStyle.BorderForeground(border)
}
