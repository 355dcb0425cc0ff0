package main

import (
	"github.com/charmbracelet/lipgloss"

	"pictag/internal/config"
)

var (
	primaryStyle = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle()
	warningStyle = lipgloss.NewStyle()
	errorStyle   = lipgloss.NewStyle().Bold(true)
	infoStyle    = lipgloss.NewStyle()
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

// applyTextTheme colours the command output helpers
func applyTextTheme(theme config.Theme) {
	primaryStyle = primaryStyle.Foreground(lipgloss.Color(theme.Primary))
	successStyle = successStyle.Foreground(lipgloss.Color(theme.Success))
	warningStyle = warningStyle.Foreground(lipgloss.Color(theme.Warning))
	errorStyle = errorStyle.Foreground(lipgloss.Color(theme.Error))
	infoStyle = infoStyle.Foreground(lipgloss.Color(theme.Info))
}

func primaryText(s string) string { return primaryStyle.Render(s) }
func successText(s string) string { return successStyle.Render(s) }
func warningText(s string) string { return warningStyle.Render(s) }
func errorText(s string) string   { return errorStyle.Render(s) }
func infoText(s string) string    { return infoStyle.Render(s) }
func mutedText(s string) string   { return mutedStyle.Render(s) }

// swatch renders a small block in a category's colour
func swatch(color string) string {
	if color == "" {
		return "  "
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(color)).Render("  ")
}
