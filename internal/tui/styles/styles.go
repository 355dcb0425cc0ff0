package styles

import (
	"github.com/charmbracelet/lipgloss"

	"pictag/internal/config"
)

// Styles defines the core UI styles
type Styles struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Header     lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Muted      lipgloss.Style
	Help       lipgloss.Style
	Info       lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Panel      lipgloss.Style
}

// New builds the styles from a theme
func New(theme config.Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Primary)),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Info)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Emphasis)).
			Bold(true),
		Unselected: lipgloss.NewStyle(),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Info)),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Info)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Warning)),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Error)).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.Success)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.Border)).
			Padding(0, 1),
	}
}

// Badge renders a category name on its own colour
func (s Styles) Badge(name, color string) string {
	st := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	if color != "" {
		st = st.Background(lipgloss.Color(color)).Foreground(lipgloss.Color("#000000"))
	} else {
		st = st.Reverse(true)
	}
	return st.Render(name)
}
