// Package terminal renders planner views for the command line.
package terminal

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors of one appearance
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
}

var (
	Success = lipgloss.Color("#4caf50")
	Warning = lipgloss.Color("#ff9800")
	Danger  = lipgloss.Color("#f44336")
)

func DarkTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#f2f2f2"),
		Primary:    lipgloss.Color("#4a9eff"),
		Accent:     lipgloss.Color("#8bc34a"),
		Muted:      lipgloss.Color("#7a8699"),
		Border:     lipgloss.Color("#2a3850"),
	}
}

func LightTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#101f38"),
		Primary:    lipgloss.Color("#1565c0"),
		Accent:     lipgloss.Color("#558b2f"),
		Muted:      lipgloss.Color("#6b7280"),
		Border:     lipgloss.Color("#dce0e5"),
	}
}

// ThemeByName maps the theme setting to a Theme
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles holds the styled components
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Title   lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Tag     lipgloss.Style
	Card    lipgloss.Style
	Timer   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles creates the styles for theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Underline(true),

		Title: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Tag: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Timer: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Primary),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),
	}
}
