package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme maps the Mocha flavour onto the dashboard.
// Palette: https://github.com/catppuccin/catppuccin
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name:          "catppuccin-mocha",
		Foreground:    lipgloss.Color("#cdd6f4"), // text
		Metadata:      lipgloss.Color("#6c7086"), // overlay0
		Border:        lipgloss.Color("#45475a"), // surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // blue
		Selection:     lipgloss.Color("#313244"), // surface0
		Warning:       lipgloss.Color("#f9e2af"), // yellow
		Error:         lipgloss.Color("#f38ba8"), // red
		Info:          lipgloss.Color("#89dceb"), // sky
		Bar:           lipgloss.Color("#b4befe"), // lavender
		BarTrack:      lipgloss.Color("#313244"),
		Heading:       lipgloss.Color("#cba6f7"), // mauve
		ColumnA:       lipgloss.Color("#89b4fa"),
		ColumnB:       lipgloss.Color("#fab387"), // peach
		Checked:       lipgloss.Color("#a6e3a1"), // green
		Unchecked:     lipgloss.Color("#6c7086"),
	}
}
