// Package theme holds the dashboard palettes.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette the dashboard draws with
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	Metadata      lipgloss.Color
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color

	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Bar is the filled part of a breakdown bar, BarTrack the remainder
	Bar      lipgloss.Color
	BarTrack lipgloss.Color
	Heading  lipgloss.Color

	// ColumnA and ColumnB tag the two sides of a comparison
	ColumnA lipgloss.Color
	ColumnB lipgloss.Color

	Checked   lipgloss.Color
	Unchecked lipgloss.Color
}

var themes = map[string]func() Theme{
	"default":          DefaultTheme,
	"catppuccin-mocha": CatppuccinMochaTheme,
	"catppuccin":       CatppuccinMochaTheme,
}

// Names lists the configurable theme names
func Names() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GetTheme returns a theme by name, the default theme when unknown
func GetTheme(name string) Theme {
	if fn, ok := themes[name]; ok {
		return fn()
	}
	return DefaultTheme()
}

// ColumnColor returns the accent of a comparison column
func (t Theme) ColumnColor(b bool) lipgloss.Color {
	if b {
		return t.ColumnB
	}
	return t.ColumnA
}
