package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme is a 256-color dark palette
func DefaultTheme() Theme {
	return Theme{
		Name:          "default",
		Foreground:    lipgloss.Color("252"),
		Metadata:      lipgloss.Color("244"),
		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Warning:       lipgloss.Color("220"),
		Error:         lipgloss.Color("196"),
		Info:          lipgloss.Color("75"),
		Bar:           lipgloss.Color("62"),
		BarTrack:      lipgloss.Color("237"),
		Heading:       lipgloss.Color("75"),
		ColumnA:       lipgloss.Color("75"),
		ColumnB:       lipgloss.Color("214"),
		Checked:       lipgloss.Color("42"),
		Unchecked:     lipgloss.Color("244"),
	}
}
