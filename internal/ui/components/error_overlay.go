package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/surveylens/internal/ui/theme"
)

// ErrorOverlay is a centered dialog showing one error
type ErrorOverlay struct {
	Title   string
	Message string
	// Fatal hides the dismiss hint; the session cannot continue
	Fatal bool
	Width int
	Theme theme.Theme
}

// NewErrorOverlay creates an error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Theme: th, Width: 60}
}

// SetError sets the displayed error
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Error).
		Bold(true)
	bodyStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Foreground).
		Width(e.Width - 4)
	hintStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Metadata).
		Italic(true)

	hint := "Enter/Esc to dismiss"
	if e.Fatal {
		hint = "q to quit"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(e.Title),
		"",
		bodyStyle.Render(e.Message),
		"",
		hintStyle.Render(hint),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(content)
}
