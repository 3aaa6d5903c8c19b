package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Panel is a bordered box with a title row. Badge is drawn right-aligned
// on the title row, e.g. the number of active filters.
type Panel struct {
	Title   string
	Badge   string
	Content string
	Width   int
	Height  int
	Style   lipgloss.Style
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	body := p.Content
	if header := p.header(); header != "" {
		body = header + "\n" + body
	}
	return p.Style.
		Width(p.Width).
		Height(p.Height).
		MaxHeight(p.Height + 2).
		Border(lipgloss.RoundedBorder()).
		Render(body)
}

func (p *Panel) header() string {
	if p.Title == "" {
		return ""
	}
	inner := max(p.Width-2, 1)
	badge := runewidth.Truncate(p.Badge, inner/2, "")
	title := runewidth.Truncate(p.Title, max(inner-runewidth.StringWidth(badge)-1, 1), "…")

	left := lipgloss.NewStyle().Bold(true).Render(title)
	if badge == "" {
		return " " + left
	}
	gap := inner - runewidth.StringWidth(title) - runewidth.StringWidth(badge)
	return " " + left + strings.Repeat(" ", max(gap, 1)) + lipgloss.NewStyle().Faint(true).Render(badge)
}

// ContentHeight returns the lines available below the title
func (p *Panel) ContentHeight() int {
	if p.Title != "" {
		return max(p.Height-1, 0)
	}
	return p.Height
}
