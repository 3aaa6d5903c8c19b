package help

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/surveylens/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Group is a titled set of bindings
type Group struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"Tab", "Switch panel focus"},
		{"[ / ]", "Back / forward through visited views"},
		{"r, F5", "Reload the current filters"},
	}
}

// GetFilterKeys returns filter panel key bindings
func GetFilterKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k ↓/j", "Move"},
		{"←/h →/l", "Collapse or expand a category"},
		{"Enter, Space", "Toggle an option"},
		{"Backspace", "Clear the category under the cursor"},
		{"x", "Clear all filters"},
		{"p", "Open presets"},
	}
}

// GetCompareKeys returns comparison key bindings
func GetCompareKeys() []KeyBinding {
	return []KeyBinding{
		{"c", "Enter or leave comparison"},
		{"a / b", "Edit column A or column B"},
	}
}

// GetShareKeys returns sharing and export key bindings
func GetShareKeys() []KeyBinding {
	return []KeyBinding{
		{"u", "Open a share link"},
		{"y", "Copy the share link"},
		{"s", "Show the SQL of the selected chart"},
		{"e", "Export breakdowns to a file"},
	}
}

// Groups returns every binding group in display order
func Groups() []Group {
	return []Group{
		{"Global", GetGlobalKeys()},
		{"Filters", GetFilterKeys()},
		{"Comparison", GetCompareKeys()},
		{"Sharing", GetShareKeys()},
	}
}

// Markdown renders the bindings as a markdown document
func Markdown() string {
	var b strings.Builder
	b.WriteString("# surveylens keyboard shortcuts\n\n")
	for _, g := range Groups() {
		b.WriteString("## " + g.Title + "\n\n")
		b.WriteString("| Key | Action |\n|---|---|\n")
		for _, kb := range g.Keys {
			b.WriteString("| `" + strings.ReplaceAll(kb.Key, "|", "\\|") + "` | " + kb.Description + " |\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Press `?` or `Esc` to close help.\n")
	return b.String()
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	content := render(max(width-8, 20))

	lines := strings.Split(content, "\n")
	if limit := height - 4; limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(0, 1).
		Width(width - 4)

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func render(wrap int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, err := r.Render(Markdown()); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return plain()
}

// plain renders the bindings without markdown styling
func plain() string {
	sectionStyle := lipgloss.NewStyle().Bold(true)
	keyStyle := lipgloss.NewStyle().Width(16)

	var b strings.Builder
	for _, g := range Groups() {
		b.WriteString(sectionStyle.Render(g.Title) + "\n")
		for _, kb := range g.Keys {
			b.WriteString("  " + keyStyle.Render(kb.Key) + kb.Description + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))
	return b.String()
}
