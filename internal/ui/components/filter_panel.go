package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
	"github.com/rebeliceyang/surveylens/internal/ui/theme"
)

// ToggleFilterMsg is sent when an option is checked or unchecked
type ToggleFilterMsg struct {
	Key   string
	Value string
}

// ClearCategoryMsg is sent to empty one category
type ClearCategoryMsg struct {
	Key string
}

type filterRow struct {
	key    string
	value  string
	label  string
	header bool
}

// FilterPanel lists categories with their options as checkboxes
type FilterPanel struct {
	Width  int
	Height int
	Theme  theme.Theme

	reg      *registry.Registry
	options  map[string][]string
	state    models.FilterState
	expanded map[string]bool
	rows     []filterRow
	cursor   int
	offset   int
}

// NewFilterPanel creates a panel over the registry's categories
func NewFilterPanel(reg *registry.Registry, th theme.Theme) *FilterPanel {
	fp := &FilterPanel{
		Theme:    th,
		reg:      reg,
		state:    reg.NewState(),
		expanded: make(map[string]bool),
	}
	fp.rebuild()
	return fp
}

// SetOptions sets the live option values; categories without live values
// use the registry's options
func (fp *FilterPanel) SetOptions(options map[string][]string) {
	fp.options = options
	fp.rebuild()
}

// SetState sets the checked values
func (fp *FilterPanel) SetState(state models.FilterState) {
	fp.state = state
}

// Cursor returns the category key and value under the cursor
func (fp *FilterPanel) Cursor() (key, value string) {
	if fp.cursor < 0 || fp.cursor >= len(fp.rows) {
		return "", ""
	}
	r := fp.rows[fp.cursor]
	return r.key, r.value
}

func (fp *FilterPanel) values(key string) []string {
	if vals := fp.options[key]; len(vals) > 0 {
		return vals
	}
	return fp.reg.StaticOptions(key)
}

func (fp *FilterPanel) rebuild() {
	fp.rows = fp.rows[:0]
	for _, c := range fp.reg.Categories() {
		fp.rows = append(fp.rows, filterRow{key: c.Key, label: c.Name, header: true})
		if !fp.expanded[c.Key] {
			continue
		}
		for _, v := range fp.values(c.Key) {
			fp.rows = append(fp.rows, filterRow{key: c.Key, value: v, label: fp.reg.Label(c.Key, v)})
		}
	}
	fp.cursor = min(fp.cursor, max(len(fp.rows)-1, 0))
}

// MoveCursor moves the cursor by delta rows
func (fp *FilterPanel) MoveCursor(delta int) {
	fp.cursor = max(0, min(fp.cursor+delta, len(fp.rows)-1))
	fp.ensureVisible()
}

func (fp *FilterPanel) ensureVisible() {
	h := max(fp.Height, 1)
	if fp.cursor < fp.offset {
		fp.offset = fp.cursor
	}
	if fp.cursor >= fp.offset+h {
		fp.offset = fp.cursor - h + 1
	}
}

// Update handles keyboard input
func (fp *FilterPanel) Update(msg tea.KeyMsg) (*FilterPanel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		fp.MoveCursor(-1)
	case "down", "j":
		fp.MoveCursor(1)
	case "pgup", "ctrl+u":
		fp.MoveCursor(-max(fp.Height/2, 1))
	case "pgdown", "ctrl+d":
		fp.MoveCursor(max(fp.Height/2, 1))
	case "left", "h":
		if key, _ := fp.Cursor(); key != "" && fp.expanded[key] {
			fp.expanded[key] = false
			fp.rebuild()
			fp.cursor = fp.headerIndex(key)
			fp.ensureVisible()
		}
	case "right", "l":
		if key, value := fp.Cursor(); key != "" && value == "" && !fp.expanded[key] {
			fp.expanded[key] = true
			fp.rebuild()
		}
	case "enter", " ":
		if fp.cursor >= len(fp.rows) {
			return fp, nil
		}
		r := fp.rows[fp.cursor]
		if r.header {
			fp.expanded[r.key] = !fp.expanded[r.key]
			fp.rebuild()
			return fp, nil
		}
		return fp, func() tea.Msg {
			return ToggleFilterMsg{Key: r.key, Value: r.value}
		}
	case "backspace", "delete":
		if key, _ := fp.Cursor(); key != "" && len(fp.state[key]) > 0 {
			return fp, func() tea.Msg {
				return ClearCategoryMsg{Key: key}
			}
		}
	}
	return fp, nil
}

func (fp *FilterPanel) headerIndex(key string) int {
	for i, r := range fp.rows {
		if r.header && r.key == key {
			return i
		}
	}
	return 0
}

// View renders the visible rows
func (fp *FilterPanel) View() string {
	if fp.Width <= 0 || fp.Height <= 0 {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(fp.Theme.Heading).Bold(true)
	checkedStyle := lipgloss.NewStyle().Foreground(fp.Theme.Checked)
	uncheckedStyle := lipgloss.NewStyle().Foreground(fp.Theme.Unchecked)
	selectedStyle := lipgloss.NewStyle().Background(fp.Theme.Selection)

	end := min(fp.offset+fp.Height, len(fp.rows))
	lines := make([]string, 0, end-fp.offset)
	for i := fp.offset; i < end; i++ {
		r := fp.rows[i]

		var line string
		if r.header {
			arrow := "▸"
			if fp.expanded[r.key] {
				arrow = "▾"
			}
			label := r.label
			if n := len(fp.state[r.key]); n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
			line = headerStyle.Render(arrow + " " + runewidth.Truncate(label, fp.Width-2, "…"))
		} else {
			box, style := "[ ]", uncheckedStyle
			if fp.state.Contains(r.key, r.value) {
				box, style = "[x]", checkedStyle
			}
			line = "  " + style.Render(box) + " " + runewidth.Truncate(r.label, fp.Width-6, "…")
		}

		if i == fp.cursor {
			line = selectedStyle.Width(fp.Width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
