package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/surveylens/internal/presets"
	"github.com/rebeliceyang/surveylens/internal/ui/theme"
)

// PickerMode represents the picker mode
type PickerMode int

const (
	PickerModeList PickerMode = iota
	PickerModeSearch
	PickerModeSave
)

// ApplyPresetMsg is sent when a preset should replace the active filters
type ApplyPresetMsg struct {
	ID string
}

// SavePresetMsg is sent to store the active filters under a name
type SavePresetMsg struct {
	Name string
}

// DeletePresetMsg is sent to remove a user preset
type DeletePresetMsg struct {
	ID string
}

// ClosePresetPickerMsg is sent when the picker should close
type ClosePresetPickerMsg struct{}

// PresetPicker lists presets and saves new ones
type PresetPicker struct {
	Width  int
	Height int
	Theme  theme.Theme

	mode     PickerMode
	all      []presets.Preset
	shown    []presets.Preset
	selected int
	offset   int
	input    textinput.Model
	status   string
}

// NewPresetPicker creates a new preset picker
func NewPresetPicker(th theme.Theme) *PresetPicker {
	ti := textinput.New()
	ti.CharLimit = 80
	return &PresetPicker{
		Width:  70,
		Height: 24,
		Theme:  th,
		input:  ti,
	}
}

// SetPresets replaces the listed presets
func (pp *PresetPicker) SetPresets(list []presets.Preset) {
	pp.all = list
	pp.filter()
}

// SetStatus shows a one-line message under the list
func (pp *PresetPicker) SetStatus(s string) {
	pp.status = s
}

// Reset returns to list mode with an empty search
func (pp *PresetPicker) Reset() {
	pp.mode = PickerModeList
	pp.input.SetValue("")
	pp.input.Blur()
	pp.status = ""
	pp.filter()
}

func (pp *PresetPicker) filter() {
	q := ""
	if pp.mode == PickerModeSearch {
		q = strings.ToLower(strings.TrimSpace(pp.input.Value()))
	}
	pp.shown = pp.shown[:0]
	for _, p := range pp.all {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			pp.shown = append(pp.shown, p)
		}
	}
	pp.selected = min(pp.selected, max(len(pp.shown)-1, 0))
	pp.offset = min(pp.offset, pp.selected)
}

func (pp *PresetPicker) visibleRows() int {
	return max((pp.Height-8)/2, 1)
}

// Update handles keyboard input
func (pp *PresetPicker) Update(msg tea.KeyMsg) (*PresetPicker, tea.Cmd) {
	switch pp.mode {
	case PickerModeSearch:
		return pp.handleSearchMode(msg)
	case PickerModeSave:
		return pp.handleSaveMode(msg)
	}
	return pp.handleListMode(msg)
}

func (pp *PresetPicker) handleListMode(msg tea.KeyMsg) (*PresetPicker, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return pp, func() tea.Msg { return ClosePresetPickerMsg{} }
	case "up", "k":
		pp.move(-1)
	case "down", "j":
		pp.move(1)
	case "enter":
		if pp.selected < len(pp.shown) {
			id := pp.shown[pp.selected].ID
			return pp, func() tea.Msg { return ApplyPresetMsg{ID: id} }
		}
	case "/":
		pp.mode = PickerModeSearch
		pp.input.Placeholder = "search presets"
		pp.input.SetValue("")
		pp.input.Focus()
	case "n", "a":
		pp.mode = PickerModeSave
		pp.input.Placeholder = "name for the current filters"
		pp.input.SetValue("")
		pp.input.Focus()
	case "d":
		if pp.selected < len(pp.shown) && !pp.shown[pp.selected].Builtin {
			id := pp.shown[pp.selected].ID
			return pp, func() tea.Msg { return DeletePresetMsg{ID: id} }
		}
		pp.status = "built-in presets cannot be deleted"
	}
	return pp, nil
}

func (pp *PresetPicker) handleSearchMode(msg tea.KeyMsg) (*PresetPicker, tea.Cmd) {
	switch msg.String() {
	case "esc":
		pp.Reset()
		return pp, nil
	case "enter":
		pp.input.Blur()
		pp.mode = PickerModeList
		return pp, nil
	case "up":
		pp.move(-1)
		return pp, nil
	case "down":
		pp.move(1)
		return pp, nil
	}
	var cmd tea.Cmd
	pp.input, cmd = pp.input.Update(msg)
	pp.filter()
	return pp, cmd
}

func (pp *PresetPicker) handleSaveMode(msg tea.KeyMsg) (*PresetPicker, tea.Cmd) {
	switch msg.String() {
	case "esc":
		pp.Reset()
		return pp, nil
	case "enter":
		name := strings.TrimSpace(pp.input.Value())
		if name == "" {
			pp.status = "name cannot be empty"
			return pp, nil
		}
		pp.Reset()
		return pp, func() tea.Msg { return SavePresetMsg{Name: name} }
	}
	var cmd tea.Cmd
	pp.input, cmd = pp.input.Update(msg)
	return pp, cmd
}

func (pp *PresetPicker) move(delta int) {
	if len(pp.shown) == 0 {
		return
	}
	pp.selected = max(0, min(pp.selected+delta, len(pp.shown)-1))
	if pp.selected < pp.offset {
		pp.offset = pp.selected
	}
	if h := pp.visibleRows(); pp.selected >= pp.offset+h {
		pp.offset = pp.selected - h + 1
	}
}

// Selected returns the preset under the cursor
func (pp *PresetPicker) Selected() (presets.Preset, bool) {
	if pp.selected >= len(pp.shown) {
		return presets.Preset{}, false
	}
	return pp.shown[pp.selected], true
}

// View renders the picker
func (pp *PresetPicker) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(pp.Theme.Heading)
	metaStyle := lipgloss.NewStyle().Foreground(pp.Theme.Metadata)
	selectedStyle := lipgloss.NewStyle().Background(pp.Theme.Selection).Bold(true)
	helpStyle := metaStyle.Italic(true)

	inner := max(pp.Width-6, 20)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Presets"))
	b.WriteString("\n\n")

	switch pp.mode {
	case PickerModeSearch:
		b.WriteString("/ " + pp.input.View() + "\n\n")
	case PickerModeSave:
		b.WriteString("Save as: " + pp.input.View() + "\n\n")
	}

	if len(pp.shown) == 0 {
		b.WriteString(metaStyle.Render("No presets match"))
		b.WriteString("\n")
	}
	end := min(pp.offset+pp.visibleRows(), len(pp.shown))
	for i := pp.offset; i < end; i++ {
		p := pp.shown[i]
		name := p.Name
		if p.Builtin {
			name += " ·"
		}
		line := runewidth.FillRight(runewidth.Truncate(name, inner, "…"), inner)
		if i == pp.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
		b.WriteString(metaStyle.Render("  " + runewidth.Truncate(summary(p), inner-2, "…")))
		b.WriteString("\n")
	}

	if pp.status != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(pp.Theme.Warning).Render(pp.status) + "\n")
	}

	b.WriteString("\n")
	switch pp.mode {
	case PickerModeList:
		b.WriteString(helpStyle.Render("Enter: apply │ /: search │ n: save current │ d: delete │ Esc: close"))
	default:
		b.WriteString(helpStyle.Render("Enter: confirm │ Esc: cancel"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pp.Theme.BorderFocused).
		Padding(1, 2).
		Width(pp.Width).
		Render(b.String())
}

// summary describes a preset's filters on one line, categories sorted
func summary(p presets.Preset) string {
	if p.Description != "" {
		return p.Description
	}
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(p.Filters[k], ", ")))
	}
	return strings.Join(parts, "; ")
}
