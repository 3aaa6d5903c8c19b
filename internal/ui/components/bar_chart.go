package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/ui/theme"
)

const (
	labelWidth = 28
	maxBars    = 12
)

// ChartList renders the chart catalog as horizontal bar charts, one or
// two columns wide
type ChartList struct {
	Width  int
	Height int
	Theme  theme.Theme

	charts  []models.ChartSpec
	columns [2]map[string]models.Result[models.Breakdown]
	compare bool
	// Relabel rewrites items before drawing (country codes to names)
	Relabel func(chartID string, items []models.BreakdownItem) []models.BreakdownItem

	selected int
}

// NewChartList creates a chart list over a catalog
func NewChartList(charts []models.ChartSpec, th theme.Theme) *ChartList {
	return &ChartList{charts: charts, Theme: th}
}

// SetData sets the breakdowns of one column
func (cl *ChartList) SetData(col models.Column, data map[string]models.Result[models.Breakdown]) {
	cl.columns[col] = data
}

// SetCompare switches between one and two columns
func (cl *ChartList) SetCompare(on bool) {
	cl.compare = on
}

// Selected returns the chart under the cursor
func (cl *ChartList) Selected() (models.ChartSpec, bool) {
	if cl.selected < 0 || cl.selected >= len(cl.charts) {
		return models.ChartSpec{}, false
	}
	return cl.charts[cl.selected], true
}

// Len returns the number of charts in the list
func (cl *ChartList) Len() int {
	return len(cl.charts)
}

// SelectedIndex returns the cursor position
func (cl *ChartList) SelectedIndex() int {
	return cl.selected
}

// Move moves the cursor by delta charts
func (cl *ChartList) Move(delta int) {
	cl.selected = max(0, min(cl.selected+delta, len(cl.charts)-1))
}

// Select moves the cursor to a chart id, or to an index when the id is
// unknown. It reports whether the id was found.
func (cl *ChartList) Select(chartID string, fallback int) bool {
	for i, c := range cl.charts {
		if c.ID == chartID {
			cl.selected = i
			return true
		}
	}
	cl.selected = max(0, min(fallback, len(cl.charts)-1))
	return false
}

// SelectWhere moves the cursor to the first chart matching fn
func (cl *ChartList) SelectWhere(fn func(models.ChartSpec) bool) bool {
	for i, c := range cl.charts {
		if fn(c) {
			cl.selected = i
			return true
		}
	}
	return false
}

// View renders charts from the selected one down
func (cl *ChartList) View() string {
	if cl.Width <= 0 || cl.Height <= 0 || len(cl.charts) == 0 {
		return ""
	}

	var lines []string
	for i := cl.selected; i < len(cl.charts) && len(lines) < cl.Height; i++ {
		lines = append(lines, cl.renderChart(cl.charts[i], i == cl.selected)...)
		lines = append(lines, "")
	}
	if len(lines) > cl.Height {
		lines = lines[:cl.Height]
	}
	return strings.Join(lines, "\n")
}

func (cl *ChartList) renderChart(chart models.ChartSpec, selected bool) []string {
	headingStyle := lipgloss.NewStyle().Foreground(cl.Theme.Heading).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(cl.Theme.Metadata)

	marker := "  "
	if selected {
		marker = lipgloss.NewStyle().Foreground(cl.Theme.BorderFocused).Render("▌ ")
	}
	meta := "  " + chart.Section
	if chart.Kind.Qualitative() {
		meta += " · themes from written answers"
	}
	heading := marker + headingStyle.Render(runewidth.Truncate(chart.Heading, cl.Width-20, "…")) +
		metaStyle.Render(meta)
	lines := []string{heading}

	if !cl.compare {
		return append(lines, cl.renderColumn(chart, models.ColumnA, cl.Width-2)...)
	}

	half := (cl.Width - 3) / 2
	left := cl.renderColumn(chart, models.ColumnA, half)
	right := cl.renderColumn(chart, models.ColumnB, half)
	for i := 0; i < max(len(left), len(right)); i++ {
		var l, r string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		lines = append(lines, lipgloss.NewStyle().Width(half).Render(l)+" │ "+r)
	}
	return lines
}

func (cl *ChartList) renderColumn(chart models.ChartSpec, col models.Column, width int) []string {
	metaStyle := lipgloss.NewStyle().Foreground(cl.Theme.Metadata).Italic(true)

	data := cl.columns[col]
	if data == nil {
		return []string{metaStyle.Render("  loading…")}
	}
	res, ok := data[chart.ID]
	switch {
	case !ok:
		return []string{metaStyle.Render("  loading…")}
	case res.Failed():
		return []string{lipgloss.NewStyle().Foreground(cl.Theme.Error).Render("  error loading this section")}
	case len(res.Data.Items) == 0:
		return []string{metaStyle.Render("  no data")}
	}

	items := res.Data.Items
	if cl.Relabel != nil {
		items = cl.Relabel(chart.ID, items)
	}

	color := cl.Theme.Bar
	if cl.compare {
		color = cl.Theme.ColumnColor(col == models.ColumnB)
	}

	var lines []string
	lastRow := ""
	for i, it := range items {
		if i >= maxBars && chart.Kind != models.ChartMatrix {
			lines = append(lines, metaStyle.Render(fmt.Sprintf("  … %d more", len(items)-maxBars)))
			break
		}
		if it.Row != "" && it.Row != lastRow {
			lines = append(lines, "  "+lipgloss.NewStyle().Bold(true).Render(runewidth.Truncate(it.Row, width-2, "…")))
			lastRow = it.Row
		}
		lines = append(lines, RenderBar(it, width, color, cl.Theme.BarTrack))
	}
	if res.Degraded {
		lines = append(lines, lipgloss.NewStyle().Foreground(cl.Theme.Warning).Render("  filters dropped for this chart"))
	}
	return lines
}

// RenderBar draws one labelled bar: label, bar scaled to share, count and
// percentage
func RenderBar(it models.BreakdownItem, width int, bar, track lipgloss.Color) string {
	lw := min(labelWidth, max(width/3, 8))
	label := runewidth.FillRight(runewidth.Truncate(it.Label, lw, "…"), lw)

	stats := fmt.Sprintf(" %s %5.1f%%", humanize.Comma(it.Count), it.Share*100)
	barWidth := max(width-lw-runewidth.StringWidth(stats)-3, 1)

	filled := int(it.Share*float64(barWidth) + 0.5)
	filled = max(0, min(filled, barWidth))
	if filled == 0 && it.Count > 0 {
		filled = 1
	}

	return "  " + label + " " +
		lipgloss.NewStyle().Foreground(bar).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(track).Render(strings.Repeat("░", barWidth-filled)) +
		stats
}
