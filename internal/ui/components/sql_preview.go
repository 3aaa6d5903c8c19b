package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/surveylens/internal/ui/theme"
)

// CloseSQLPreviewMsg is sent when the preview should be closed
type CloseSQLPreviewMsg struct{}

// SQLPreview shows the compiled WHERE clause and the query of the selected
// chart, read only
type SQLPreview struct {
	Title  string
	Width  int
	Height int
	Theme  theme.Theme

	content string
	lines   []string
	offset  int
	status  string

	chromaStyle     *chroma.Style
	chromaFormatter chroma.Formatter
}

// NewSQLPreview creates an empty preview
func NewSQLPreview(th theme.Theme) *SQLPreview {
	sp := &SQLPreview{Theme: th}

	sp.chromaStyle = styles.Get("monokai")
	if sp.chromaStyle == nil {
		sp.chromaStyle = styles.Fallback
	}
	sp.chromaFormatter = formatters.Get("terminal256")
	if sp.chromaFormatter == nil {
		sp.chromaFormatter = formatters.Fallback
	}
	return sp
}

// SetContent replaces the shown SQL
func (sp *SQLPreview) SetContent(title, sql string) {
	sp.Title = title
	sp.content = sql
	sp.lines = strings.Split(sql, "\n")
	sp.offset = 0
	sp.status = ""
}

// Content returns the raw SQL
func (sp *SQLPreview) Content() string {
	return sp.content
}

// CopyContent copies the SQL to the clipboard
func (sp *SQLPreview) CopyContent() error {
	return clipboard.WriteAll(sp.content)
}

func (sp *SQLPreview) visibleLines() int {
	return max(sp.Height-6, 1)
}

// Update handles keyboard input
func (sp *SQLPreview) Update(msg tea.KeyMsg) (*SQLPreview, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "s":
		return sp, func() tea.Msg { return CloseSQLPreviewMsg{} }
	case "up", "k":
		sp.offset = max(sp.offset-1, 0)
	case "down", "j":
		sp.offset = min(sp.offset+1, max(len(sp.lines)-sp.visibleLines(), 0))
	case "g":
		sp.offset = 0
	case "G":
		sp.offset = max(len(sp.lines)-sp.visibleLines(), 0)
	case "y":
		if err := sp.CopyContent(); err != nil {
			sp.status = "copy failed: " + err.Error()
		} else {
			sp.status = "copied to clipboard"
		}
	}
	return sp, nil
}

func (sp *SQLPreview) highlight(line string) string {
	if line == "" {
		return ""
	}

	lexer := lexers.Get("postgresql")
	if lexer == nil {
		lexer = lexers.Get("sql")
	}
	if lexer == nil {
		return line
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	var buf bytes.Buffer
	if err := sp.chromaFormatter.Format(&buf, sp.chromaStyle, iterator); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// View renders the preview box
func (sp *SQLPreview) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(sp.Theme.Heading)
	lineNoStyle := lipgloss.NewStyle().Foreground(sp.Theme.Metadata)
	helpStyle := lipgloss.NewStyle().Foreground(sp.Theme.Metadata).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(sp.Title))
	b.WriteString("\n\n")

	end := min(sp.offset+sp.visibleLines(), len(sp.lines))
	for i := sp.offset; i < end; i++ {
		b.WriteString(lineNoStyle.Render(fmt.Sprintf("%3d ", i+1)))
		b.WriteString(sp.highlight(sp.lines[i]))
		b.WriteString("\n")
	}

	help := "j/k: scroll │ y: copy │ Esc: close"
	if sp.status != "" {
		help = sp.status + " │ " + help
	}
	b.WriteString(helpStyle.Render(help))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(sp.Theme.BorderFocused).
		Padding(0, 1).
		Width(max(sp.Width-4, 20)).
		Render(b.String())
}
