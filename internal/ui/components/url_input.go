package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/surveylens/internal/ui/theme"
)

// URLSubmitMsg is sent with a pasted share link or fragment
type URLSubmitMsg struct {
	Fragment string
}

// CloseURLInputMsg is sent when the input should be closed
type CloseURLInputMsg struct{}

// URLInput is a one-line box for pasting a share link
type URLInput struct {
	Input textinput.Model
	Theme theme.Theme
	Width int
}

// NewURLInput creates a new URL input
func NewURLInput(th theme.Theme) *URLInput {
	ti := textinput.New()
	ti.Placeholder = "#section-experience?experience=2-to-5-years"
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 60

	return &URLInput{
		Input: ti,
		Theme: th,
	}
}

// Reset clears the input
func (u *URLInput) Reset() {
	u.Input.SetValue("")
}

// FragmentOf extracts the fragment of a full link; a bare fragment is
// returned as is
func FragmentOf(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.IndexByte(link, '#'); i >= 0 {
		return link[i:]
	}
	if strings.HasPrefix(link, "?") {
		return "#" + link
	}
	return link
}

// Update handles messages
func (u *URLInput) Update(msg tea.Msg) (*URLInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			fragment := FragmentOf(u.Input.Value())
			return u, func() tea.Msg {
				return URLSubmitMsg{Fragment: fragment}
			}
		case "esc":
			return u, func() tea.Msg {
				return CloseURLInputMsg{}
			}
		}
	}

	var cmd tea.Cmd
	u.Input, cmd = u.Input.Update(msg)
	return u, cmd
}

// View renders the URL input
func (u *URLInput) View() string {
	u.Input.Width = max(u.Width-8, 20)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(u.Theme.BorderFocused).
		Padding(0, 1).
		Width(u.Width)

	helpStyle := lipgloss.NewStyle().
		Foreground(u.Theme.Metadata).
		Italic(true)

	title := lipgloss.NewStyle().Bold(true).Render("Open share link")
	helpText := helpStyle.Render("Enter: open │ Esc: close")

	return boxStyle.Render(title + "\n" + u.Input.View() + "\n" + helpText)
}
