package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// searchBar is a one-line filter opened with "/". The query applies while typing;
// enter keeps it and esc clears it.
type searchBar struct {
	input  textinput.Model
	active bool
}

func newSearchBar(placeholder string) searchBar {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "/ "
	in.CharLimit = 100
	in.Width = 40
	return searchBar{input: in}
}

// Start focuses the search input
func (s *searchBar) Start() tea.Cmd {
	s.active = true
	return s.input.Focus()
}

// Update handles a key while the bar is active
func (s *searchBar) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			s.input.SetValue("")
			s.active = false
			s.input.Blur()
			return nil
		case "enter":
			s.active = false
			s.input.Blur()
			return nil
		}
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// Query returns the current filter text
func (s *searchBar) Query() string {
	return strings.TrimSpace(s.input.Value())
}

// View renders the bar while active or while a query is applied
func (s *searchBar) View() string {
	if s.active {
		return "  " + s.input.View() + "\n\n"
	}
	if q := s.Query(); q != "" {
		return subtitleStyle.Render("  Filter: "+q+"  (/ to change)") + "\n\n"
	}
	return ""
}
