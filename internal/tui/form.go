package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formField describes one text input of a form
type formField struct {
	label       string
	placeholder string
	value       string
	charLimit   int
	width       int
}

// formResult is what a key press did to a form
type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

// form is a column of text inputs with tab navigation.
// enter on the last field or ctrl+s submits, esc cancels.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(fields ...formField) *form {
	f := &form{
		labels: make([]string, len(fields)),
		inputs: make([]textinput.Model, len(fields)),
	}
	for i, field := range fields {
		in := textinput.New()
		in.Placeholder = field.placeholder
		in.CharLimit = field.charLimit
		if in.CharLimit == 0 {
			in.CharLimit = 100
		}
		in.Width = field.width
		if in.Width == 0 {
			in.Width = 40
		}
		in.SetValue(field.value)
		f.labels[i] = field.label
		f.inputs[i] = in
	}
	return f
}

// Focus focuses the first field
func (f *form) Focus() tea.Cmd {
	f.focus = 0
	return f.inputs[0].Focus()
}

// Value returns the trimmed value of field i
func (f *form) Value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

// Update handles navigation keys and forwards everything else to the focused input
func (f *form) Update(msg tea.Msg) (formResult, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return formCancelled, nil

		case "tab", "down":
			return formEditing, f.move(1)

		case "shift+tab", "up":
			return formEditing, f.move(-1)

		case "enter":
			// If on last field, submit; otherwise advance to next field
			if f.focus == len(f.inputs)-1 {
				return formSubmitted, nil
			}
			return formEditing, f.move(1)

		case "ctrl+s":
			return formSubmitted, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return formEditing, cmd
}

// View renders every field with its label
func (f *form) View() string {
	var b strings.Builder
	for i, label := range f.labels {
		b.WriteString(fmt.Sprintf("%s\n  %s\n\n", fieldLabel(label, i == f.focus), f.inputs[i].View()))
	}
	return b.String()
}

const formHelp = "  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel"
