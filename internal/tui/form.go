package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// form is a vertical stack of labelled text inputs with one focused field.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(labels ...string) form {
	inputs := make([]textinput.Model, len(labels))
	for i, l := range labels {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = l
		ti.CharLimit = 200
		inputs[i] = ti
	}
	return form{labels: labels, inputs: inputs}
}

func (f *form) secret(i int) {
	f.inputs[i].EchoMode = textinput.EchoPassword
	f.inputs[i].EchoCharacter = '•'
}

func (f *form) start() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.focus = 0
	f.inputs[0].Focus()
	return textinput.Blink
}

func (f *form) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *form) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) set(i int, v string) {
	f.inputs[i].SetValue(v)
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
}

// update handles field navigation and forwards everything else to the
// focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.move(1)
			return nil
		case "shift+tab", "up":
			f.move(-1)
			return nil
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) view(width int) string {
	labelW := 0
	for _, l := range f.labels {
		labelW = max(labelW, lipgloss.Width(l))
	}
	inputW := max(width-labelW-4, 10)

	var rows []string
	for i, l := range f.labels {
		label := helpDimStyle.Render(l)
		if i == f.focus {
			label = searchPromptStyle.Render(l)
		}
		f.inputs[i].Width = inputW
		pad := strings.Repeat(" ", labelW-lipgloss.Width(l))
		rows = append(rows, label+pad+"  "+f.inputs[i].View())
	}
	return strings.Join(rows, "\n")
}
