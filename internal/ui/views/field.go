package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

// Field is one row of a dialog: either free text or a choice cycled with
// left/right.
type Field struct {
	Label   string
	Input   textinput.Model
	Options []string
	choice  int
}

func NewField(label, placeholder string, limit int) *Field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return &Field{Label: label, Input: in}
}

func NewChoice(label string, options []string) *Field {
	return &Field{Label: label, Options: options}
}

func (f *Field) isChoice() bool { return f.Options != nil }

func (f *Field) Value() string {
	if f.isChoice() {
		if len(f.Options) == 0 {
			return ""
		}
		return f.Options[f.choice]
	}
	return f.Input.Value()
}

// SetValue sets the text, or selects the matching option
func (f *Field) SetValue(v string) {
	if !f.isChoice() {
		f.Input.SetValue(v)
		return
	}
	for i, o := range f.Options {
		if o == v {
			f.choice = i
			return
		}
	}
}

func (f *Field) Reset() {
	f.choice = 0
	f.Input.Reset()
}

func (f *Field) focus() tea.Cmd {
	if f.isChoice() {
		return nil
	}
	return f.Input.Focus()
}

func (f *Field) blur() { f.Input.Blur() }

func (f *Field) update(msg tea.KeyMsg, km keys.KeyMap) tea.Cmd {
	if f.isChoice() {
		switch {
		case key.Matches(msg, km.Left):
			f.choice = (f.choice - 1 + len(f.Options)) % len(f.Options)
		case key.Matches(msg, km.Right), key.Matches(msg, km.Toggle):
			f.choice = (f.choice + 1) % len(f.Options)
		}
		return nil
	}
	var cmd tea.Cmd
	f.Input, cmd = f.Input.Update(msg)
	return cmd
}

func (f *Field) view(s *styles.Styles, focused bool, width int) string {
	box := s.Input
	if focused {
		box = s.InputFocused
	}
	var body string
	if f.isChoice() {
		switch {
		case len(f.Options) == 0:
			body = s.TitleMuted.Render("none")
		case f.Value() == "":
			body = "‹ " + s.TitleMuted.Render("select") + " ›"
		default:
			body = "‹ " + f.Value() + " ›"
		}
	} else {
		f.Input.Width = max(width-6, 10)
		body = f.Input.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Label.Render(f.Label),
		box.Width(width).Render(body),
	)
}

// FieldSet cycles focus through its fields followed by a submit button
type FieldSet struct {
	Fields []*Field
	Submit string
	focus  int
	keys   keys.KeyMap
}

func NewFieldSet(submit string, fields ...*Field) *FieldSet {
	return &FieldSet{Fields: fields, Submit: submit, keys: keys.DefaultKeyMap()}
}

// Focused returns the focused field, or nil on the submit button
func (fs *FieldSet) Focused() *Field {
	if fs.focus < len(fs.Fields) {
		return fs.Fields[fs.focus]
	}
	return nil
}

// Start resets every field and focuses the first one
func (fs *FieldSet) Start() tea.Cmd {
	for _, f := range fs.Fields {
		f.Reset()
	}
	return fs.FocusAt(0)
}

func (fs *FieldSet) FocusAt(i int) tea.Cmd {
	for _, f := range fs.Fields {
		f.blur()
	}
	fs.focus = clamp(i, 0, len(fs.Fields))
	if f := fs.Focused(); f != nil {
		return f.focus()
	}
	return nil
}

// Update routes a key to the focused field. It reports true when the user
// asked to submit (ctrl+s anywhere, enter on the button or the last field).
func (fs *FieldSet) Update(msg tea.KeyMsg) (bool, tea.Cmd) {
	n := len(fs.Fields) + 1
	switch {
	case key.Matches(msg, fs.keys.Save):
		return true, nil
	case key.Matches(msg, fs.keys.Tab), key.Matches(msg, fs.keys.Down) && fs.onChoice():
		return false, fs.FocusAt((fs.focus + 1) % n)
	case key.Matches(msg, fs.keys.ShiftTab), key.Matches(msg, fs.keys.Up) && fs.onChoice():
		return false, fs.FocusAt((fs.focus + n - 1) % n)
	case key.Matches(msg, fs.keys.Enter):
		if fs.focus >= len(fs.Fields)-1 {
			return true, nil
		}
		return false, fs.FocusAt(fs.focus + 1)
	}
	if f := fs.Focused(); f != nil {
		return false, f.update(msg, fs.keys)
	}
	return false, nil
}

func (fs *FieldSet) onChoice() bool {
	f := fs.Focused()
	return f == nil || f.isChoice()
}

// Get returns the trimmed value of the field with the given label
func (fs *FieldSet) Get(label string) string {
	for _, f := range fs.Fields {
		if f.Label == label {
			return strings.TrimSpace(f.Value())
		}
	}
	return ""
}

func (fs *FieldSet) View(s *styles.Styles, width int) string {
	rows := make([]string, 0, len(fs.Fields)+1)
	for i, f := range fs.Fields {
		rows = append(rows, f.view(s, i == fs.focus, width))
	}
	btn := s.Button
	if fs.Focused() == nil {
		btn = s.ButtonFocused
	}
	rows = append(rows, btn.Render(" "+fs.Submit+" "))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
