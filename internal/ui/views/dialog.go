package views

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/synergy/internal/ui/styles"
)

type DialogKind int

const (
	NoDialog DialogKind = iota
	Creating
	Editing
	Viewing
	Confirming
)

// Dialog is the modal state of a view. ID names the record being edited,
// viewed or confirmed; it is empty for NoDialog and Creating.
type Dialog struct {
	Kind DialogKind
	ID   string
}

func (d Dialog) Open() bool { return d.Kind != NoDialog }

func closed() Dialog              { return Dialog{} }
func creating() Dialog            { return Dialog{Kind: Creating} }
func editing(id string) Dialog    { return Dialog{Kind: Editing, ID: id} }
func viewing(id string) Dialog    { return Dialog{Kind: Viewing, ID: id} }
func confirming(id string) Dialog { return Dialog{Kind: Confirming, ID: id} }

// renderDialog centers a bordered box in the content area
func renderDialog(s *styles.Styles, width, height int, title, body string) string {
	contentWidth := styles.ContentWidth(width)
	box := s.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		body,
	))
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
	return styles.CenterView(centered, width, height)
}

func renderConfirm(s *styles.Styles, width, height int, title, question string) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		s.TitleMuted.Render(question),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return renderDialog(s, width, height, title, body)
}
