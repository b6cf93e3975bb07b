package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/synergy/internal/ui/styles"
	"github.com/tgienger/synergy/internal/ui/views"
)

// ToastTimeout is how long a toast stays on screen
var ToastTimeout = 4 * time.Second

type toastExpiredMsg struct {
	id int
}

// toastState holds the toast on screen. Each new toast gets a fresh id so
// the expiry of an older one doesn't clear it.
type toastState struct {
	current *views.ToastMsg
	id      int
}

func (t *toastState) show(msg views.ToastMsg) tea.Cmd {
	t.id++
	t.current = &msg
	id := t.id
	return tea.Tick(ToastTimeout, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (t *toastState) expire(msg toastExpiredMsg) {
	if msg.id == t.id {
		t.current = nil
	}
}

func (t *toastState) view(s *styles.Styles, width int) string {
	if t.current == nil {
		return ""
	}
	style := s.Toast
	switch t.current.Kind {
	case views.ToastError:
		style = s.ToastError
	case views.ToastSuccess:
		style = s.ToastSuccess
	}
	text := lipgloss.NewStyle().Bold(true).Render(t.current.Title)
	if t.current.Message != "" {
		text += "  " + t.current.Message
	}
	return style.MaxWidth(width).Render(text)
}
