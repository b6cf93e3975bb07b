package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/appstate"
	"github.com/tgienger/synergy/internal/fixtures"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

// Deps is what every view is built from
type Deps struct {
	Env   forms.Env
	Seed  *fixtures.Seed
	Feed  *repo.Feed
	State *appstate.Context
	Log   *zap.Logger
	// Ctx bounds background work started by views
	Ctx context.Context
}

func (d Deps) ctx() context.Context {
	if d.Ctx == nil {
		return context.Background()
	}
	return d.Ctx
}

func (d Deps) log() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// author is the display name used for posts by the signed-in user
func (d Deps) author() string {
	if d.State != nil {
		if u, ok := d.State.User(); ok && u.Name != "" {
			return u.Name
		}
	}
	return "You"
}

// Route names a top level screen
type Route string

const (
	RouteHome        Route = "home"
	RouteAbout       Route = "about"
	RouteSolutions   Route = "solutions"
	RouteWork        Route = "work"
	RouteLogin       Route = "login"
	RouteDashboard   Route = "dashboard"
	RouteMyTasks     Route = "tasks"
	RouteBoard       Route = "board"
	RouteDiscussions Route = "discussions"
	RouteDocuments   Route = "documents"
	RouteTime        Route = "time"
	RouteAnalytics   Route = "analytics"
	RouteProfile     Route = "profile"
)

// NavigateMsg asks the shell to switch screens
type NavigateMsg struct {
	To Route
}

// OpenProjectMsg opens a project on the board and in discussions
type OpenProjectMsg struct {
	ProjectID string
	To        Route
}

// SignedInMsg is sent after a provider returned a user
type SignedInMsg struct{}

// SignedOutMsg is sent after the session was cleared
type SignedOutMsg struct{}

// ThemeChangedMsg is sent after the stored theme changed
type ThemeChangedMsg struct {
	Theme appstate.Theme
}

type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// ToastMsg shows a transient status line
type ToastMsg struct {
	Kind    ToastKind
	Title   string
	Message string
}

func toast(kind ToastKind, title, msg string) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Kind: kind, Title: title, Message: msg}
	}
}

// failed turns err into an error toast, using the validation title when
// there is one.
func failed(err error) tea.Cmd {
	if ve, ok := forms.AsValidation(err); ok {
		return toast(ToastError, ve.Title, ve.Message)
	}
	return toast(ToastError, "Something went wrong", err.Error())
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// moveCursor applies up/down keys to cursor within n items
func moveCursor(msg tea.KeyMsg, km keys.KeyMap, cursor, n int) (int, bool) {
	switch {
	case key.Matches(msg, km.Up):
		if cursor > 0 {
			cursor--
		}
		return cursor, true
	case key.Matches(msg, km.Down):
		if cursor < n-1 {
			cursor++
		}
		return cursor, true
	}
	return clamp(cursor, 0, max(n-1, 0)), false
}

// cycle returns the option after (dir=1) or before (dir=-1) cur
func cycle(options []string, cur string, dir int) string {
	if len(options) == 0 {
		return cur
	}
	i := 0
	for j, o := range options {
		if o == cur {
			i = j
			break
		}
	}
	return options[(i+dir+len(options))%len(options)]
}

// HelpLine renders "key desc • key desc" pairs
func HelpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+s.HelpDesc.Render(pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// truncate shortens s to at most n cells
func truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "no due date"
	}
	return t.Format("Jan 2, 2006")
}

// ago renders a coarse relative time
func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	return t.Format("Jan 2, 2006")
}
