package ui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/ui/styles"
)

const maxNotifications = 20

// changeMsg is a collection change read off the feed
type changeMsg repo.Change

// listen waits for the next change on ch. It returns nil once ch is closed,
// which ends the listen loop.
func listen(ch <-chan repo.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg(c)
	}
}

// notificationFor describes a change for the dropdown. ok is false for
// changes that aren't worth a notification.
func notificationFor(c repo.Change) (models.Notification, bool) {
	n := models.Notification{
		ID:        fmt.Sprintf("%s-%s-%d", c.Kind, c.ID, c.At.UnixNano()),
		Timestamp: c.At,
	}
	switch e := c.Entity.(type) {
	case models.Task:
		n.Kind = models.NotifyTask
		if c.Op == repo.OpCreated {
			n.Title = "New task"
			n.Message = fmt.Sprintf("%q was added", e.Title)
		} else {
			n.Title = "Task updated"
			n.Message = fmt.Sprintf("%q is %s", e.Title, e.Status.Label())
		}
		if e.Assignee != "" && c.Op == repo.OpCreated {
			n.Kind = models.NotifyAssignment
			n.Message += " and assigned to " + e.Assignee
		}
	case models.Discussion:
		n.Kind = models.NotifyMention
		if c.Op == repo.OpCreated {
			n.Title = "New discussion"
			n.Message = fmt.Sprintf("%s started %q", e.Author, e.Title)
		} else {
			n.Title = "Discussion activity"
			n.Message = fmt.Sprintf("New activity in %q", e.Title)
		}
	case models.Project:
		if c.Op != repo.OpCreated {
			return n, false
		}
		n.Kind = models.NotifyAssignment
		n.Title = "Project created"
		n.Message = fmt.Sprintf("%q (%d members)", e.Title, len(e.Members))
	case models.Team:
		if c.Op != repo.OpCreated {
			return n, false
		}
		n.Kind = models.NotifyAssignment
		n.Title = "Team created"
		n.Message = e.Name
	default:
		return n, false
	}
	return n, true
}

// inbox is the notifications dropdown
type inbox struct {
	items []models.Notification
	open  bool
}

func newInbox(seed []models.Notification) *inbox {
	in := &inbox{items: append([]models.Notification(nil), seed...)}
	in.sort()
	return in
}

func (in *inbox) sort() {
	sort.SliceStable(in.items, func(i, j int) bool {
		return in.items[i].Timestamp.After(in.items[j].Timestamp)
	})
	if len(in.items) > maxNotifications {
		in.items = in.items[:maxNotifications]
	}
}

func (in *inbox) add(n models.Notification) {
	in.items = append(in.items, n)
	in.sort()
}

func (in *inbox) unread() int {
	count := 0
	for _, n := range in.items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (in *inbox) markAllRead() {
	for i := range in.items {
		in.items[i].Read = true
	}
}

func kindIcon(k models.NotificationKind) string {
	switch k {
	case models.NotifyAssignment:
		return "◆"
	case models.NotifyMention:
		return "@"
	case models.NotifyDeadline:
		return "!"
	}
	return "•"
}

func (in *inbox) view(s *styles.Styles, width int) string {
	var rows []string
	rows = append(rows, s.Title.Render("Notifications")+s.TitleMuted.Render(fmt.Sprintf("  %d unread", in.unread())))
	if len(in.items) == 0 {
		rows = append(rows, s.TitleMuted.Render("You're all caught up."))
	}
	for _, n := range in.items {
		title := n.Title
		if !n.Read {
			title = s.HelpKey.Render(title)
		}
		rows = append(rows,
			kindIcon(n.Kind)+" "+title+s.TitleMuted.Render("  "+n.Timestamp.Format("Jan 2 15:04")),
			"  "+s.TitleMuted.Render(strings.TrimSpace(n.Message)))
	}
	rows = append(rows, "", s.TitleMuted.Render("a: mark all read • esc: close"))
	return s.Dialog.Width(min(width-4, 70)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
