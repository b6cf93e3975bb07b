package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/filter"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/tracker"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

const (
	fieldTimeProject = "Project"
	fieldTimeTask    = "Task"
	fieldTimeNotes   = "Description"
	fieldBillable    = "Billable"
)

// timerTickMsg drives the running clock. gen ties a tick to the run that
// scheduled it so a restart doesn't double the tick rate.
type timerTickMsg struct {
	gen int
}

// TimeView runs the timer and lists logged entries
type TimeView struct {
	deps    Deps
	entries *repo.Collection[models.TimeEntry]
	timer   *tracker.Timer
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	fields  *FieldSet
	editing bool
	gen     int
	today   bool
	table   table.Model
}

func NewTimeView(deps Deps, s *styles.Styles) *TimeView {
	projects := append([]string{""}, deps.Seed.TimeProjects...)

	t := table.New(
		table.WithColumns(timeColumns(80)),
		table.WithHeight(8),
	)

	v := &TimeView{
		deps:    deps,
		entries: repo.MustNew("time entry", deps.Seed.TimeEntries, repo.WithFeed[models.TimeEntry](deps.Feed)),
		timer:   tracker.New(deps.Env.Now),
		styles:  s,
		keys:    keys.DefaultKeyMap(),
		table:   t,
		fields: NewFieldSet("Start Timer",
			NewChoice(fieldTimeProject, projects),
			NewField(fieldTimeTask, "What are you working on?", 120),
			NewField(fieldTimeNotes, "Task description...", 500),
			NewChoice(fieldBillable, []string{"Yes", "No"}),
		),
	}
	v.SetStyles(s)
	v.reload()
	return v
}

func timeColumns(width int) []table.Column {
	desc := max(width-66, 12)
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Project", Width: 20},
		{Title: "Task", Width: 20},
		{Title: "Notes", Width: desc},
		{Title: "Time", Width: 8},
		{Title: "$", Width: 2},
	}
}

func (v *TimeView) Init() tea.Cmd { return nil }

func (v *TimeView) Capturing() bool { return v.editing }

func (v *TimeView) SetStyles(s *styles.Styles) {
	v.styles = s
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.Theme.Border).
		BorderBottom(true).
		Foreground(s.Theme.Primary)
	ts.Selected = ts.Selected.Foreground(s.Theme.Foreground).Bold(false)
	v.table.SetStyles(ts)
}

// Timer exposes the running session
func (v *TimeView) Timer() *tracker.Timer { return v.timer }

func (v *TimeView) visible() []models.TimeEntry {
	all := v.entries.List()
	if v.today {
		return filter.EntriesOn(all, v.deps.Env.Now())
	}
	return all
}

func (v *TimeView) reload() {
	shown := v.visible()
	rows := make([]table.Row, 0, len(shown))
	// newest first
	for i := len(shown) - 1; i >= 0; i-- {
		e := shown[i]
		billable := ""
		if e.Billable {
			billable = "✓"
		}
		rows = append(rows, table.Row{
			e.Start.Format("Jan 2, 2006"), e.Project, e.Task, e.Description,
			filter.FormatMinutes(e.Minutes), billable,
		})
	}
	v.table.SetRows(rows)
}

// syncSession copies the form into the timer session
func (v *TimeView) syncSession() {
	v.timer.Session = tracker.Session{
		Project:     v.fields.Get(fieldTimeProject),
		Task:        v.fields.Get(fieldTimeTask),
		Description: v.fields.Get(fieldTimeNotes),
		Billable:    v.fields.Get(fieldBillable) != "No",
	}
}

func (v *TimeView) tick() tea.Cmd {
	gen := v.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return timerTickMsg{gen: gen} })
}

func (v *TimeView) start() tea.Cmd {
	if v.timer.State() == tracker.Idle {
		v.syncSession()
	}
	if v.timer.State() == tracker.Running {
		return nil
	}
	if err := v.timer.Start(); err != nil {
		if errors.Is(err, tracker.ErrNoProject) {
			return toast(ToastError, "Missing Information", "Select a project before starting the timer.")
		}
		return failed(err)
	}
	v.editing = false
	v.gen++
	return v.tick()
}

func (v *TimeView) pause() tea.Cmd {
	if err := v.timer.Pause(); err != nil {
		return nil
	}
	v.gen++
	return toast(ToastInfo, "Timer Paused", filter.FormatClock(v.timer.Elapsed())+" tracked so far.")
}

func (v *TimeView) stop() tea.Cmd {
	entry, err := v.timer.Stop()
	v.gen++
	switch {
	case errors.Is(err, tracker.ErrNotRunning):
		return nil
	case errors.Is(err, tracker.ErrTooShort):
		return toast(ToastInfo, "Session Discarded", "Sessions shorter than a minute are not logged.")
	case err != nil:
		return failed(err)
	}
	entry.ID = v.deps.Env.IDs.NewID()
	if err := v.entries.Append(entry); err != nil {
		return failed(err)
	}
	v.deps.log().Info("time logged",
		zap.String("project", entry.Project),
		zap.Int("minutes", entry.Minutes),
		zap.Bool("billable", entry.Billable))
	v.reload()
	return toast(ToastSuccess, "Time Logged",
		fmt.Sprintf("%s on %s", filter.FormatMinutes(entry.Minutes), entry.Project))
}

func (v *TimeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetColumns(timeColumns(styles.ContentWidth(v.width) - 4))
		v.table.SetHeight(clamp(v.height-22, 4, 20))
		return v, nil

	case timerTickMsg:
		if msg.gen != v.gen || v.timer.State() != tracker.Running {
			return v, nil
		}
		return v, v.tick()

	case tea.KeyMsg:
		if v.editing {
			if key.Matches(msg, v.keys.Back) {
				v.editing = false
				return v, nil
			}
			submit, cmd := v.fields.Update(msg)
			if submit {
				return v, v.start()
			}
			return v, cmd
		}

		switch {
		case key.Matches(msg, v.keys.Edit):
			if v.timer.State() != tracker.Idle {
				return v, toast(ToastInfo, "Timer Running", "Stop the timer to change the session.")
			}
			v.editing = true
			return v, v.fields.FocusAt(0)
		case msg.String() == "s":
			return v, v.start()
		case msg.String() == "p":
			return v, v.pause()
		case msg.String() == "x":
			return v, v.stop()
		case msg.String() == "b":
			if v.timer.State() == tracker.Idle {
				for _, f := range v.fields.Fields {
					if f.Label == fieldBillable {
						f.SetValue(cycle(f.Options, f.Value(), 1))
					}
				}
			} else {
				v.timer.Session.Billable = !v.timer.Session.Billable
			}
			return v, nil
		case msg.String() == "t":
			v.today = !v.today
			v.reload()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *TimeView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	clock := lipgloss.NewStyle().Bold(true).Foreground(s.Theme.Primary).
		Render(filter.FormatClock(v.timer.Elapsed()))
	session := v.timer.Session
	if v.timer.State() == tracker.Idle {
		session = tracker.Session{
			Project:  v.fields.Get(fieldTimeProject),
			Task:     v.fields.Get(fieldTimeTask),
			Billable: v.fields.Get(fieldBillable) != "No",
		}
	}
	billable := "non-billable"
	if session.Billable {
		billable = "billable"
	}
	project := session.Project
	if project == "" {
		project = "no project selected"
	}
	widget := s.Card.Width(contentWidth - 4).Render(lipgloss.JoinVertical(lipgloss.Left,
		clock+"  "+s.TitleMuted.Render(v.timer.State().String()),
		s.TaskTitle.Render(project)+s.TitleMuted.Render("  "+session.Task+" • "+billable),
	))

	var panel string
	if v.editing {
		panel = lipgloss.JoinVertical(lipgloss.Left,
			v.fields.View(s, clamp(contentWidth-12, 20, 60)),
			s.TitleMuted.Render("Tab: next • ←/→: choose • Ctrl+S: start • Esc: done"),
		)
	}

	all := v.entries.List()
	totals := filter.TimeTotals(all)
	today := filter.TimeTotals(filter.EntriesOn(all, v.deps.Env.Now()))
	stats := s.StatusBar.Render(fmt.Sprintf("Today %s • Total %s • Billable %s (%d%%) • %d entries",
		filter.FormatMinutes(today.Minutes),
		filter.FormatMinutes(totals.Minutes),
		filter.FormatMinutes(totals.BillableMinutes),
		totals.BillableShare(),
		totals.Entries,
	))

	var byProject []string
	for _, pm := range filter.TimeByProject(all) {
		share := 0
		if totals.Minutes > 0 {
			share = pm.Minutes * 20 / totals.Minutes
		}
		byProject = append(byProject, fmt.Sprintf("%-20s %s %s",
			truncate(pm.Project, 20),
			lipgloss.NewStyle().Foreground(s.Theme.Primary).Render(strings.Repeat("█", share))+
				lipgloss.NewStyle().Foreground(s.Theme.Border).Render(strings.Repeat("░", 20-share)),
			filter.FormatMinutes(pm.Minutes)))
	}

	scope := "All entries"
	if v.today {
		scope = "Today"
	}
	rows := []string{s.Title.Render("Time Tracking"), "", widget}
	if panel != "" {
		rows = append(rows, panel)
	}
	rows = append(rows, "", stats, "", lipgloss.JoinVertical(lipgloss.Left, byProject...), "",
		s.Label.Render(scope), v.table.View(),
		HelpLine(s, "e", "session", "s", "start", "p", "pause", "x", "stop", "b", "billable", "t", "today/all"))
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}
