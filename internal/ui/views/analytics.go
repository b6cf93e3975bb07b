package views

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/synergy/internal/filter"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

type analyticsTab int

const (
	tabOverview analyticsTab = iota
	tabProductivity
	tabTeam
	tabProjects
)

var analyticsTabs = []string{"Overview", "Productivity", "Team", "Projects"}

// period is the reporting window applied to time entries
type period struct {
	label string
	days  int
}

var periods = []period{
	{"Last 7 days", 7},
	{"Last 30 days", 30},
	{"Last 90 days", 90},
	{"Last year", 365},
}

type kpi struct {
	title  string
	value  string
	detail string
}

// AnalyticsView summarises projects, tasks and tracked time
type AnalyticsView struct {
	deps     Deps
	projects []models.Project
	tasks    []models.Task
	entries  []models.TimeEntry
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	tab    analyticsTab
	period int
}

func NewAnalyticsView(deps Deps, s *styles.Styles) *AnalyticsView {
	return &AnalyticsView{
		deps:     deps,
		projects: deps.Seed.Projects,
		tasks:    deps.Seed.Tasks,
		entries:  deps.Seed.TimeEntries,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		period:   1,
	}
}

func (v *AnalyticsView) Init() tea.Cmd { return nil }

func (v *AnalyticsView) Capturing() bool { return false }

func (v *AnalyticsView) SetStyles(s *styles.Styles) { v.styles = s }

// Period is the label of the selected reporting window
func (v *AnalyticsView) Period() string { return periods[v.period].label }

// recent returns the time entries inside the reporting window
func (v *AnalyticsView) recent() []models.TimeEntry {
	since := filter.StartOfDay(v.deps.Env.Now()).AddDate(0, 0, -(periods[v.period].days - 1))
	return filter.EntriesSince(v.entries, since)
}

func (v *AnalyticsView) kpis() []kpi {
	active := 0
	for _, p := range v.projects {
		if p.Status == models.ProjectActive {
			active++
		}
	}
	done := filter.Completion(v.tasks)
	overdue := filter.Overdue(v.tasks, v.deps.Env.Now())
	logged := filter.TimeTotals(v.recent())

	return []kpi{
		{"Total Projects", fmt.Sprint(len(v.projects)), fmt.Sprintf("%d active", active)},
		{"Team Efficiency", fmt.Sprintf("%d%%", done.Percent()), "of tasks done"},
		{"Tasks Completed", fmt.Sprintf("%d/%d", done.Completed, done.Total), fmt.Sprintf("%d overdue", len(overdue))},
		{"Hours Logged", filter.FormatMinutes(logged.Minutes), fmt.Sprintf("%d%% billable", logged.BillableShare())},
	}
}

func (v *AnalyticsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height

	case tea.KeyMsg:
		n := analyticsTab(len(analyticsTabs))
		switch {
		case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Right):
			v.tab = (v.tab + 1) % n
		case key.Matches(msg, v.keys.ShiftTab), key.Matches(msg, v.keys.Left):
			v.tab = (v.tab + n - 1) % n
		case msg.String() == "p":
			v.period = (v.period + 1) % len(periods)
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return NavigateMsg{To: RouteDashboard} }
		}
	}
	return v, nil
}

func (v *AnalyticsView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	header := s.Title.Render("Analytics Dashboard") + s.TitleMuted.Render("  "+v.Period())

	cardWidth := max(contentWidth/4-3, 16)
	var cards []string
	for _, k := range v.kpis() {
		cards = append(cards, s.Card.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			s.TitleMuted.Render(k.title),
			s.Title.Render(k.value),
			s.TitleMuted.Render(k.detail),
		)))
	}

	tabs := make([]string, len(analyticsTabs))
	for i, name := range analyticsTabs {
		if analyticsTab(i) == v.tab {
			tabs[i] = s.TabActive.Render(name)
		} else {
			tabs[i] = s.Tab.Render(name)
		}
	}

	var body string
	switch v.tab {
	case tabOverview:
		body = v.overview()
	case tabProductivity:
		body = v.productivity()
	case tabTeam:
		body = v.team()
	case tabProjects:
		body = v.projectTimeline()
	}

	rows := []string{
		header, "",
		lipgloss.JoinHorizontal(lipgloss.Top, cards...), "",
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...), "",
		body, "",
		HelpLine(s, "tab", "section", "p", "period", "esc", "dashboard"),
	}
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}

func (v *AnalyticsView) overview() string {
	s := v.styles
	rows := []string{s.Label.Render("Project Status")}
	for _, c := range filter.ProjectStatusCounts(v.projects) {
		rows = append(rows, fmt.Sprintf("%-12s %s %d",
			c.Status.Label(), s.Progress(models.Progress{Completed: c.Count, Total: len(v.projects)}, 20), c.Count))
	}

	week := filter.MinutesPerDay(v.entries, v.deps.Env.Now(), 7)
	most := 0
	for _, d := range week {
		most = max(most, d.Minutes)
	}
	rows = append(rows, "", s.Label.Render("Weekly Time Tracking"))
	for _, d := range week {
		rows = append(rows, fmt.Sprintf("%-10s %s %s",
			d.Day.Format("Mon Jan 2"), s.Progress(models.Progress{Completed: d.Minutes, Total: most}, 20), filter.FormatMinutes(d.Minutes)))
	}

	recent := v.recent()
	total := filter.TimeTotals(recent).Minutes
	rows = append(rows, "", s.Label.Render("Time by Project"))
	if len(recent) == 0 {
		rows = append(rows, s.TitleMuted.Render("No time logged in this period."))
	}
	for _, pm := range filter.TimeByProject(recent) {
		rows = append(rows, fmt.Sprintf("%-20s %s %s",
			truncate(pm.Project, 20), s.Progress(models.Progress{Completed: pm.Minutes, Total: total}, 20), filter.FormatMinutes(pm.Minutes)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *AnalyticsView) productivity() string {
	s := v.styles
	now := v.deps.Env.Now()
	metric := func(label, value string) string {
		return s.Label.Width(24).Render(label) + value
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Label.Render("Productivity Metrics"),
		metric("Task Completion Rate", fmt.Sprintf("%d%%", filter.Completion(v.tasks).Percent())),
		metric("Checklist Progress", fmt.Sprintf("%d%%", filter.ChecklistCompletion(v.tasks).Percent())),
		metric("Billable Share", fmt.Sprintf("%d%%", filter.TimeTotals(v.recent()).BillableShare())),
		metric("Due This Week", fmt.Sprint(len(filter.DueWithin(v.tasks, now, 7*24*time.Hour)))),
		metric("Overdue", fmt.Sprint(len(filter.Overdue(v.tasks, now)))),
	)
}

func (v *AnalyticsView) team() string {
	s := v.styles
	stats := filter.Performance(v.tasks)
	if len(stats) == 0 {
		return s.TitleMuted.Render("No assigned tasks yet.")
	}
	rows := []string{s.Label.Render("Team Performance")}
	for _, m := range stats {
		rating := s.TitleMuted.Render("Good")
		if m.Tasks.Percent() >= 90 {
			rating = lipgloss.NewStyle().Foreground(s.Theme.Success).Render("Excellent")
		}
		rows = append(rows, fmt.Sprintf("%-18s %2d/%-2d tasks  %s %3d%%  %s",
			truncate(m.Name, 18), m.Tasks.Completed, m.Tasks.Total, s.Progress(m.Tasks, 12), m.Tasks.Percent(), rating))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *AnalyticsView) projectTimeline() string {
	s := v.styles
	if len(v.projects) == 0 {
		return s.TitleMuted.Render("No projects yet.")
	}
	ordered := append([]models.Project(nil), v.projects...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DueDate.Before(ordered[j].DueDate)
	})
	rows := []string{s.Label.Render("Project Timeline")}
	for _, p := range ordered {
		rows = append(rows, fmt.Sprintf("%-24s %-14s %s %3d%%  %s",
			truncate(p.Title, 24), formatDate(p.DueDate), s.Progress(p.Progress, 12), p.Progress.Percent(), s.ProjectStatus(p.Status)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
