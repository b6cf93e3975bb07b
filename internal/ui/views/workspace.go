package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/board"
	"github.com/tgienger/synergy/internal/filter"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

// FocusArea represents which part of the tasks tab has focus
type FocusArea int

const (
	FocusSearchInput FocusArea = iota
	FocusProjectFilter
	FocusStatusFilter
	FocusPriorityFilter
	FocusTaskList
	focusAreas
)

type workspaceTab int

const (
	tabTasks workspaceTab = iota
	tabTeams
)

const (
	fieldTeamName    = "Team name"
	fieldTeamDesc    = "Description"
	fieldDepartment  = "Department"
	fieldLead        = "Team lead"
	fieldMemberName  = "Member name"
	fieldMemberEmail = "Member email"
	fieldMemberRole  = "Member role"
)

// WorkspaceView is "My Tasks": every task across projects plus the teams
// directory.
type WorkspaceView struct {
	deps   Deps
	tasks  *repo.Collection[models.Task]
	teams  *repo.Collection[models.Team]
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int
	tab    workspaceTab

	// Tasks tab
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model
	query       filter.TaskQuery
	projects    []string
	shown       []models.Task

	// Teams tab
	teamSearch    textinput.Model
	teamSearching bool
	teamQuery     filter.TeamQuery
	teamCursor    int
	teamsShown    []models.Team
	teamForm      *forms.TeamForm
	teamFields    *FieldSet

	dialog Dialog
}

func NewWorkspaceView(deps Deps, s *styles.Styles) *WorkspaceView {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	teamSearch := textinput.New()
	teamSearch.Placeholder = "Search teams or members..."
	teamSearch.CharLimit = 100

	projects := []string{filter.Any}
	for _, p := range deps.Seed.Projects {
		projects = append(projects, p.Title)
	}

	v := &WorkspaceView{
		deps:        deps,
		tasks:       repo.MustNew("task", deps.Seed.Tasks, repo.WithFeed[models.Task](deps.Feed)),
		teams:       repo.MustNew("team", deps.Seed.Teams, repo.WithFeed[models.Team](deps.Feed)),
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		focus:       FocusTaskList,
		searchInput: search,
		teamSearch:  teamSearch,
		query:       filter.TaskQuery{Project: filter.Any, Status: filter.Any, Priority: filter.Any},
		teamQuery:   filter.TeamQuery{Department: filter.Any},
		projects:    projects,
		teamForm:    forms.NewTeamForm(deps.Env),
		teamFields: NewFieldSet("Create Team",
			NewField(fieldTeamName, "Frontend Development", 100),
			NewField(fieldTeamDesc, "What does this team own?", 500),
			NewChoice(fieldDepartment, append([]string{""}, models.Departments...)),
			NewField(fieldLead, "Name of the team lead", 100),
			NewField(fieldMemberName, "Full name", 100),
			NewField(fieldMemberEmail, "name@company.com", 254),
			NewChoice(fieldMemberRole, append([]string{""}, models.Roles...)),
		),
	}
	v.reload()
	return v
}

func (v *WorkspaceView) Init() tea.Cmd { return nil }

func (v *WorkspaceView) Capturing() bool {
	return v.focus == FocusSearchInput || v.teamSearching || v.dialog.Open()
}

func (v *WorkspaceView) SetStyles(s *styles.Styles) { v.styles = s }

func (v *WorkspaceView) reload() {
	v.query.Text = v.searchInput.Value()
	v.shown = filter.Tasks(v.tasks.List(), v.query)
	v.cursor = clamp(v.cursor, 0, max(len(v.shown)-1, 0))

	v.teamQuery.Text = v.teamSearch.Value()
	v.teamsShown = filter.Teams(v.teams.List(), v.teamQuery)
	v.teamCursor = clamp(v.teamCursor, 0, max(len(v.teamsShown)-1, 0))
}

func (v *WorkspaceView) selected() (models.Task, bool) {
	if v.cursor < len(v.shown) {
		return v.shown[v.cursor], true
	}
	return models.Task{}, false
}

// Update handles messages
func (v *WorkspaceView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		switch v.dialog.Kind {
		case Viewing:
			return v.updateViewingTask(msg)
		case Creating:
			return v.updateCreatingTeam(msg)
		}
		if v.tab == tabTeams {
			return v.updateTeams(msg)
		}
		return v.updateTasks(msg)
	}
	return v, nil
}

func (v *WorkspaceView) switchTab() {
	v.searchInput.Blur()
	v.teamSearch.Blur()
	v.teamSearching = false
	v.focus = FocusTaskList
	if v.tab == tabTasks {
		v.tab = tabTeams
	} else {
		v.tab = tabTasks
	}
}

func (v *WorkspaceView) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		case key.Matches(msg, v.keys.Tab):
			v.cycleFocus(1)
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.reload()
			return v, cmd
		}
	}

	switch {
	case msg.String() == "t":
		v.switchTab()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		return v, v.searchInput.Focus()

	case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right):
		dir := 1
		if key.Matches(msg, v.keys.Left) {
			dir = -1
		}
		switch v.focus {
		case FocusProjectFilter:
			v.query.Project = cycle(v.projects, v.query.Project, dir)
		case FocusStatusFilter:
			v.query.Status = cycle(append([]string{filter.Any}, enumStrings(models.TaskStatuses)...), v.query.Status, dir)
		case FocusPriorityFilter:
			v.query.Priority = cycle(append([]string{filter.Any}, enumStrings(models.Priorities)...), v.query.Priority, dir)
		}
		v.cursor = 0
		v.scrollY = 0
		v.reload()
		return v, nil

	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList {
			v.cursor, _ = moveCursor(msg, v.keys, v.cursor, len(v.shown))
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok && v.focus == FocusTaskList {
			v.dialog = viewing(t.ID)
		}
		return v, nil

	case msg.String() == "x":
		v.query = filter.TaskQuery{Project: filter.Any, Status: filter.Any, Priority: filter.Any}
		v.searchInput.Reset()
		v.reload()
		return v, nil
	}
	return v, nil
}

func (v *WorkspaceView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + int(focusAreas)) % int(focusAreas))
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

func (v *WorkspaceView) ensureVisible() {
	// Each task item is 2 lines + 1 margin
	visibleItems := max((v.height-10)/3, 1)
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *WorkspaceView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, v.keys.Back) {
		v.dialog = closed()
		return v, nil
	}
	var status models.TaskStatus
	switch msg.String() {
	case "1":
		status = models.StatusTodo
	case "2":
		status = models.StatusInProgress
	case "3":
		status = models.StatusDone
	default:
		return v, nil
	}
	t, err := board.SetStatus(v.tasks, v.dialog.ID, status)
	if err != nil {
		return v, failed(err)
	}
	v.reload()
	return v, toast(ToastSuccess, "Task Updated", fmt.Sprintf("%q moved to %s", t.Title, t.Status.Label()))
}

func (v *WorkspaceView) updateTeams(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.teamSearching {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.teamSearch.Blur()
			v.teamSearching = false
			return v, nil
		}
		var cmd tea.Cmd
		v.teamSearch, cmd = v.teamSearch.Update(msg)
		v.reload()
		return v, cmd
	}

	switch {
	case msg.String() == "t":
		v.switchTab()
	case key.Matches(msg, v.keys.Search):
		v.teamSearching = true
		return v, v.teamSearch.Focus()
	case key.Matches(msg, v.keys.Filter):
		v.teamQuery.Department = cycle(append([]string{filter.Any}, models.Departments...), v.teamQuery.Department, 1)
		v.reload()
	case key.Matches(msg, v.keys.New):
		v.dialog = creating()
		v.teamForm.Cancel()
		return v, v.teamFields.Start()
	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down):
		v.teamCursor, _ = moveCursor(msg, v.keys, v.teamCursor, len(v.teamsShown))
	case key.Matches(msg, v.keys.Enter):
		if v.teamCursor < len(v.teamsShown) {
			team := v.teamsShown[v.teamCursor]
			return v, toast(ToastInfo, "Team Details",
				fmt.Sprintf("Viewing details for %s team with %d members in %s department.", team.Name, len(team.Members), team.Department))
		}
	}
	return v, nil
}

func (v *WorkspaceView) syncTeamForm() {
	f := v.teamFields
	v.teamForm.Name = f.Get(fieldTeamName)
	v.teamForm.Description = f.Get(fieldTeamDesc)
	v.teamForm.Department = f.Get(fieldDepartment)
	v.teamForm.Lead = f.Get(fieldLead)
	v.teamForm.Member = forms.MemberDraft{
		Name:  f.Get(fieldMemberName),
		Email: f.Get(fieldMemberEmail),
		Role:  f.Get(fieldMemberRole),
	}
}

func (v *WorkspaceView) updateCreatingTeam(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.teamForm.Cancel()
		v.dialog = closed()
		return v, nil
	case msg.String() == "ctrl+a":
		v.syncTeamForm()
		if err := v.teamForm.AddMember(); err != nil {
			return v, failed(err)
		}
		for _, label := range []string{fieldMemberName, fieldMemberEmail, fieldMemberRole} {
			for _, fld := range v.teamFields.Fields {
				if fld.Label == label {
					fld.Reset()
				}
			}
		}
		return v, v.teamFields.FocusAt(4)
	case msg.String() == "ctrl+x":
		if n := len(v.teamForm.Members); n > 0 {
			v.teamForm.RemoveMember(v.teamForm.Members[n-1].ID)
		}
		return v, nil
	}

	submit, cmd := v.teamFields.Update(msg)
	if !submit {
		return v, cmd
	}
	v.syncTeamForm()
	team, err := v.teamForm.Submit(v.teams)
	if err != nil {
		return v, failed(err)
	}
	v.deps.log().Info("team created", zap.String("id", team.ID), zap.Int("members", len(team.Members)))
	v.dialog = closed()
	v.reload()
	return v, toast(ToastSuccess, "Team Created", fmt.Sprintf("%s has been successfully created.", team.Name))
}

func (v *WorkspaceView) View() string {
	switch v.dialog.Kind {
	case Viewing:
		return v.renderTaskDetail()
	case Creating:
		return v.renderCreateTeam()
	}

	s := v.styles
	tabs := []string{s.Tab.Render("My Tasks"), s.Tab.Render("Teams")}
	tabs[v.tab] = s.TabActive.Render([]string{"My Tasks", "Teams"}[v.tab])
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	if v.tab == tabTeams {
		body = v.renderTeams()
	} else {
		body = v.renderTasks()
	}
	return styles.CenterView(header+"\n\n"+body, v.width, v.height)
}

func (v *WorkspaceView) renderFilterBar() string {
	s := v.styles
	chip := func(area FocusArea, label, value string) string {
		st := s.FilterButton
		if v.focus == area {
			st = s.ButtonFocused.Border(lipgloss.HiddenBorder())
		}
		return st.Render(label + ": " + value)
	}
	searchStyle := s.FilterInput
	if v.focus == FocusSearchInput {
		searchStyle = searchStyle.Foreground(s.Theme.Primary)
	}
	return s.FilterBar.Render(lipgloss.JoinHorizontal(lipgloss.Center,
		searchStyle.Render(v.searchInput.View()),
		chip(FocusProjectFilter, "Project", v.query.Project),
		chip(FocusStatusFilter, "Status", v.query.Status),
		chip(FocusPriorityFilter, "Priority", v.query.Priority),
	))
}

func (v *WorkspaceView) renderTasks() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	var rows []string
	if len(v.shown) == 0 {
		rows = append(rows, s.TitleMuted.Render("No tasks match your filters. Press x to clear them."))
	}
	visible := max((v.height-10)/3, 1)
	for i := v.scrollY; i < len(v.shown) && i < v.scrollY+visible; i++ {
		t := v.shown[i]
		st := s.ListItem
		if i == v.cursor && v.focus == FocusTaskList {
			st = s.ListSelected
		}
		title := st.Width(contentWidth - 4).Render(truncate(t.Title, contentWidth-8))
		meta := s.TaskItem.Foreground(s.Theme.ForegroundDim).Render(fmt.Sprintf("%s • %s • %s • due %s • %d/%d",
			t.ProjectName, s.Status(t.Status), s.Priority(t.Priority), formatDate(t.DueDate), t.Checklist.Completed, t.Checklist.Total))
		rows = append(rows, title+"\n"+meta+"\n")
	}
	counts := fmt.Sprintf("%d of %d tasks", len(v.shown), v.tasks.Len())
	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderFilterBar(),
		s.StatusBar.Render(counts),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		HelpLine(s, "tab", "focus", "←/→", "change filter", "/", "search", "↵", "details", "x", "clear", "t", "teams"),
	)
}

func (v *WorkspaceView) renderTaskDetail() string {
	s := v.styles
	t, err := v.tasks.Get(v.dialog.ID)
	if err != nil {
		return s.Error.Render(err.Error())
	}
	var labels []string
	for _, l := range t.Labels {
		labels = append(labels, s.Tag.Render(l))
	}
	var items []string
	for _, it := range t.Items {
		box := "[ ]"
		if it.Completed {
			box = "[x]"
		}
		items = append(items, box+" "+it.Text)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.TitleMuted.Render(t.Description),
		"",
		fmt.Sprintf("Project:   %s", t.ProjectName),
		fmt.Sprintf("Assignee:  %s", t.Assignee),
		fmt.Sprintf("Due:       %s", formatDate(t.DueDate)),
		fmt.Sprintf("Priority:  %s", s.Priority(t.Priority)),
		fmt.Sprintf("Status:    %s", s.Status(t.Status)),
		fmt.Sprintf("Checklist: %s %d/%d", s.Progress(t.Checklist, 10), t.Checklist.Completed, t.Checklist.Total),
		strings.Join(items, "\n"),
		lipgloss.JoinHorizontal(lipgloss.Top, labels...),
		"",
		HelpLine(s, "1", "to do", "2", "in progress", "3", "done", "esc", "close"),
	)
	return renderDialog(s, v.width, v.height, t.Title, body)
}

func (v *WorkspaceView) renderTeams() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	search := s.FilterInput.Render(v.teamSearch.View())
	var rows []string
	if len(v.teamsShown) == 0 {
		rows = append(rows, s.TitleMuted.Render("No teams found."))
	}
	for i, t := range v.teamsShown {
		st := s.Card
		if i == v.teamCursor {
			st = s.CardFocused
		}
		var members []string
		for _, m := range t.Members {
			name := m.Name
			if m.IsLead {
				name += " ★"
			}
			members = append(members, name)
		}
		rows = append(rows, st.Width(contentWidth-4).Render(lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render(t.Name)+"  "+s.TitleMuted.Render(t.Department+" • "+string(t.Status)),
			s.TitleMuted.Render(truncate(t.Description, contentWidth-10)),
			fmt.Sprintf("Lead: %s • %d members: %s", t.Lead, len(t.Members), strings.Join(members, ", ")),
		)))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.FilterBar.Render(search+s.FilterButton.Render("Department: "+v.teamQuery.Department)),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		HelpLine(s, "/", "search", "f", "department", "n", "new team", "↵", "details", "t", "tasks"),
	)
}

func (v *WorkspaceView) renderCreateTeam() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-12, 20, 60)
	var members []string
	for _, m := range v.teamForm.Members {
		members = append(members, fmt.Sprintf("• %s <%s> %s", m.Name, m.Email, m.Role))
	}
	if len(members) == 0 {
		members = append(members, s.TitleMuted.Render("No members added yet"))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		v.teamFields.View(s, inputWidth),
		"",
		s.Label.Render(fmt.Sprintf("Members (%d)", len(v.teamForm.Members))),
		strings.Join(members, "\n"),
		"",
		s.TitleMuted.Render("Ctrl+A: add member • Ctrl+X: remove last • Ctrl+S: create • Esc: cancel"),
	)
	return renderDialog(s, v.width, v.height, "Create New Team", body)
}
