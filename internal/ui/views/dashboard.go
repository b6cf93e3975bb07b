package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/filter"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Title }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Title }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d *projectDelegate) Height() int                         { return 3 }
func (d *projectDelegate) Spacing() int                        { return 1 }
func (d *projectDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d *projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)
	s := d.styles

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = s.ListSelected.Width(width)
		descStyle = s.ListSelected.Foreground(s.Theme.ForegroundDim).Width(width)
	} else {
		titleStyle = s.ListItem.Width(width)
		descStyle = s.ListItem.Foreground(s.Theme.ForegroundDim).Width(width)
	}

	pr := p.project
	meta := fmt.Sprintf("%s  %s %d/%d  %s  due %s  %d members",
		s.Priority(pr.Priority),
		s.Progress(pr.Progress, 12),
		pr.Progress.Completed, pr.Progress.Total,
		s.ProjectStatus(pr.Status),
		formatDate(pr.DueDate),
		len(pr.Members),
	)

	fmt.Fprintf(w, "%s\n%s\n%s",
		titleStyle.Render(pr.Title),
		descStyle.Render(truncate(pr.Description, width-4)),
		s.ListItem.Render(meta),
	)
}

// DashboardView lists projects and hosts the create project dialog
type DashboardView struct {
	deps      Deps
	projects  *repo.Collection[models.Project]
	directory forms.Directory
	list      list.Model
	delegate  *projectDelegate
	search    textinput.Model
	searching bool
	styles    *styles.Styles
	keys      keys.KeyMap
	width     int
	height    int

	dialog       Dialog
	form         *forms.ProjectForm
	fields       *FieldSet
	memberSearch textinput.Model
	memberFocus  bool
	memberCursor int

	showHelpPopup bool
}

const (
	fieldName        = "Project name"
	fieldKey         = "Project key"
	fieldManager     = "Manager"
	fieldDescription = "Description"
	fieldDuration    = "Duration (weeks)"
	fieldPriority    = "Priority"
	fieldVisibility  = "Visibility"
)

func NewDashboardView(deps Deps, s *styles.Styles) *DashboardView {
	projects := repo.MustNew("project", deps.Seed.Projects, repo.WithFeed[models.Project](deps.Feed))

	search := textinput.New()
	search.Placeholder = "Filter projects..."
	search.CharLimit = 100

	memberSearch := textinput.New()
	memberSearch.Placeholder = "Search people by name, email or id"
	memberSearch.CharLimit = 100

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	v := &DashboardView{
		deps:         deps,
		projects:     projects,
		directory:    forms.Directory(deps.Seed.Directory),
		list:         l,
		delegate:     delegate,
		search:       search,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		form:         forms.NewProjectForm(deps.Env),
		memberSearch: memberSearch,
		fields: NewFieldSet("Create Project",
			NewField(fieldName, "Website Redesign", 100),
			NewField(fieldKey, "website-redesign", 100),
			NewField(fieldManager, "Who runs this project?", 100),
			NewField(fieldDescription, "What is it about?", 500),
			NewField(fieldDuration, "e.g. 6", 3),
			NewChoice(fieldPriority, enumStrings(models.Priorities)),
			NewChoice(fieldVisibility, enumStrings(models.Visibilities)),
		),
	}
	v.refresh()
	return v
}

func enumStrings[T ~string](xs []T) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = string(x)
	}
	return out
}

func (v *DashboardView) Init() tea.Cmd { return nil }

func (v *DashboardView) Capturing() bool {
	return v.searching || v.dialog.Open() || v.showHelpPopup
}

func (v *DashboardView) SetStyles(s *styles.Styles) {
	v.styles = s
	v.delegate.styles = s
	v.list.Styles.Title = s.Title
}

// Projects exposes the view's collection to the shell
func (v *DashboardView) Projects() *repo.Collection[models.Project] { return v.projects }

func (v *DashboardView) refresh() {
	shown := filter.Projects(v.projects.List(), filter.ProjectQuery{Text: v.search.Value()})
	items := make([]list.Item, len(shown))
	for i, p := range shown {
		items[i] = projectItem{project: p}
	}
	v.list.SetItems(items)
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		switch v.dialog.Kind {
		case Creating:
			return v.updateCreating(msg)
		case Confirming:
			return v.updateConfirmDiscard(msg)
		}

		if v.searching {
			return v.updateSearch(msg)
		}

		switch {
		case key.Matches(msg, v.keys.New):
			return v, v.openCreate()
		case key.Matches(msg, v.keys.Search):
			v.searching = true
			return v, v.search.Focus()
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return OpenProjectMsg{ProjectID: item.project.ID, To: RouteBoard}
				}
			}
		case msg.String() == "c":
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return OpenProjectMsg{ProjectID: item.project.ID, To: RouteDiscussions}
				}
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *DashboardView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.search.Reset()
		fallthrough
	case key.Matches(msg, v.keys.Enter):
		v.search.Blur()
		v.searching = false
		v.refresh()
		return v, nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.refresh()
	return v, cmd
}

func (v *DashboardView) openCreate() tea.Cmd {
	v.dialog = creating()
	v.form.Cancel()
	v.memberSearch.Reset()
	v.memberFocus = false
	v.memberCursor = 0
	cmd := v.fields.Start()
	v.fields.Fields[5].SetValue(string(v.form.Priority))
	v.fields.Fields[6].SetValue(string(v.form.Visibility))
	return tea.Batch(cmd, textinput.Blink)
}

func (v *DashboardView) updateConfirmDiscard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.form.Cancel()
		v.dialog = closed()
		return v, nil
	case "n", "N", "esc":
		v.dialog = creating()
		return v, nil
	}
	return v, nil
}

func (v *DashboardView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, v.keys.Back) {
		v.syncForm()
		if strings.TrimSpace(v.form.Name) != "" || len(v.form.Members) > 0 {
			v.dialog = confirming("")
			return v, nil
		}
		v.form.Cancel()
		v.dialog = closed()
		return v, nil
	}

	// ctrl+p toggles between the fields and the member picker
	if msg.String() == "ctrl+p" {
		v.memberFocus = !v.memberFocus
		if v.memberFocus {
			v.fields.FocusAt(len(v.fields.Fields))
			return v, v.memberSearch.Focus()
		}
		v.memberSearch.Blur()
		return v, v.fields.FocusAt(0)
	}
	if v.memberFocus {
		return v, v.updateMembers(msg)
	}

	before := v.fields.Get(fieldKey)
	submit, cmd := v.fields.Update(msg)
	if f := v.fields.Focused(); f != nil && f.Label == fieldKey && f.Value() != before {
		v.form.SetKey(f.Value())
	}
	v.syncForm()
	if submit {
		return v, v.submit()
	}
	return v, cmd
}

func (v *DashboardView) updateMembers(msg tea.KeyMsg) tea.Cmd {
	matches := v.directory.Search(v.memberSearch.Value())
	switch {
	case key.Matches(msg, v.keys.Enter):
		if v.memberCursor < len(matches) {
			v.form.AddMember(matches[v.memberCursor])
		}
		return nil
	case msg.String() == "ctrl+x":
		if n := len(v.form.Members); n > 0 {
			v.form.RemoveMember(v.form.Members[n-1].ID)
		}
		return nil
	case msg.String() == "up", msg.String() == "down":
		v.memberCursor, _ = moveCursor(msg, v.keys, v.memberCursor, len(matches))
		return nil
	case key.Matches(msg, v.keys.Save):
		return v.submit()
	}
	var cmd tea.Cmd
	v.memberSearch, cmd = v.memberSearch.Update(msg)
	v.memberCursor = 0
	return cmd
}

// syncForm copies the dialog fields into the draft. The key follows the
// name until it has been typed by hand.
func (v *DashboardView) syncForm() {
	v.form.SetName(v.fields.Get(fieldName))
	if v.fields.Get(fieldKey) != v.form.Key {
		v.fields.Fields[1].SetValue(v.form.Key)
	}
	v.form.Manager = v.fields.Get(fieldManager)
	v.form.Description = v.fields.Get(fieldDescription)
	v.form.Duration = v.fields.Get(fieldDuration)
	v.form.Priority = models.Priority(v.fields.Get(fieldPriority))
	v.form.Visibility = models.Visibility(v.fields.Get(fieldVisibility))
}

func (v *DashboardView) submit() tea.Cmd {
	v.syncForm()
	p, err := v.form.Submit(v.projects)
	if err != nil {
		return failed(err)
	}
	v.deps.log().Info("project created", zap.String("id", p.ID), zap.String("key", p.Key))
	v.dialog = closed()
	v.refresh()
	v.list.Select(len(v.list.Items()) - 1)
	return toast(ToastSuccess, "Project Created", fmt.Sprintf("%q has been created.", p.Title))
}

// View renders the view
func (v *DashboardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	switch v.dialog.Kind {
	case Creating:
		return v.renderCreateForm()
	case Confirming:
		return renderConfirm(v.styles, v.width, v.height, "Discard Project?", "The new project has not been saved.")
	}

	if v.projects.Len() == 0 {
		return v.renderEmpty()
	}

	var top string
	if v.searching || v.search.Value() != "" {
		top = v.styles.FilterBar.Render(v.search.View()) + "\n"
	}
	content := v.renderStats() + "\n" + top + v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *DashboardView) renderStats() string {
	s := v.styles
	all := v.projects.List()
	count := func(st models.ProjectStatus) int {
		return len(filter.Where(all, func(p models.Project) bool { return p.Status == st }))
	}
	var done, total int
	for _, p := range all {
		done += p.Progress.Completed
		total += p.Progress.Total
	}
	overall := models.Progress{Completed: done, Total: total}
	return s.StatusBar.Render(fmt.Sprintf("%d projects • %d active • %d planning • %d completed • %d%% of tasks done",
		len(all), count(models.ProjectActive), count(models.ProjectPlanning), count(models.ProjectCompleted), overall.Percent()))
}

func (v *DashboardView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No projects yet"),
		"",
		s.TitleMuted.Render("Create your first project to get started with team collaboration."),
		"",
		s.ButtonPrimary.Render(" n - Create Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *DashboardView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-12, 20, 60)

	var picked []string
	for _, m := range v.form.Members {
		picked = append(picked, s.Tag.Render(m.Name))
	}
	if len(picked) == 0 {
		picked = append(picked, s.TitleMuted.Render("no members yet"))
	}

	box := s.Input
	if v.memberFocus {
		box = s.InputFocused
	}
	var matches []string
	for i, m := range v.directory.Search(v.memberSearch.Value()) {
		if i >= 4 {
			break
		}
		line := fmt.Sprintf("%s <%s> %s", m.Name, m.Email, m.Role)
		if v.memberFocus && i == v.memberCursor {
			matches = append(matches, s.ListSelected.Render(line))
		} else {
			matches = append(matches, s.ListItem.Render(line))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		v.fields.View(s, inputWidth),
		"",
		s.Label.Render("Team members"),
		lipgloss.JoinHorizontal(lipgloss.Top, picked...),
		box.Width(inputWidth).Render(v.memberSearch.View()),
		lipgloss.JoinVertical(lipgloss.Left, matches...),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: change choice • Ctrl+P: members • Ctrl+S: save • Esc: cancel"),
	)
	return renderDialog(s, v.width, v.height, "New Project", body)
}

func (v *DashboardView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return HelpLine(v.styles, "↵", "board", "c", "discussions", "n", "new", "/", "filter", "?", "help")
}

func (v *DashboardView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project board",
		s.HelpKey.Render("c") + "      open project discussions",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("/") + "      filter projects",
		s.HelpKey.Render("[ ]") + "    switch tabs",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
