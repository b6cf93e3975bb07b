package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
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

const (
	fieldTaskTitle = "Task title"
	fieldTaskDesc  = "Description"
	fieldAssignee  = "Assignee"
	fieldDue       = "Due date (YYYY-MM-DD)"
	fieldTaskPrio  = "Priority"
	fieldLabel     = "Label (ctrl+l toggles)"
	fieldChecklist = "Checklist item (ctrl+a adds)"
)

// BoardView is the kanban board of one project
type BoardView struct {
	deps     Deps
	projects []models.Project
	project  models.Project
	tasks    *board.Tasks
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	col  int
	rows [3]int

	dialog     Dialog
	form       *forms.TaskForm
	fields     *FieldSet
	itemCursor int
}

func NewBoardView(deps Deps, s *styles.Styles) *BoardView {
	v := &BoardView{
		deps:     deps,
		projects: deps.Seed.Projects,
		tasks:    repo.MustNew("task", deps.Seed.Tasks, repo.WithFeed[models.Task](deps.Feed)),
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		fields: NewFieldSet("Create Task",
			NewField(fieldTaskTitle, "What needs to be done?", 200),
			NewField(fieldTaskDesc, "Details", 1000),
			NewField(fieldAssignee, "Who owns it?", 100),
			NewField(fieldDue, "2024-02-01", 10),
			NewChoice(fieldTaskPrio, enumStrings(models.Priorities)),
			NewChoice(fieldLabel, models.TaskLabels),
			NewField(fieldChecklist, "Add a step", 200),
		),
	}
	if len(v.projects) > 0 {
		v.SetProject(v.projects[0].ID)
	}
	return v
}

// SetProject switches the board to the project with the given id
func (v *BoardView) SetProject(id string) bool {
	for _, p := range v.projects {
		if p.ID == id {
			v.project = p
			v.form = forms.NewTaskForm(v.deps.Env, p)
			v.dialog = closed()
			v.rows = [3]int{}
			return true
		}
	}
	return false
}

// Project returns the project on display
func (v *BoardView) Project() models.Project { return v.project }

func (v *BoardView) Init() tea.Cmd { return nil }

func (v *BoardView) Capturing() bool { return v.dialog.Open() }

func (v *BoardView) SetStyles(s *styles.Styles) { v.styles = s }

func (v *BoardView) columns() [][]models.Task {
	id := v.project.ID
	return board.Columns(filter.Where(v.tasks.List(), func(t models.Task) bool { return t.ProjectID == id }))
}

func (v *BoardView) selected() (models.Task, bool) {
	cols := v.columns()
	col := cols[v.col]
	if len(col) == 0 {
		return models.Task{}, false
	}
	return col[clamp(v.rows[v.col], 0, len(col)-1)], true
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		switch v.dialog.Kind {
		case Creating:
			return v.updateCreating(msg)
		case Viewing:
			return v.updateViewing(msg)
		}
		return v.updateBoard(msg)
	}
	return v, nil
}

func (v *BoardView) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := v.columns()
	switch {
	case key.Matches(msg, v.keys.MoveLeft), key.Matches(msg, v.keys.MoveRight):
		t, ok := v.selected()
		if !ok {
			return v, nil
		}
		dir := 1
		if key.Matches(msg, v.keys.MoveLeft) {
			dir = -1
		}
		moved, err := board.Shift(v.tasks, t.ID, dir)
		if err != nil {
			return v, failed(err)
		}
		// follow the card
		v.col = moved.Status.Column()
		for i, c := range v.columns()[v.col] {
			if c.ID == moved.ID {
				v.rows[v.col] = i
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Left):
		v.col = max(v.col-1, 0)
	case key.Matches(msg, v.keys.Right):
		v.col = min(v.col+1, len(cols)-1)
	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down):
		v.rows[v.col], _ = moveCursor(msg, v.keys, v.rows[v.col], len(cols[v.col]))

	case key.Matches(msg, v.keys.New):
		if v.form == nil {
			return v, toast(ToastError, "No Project", "Create a project on the dashboard first.")
		}
		v.dialog = creating()
		v.form.Open(models.TaskStatuses[v.col])
		cmd := v.fields.Start()
		v.fields.Fields[4].SetValue(string(v.form.Priority))
		return v, cmd

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.dialog = viewing(t.ID)
			v.itemCursor = 0
		}

	case msg.String() == "p":
		if len(v.projects) > 1 {
			next := 0
			for i, p := range v.projects {
				if p.ID == v.project.ID {
					next = (i + 1) % len(v.projects)
				}
			}
			v.SetProject(v.projects[next].ID)
		}

	case msg.String() == "c":
		id := v.project.ID
		return v, func() tea.Msg { return OpenProjectMsg{ProjectID: id, To: RouteDiscussions} }
	}
	return v, nil
}

func (v *BoardView) syncForm() {
	f := v.fields
	v.form.Title = f.Get(fieldTaskTitle)
	v.form.Description = f.Get(fieldTaskDesc)
	v.form.Assignee = f.Get(fieldAssignee)
	v.form.Due = f.Get(fieldDue)
	v.form.Priority = models.Priority(f.Get(fieldTaskPrio))
}

func (v *BoardView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.form.Cancel()
		v.dialog = closed()
		return v, nil
	case msg.String() == "ctrl+l":
		v.form.ToggleLabel(v.fields.Get(fieldLabel))
		return v, nil
	case msg.String() == "ctrl+a":
		if v.form.AddChecklistItem(v.fields.Get(fieldChecklist)) {
			v.fields.Fields[6].Reset()
		}
		return v, nil
	case msg.String() == "ctrl+x":
		if n := len(v.form.Items); n > 0 {
			v.form.RemoveChecklistItem(v.form.Items[n-1].ID)
		}
		return v, nil
	}

	submit, cmd := v.fields.Update(msg)
	if !submit {
		return v, cmd
	}
	v.syncForm()
	t, err := v.form.Submit(v.tasks)
	if err != nil {
		return v, failed(err)
	}
	v.deps.log().Info("task created", zap.String("id", t.ID), zap.String("status", string(t.Status)))
	v.dialog = closed()
	v.col = t.Status.Column()
	v.rows[v.col] = len(v.columns()[v.col]) - 1
	return v, toast(ToastSuccess, "Task Created", fmt.Sprintf("%q added to %s.", t.Title, t.Status.Label()))
}

func (v *BoardView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t, err := v.tasks.Get(v.dialog.ID)
	if err != nil {
		v.dialog = closed()
		return v, failed(err)
	}
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dialog = closed()
		return v, nil
	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down):
		v.itemCursor, _ = moveCursor(msg, v.keys, v.itemCursor, len(t.Items))
		return v, nil
	case key.Matches(msg, v.keys.Toggle):
		if v.itemCursor < len(t.Items) {
			if _, err := board.ToggleChecklistItem(v.tasks, t.ID, t.Items[v.itemCursor].ID); err != nil {
				return v, failed(err)
			}
		}
		return v, nil
	}
	idx := strings.Index("123", msg.String())
	if idx < 0 || len(msg.String()) != 1 {
		return v, nil
	}
	updated, err := board.SetStatus(v.tasks, t.ID, models.TaskStatuses[idx])
	if err != nil {
		return v, failed(err)
	}
	v.col = updated.Status.Column()
	return v, nil
}

func (v *BoardView) View() string {
	switch v.dialog.Kind {
	case Creating:
		return v.renderCreate()
	case Viewing:
		return v.renderDetail()
	}

	s := v.styles
	if v.project.ID == "" {
		return s.TitleMuted.Render("No project selected. Open one from the dashboard.")
	}
	contentWidth := styles.ContentWidth(v.width)
	colWidth := max(contentWidth/3-3, 16)

	cols := v.columns()
	rendered := make([]string, len(cols))
	for c, tasks := range cols {
		status := models.TaskStatuses[c]
		head := s.Title.Render(status.Label()) + s.TitleMuted.Render(fmt.Sprintf(" (%d)", len(tasks)))
		cards := []string{head, ""}
		for r, t := range tasks {
			card := s.Card
			if c == v.col && r == v.rows[c] {
				card = s.CardFocused
			}
			due := ""
			if !t.DueDate.IsZero() {
				due = " • " + t.DueDate.Format("Jan 2")
			}
			cards = append(cards, card.Width(colWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
				truncate(t.Title, colWidth-2),
				s.Priority(t.Priority)+s.TitleMuted.Render(due),
				s.TitleMuted.Render(fmt.Sprintf("%s %d/%d", t.Assignee, t.Checklist.Completed, t.Checklist.Total)),
			)))
		}
		if len(tasks) == 0 {
			cards = append(cards, s.TitleMuted.Render("No tasks"))
		}
		colStyle := s.Column
		if c == v.col {
			colStyle = s.ColumnFocus
		}
		rendered[c] = colStyle.Width(colWidth + 2).Render(lipgloss.JoinVertical(lipgloss.Left, cards...))
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(v.project.Title)+"  "+s.ProjectStatus(v.project.Status),
		s.TitleMuted.Render(truncate(v.project.Description, contentWidth-2)),
		s.StatusBar.Render(fmt.Sprintf("Manager: %s • %d members • due %s", v.project.Manager, len(v.project.Members), formatDate(v.project.DueDate))),
	)
	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...),
		HelpLine(s, "←/→", "column", "H/L", "move task", "n", "new task", "↵", "details", "p", "next project", "c", "discussions"),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *BoardView) renderCreate() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-12, 20, 60)

	var labels []string
	for _, l := range models.TaskLabels {
		if v.form.HasLabel(l) {
			labels = append(labels, s.Tag.Render("#"+l))
		}
	}
	if len(labels) == 0 {
		labels = append(labels, s.TitleMuted.Render("no labels"))
	}
	var items []string
	for _, it := range v.form.Items {
		items = append(items, "[ ] "+it.Text)
	}
	progress := board.Count(v.form.Items)

	body := lipgloss.JoinVertical(lipgloss.Left,
		s.TitleMuted.Render("Column: "+v.form.Column.Label()),
		"",
		v.fields.View(s, inputWidth),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, labels...),
		s.Label.Render(fmt.Sprintf("Checklist %d/%d", progress.Completed, progress.Total)),
		strings.Join(items, "\n"),
		"",
		s.TitleMuted.Render("Ctrl+L: toggle label • Ctrl+A: add step • Ctrl+X: drop step • Ctrl+S: create • Esc: cancel"),
	)
	return renderDialog(s, v.width, v.height, "Create New Task", body)
}

func (v *BoardView) renderDetail() string {
	s := v.styles
	t, err := v.tasks.Get(v.dialog.ID)
	if err != nil {
		return s.Error.Render(err.Error())
	}
	var items []string
	for i, it := range t.Items {
		box := "[ ]"
		if it.Completed {
			box = "[x]"
		}
		line := box + " " + it.Text
		if i == v.itemCursor {
			line = s.ListSelected.Render(line)
		} else {
			line = s.ListItem.Render(line)
		}
		items = append(items, line)
	}
	if len(items) == 0 {
		items = append(items, s.TitleMuted.Render("No checklist items"))
	}
	var labels []string
	for _, l := range t.Labels {
		labels = append(labels, s.Tag.Render("#"+l))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.TitleMuted.Render(t.Description),
		"",
		fmt.Sprintf("Status:    %s", s.Status(t.Status)),
		fmt.Sprintf("Priority:  %s", s.Priority(t.Priority)),
		fmt.Sprintf("Assignee:  %s", t.Assignee),
		fmt.Sprintf("Due:       %s", formatDate(t.DueDate)),
		lipgloss.JoinHorizontal(lipgloss.Top, labels...),
		"",
		s.Label.Render(fmt.Sprintf("Checklist %s %d/%d", s.Progress(t.Checklist, 10), t.Checklist.Completed, t.Checklist.Total)),
		strings.Join(items, "\n"),
		"",
		HelpLine(s, "space", "toggle step", "1/2/3", "set status", "esc", "close"),
	)
	return renderDialog(s, v.width, v.height, t.Title, body)
}
