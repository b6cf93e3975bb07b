package forms

import (
	"slices"
	"strings"

	"github.com/tgienger/synergy/internal/board"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

// TaskForm is the draft behind the create task dialog. The task lands in
// Column.
type TaskForm struct {
	env     Env
	project models.Project

	Column      models.TaskStatus
	Title       string
	Description string
	Assignee    string
	Due         string // YYYY-MM-DD
	Priority    models.Priority
	Labels      []string
	Items       []models.ChecklistItem
}

func NewTaskForm(env Env, project models.Project) *TaskForm {
	f := &TaskForm{env: env, project: project}
	f.Open(models.StatusTodo)
	return f
}

// Open resets the draft targeting column
func (f *TaskForm) Open(column models.TaskStatus) {
	f.Cancel()
	f.Column = column
}

// ToggleLabel adds or removes one of models.TaskLabels
func (f *TaskForm) ToggleLabel(label string) {
	if i := slices.Index(f.Labels, label); i >= 0 {
		f.Labels = slices.Delete(f.Labels, i, i+1)
		return
	}
	f.Labels = append(f.Labels, label)
}

func (f *TaskForm) HasLabel(label string) bool {
	return slices.Contains(f.Labels, label)
}

// AddChecklistItem appends a trimmed, non-empty item
func (f *TaskForm) AddChecklistItem(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	f.Items = append(f.Items, models.ChecklistItem{ID: f.env.IDs.NewID(), Text: text})
	return true
}

func (f *TaskForm) RemoveChecklistItem(id string) {
	f.Items = slices.DeleteFunc(f.Items, func(it models.ChecklistItem) bool { return it.ID == id })
}

func (f *TaskForm) Validate() error {
	if blank(f.Title) {
		return invalid(TitleMissing, MsgRequired)
	}
	if _, err := ParseDate(f.Due); err != nil {
		return err
	}
	return nil
}

// Submit appends the task to tasks and resets the form
func (f *TaskForm) Submit(tasks *repo.Collection[models.Task]) (models.Task, error) {
	if err := f.Validate(); err != nil {
		return models.Task{}, err
	}
	due, _ := ParseDate(f.Due)
	status := f.Column
	if !status.Valid() {
		status = models.StatusTodo
	}
	items := append([]models.ChecklistItem(nil), f.Items...)
	t := models.Task{
		ID:          f.env.IDs.NewID(),
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Assignee:    strings.TrimSpace(f.Assignee),
		ProjectID:   f.project.ID,
		ProjectName: f.project.Title,
		DueDate:     due,
		Priority:    f.Priority,
		Status:      status,
		Checklist:   board.Count(items),
		Items:       items,
		Labels:      append([]string(nil), f.Labels...),
	}
	if err := tasks.Append(t); err != nil {
		return models.Task{}, err
	}
	f.Cancel()
	return t, nil
}

// Cancel discards the draft. The target column is kept.
func (f *TaskForm) Cancel() {
	*f = TaskForm{
		env:      f.env,
		project:  f.project,
		Column:   f.Column,
		Priority: models.PriorityMedium,
	}
}
