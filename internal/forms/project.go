package forms

import (
	"strconv"
	"strings"
	"time"

	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

// Directory is the list of people that can be added to a project
type Directory []models.Member

// Search matches name or email case-insensitively, or a substring of the id
func (d Directory) Search(q string) []models.Member {
	q = strings.TrimSpace(q)
	if q == "" {
		return append([]models.Member(nil), d...)
	}
	lq := strings.ToLower(q)
	var out []models.Member
	for _, m := range d {
		if strings.Contains(strings.ToLower(m.Name), lq) ||
			strings.Contains(strings.ToLower(m.Email), lq) ||
			strings.Contains(m.ID, q) {
			out = append(out, m)
		}
	}
	return out
}

// ProjectForm is the draft behind the create project dialog
type ProjectForm struct {
	env Env

	Name        string
	Key         string
	Manager     string
	Description string
	Duration    string // weeks
	Priority    models.Priority
	Visibility  models.Visibility
	Members     []models.Member

	keyEdited bool
}

func NewProjectForm(env Env) *ProjectForm {
	f := &ProjectForm{env: env}
	f.Cancel()
	return f
}

// SetName updates the name and, until the key is edited by hand, the key
func (f *ProjectForm) SetName(name string) {
	f.Name = name
	if !f.keyEdited {
		f.Key = Slug(name)
	}
}

func (f *ProjectForm) SetKey(key string) {
	f.Key = key
	f.keyEdited = true
}

// AddMember adds m unless a member with the same id is already present
func (f *ProjectForm) AddMember(m models.Member) bool {
	for _, existing := range f.Members {
		if existing.ID == m.ID {
			return false
		}
	}
	f.Members = append(f.Members, m)
	return true
}

func (f *ProjectForm) RemoveMember(id string) {
	out := f.Members[:0]
	for _, m := range f.Members {
		if m.ID != id {
			out = append(out, m)
		}
	}
	f.Members = out
}

func (f *ProjectForm) Validate() error {
	if blank(f.Name) {
		return invalid(TitleMissing, MsgRequired)
	}
	if d := strings.TrimSpace(f.Duration); d != "" {
		if n, err := strconv.Atoi(d); err != nil || n < 0 {
			return invalid(TitleInvalid, MsgInvalidDuration)
		}
	}
	return nil
}

// Submit appends the new project to projects and resets the form
func (f *ProjectForm) Submit(projects *repo.Collection[models.Project]) (models.Project, error) {
	if err := f.Validate(); err != nil {
		return models.Project{}, err
	}
	now := f.env.Now()
	weeks, _ := strconv.Atoi(strings.TrimSpace(f.Duration))

	key := strings.TrimSpace(f.Key)
	if key == "" {
		key = Slug(f.Name)
	}
	p := models.Project{
		ID:            f.env.IDs.NewID(),
		Title:         strings.TrimSpace(f.Name),
		Key:           key,
		Description:   strings.TrimSpace(f.Description),
		Manager:       strings.TrimSpace(f.Manager),
		Priority:      f.Priority,
		Status:        models.ProjectPlanning,
		Visibility:    f.Visibility,
		DurationWeeks: weeks,
		Members:       append([]models.Member(nil), f.Members...),
		CreatedAt:     now,
	}
	if weeks > 0 {
		p.DueDate = now.Add(time.Duration(weeks) * 7 * 24 * time.Hour)
	}
	if err := projects.Append(p); err != nil {
		return models.Project{}, err
	}
	f.Cancel()
	return p, nil
}

// Cancel discards the draft
func (f *ProjectForm) Cancel() {
	env := f.env
	*f = ProjectForm{
		env:        env,
		Priority:   models.PriorityMedium,
		Visibility: models.VisibilityTeam,
	}
}
