// Package filter derives views over entity collections. Every function
// returns a subsequence of its input in the original order.
package filter

import (
	"strings"

	"github.com/tgienger/synergy/internal/models"
)

// Any is the UI value that means "no constraint"
const Any = "all"

// Where keeps the items matching every predicate
func Where[T any](items []T, preds ...func(T) bool) []T {
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range preds {
			if !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

func unset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, Any)
}

// Contains reports whether needle is a case-insensitive substring of any
// field. An empty needle matches everything.
func Contains(needle string, fields ...string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Equal is a case-insensitive equality check that treats an unset want as
// a match.
func Equal(want, got string) bool {
	if unset(want) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(want), got)
}

// TaskQuery selects tasks. Empty fields do not constrain.
type TaskQuery struct {
	Text     string
	Project  string // project name or id
	Status   string
	Priority string
}

func (q TaskQuery) Match(t models.Task) bool {
	text := append([]string{t.Title, t.Description}, t.Labels...)
	return Contains(q.Text, text...) &&
		(Equal(q.Project, t.ProjectName) || Equal(q.Project, t.ProjectID)) &&
		Equal(q.Status, string(t.Status)) &&
		Equal(q.Priority, string(t.Priority))
}

func (q TaskQuery) Empty() bool {
	return unset(q.Text) && unset(q.Project) && unset(q.Status) && unset(q.Priority)
}

func Tasks(tasks []models.Task, q TaskQuery) []models.Task {
	return Where(tasks, q.Match)
}

// DocumentQuery selects documents by name/tag text and folder
type DocumentQuery struct {
	Text   string
	Folder string
}

func (q DocumentQuery) Match(d models.Document) bool {
	text := append([]string{d.Name}, d.Tags...)
	return Contains(q.Text, text...) && Equal(q.Folder, d.Folder)
}

func Documents(docs []models.Document, q DocumentQuery) []models.Document {
	return Where(docs, q.Match)
}

// ProjectQuery selects projects on the dashboard
type ProjectQuery struct {
	Text     string
	Status   string
	Priority string
}

func (q ProjectQuery) Match(p models.Project) bool {
	return Contains(q.Text, p.Title, p.Description, p.Key) &&
		Equal(q.Status, string(p.Status)) &&
		Equal(q.Priority, string(p.Priority))
}

func Projects(projects []models.Project, q ProjectQuery) []models.Project {
	return Where(projects, q.Match)
}

// TeamQuery selects teams by name, description or member name
type TeamQuery struct {
	Text       string
	Department string
}

func (q TeamQuery) Match(t models.Team) bool {
	fields := []string{t.Name, t.Description}
	for _, m := range t.Members {
		fields = append(fields, m.Name)
	}
	return Contains(q.Text, fields...) && Equal(q.Department, t.Department)
}

func Teams(teams []models.Team, q TeamQuery) []models.Team {
	return Where(teams, q.Match)
}
