// Package fixtures provides the demo data every view is seeded from.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/threads"
)

//go:embed seed.yaml
var builtin []byte

// Seed is one complete set of demo data
type Seed struct {
	Directory     []models.Member       `yaml:"directory"`
	Projects      []models.Project      `yaml:"projects"`
	Tasks         []models.Task         `yaml:"tasks"`
	Teams         []models.Team         `yaml:"teams"`
	Discussions   []models.Discussion   `yaml:"discussions"`
	Documents     []models.Document     `yaml:"documents"`
	TimeProjects  []string              `yaml:"timeProjects"`
	TimeEntries   []models.TimeEntry    `yaml:"timeEntries"`
	Profile       models.Profile        `yaml:"profile"`
	Notifications []models.Notification `yaml:"notifications"`
}

// Builtin returns the embedded demo data
func Builtin() (*Seed, error) {
	return Parse(builtin)
}

// Load reads path, or the embedded data when path is empty
func Load(path string) (*Seed, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a seed document. Unknown fields are errors.
func Parse(data []byte) (*Seed, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Seed
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ProjectTasks returns the tasks belonging to projectID
func (s *Seed) ProjectTasks(projectID string) []models.Task {
	var out []models.Task
	for _, t := range s.Tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// ProjectDiscussions returns the threads of projectID
func (s *Seed) ProjectDiscussions(projectID string) []models.Discussion {
	var out []models.Discussion
	for _, d := range s.Discussions {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out
}

var ErrInvalid = errors.New("invalid fixtures")

// Validate checks ids, enumerations and reply links
func (s *Seed) Validate() error {
	var errs []error
	check := func(kind string, ids []string) {
		seen := map[string]bool{}
		for _, id := range ids {
			if id == "" {
				errs = append(errs, fmt.Errorf("%s with empty id", kind))
				continue
			}
			if seen[id] {
				errs = append(errs, fmt.Errorf("%s %q defined twice", kind, id))
			}
			seen[id] = true
		}
	}

	check("project", collect(s.Projects, func(p models.Project) string { return p.ID }))
	check("task", collect(s.Tasks, func(t models.Task) string { return t.ID }))
	check("team", collect(s.Teams, func(t models.Team) string { return t.ID }))
	check("discussion", collect(s.Discussions, func(d models.Discussion) string { return d.ID }))
	check("document", collect(s.Documents, func(d models.Document) string { return d.ID }))
	check("time entry", collect(s.TimeEntries, func(e models.TimeEntry) string { return e.ID }))

	for _, p := range s.Projects {
		if !p.Priority.Valid() {
			errs = append(errs, fmt.Errorf("project %q: priority %q", p.ID, p.Priority))
		}
		if !p.Status.Valid() {
			errs = append(errs, fmt.Errorf("project %q: status %q", p.ID, p.Status))
		}
	}
	for _, t := range s.Tasks {
		if !t.Status.Valid() {
			errs = append(errs, fmt.Errorf("task %q: status %q", t.ID, t.Status))
		}
		if !t.Priority.Valid() {
			errs = append(errs, fmt.Errorf("task %q: priority %q", t.ID, t.Priority))
		}
	}
	for _, d := range s.Discussions {
		if err := threads.Validate(d); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func collect[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
