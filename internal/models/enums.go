package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when parsing an enumeration fails
var ErrUnknownValue = errors.New("unknown value")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ParsePriority accepts a priority name in any case
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("priority %q: %w", s, ErrUnknownValue)
	}
	return p, nil
}

// TaskStatus is one of the three board columns. Any status can follow any
// other.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses lists the board columns left to right
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

func (s TaskStatus) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// Column returns the index of the status on the board, or -1.
func (s TaskStatus) Column() int {
	for i, st := range TaskStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseTaskStatus accepts the stored name or the display label
func ParseTaskStatus(s string) (TaskStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(norm)
	st := TaskStatus(norm)
	if !st.Valid() {
		return "", fmt.Errorf("task status %q: %w", s, ErrUnknownValue)
	}
	return st, nil
}

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

// ProjectStatuses lists the project statuses in lifecycle order
var ProjectStatuses = []ProjectStatus{ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted}

func (s ProjectStatus) Label() string {
	switch s {
	case ProjectPlanning:
		return "Planning"
	case ProjectActive:
		return "Active"
	case ProjectOnHold:
		return "On Hold"
	case ProjectCompleted:
		return "Completed"
	}
	return string(s)
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityTeam    Visibility = "team"
	VisibilityPublic  Visibility = "public"
)

// Visibilities lists the project visibility options in display order
var Visibilities = []Visibility{VisibilityPrivate, VisibilityTeam, VisibilityPublic}

type TeamStatus string

const (
	TeamActive   TeamStatus = "active"
	TeamInactive TeamStatus = "inactive"
)

type DocumentType string

const (
	DocPDF   DocumentType = "pdf"
	DocWord  DocumentType = "doc"
	DocSheet DocumentType = "xls"
	DocSlide DocumentType = "ppt"
	DocImage DocumentType = "image"
	DocOther DocumentType = "other"
)

func (t DocumentType) Icon() string {
	switch t {
	case DocPDF:
		return "PDF"
	case DocWord:
		return "DOC"
	case DocSheet:
		return "XLS"
	case DocSlide:
		return "PPT"
	case DocImage:
		return "IMG"
	}
	return "---"
}

type NotificationKind string

const (
	NotifyTask       NotificationKind = "task"
	NotifyMention    NotificationKind = "mention"
	NotifyAssignment NotificationKind = "assignment"
	NotifyDeadline   NotificationKind = "deadline"
)

// Fixed option lists offered by the creation dialogs.
var (
	Departments = []string{
		"Engineering", "Design", "Marketing", "Sales",
		"Operations", "HR", "Finance", "Customer Success",
	}
	Roles = []string{
		"Team Lead", "Senior Developer", "Developer", "Junior Developer",
		"Designer", "Product Manager", "QA Engineer", "DevOps Engineer",
		"Data Analyst", "Marketing Specialist", "Sales Representative",
	}
	TaskLabels = []string{"frontend", "backend", "design", "bug", "feature", "urgent"}
	Folders    = []string{"All", "Projects", "Meetings", "Finance", "Design", "Archive"}
)
