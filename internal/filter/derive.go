package filter

import (
	"fmt"
	"time"

	"github.com/tgienger/synergy/internal/models"
)

// Totals summarises a set of time entries
type Totals struct {
	Minutes         int
	BillableMinutes int
	Entries         int
}

// BillableShare returns the billable fraction as a whole percentage
func (t Totals) BillableShare() int {
	if t.Minutes == 0 {
		return 0
	}
	return t.BillableMinutes * 100 / t.Minutes
}

func TimeTotals(entries []models.TimeEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.Minutes += e.Minutes
		t.Entries++
		if e.Billable {
			t.BillableMinutes += e.Minutes
		}
	}
	return t
}

// ProjectMinutes is the time logged against one project
type ProjectMinutes struct {
	Project string
	Minutes int
}

// TimeByProject groups minutes per project in order of first appearance
func TimeByProject(entries []models.TimeEntry) []ProjectMinutes {
	var out []ProjectMinutes
	pos := map[string]int{}
	for _, e := range entries {
		i, ok := pos[e.Project]
		if !ok {
			i = len(out)
			pos[e.Project] = i
			out = append(out, ProjectMinutes{Project: e.Project})
		}
		out[i].Minutes += e.Minutes
	}
	return out
}

// EntriesOn keeps the entries that started on the same calendar day as day
func EntriesOn(entries []models.TimeEntry, day time.Time) []models.TimeEntry {
	y, m, d := day.Date()
	return Where(entries, func(e models.TimeEntry) bool {
		ey, em, ed := e.Start.In(day.Location()).Date()
		return ey == y && em == m && ed == d
	})
}

// DueWithin keeps unfinished tasks with a due date in [now, now+window]
func DueWithin(tasks []models.Task, now time.Time, window time.Duration) []models.Task {
	return Where(tasks, func(t models.Task) bool {
		if t.DueDate.IsZero() || t.Status == models.StatusDone {
			return false
		}
		return !t.DueDate.Before(StartOfDay(now)) && !t.DueDate.After(now.Add(window))
	})
}

// StartOfDay is midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatMinutes renders 150 as "2h 30m"
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatClock renders an elapsed duration as HH:MM:SS
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// EntriesSince keeps the entries that started at or after since
func EntriesSince(entries []models.TimeEntry, since time.Time) []models.TimeEntry {
	return Where(entries, func(e models.TimeEntry) bool { return !e.Start.Before(since) })
}

// DayMinutes is the time logged on one calendar day
type DayMinutes struct {
	Day     time.Time
	Minutes int
}

// MinutesPerDay buckets entries into the days calendar days ending with
// the day of end, oldest first. Days without entries are kept at zero.
func MinutesPerDay(entries []models.TimeEntry, end time.Time, days int) []DayMinutes {
	if days <= 0 {
		return nil
	}
	first := StartOfDay(end).AddDate(0, 0, -(days - 1))
	out := make([]DayMinutes, days)
	for i := range out {
		out[i].Day = first.AddDate(0, 0, i)
	}
	for _, e := range entries {
		day := StartOfDay(e.Start.In(end.Location()))
		for i := range out {
			if out[i].Day.Equal(day) {
				out[i].Minutes += e.Minutes
				break
			}
		}
	}
	return out
}

// Completion counts finished tasks
func Completion(tasks []models.Task) models.Progress {
	p := models.Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == models.StatusDone {
			p.Completed++
		}
	}
	return p
}

// ChecklistCompletion adds up the checklists of every task
func ChecklistCompletion(tasks []models.Task) models.Progress {
	var p models.Progress
	for _, t := range tasks {
		p.Completed += t.Checklist.Completed
		p.Total += t.Checklist.Total
	}
	return p
}

// Overdue keeps unfinished tasks whose due date is before today
func Overdue(tasks []models.Task, now time.Time) []models.Task {
	today := StartOfDay(now)
	return Where(tasks, func(t models.Task) bool {
		return !t.DueDate.IsZero() && t.Status != models.StatusDone && t.DueDate.Before(today)
	})
}

// MemberStats is the task completion of one assignee
type MemberStats struct {
	Name  string
	Tasks models.Progress
}

// Performance groups tasks by assignee in order of first appearance.
// Unassigned tasks are skipped.
func Performance(tasks []models.Task) []MemberStats {
	var out []MemberStats
	pos := map[string]int{}
	for _, t := range tasks {
		if t.Assignee == "" {
			continue
		}
		i, ok := pos[t.Assignee]
		if !ok {
			i = len(out)
			pos[t.Assignee] = i
			out = append(out, MemberStats{Name: t.Assignee})
		}
		out[i].Tasks.Total++
		if t.Status == models.StatusDone {
			out[i].Tasks.Completed++
		}
	}
	return out
}

// StatusCount is the number of projects in one status
type StatusCount struct {
	Status models.ProjectStatus
	Count  int
}

// ProjectStatusCounts counts projects per status in models.ProjectStatuses
// order, zero counts included
func ProjectStatusCounts(projects []models.Project) []StatusCount {
	out := make([]StatusCount, len(models.ProjectStatuses))
	for i, st := range models.ProjectStatuses {
		out[i].Status = st
	}
	for _, p := range projects {
		for i := range out {
			if out[i].Status == p.Status {
				out[i].Count++
			}
		}
	}
	return out
}
