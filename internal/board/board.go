// Package board implements the kanban transitions applied to a task
// collection. Status changes never touch the checklist.
package board

import (
	"fmt"

	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

// Tasks is the collection a board mutates
type Tasks = repo.Collection[models.Task]

// SetStatus moves a task to status regardless of its current column
func SetStatus(tasks *Tasks, id string, status models.TaskStatus) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, fmt.Errorf("status %q: %w", status, models.ErrUnknownValue)
	}
	return tasks.Update(id, func(t *models.Task) error {
		t.Status = status
		return nil
	})
}

// Shift moves a task dir columns to the right (negative for left). Moving
// past either edge leaves the task where it is.
func Shift(tasks *Tasks, id string, dir int) (models.Task, error) {
	return tasks.Update(id, func(t *models.Task) error {
		col := t.Status.Column() + dir
		if col < 0 || col >= len(models.TaskStatuses) {
			return nil
		}
		t.Status = models.TaskStatuses[col]
		return nil
	})
}

// ToggleChecklistItem flips one checklist entry and recounts progress
func ToggleChecklistItem(tasks *Tasks, taskID, itemID string) (models.Task, error) {
	return tasks.Update(taskID, func(t *models.Task) error {
		items := make([]models.ChecklistItem, len(t.Items))
		copy(items, t.Items)

		found := false
		for i := range items {
			if items[i].ID == itemID {
				items[i].Completed = !items[i].Completed
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("checklist item %q: %w", itemID, repo.ErrNotFound)
		}
		t.Items = items
		t.Checklist = Count(items)
		return nil
	})
}

// Count derives checklist progress from the items
func Count(items []models.ChecklistItem) models.Progress {
	p := models.Progress{Total: len(items)}
	for _, it := range items {
		if it.Completed {
			p.Completed++
		}
	}
	return p
}

// Columns splits tasks into the three board columns keeping source order
func Columns(tasks []models.Task) [][]models.Task {
	cols := make([][]models.Task, len(models.TaskStatuses))
	for _, t := range tasks {
		if c := t.Status.Column(); c >= 0 {
			cols[c] = append(cols[c], t)
		}
	}
	return cols
}
