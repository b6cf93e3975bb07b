package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

func newTasks(t *testing.T) *Tasks {
	t.Helper()
	c, err := repo.New("task", []models.Task{
		{ID: "1", Title: "Design new landing page", Status: models.StatusTodo, Checklist: models.Progress{Completed: 2, Total: 5}},
		{ID: "2", Title: "Implement user authentication", Status: models.StatusInProgress},
		{ID: "3", Title: "Database schema design", Status: models.StatusDone, Items: []models.ChecklistItem{
			{ID: "c1", Text: "tables", Completed: true},
			{ID: "c2", Text: "indexes"},
		}, Checklist: models.Progress{Completed: 1, Total: 2}},
	})
	require.NoError(t, err)
	return c
}

func TestSetStatusIsTotal(t *testing.T) {
	for _, from := range models.TaskStatuses {
		for _, to := range models.TaskStatuses {
			tasks := newTasks(t)
			_, err := SetStatus(tasks, "1", from)
			require.NoError(t, err)

			got, err := SetStatus(tasks, "1", to)
			require.NoError(t, err)
			assert.Equal(t, to, got.Status, "%s -> %s", from, to)
			assert.Equal(t, models.Progress{Completed: 2, Total: 5}, got.Checklist)
		}
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	tasks := newTasks(t)
	_, err := SetStatus(tasks, "1", "blocked")
	assert.ErrorIs(t, err, models.ErrUnknownValue)

	_, err = SetStatus(tasks, "missing", models.StatusDone)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestShift(t *testing.T) {
	tasks := newTasks(t)

	got, err := Shift(tasks, "1", 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	got, err = Shift(tasks, "1", -1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, got.Status)

	got, err = Shift(tasks, "1", -1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, got.Status)

	got, err = Shift(tasks, "3", 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, got.Status)
}

func TestToggleChecklistItem(t *testing.T) {
	tasks := newTasks(t)

	got, err := ToggleChecklistItem(tasks, "3", "c2")
	require.NoError(t, err)
	assert.Equal(t, models.Progress{Completed: 2, Total: 2}, got.Checklist)
	assert.Equal(t, models.StatusDone, got.Status)

	got, err = ToggleChecklistItem(tasks, "3", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.Progress{Completed: 1, Total: 2}, got.Checklist)

	_, err = ToggleChecklistItem(tasks, "3", "nope")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestColumns(t *testing.T) {
	tasks := newTasks(t)
	_, _ = SetStatus(tasks, "3", models.StatusTodo)

	cols := Columns(tasks.List())
	require.Len(t, cols, 3)
	assert.Equal(t, "1", cols[0][0].ID)
	assert.Equal(t, "3", cols[0][1].ID)
	assert.Len(t, cols[1], 1)
	assert.Empty(t, cols[2])
}
