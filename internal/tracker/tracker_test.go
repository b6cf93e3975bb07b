package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTimer() (*Timer, *clock) {
	c := &clock{t: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	tm := New(c.now)
	tm.Session.Project = "Website Redesign"
	tm.Session.Task = "Homepage Design"
	return tm, c
}

func TestStartRequiresProject(t *testing.T) {
	tm := New(nil)
	assert.ErrorIs(t, tm.Start(), ErrNoProject)
	assert.Equal(t, Idle, tm.State())
}

func TestPauseKeepsElapsed(t *testing.T) {
	tm, c := newTimer()
	require.NoError(t, tm.Start())
	c.advance(20 * time.Minute)
	require.NoError(t, tm.Pause())
	c.advance(time.Hour)
	assert.Equal(t, 20*time.Minute, tm.Elapsed())

	require.NoError(t, tm.Start())
	c.advance(10 * time.Minute)
	assert.Equal(t, 30*time.Minute, tm.Elapsed())

	e, err := tm.Stop()
	require.NoError(t, err)
	assert.Equal(t, 30, e.Minutes)
	assert.Equal(t, "Homepage Design", e.Task)
	assert.True(t, e.Billable)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), e.Start)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), e.End)
	assert.Equal(t, Idle, tm.State())
	assert.Zero(t, tm.Elapsed())
}

func TestStopErrors(t *testing.T) {
	tm, c := newTimer()
	_, err := tm.Stop()
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, tm.Pause(), ErrNotRunning)

	require.NoError(t, tm.Start())
	c.advance(30 * time.Second)
	_, err = tm.Stop()
	assert.ErrorIs(t, err, ErrTooShort)
	assert.Equal(t, Idle, tm.State())
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	tm, c := newTimer()
	require.NoError(t, tm.Start())
	c.advance(5 * time.Minute)
	require.NoError(t, tm.Start())
	assert.Equal(t, 5*time.Minute, tm.Elapsed())
	assert.Equal(t, "running", tm.State().String())
}
