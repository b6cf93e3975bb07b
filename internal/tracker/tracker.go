// Package tracker implements the start/pause/stop timer behind the time
// tracking view.
package tracker

import (
	"errors"
	"time"

	"github.com/tgienger/synergy/internal/models"
)

var (
	ErrNotRunning = errors.New("timer is not running")
	ErrNoProject  = errors.New("select a project before starting the timer")
	ErrTooShort   = errors.New("tracked time is shorter than a minute")
)

type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return "idle"
}

// Session describes what the timer is tracking
type Session struct {
	Project     string
	Task        string
	Description string
	Billable    bool
}

// Timer accumulates elapsed time across pauses. Resuming after a pause
// keeps the time already tracked.
type Timer struct {
	now func() time.Time

	state   State
	started time.Time // first start of the session
	since   time.Time // start of the current running stretch
	banked  time.Duration
	Session Session
}

func New(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now, Session: Session{Billable: true}}
}

func (t *Timer) State() State { return t.state }

// Start begins or resumes tracking
func (t *Timer) Start() error {
	if t.state == Running {
		return nil
	}
	if t.Session.Project == "" {
		return ErrNoProject
	}
	now := t.now()
	if t.state == Idle {
		t.started = now
		t.banked = 0
	}
	t.since = now
	t.state = Running
	return nil
}

func (t *Timer) Pause() error {
	if t.state != Running {
		return ErrNotRunning
	}
	t.banked += t.now().Sub(t.since)
	t.state = Paused
	return nil
}

// Elapsed is the total tracked time so far
func (t *Timer) Elapsed() time.Duration {
	if t.state == Running {
		return t.banked + t.now().Sub(t.since)
	}
	return t.banked
}

// Stop ends the session and returns it as a time entry without an id.
// Sessions under a minute are discarded.
func (t *Timer) Stop() (models.TimeEntry, error) {
	if t.state == Idle {
		return models.TimeEntry{}, ErrNotRunning
	}
	elapsed := t.Elapsed()
	end := t.now()
	start := t.started
	t.state = Idle
	t.banked = 0

	minutes := int(elapsed / time.Minute)
	if minutes < 1 {
		return models.TimeEntry{}, ErrTooShort
	}
	return models.TimeEntry{
		Project:     t.Session.Project,
		Task:        t.Session.Task,
		Description: t.Session.Description,
		Start:       start,
		End:         end,
		Minutes:     minutes,
		Billable:    t.Session.Billable,
	}, nil
}
