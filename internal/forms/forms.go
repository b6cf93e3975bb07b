// Package forms holds the draft state behind every creation dialog. A
// controller validates on Submit, appends exactly one record on success and
// resets itself; on failure it returns a *ValidationError and leaves the
// target collection untouched.
package forms

import (
	"errors"
	"strings"
	"time"

	"github.com/tgienger/synergy/internal/ids"
)

// Titles and messages surfaced to the user
const (
	TitleMissing       = "Missing Information"
	TitleDuplicate     = "Duplicate Email"
	TitleNoMembers     = "No Team Members"
	TitleInvalid       = "Invalid Value"
	TitleTerms         = "Terms Required"
	MsgRequired        = "Please fill in all required fields"
	MsgMemberDetails   = "Please fill in all member details"
	MsgDuplicateEmail  = "A team member with this email already exists"
	MsgNoMembers       = "Please add at least one team member"
	MsgAllFields       = "Please fill in all fields."
	MsgEmptyMessage    = "Please write a message first"
	MsgAcceptTerms     = "Please accept the terms and conditions"
	MsgProfileUpdated  = "Profile updated successfully!"
	MsgInvalidDuration = "Duration must be a whole number of weeks"
	MsgInvalidDate     = "Dates use the YYYY-MM-DD format"
)

// ValidationError is shown inline next to the dialog that caused it
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Title + ": " + e.Message
}

func invalid(title, msg string) error {
	return &ValidationError{Title: title, Message: msg}
}

// AsValidation unwraps err into a *ValidationError if it is one
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Env supplies ids and the clock to every controller
type Env struct {
	IDs ids.Generator
	Now func() time.Time
}

// DefaultEnv uses random UUIDs and the wall clock
func DefaultEnv() Env {
	return Env{IDs: ids.UUID{}, Now: time.Now}
}

func blank(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// SplitList splits a comma separated list, trimming entries and dropping
// empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Slug derives a project key from its name
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD; an empty string is the zero time
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, invalid(TitleInvalid, MsgInvalidDate)
	}
	return t, nil
}
