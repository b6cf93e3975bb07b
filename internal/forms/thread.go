package forms

import (
	"errors"
	"strings"

	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/threads"
)

// ThreadForm starts a new discussion with its first message
type ThreadForm struct {
	env       Env
	projectID string

	Title   string
	Content string
}

func NewThreadForm(env Env, projectID string) *ThreadForm {
	return &ThreadForm{env: env, projectID: projectID}
}

func (f *ThreadForm) Validate() error {
	if blank(f.Title, f.Content) {
		return invalid(TitleMissing, MsgRequired)
	}
	return nil
}

func (f *ThreadForm) Submit(discussions *repo.Collection[models.Discussion], author string) (models.Discussion, error) {
	if err := f.Validate(); err != nil {
		return models.Discussion{}, err
	}
	now := f.env.Now()
	d := models.Discussion{
		ID:        f.env.IDs.NewID(),
		ProjectID: f.projectID,
		Title:     strings.TrimSpace(f.Title),
		Author:    author,
		CreatedAt: now,
		Messages: []models.Message{{
			ID:        f.env.IDs.NewID(),
			Author:    author,
			Content:   strings.TrimSpace(f.Content),
			Timestamp: now,
		}},
	}
	if err := discussions.Append(d); err != nil {
		return models.Discussion{}, err
	}
	f.Cancel()
	return d, nil
}

func (f *ThreadForm) Cancel() {
	*f = ThreadForm{env: f.env, projectID: f.projectID}
}

// ReplyForm composes a message in an open discussion. ReplyTo is empty for
// a top-level message.
type ReplyForm struct {
	env Env

	Content string
	ReplyTo string
}

func NewReplyForm(env Env) *ReplyForm {
	return &ReplyForm{env: env}
}

// Submit posts the message and clears the draft
func (f *ReplyForm) Submit(discussions *repo.Collection[models.Discussion], discussionID, author string) (models.Message, error) {
	p := threads.Poster{IDs: f.env.IDs, Now: f.env.Now}
	msg, err := p.Post(discussions, discussionID, author, f.Content, f.ReplyTo)
	if errors.Is(err, threads.ErrEmptyMessage) {
		return models.Message{}, invalid(TitleMissing, MsgEmptyMessage)
	}
	if err != nil {
		return models.Message{}, err
	}
	f.Cancel()
	return msg, nil
}

func (f *ReplyForm) Cancel() {
	*f = ReplyForm{env: f.env}
}
