package threads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/synergy/internal/ids"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

var now = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

func discussion() models.Discussion {
	return models.Discussion{
		ID:    "d1",
		Title: "Design System Guidelines",
		Messages: []models.Message{
			{ID: "m1", Author: "Sarah Chen", Content: "Let's agree on the palette", Likes: 3},
			{ID: "m2", Author: "Alex Johnson", Content: "Agreed", ReplyTo: "m1", Likes: 1, IsLiked: true},
			{ID: "m3", Author: "Emma Davis", Content: "Typography next"},
		},
	}
}

func newDiscussions(t *testing.T) *Discussions {
	t.Helper()
	c, err := repo.New("discussion", []models.Discussion{discussion()})
	require.NoError(t, err)
	return c
}

func poster() Poster {
	return Poster{IDs: ids.NewSequence("msg-"), Now: func() time.Time { return now }}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(discussion()))

	d := discussion()
	d.Messages[0].ReplyTo = "m0"
	assert.ErrorIs(t, Validate(d), ErrUnknownParent)

	d = discussion()
	d.Messages[0].ReplyTo = "m2"
	assert.ErrorIs(t, Validate(d), ErrReplyCycle)

	d = discussion()
	d.Messages[2].ReplyTo = "m3"
	assert.ErrorIs(t, Validate(d), ErrReplyCycle)

	d = discussion()
	d.Messages[2].ID = "m1"
	assert.ErrorIs(t, Validate(d), ErrDuplicateMsgID)
}

func TestPostReply(t *testing.T) {
	discussions := newDiscussions(t)

	msg, err := poster().Post(discussions, "d1", "You", "  sounds good  ", "m2")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "sounds good", msg.Content)
	assert.Equal(t, "m2", msg.ReplyTo)
	assert.Equal(t, now, msg.Timestamp)

	d, _ := discussions.Get("d1")
	require.Len(t, d.Messages, 4)
	assert.Equal(t, msg, d.Messages[3])
}

func TestPostRejected(t *testing.T) {
	discussions := newDiscussions(t)
	p := poster()

	_, err := p.Post(discussions, "d1", "You", "   ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = p.Post(discussions, "d1", "You", "hi", "missing")
	assert.ErrorIs(t, err, ErrUnknownParent)

	_, err = p.Post(discussions, "nope", "You", "hi", "")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	d, _ := discussions.Get("d1")
	assert.Len(t, d.Messages, 3)
}

func TestPostSelfReplyIsCycle(t *testing.T) {
	discussions := newDiscussions(t)
	p := Poster{IDs: fixedID("m9"), Now: time.Now}

	_, err := p.Post(discussions, "d1", "You", "loop", "m9")
	assert.ErrorIs(t, err, ErrReplyCycle)

	p = Poster{IDs: fixedID("m1"), Now: time.Now}
	_, err = p.Post(discussions, "d1", "You", "dup", "")
	assert.ErrorIs(t, err, ErrDuplicateMsgID)
}

type fixedID string

func (f fixedID) NewID() string { return string(f) }

func TestToggleLikeRoundTrip(t *testing.T) {
	discussions := newDiscussions(t)

	got, err := ToggleLike(discussions, "d1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Likes)
	assert.True(t, got.IsLiked)

	got, err = ToggleLike(discussions, "d1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Likes)
	assert.False(t, got.IsLiked)

	got, err = ToggleLike(discussions, "d1", "m2")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
	assert.False(t, got.IsLiked)

	_, err = ToggleLike(discussions, "d1", "zzz")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestForest(t *testing.T) {
	d := discussion()
	d.Messages = append(d.Messages, models.Message{ID: "m4", ReplyTo: "m2"})

	roots := Forest(d)
	require.Len(t, roots, 2)
	assert.Equal(t, "m1", roots[0].Message.ID)
	assert.Equal(t, "m3", roots[1].Message.ID)

	flat := Flatten(roots)
	var order []string
	var depths []int
	for _, n := range flat {
		order = append(order, n.Message.ID)
		depths = append(depths, n.Depth)
	}
	assert.Equal(t, []string{"m1", "m2", "m4", "m3"}, order)
	assert.Equal(t, []int{0, 1, 2, 0}, depths)

	assert.Len(t, Replies(d, "m1"), 1)
	m, ok := Find(d, "m4")
	assert.True(t, ok)
	assert.Equal(t, "m2", m.ReplyTo)
}
