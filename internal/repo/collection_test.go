package repo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type note struct {
	ID   string
	Text string
}

func (n note) EntityID() string { return n.ID }

func seed() []note {
	return []note{{ID: "a", Text: "first"}, {ID: "b", Text: "second"}}
}

func TestNewRejectsDuplicateSeed(t *testing.T) {
	_, err := New("note", []note{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = New("note", []note{{ID: ""}})
	assert.ErrorIs(t, err, ErrEmptyID)
}

func TestAppendKeepsOrder(t *testing.T) {
	c := MustNew("note", seed())
	require.NoError(t, c.Append(note{ID: "c", Text: "third"}))

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, 3, c.Len())
}

func TestAppendDuplicateLeavesCollectionUnchanged(t *testing.T) {
	c := MustNew("note", seed())
	err := c.Append(note{ID: "a", Text: "again"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 2, c.Len())

	got, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)
}

func TestGetMissing(t *testing.T) {
	c := MustNew("note", seed())
	_, err := c.Get("zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	c := MustNew("note", seed())

	got, err := c.Update("b", func(n *note) error {
		n.Text = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Text)

	stored, _ := c.Get("b")
	assert.Equal(t, "changed", stored.Text)
}

func TestUpdateRejected(t *testing.T) {
	c := MustNew("note", seed())
	boom := errors.New("boom")

	_, err := c.Update("a", func(n *note) error {
		n.Text = "lost"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = c.Update("a", func(n *note) error {
		n.ID = "other"
		return nil
	})
	assert.ErrorIs(t, err, ErrIDChanged)

	stored, _ := c.Get("a")
	assert.Equal(t, "first", stored.Text)

	_, err = c.Update("nope", func(*note) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReturnsCopy(t *testing.T) {
	c := MustNew("note", seed())
	list := c.List()
	list[0].Text = "mutated"

	stored, _ := c.Get("a")
	assert.Equal(t, "first", stored.Text)
}

func TestFeedReceivesChanges(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe()
	defer cancel()

	c := MustNew("note", seed(), WithFeed[note](feed))
	require.NoError(t, c.Append(note{ID: "c"}))
	_, err := c.Update("a", func(n *note) error { n.Text = "x"; return nil })
	require.NoError(t, err)

	created := <-ch
	assert.Equal(t, OpCreated, created.Op)
	assert.Equal(t, "note", created.Kind)
	assert.Equal(t, "c", created.ID)
	assert.False(t, created.At.IsZero())

	updated := <-ch
	assert.Equal(t, OpUpdated, updated.Op)
	assert.Equal(t, "x", updated.Entity.(note).Text)
}

func TestFeedDropsWhenSubscriberIsSlow(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe()

	for i := 0; i < cap(ch)+5; i++ {
		feed.Publish(Change{Op: OpCreated, ID: "x"})
	}
	assert.Len(t, ch, cap(ch))

	cancel()
	cancel()
	feed.Publish(Change{Op: OpCreated})
}
