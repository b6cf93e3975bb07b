// Package threads manages the message forest of a discussion: replies,
// likes and validation of reply links.
package threads

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/synergy/internal/ids"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

var (
	ErrEmptyMessage   = errors.New("message content is empty")
	ErrUnknownParent  = errors.New("reply target does not exist")
	ErrReplyCycle     = errors.New("reply would create a cycle")
	ErrDuplicateMsgID = errors.New("duplicate message id")
)

// Discussions is the collection the package operates on
type Discussions = repo.Collection[models.Discussion]

// Validate checks that message ids are unique and that every reply link
// points at an existing message without forming a cycle.
func Validate(d models.Discussion) error {
	parent := make(map[string]string, len(d.Messages))
	for _, m := range d.Messages {
		if _, ok := parent[m.ID]; ok {
			return fmt.Errorf("discussion %q message %q: %w", d.ID, m.ID, ErrDuplicateMsgID)
		}
		parent[m.ID] = m.ReplyTo
	}
	for _, m := range d.Messages {
		if m.ReplyTo == "" {
			continue
		}
		if _, ok := parent[m.ReplyTo]; !ok {
			return fmt.Errorf("discussion %q message %q: %w", d.ID, m.ID, ErrUnknownParent)
		}
		// walk up; more steps than messages means a loop
		cur := m.ID
		for steps := 0; cur != ""; steps++ {
			if steps > len(d.Messages) {
				return fmt.Errorf("discussion %q message %q: %w", d.ID, m.ID, ErrReplyCycle)
			}
			cur = parent[cur]
		}
	}
	return nil
}

// Poster appends messages to discussions
type Poster struct {
	IDs ids.Generator
	Now func() time.Time
}

// Post adds a message authored by author to the discussion. replyTo may be
// empty for a top-level message.
func (p Poster) Post(discussions *Discussions, discussionID, author, content, replyTo string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, ErrEmptyMessage
	}
	msg := models.Message{
		ID:        p.IDs.NewID(),
		Author:    author,
		Content:   content,
		Timestamp: p.Now(),
		ReplyTo:   replyTo,
	}
	_, err := discussions.Update(discussionID, func(d *models.Discussion) error {
		next := *d
		next.Messages = append(append([]models.Message(nil), d.Messages...), msg)
		if err := Validate(next); err != nil {
			return err
		}
		*d = next
		return nil
	})
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ToggleLike flips the liked flag and moves the counter by exactly one
func ToggleLike(discussions *Discussions, discussionID, messageID string) (models.Message, error) {
	var out models.Message
	_, err := discussions.Update(discussionID, func(d *models.Discussion) error {
		msgs := append([]models.Message(nil), d.Messages...)
		for i := range msgs {
			if msgs[i].ID != messageID {
				continue
			}
			if msgs[i].IsLiked {
				msgs[i].Likes--
			} else {
				msgs[i].Likes++
			}
			msgs[i].IsLiked = !msgs[i].IsLiked
			out = msgs[i]
			d.Messages = msgs
			return nil
		}
		return fmt.Errorf("message %q: %w", messageID, repo.ErrNotFound)
	})
	return out, err
}

// Find returns the message with the given id
func Find(d models.Discussion, id string) (models.Message, bool) {
	for _, m := range d.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return models.Message{}, false
}

// Replies returns the direct replies to id in posting order
func Replies(d models.Discussion, id string) []models.Message {
	var out []models.Message
	for _, m := range d.Messages {
		if m.ReplyTo == id {
			out = append(out, m)
		}
	}
	return out
}

// Node is a message with its replies
type Node struct {
	Message models.Message
	Depth   int
	Replies []*Node
}

// Forest arranges the messages into reply trees, roots in posting order.
// Messages whose parent is missing are treated as roots.
func Forest(d models.Discussion) []*Node {
	nodes := make(map[string]*Node, len(d.Messages))
	for _, m := range d.Messages {
		nodes[m.ID] = &Node{Message: m}
	}
	var roots []*Node
	for _, m := range d.Messages {
		n := nodes[m.ID]
		if parent, ok := nodes[m.ReplyTo]; ok && m.ReplyTo != m.ID {
			parent.Replies = append(parent.Replies, n)
			continue
		}
		roots = append(roots, n)
	}
	var setDepth func(n *Node, depth int)
	setDepth = func(n *Node, depth int) {
		n.Depth = depth
		for _, r := range n.Replies {
			setDepth(r, depth+1)
		}
	}
	for _, r := range roots {
		setDepth(r, 0)
	}
	return roots
}

// Flatten walks the forest depth first
func Flatten(roots []*Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, r := range n.Replies {
			walk(r)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}
