// Package repo holds ordered in-memory entity collections.
package repo

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate id")
	ErrEmptyID     = errors.New("empty id")
	ErrIDChanged   = errors.New("id may not change")
)

// Entity is anything with a stable identifier
type Entity interface {
	EntityID() string
}

// Collection is an ordered list of entities with unique ids. Records keep
// their insertion order; new records go to the end.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	kind  string
	items []T
	index map[string]int
	feed  *Feed
}

type Option[T Entity] func(*Collection[T])

// WithFeed publishes every create and update to f
func WithFeed[T Entity](f *Feed) Option[T] {
	return func(c *Collection[T]) { c.feed = f }
}

// New builds a collection seeded with items. Seeds must have unique,
// non-empty ids.
func New[T Entity](kind string, seed []T, opts ...Option[T]) (*Collection[T], error) {
	c := &Collection[T]{
		kind:  kind,
		items: make([]T, 0, len(seed)),
		index: make(map[string]int, len(seed)),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, item := range seed {
		if err := c.insert(item); err != nil {
			return nil, fmt.Errorf("seed %s: %w", kind, err)
		}
	}
	return c, nil
}

// MustNew is New for seeds known to be valid
func MustNew[T Entity](kind string, seed []T, opts ...Option[T]) *Collection[T] {
	c, err := New(kind, seed, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collection[T]) Kind() string { return c.kind }

func (c *Collection[T]) insert(item T) error {
	id := item.EntityID()
	if id == "" {
		return ErrEmptyID
	}
	if _, ok := c.index[id]; ok {
		return fmt.Errorf("%s %q: %w", c.kind, id, ErrDuplicateID)
	}
	c.index[id] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// Append adds item at the end of the collection
func (c *Collection[T]) Append(item T) error {
	c.mu.Lock()
	err := c.insert(item)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(OpCreated, item)
	return nil
}

func (c *Collection[T]) Get(id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", c.kind, id, ErrNotFound)
	}
	return c.items[i], nil
}

// Update applies fn to the record with the given id and returns the result.
// fn works on a copy; if it returns an error nothing is stored.
func (c *Collection[T]) Update(id string, fn func(*T) error) (T, error) {
	c.mu.Lock()
	i, ok := c.index[id]
	if !ok {
		c.mu.Unlock()
		var zero T
		return zero, fmt.Errorf("%s %q: %w", c.kind, id, ErrNotFound)
	}
	item := c.items[i]
	if err := fn(&item); err != nil {
		c.mu.Unlock()
		var zero T
		return zero, err
	}
	if item.EntityID() != id {
		c.mu.Unlock()
		var zero T
		return zero, fmt.Errorf("%s %q: %w", c.kind, id, ErrIDChanged)
	}
	c.items[i] = item
	c.mu.Unlock()

	c.publish(OpUpdated, item)
	return item, nil
}

// List returns a copy of all records in order
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) publish(op Op, item T) {
	if c.feed == nil {
		return
	}
	c.feed.Publish(Change{Op: op, Kind: c.kind, ID: item.EntityID(), Entity: item})
}
