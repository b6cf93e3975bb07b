package repo

import (
	"sync"
	"time"
)

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
)

// Change describes a single mutation of a collection
type Change struct {
	Op     Op
	Kind   string
	ID     string
	Entity any // copy of the record after the mutation
	At     time.Time
}

// Feed fans collection changes out to subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type Feed struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
	now  func() time.Time
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[chan Change]struct{}), now: time.Now}
}

// Subscribe returns a buffered channel of changes and a cancel func that
// unregisters and closes it.
func (f *Feed) Subscribe() (ch chan Change, cancel func()) {
	ch = make(chan Change, 16)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *Feed) Publish(c Change) {
	if c.At.IsZero() {
		c.At = f.now()
	}
	f.mu.RLock()
	for ch := range f.subs {
		select {
		case ch <- c:
		default: // drop if slow
		}
	}
	f.mu.RUnlock()
}
