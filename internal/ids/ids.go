// Package ids hands out record identifiers. Production code uses random
// UUIDs; tests use a Sequence so ids are predictable.
package ids

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces identifiers unique within a process
type Generator interface {
	NewID() string
}

// UUID generates version 4 UUIDs
type UUID struct{}

func (UUID) NewID() string { return uuid.NewString() }

// Sequence generates prefix1, prefix2, ... in order
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	return s.prefix + strconv.FormatUint(s.n.Add(1), 10)
}
