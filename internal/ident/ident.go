// Package ident generates client-side goal identifiers.
package ident

import (
	"sync"
	"time"
)

// Generator produces goal IDs from the wall clock in milliseconds since
// the Unix epoch. Within one process the sequence is strictly
// increasing: two calls in the same millisecond bump past the previous
// value instead of repeating it.
//
// Across devices the scheme only guards the common case. Two devices
// creating goals in the same millisecond can still collide once their
// partitions sync; the stores surface that as a duplicate-key write
// failure rather than silently merging.
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// New returns a Generator backed by the system clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock returns a Generator using the given clock. Used in tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns the next identifier.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
