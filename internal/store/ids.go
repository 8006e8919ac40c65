package store

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock stamps rows with a strictly increasing sequence number.
type Clock interface {
	Next() int64
}

type logicalClock struct {
	seq atomic.Int64
}

// newClockAt creates a clock whose first Next returns start+1.
func newClockAt(start int64) *logicalClock {
	c := &logicalClock{}
	c.seq.Store(start)
	return c
}

func (c *logicalClock) Next() int64 {
	return c.seq.Add(1)
}
