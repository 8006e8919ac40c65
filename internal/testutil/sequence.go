package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs hands out run IDs "<prefix>-0001", "<prefix>-0002", ...
//
// Implements store.IDGenerator so persisted runs have stable IDs in golden
// output. Safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix becomes "run".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// LogicalClock is a logical clock; the first Next returns 1.
//
// Implements store.Clock. Safe for concurrent use.
type LogicalClock struct {
	mu  sync.Mutex
	seq int64
}

// Next increments and returns the sequence number.
func (c *LogicalClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}
