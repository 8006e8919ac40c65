package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	gen := NewSequentialIDs("opt")
	assert.Equal(t, "opt-0001", gen.Generate())
	assert.Equal(t, "opt-0002", gen.Generate())

	assert.Equal(t, "run-0001", NewSequentialIDs("").Generate())
}

func TestLogicalClock(t *testing.T) {
	var clock LogicalClock
	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
}

func TestLogicalClockConcurrent(t *testing.T) {
	var clock LogicalClock
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				clock.Next()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1001), clock.Next())
}

func TestBuilders(t *testing.T) {
	c := Circuit(t, 3, H(0), CX(0, 1), Controlled(H(2), 0, 1), RX(0, "pi/2"), RZ(1, "0.5"))
	assert.Equal(t, []string{"h", "cx", "h", "rx", "rz"}, Names(c))
	assert.Equal(t, []int{0, 1}, c.Gate(2).Controls())
	assert.Equal(t, "pi/2", c.Gate(3).Params()[0].String())
}
