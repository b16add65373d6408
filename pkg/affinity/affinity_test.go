package affinity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocatorDisjointRanges(t *testing.T) {
	a := &Allocator{slots: 4, perJob: 2, total: 8, inUse: make(map[int]bool)}

	seen := make(map[int]bool)
	for slot := 0; slot < 4; slot++ {
		cpus, ok := a.Acquire(slot)
		assert.True(t, ok)
		assert.Len(t, cpus, 2)
		for _, c := range cpus {
			assert.False(t, seen[c], "cpu %d double-assigned", c)
			seen[c] = true
		}
		a.Release(slot)
	}
	assert.Len(t, seen, 8)
}

func TestAllocatorTooFewCores(t *testing.T) {
	a := &Allocator{slots: 8, perJob: 1, total: 4, inUse: make(map[int]bool)}
	_, ok := a.Acquire(0)
	assert.False(t, ok)
}
