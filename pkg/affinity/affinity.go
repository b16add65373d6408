// Package affinity allocates disjoint CPU core ranges to worker slots so
// concurrent games don't contend for the same cores, mirroring fastchess's
// --affinity option. The actual pinning syscall lives in pkg/engineproto
// (golang.org/x/sys/unix.SchedSetaffinity); this package only decides which
// cores belong to which slot.
package affinity

import (
	"runtime"
	"sync"
)

// Allocator hands out a fixed-size, non-overlapping slice of logical CPU ids
// to each of n worker slots. With fewer CPUs than slots it hands out nothing
// (see Acquire); ids wrap around NumCPU only for slot indexes past n.
type Allocator struct {
	mu     sync.Mutex
	slots  int
	perJob int
	total  int
	inUse  map[int]bool
}

// New builds an Allocator sized for concurrency worker slots, splitting the
// host's logical CPUs evenly across them (minimum one core per slot).
func New(concurrency int) *Allocator {
	total := runtime.NumCPU()
	perJob := total / concurrency
	if perJob < 1 {
		perJob = 1
	}
	return &Allocator{slots: concurrency, perJob: perJob, total: total, inUse: make(map[int]bool)}
}

// Acquire returns the CPU id range for slot, e.g. slot 0 of a perJob=2
// allocator on an 8-core host gets {0,1}. ok is false if affinity pinning
// would be meaningless (fewer cores than slots).
func (a *Allocator) Acquire(slot int) ([]int, bool) {
	if a.total < a.slots {
		return nil, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	start := (slot * a.perJob) % a.total
	cpus := make([]int, 0, a.perJob)
	for i := 0; i < a.perJob; i++ {
		cpus = append(cpus, (start+i)%a.total)
	}
	a.inUse[slot] = true
	return cpus, true
}

// Release marks slot's cores as free again. The allocator assigns purely by
// slot index, so Release is a bookkeeping no-op today, but keeps the
// acquire/release pairing explicit for callers and future reuse policies.
func (a *Allocator) Release(slot int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, slot)
}
