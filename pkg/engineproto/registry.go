package engineproto

import "sync"

// registry is the process-wide tracker of live transports, so a signal
// handler can force-terminate every child engine before the program exits
// (spec §4.1's "process-wide tracker for crash-safe cleanup").
var registry = struct {
	mu    sync.Mutex
	procs map[*Transport]struct{}
}{procs: make(map[*Transport]struct{})}

func registerProcess(t *Transport) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.procs[t] = struct{}{}
}

func unregisterProcess(t *Transport) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.procs, t)
}

// TerminateAll force-terminates every live transport. cmd/arbiter defers it
// in main; safe to call more than once.
func TerminateAll() {
	registry.mu.Lock()
	live := make([]*Transport, 0, len(registry.procs))
	for t := range registry.procs {
		live = append(live, t)
	}
	registry.mu.Unlock()

	for _, t := range live {
		t.Terminate(0)
	}
}
