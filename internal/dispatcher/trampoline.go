package dispatcher

import "sync"

// trampoline is the breadth-first, re-entrancy-guarded work queue behind
// every listener dispatch. A listener invoked from within Run that itself
// triggers another Run call does not recurse: its work is enqueued and
// drained by the outer frame once the current one finishes, bounding
// nested-broadcast recursion to a single stack frame regardless of
// fan-out depth.
type trampoline struct {
	mu      sync.Mutex
	running bool
	pending []func()
}

// Run executes fn now if no frame is already running, or enqueues it for
// the running frame to drain otherwise.
func (t *trampoline) Run(fn func()) {
	t.mu.Lock()
	if t.running {
		t.pending = append(t.pending, fn)
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.drain(fn)
}

func (t *trampoline) drain(fn func()) {
	fn()
	for {
		t.mu.Lock()
		if len(t.pending) == 0 {
			t.running = false
			t.mu.Unlock()
			return
		}
		next := t.pending[0]
		t.pending = t.pending[1:]
		t.mu.Unlock()
		next()
	}
}
