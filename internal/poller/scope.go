package poller

import "sync"

// Scope ties a set of loops to a lifecycle key such as the selected lobby.
// Changing the key tears the old loops down before the new ones start.
type Scope struct {
	sched *Scheduler

	mu      sync.Mutex
	key     string
	handles []*Handle
}

func (s *Scheduler) NewScope() *Scope {
	return &Scope{sched: s}
}

// Rescope switches to key. When key is unchanged nothing happens and false is
// returned. An empty key leaves the scope with no loops.
func (sc *Scope) Rescope(key string, start func() []*Handle) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if key == sc.key {
		return false
	}
	sc.cancelLocked()
	sc.key = key
	if key != "" && start != nil {
		sc.handles = start()
	}
	return true
}

func (sc *Scope) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cancelLocked()
	sc.key = ""
}

func (sc *Scope) Key() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.key
}

func (sc *Scope) Handles() []*Handle {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([]*Handle, len(sc.handles))
	copy(out, sc.handles)
	return out
}

func (sc *Scope) cancelLocked() {
	for _, h := range sc.handles {
		sc.sched.Cancel(h)
	}
	sc.handles = nil
}
