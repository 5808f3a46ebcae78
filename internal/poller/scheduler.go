package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Commit applies the result of one task invocation. The scheduler runs it only
// if the loop is still live, under the loop's commit lock.
type Commit func()

// Task performs one poll. It must honour ctx, which is cancelled with the loop.
// A nil Commit means there is nothing to apply.
type Task func(ctx context.Context) (Commit, error)

type Scheduler struct {
	clock clockwork.Clock

	mu      sync.Mutex
	handles map[*Handle]struct{}
	closed  bool
}

func NewScheduler(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock, handles: make(map[*Handle]struct{})}
}

// Handle is one fixed-interval loop.
type Handle struct {
	name     string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	// commitMu serialises commits with Cancel.
	commitMu  sync.Mutex
	cancelled bool

	inFlight  atomic.Bool
	runs      atomic.Int64
	skipped   atomic.Int64
	discarded atomic.Int64

	wg sync.WaitGroup
}

func (h *Handle) Name() string { return h.name }

// Runs counts task invocations, including the immediate first one.
func (h *Handle) Runs() int64 { return h.runs.Load() }

// Skipped counts ticks dropped because the previous invocation had not settled.
func (h *Handle) Skipped() int64 { return h.skipped.Load() }

// Discarded counts results that settled after the loop was cancelled.
func (h *Handle) Discarded() int64 { return h.discarded.Load() }

// Wait blocks until the loop goroutine and any in-flight invocation have exited.
func (h *Handle) Wait() { h.wg.Wait() }

// Start runs task once immediately and then every interval. The ticker exists
// before Start returns.
func (s *Scheduler) Start(name string, interval time.Duration, task Task) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{name: name, interval: interval, ctx: ctx, cancel: cancel}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		h.cancelled = true
		return h
	}
	s.handles[h] = struct{}{}
	s.mu.Unlock()

	ticker := s.clock.NewTicker(interval)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer ticker.Stop()
		h.fire(task)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				h.fire(task)
			}
		}
	}()
	metricLoopsStarted.Add(1)
	log.Debug().Str("loop", name).Dur("interval", interval).Msg("poll loop started")
	return h
}

func (h *Handle) fire(task Task) {
	if h.ctx.Err() != nil {
		return
	}
	if !h.inFlight.CompareAndSwap(false, true) {
		h.skipped.Add(1)
		metricPollSkipped.Add(1)
		return
	}
	h.runs.Add(1)
	metricPollRuns.Add(1)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.inFlight.Store(false)
		commit, err := task(h.ctx)
		if err != nil {
			metricPollFailures.Add(1)
			if h.ctx.Err() == nil {
				log.Debug().Err(err).Str("loop", h.name).Msg("poll failed")
			}
			return
		}
		if commit == nil {
			return
		}
		h.commitMu.Lock()
		defer h.commitMu.Unlock()
		if h.cancelled {
			h.discarded.Add(1)
			metricPollDiscarded.Add(1)
			return
		}
		commit()
	}()
}

// Cancel is idempotent. When it returns no commit from h will run, including
// one whose task was already in flight.
func (s *Scheduler) Cancel(h *Handle) {
	if h == nil {
		return
	}
	h.cancel()
	h.commitMu.Lock()
	first := !h.cancelled
	h.cancelled = true
	h.commitMu.Unlock()

	s.mu.Lock()
	delete(s.handles, h)
	s.mu.Unlock()
	if first {
		metricLoopsCancelled.Add(1)
		log.Debug().Str("loop", h.name).Msg("poll loop cancelled")
	}
}

// Stop cancels every loop and waits for them to exit. Later Starts return
// already-cancelled handles.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	handles := make([]*Handle, 0, len(s.handles))
	for h := range s.handles {
		handles = append(handles, h)
	}
	s.mu.Unlock()
	for _, h := range handles {
		s.Cancel(h)
	}
	for _, h := range handles {
		h.Wait()
	}
}

// Active reports the number of live loops.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}
