package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Countdown samples a Tracker on a ticker until the anchor is reached or Stop
// is called. fn receives a context that is cancelled by Stop; anything it
// blocks on should select on it.
type Countdown struct {
	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	tracker *Tracker
	done    chan struct{}
}

// Start samples once immediately and then every interval. The ticker is created
// before Start returns, so advancing a fake clock right after is safe.
func Start(clock clockwork.Clock, anchor time.Time, every time.Duration, fn func(context.Context, Sample)) *Countdown {
	if every <= 0 {
		every = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Countdown{
		cancel:  cancel,
		tracker: NewTracker(anchor),
		done:    make(chan struct{}),
	}
	ticker := clock.NewTicker(every)
	go c.run(ctx, clock, ticker, fn)
	return c
}

func (c *Countdown) run(ctx context.Context, clock clockwork.Clock, ticker clockwork.Ticker, fn func(context.Context, Sample)) {
	defer close(c.done)
	defer ticker.Stop()
	if c.emit(ctx, clock.Now(), fn) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if c.emit(ctx, clock.Now(), fn) {
				return
			}
		}
	}
}

// emit delivers one sample and reports whether the countdown is finished.
func (c *Countdown) emit(ctx context.Context, now time.Time, fn func(context.Context, Sample)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return true
	}
	s := c.tracker.Sample(now)
	fn(ctx, s)
	return s.Expired
}

// Stop is idempotent. Once it returns no further sample is delivered.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.cancel()
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
}

// Done is closed when the sampling goroutine exits.
func (c *Countdown) Done() <-chan struct{} { return c.done }

func (c *Countdown) Anchor() time.Time { return c.tracker.Anchor() }
