package push

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type retryQueue struct {
	clock clockwork.Clock
	out   chan<- job
	done  <-chan struct{}
}

func newRetryQueue(clock clockwork.Clock, out chan<- job, done <-chan struct{}) *retryQueue {
	return &retryQueue{clock: clock, out: out, done: done}
}

func (q *retryQueue) Enqueue(j job, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	q.clock.AfterFunc(delay, func() {
		select {
		case <-q.done:
		case q.out <- j:
			metricQueueLen.Set(int64(len(q.out)))
		}
	})
}
