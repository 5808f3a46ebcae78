package push

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"synonym-game/internal/engine"
	"synonym-game/internal/push/platforms"
	"synonym-game/internal/stream"
)

// Source is the engine's event stream.
type Source interface {
	Subscribe() chan stream.Event
	Unsubscribe(ch chan stream.Event)
}

type breakerState struct {
	failures  int
	openUntil time.Time
}

// Manager announces game milestones to webhooks. Delivery runs on a small
// worker pool; failed sends are retried with backoff and a target that keeps
// failing is skipped until its breaker closes again.
type Manager struct {
	cfg      Config
	clock    clockwork.Clock
	adapters map[string]platforms.Adapter

	dispatch chan job
	retryQ   *retryQueue
	done     chan struct{}

	mu       sync.Mutex
	started  bool
	tracker  tracker
	breakers map[string]breakerState
}

func NewManager(cfg Config, clock clockwork.Clock) *Manager {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	return newManager(cfg, clock, map[string]platforms.Adapter{
		"discord": platforms.NewDiscordAdapter(client),
		"feishu":  platforms.NewFeishuAdapter(client),
	})
}

func newManager(cfg Config, clock clockwork.Clock, adapters map[string]platforms.Adapter) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 256
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}
	m := &Manager{
		cfg:      cfg,
		clock:    clock,
		adapters: adapters,
		dispatch: make(chan job, cfg.DispatchBuffer),
		done:     make(chan struct{}),
		breakers: map[string]breakerState{},
	}
	m.retryQ = newRetryQueue(clock, m.dispatch, m.done)
	return m
}

// Start subscribes to src and starts the workers. It returns immediately;
// everything stops when ctx is done.
func (m *Manager) Start(ctx context.Context, src Source) error {
	if !m.cfg.Enabled || len(m.cfg.Targets) == 0 {
		return nil
	}
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	ch := src.Subscribe()
	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	go func() {
		defer src.Unsubscribe(ch)
		m.consume(ctx, ch)
	}()
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	log.Info().Int("targets", len(m.cfg.Targets)).Msg("push started")
	return nil
}

func (m *Manager) consume(ctx context.Context, ch chan stream.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Type != stream.EventView {
				continue
			}
			v, ok := ev.Data.(*engine.View)
			if !ok || v == nil {
				continue
			}
			m.handleView(*v)
		}
	}
}

func (m *Manager) handleView(v engine.View) {
	m.mu.Lock()
	msgs := m.tracker.observe(v, m.clock.Now())
	m.mu.Unlock()
	for _, msg := range msgs {
		for _, t := range m.cfg.Targets {
			if !t.wants(msg.Event) {
				continue
			}
			m.enqueue(job{Target: t, Msg: msg})
		}
	}
}

func (m *Manager) enqueue(j job) {
	select {
	case m.dispatch <- j:
		metricQueuedTotal.Add(1)
		metricQueueLen.Set(int64(len(m.dispatch)))
	default:
		metricDroppedTotal.Add(1)
		log.Warn().Str("event", j.Msg.Event).Str("platform", j.Target.Platform).Msg("push queue full, dropping")
	}
}
