package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"synonym-game/internal/game"
	"synonym-game/internal/poller"
	"synonym-game/internal/reconcile"
	"synonym-game/internal/stream"
	"synonym-game/internal/timer"
)

var (
	ErrStopped        = errors.New("engine stopped")
	ErrAlreadyRunning = errors.New("engine already running")
)

// Engine reconciles local game state with the process. A single goroutine
// (Run) owns the machine and all bookkeeping below the loop-owned marker;
// everything else reaches it through the inbox.
type Engine struct {
	cfg   Config
	proc  Process
	clock clockwork.Clock

	sched      *poller.Scheduler
	listScope  *poller.Scope
	lobbyScope *poller.Scope
	recon      *reconcile.Reconciler
	hub        *stream.Hub

	inbox   chan func()
	done    chan struct{}
	running atomic.Bool
	view    atomic.Pointer[View]

	// loop-owned
	machine    *game.Machine
	connected  bool
	player     string
	connGen    uint64
	lobbyGen   uint64
	writeSeq   uint64
	busy       string
	lastErr    string
	warned     string
	countdown  *timer.Countdown
	timerGen   uint64
	timerTotal time.Duration
	sample     timer.Sample
}

func New(proc Process, clock clockwork.Clock, cfg Config) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	def := DefaultConfig()
	if cfg.ListInterval <= 0 {
		cfg.ListInterval = def.ListInterval
	}
	if cfg.DetailInterval <= 0 {
		cfg.DetailInterval = def.DetailInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = def.ConnectAttempts
	}
	sched := poller.NewScheduler(clock)
	e := &Engine{
		cfg:        cfg,
		proc:       proc,
		clock:      clock,
		sched:      sched,
		listScope:  sched.NewScope(),
		lobbyScope: sched.NewScope(),
		recon:      reconcile.New(),
		hub:        stream.NewHub(cfg.ReplaySize, clock.Now),
		inbox:      make(chan func()),
		done:       make(chan struct{}),
		machine:    game.NewMachine(cfg.Rules),
	}
	e.view.Store(e.buildView())
	return e
}

// Run processes intents, poll results and timer samples until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(e.done)
	defer e.shutdown()
	log.Info().Msg("engine started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-e.inbox:
			fn()
		}
	}
}

func (e *Engine) shutdown() {
	e.lobbyScope.Close()
	e.listScope.Close()
	e.stopCountdown()
	e.sched.Stop()
	e.hub.Close()
	log.Info().Msg("engine stopped")
}

// State returns the latest published view.
func (e *Engine) State() View {
	return *e.view.Load()
}

func (e *Engine) Subscribe() chan stream.Event { return e.hub.Subscribe() }

func (e *Engine) Unsubscribe(ch chan stream.Event) { e.hub.Unsubscribe(ch) }

func (e *Engine) Since(lastID string) []stream.Event { return e.hub.Since(lastID) }

// do runs fn on the loop and returns its error.
func (e *Engine) do(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case e.inbox <- func() { errCh <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrStopped
	}
	return <-errCh
}

// post queues fn on the loop. It gives up when cancel fires or the engine
// stops, so callers holding a poller or timer lock never deadlock the loop.
func (e *Engine) post(cancel <-chan struct{}, fn func()) {
	select {
	case e.inbox <- fn:
	case <-cancel:
	case <-e.done:
	}
}

// settle delivers the result of an off-loop write. Results always arrive
// unless the engine stopped.
func (e *Engine) settle(fn func()) {
	e.post(nil, fn)
}

func (e *Engine) publishView() {
	v := e.buildView()
	e.view.Store(v)
	e.hub.Publish(stream.EventView, v)
}

func (e *Engine) applyTransitions(trs []game.Transition) {
	for _, tr := range trs {
		metricTransitions.Add(string(tr.To), 1)
		log.Info().
			Str("lobby_id", e.machine.LobbyID()).
			Str("from", string(tr.From)).
			Str("to", string(tr.To)).
			Int("round", tr.Round).
			Str("reason", tr.Reason).
			Msg("phase transition")
		e.hub.Publish(stream.EventTransition, tr)
	}
	if len(trs) > 0 {
		e.syncCountdown()
	}
}

// syncCountdown keeps the local timer on the machine's current anchor.
func (e *Engine) syncCountdown() {
	anchor := e.machine.Anchor()
	if !e.machine.Phase().Timed() || anchor.IsZero() {
		e.stopCountdown()
		return
	}
	if e.countdown != nil && e.countdown.Anchor().Equal(anchor) {
		return
	}
	e.stopCountdown()
	e.timerGen++
	gen := e.timerGen
	e.timerTotal = anchor.Sub(e.clock.Now())
	if e.machine.Phase() == game.PhaseActive {
		e.timerTotal = e.machine.Rules().RoundDuration
	}
	e.sample = timer.Sample{Anchor: anchor, Remaining: e.timerTotal}
	e.countdown = timer.Start(e.clock, anchor, e.cfg.TickInterval, func(ctx context.Context, s timer.Sample) {
		e.post(ctx.Done(), func() { e.onSample(gen, s) })
	})
}

func (e *Engine) stopCountdown() {
	if e.countdown == nil {
		return
	}
	e.countdown.Stop()
	e.countdown = nil
	e.timerGen++
	e.sample = timer.Sample{}
	e.timerTotal = 0
}

func (e *Engine) onSample(gen uint64, s timer.Sample) {
	if gen != e.timerGen {
		metricStaleResults.Add(1)
		return
	}
	e.sample = s
	if s.Expired {
		if trs := e.machine.Tick(e.clock.Now()); len(trs) > 0 {
			e.applyTransitions(trs)
			e.applyCached()
		}
	}
	e.publishView()
}

func (e *Engine) requireConnected(op string) error {
	if !e.connected {
		return game.Guard(op, e.machine.Phase(), game.ErrNotConnected)
	}
	return nil
}

// beginWrite reserves the single write slot and returns its sequence number.
func (e *Engine) beginWrite(op string) (uint64, error) {
	if err := e.requireConnected(op); err != nil {
		return 0, err
	}
	if e.busy != "" {
		return 0, game.Guard(op, e.machine.Phase(), fmt.Errorf("%w: %s", game.ErrActionInFlight, e.busy))
	}
	e.writeSeq++
	e.busy = op
	return e.writeSeq, nil
}

// endWrite releases the write slot and reports whether seq is still current.
func (e *Engine) endWrite(seq uint64) bool {
	if seq != e.writeSeq {
		metricStaleResults.Add(1)
		return false
	}
	e.busy = ""
	return true
}

func (e *Engine) noteError(op string, err error) {
	if err == nil {
		return
	}
	metricIntentErrors.Add(op, 1)
	e.lastErr = err.Error()
	e.hub.Publish(stream.EventError, map[string]string{"action": op, "error": err.Error()})
	log.Warn().Err(err).Str("action", op).Str("lobby_id", e.machine.LobbyID()).Msg("write failed")
}

// enterLobby starts the per-lobby poll loop for id.
func (e *Engine) enterLobby(id string) {
	e.lobbyGen++
	gen := e.lobbyGen
	e.recon.ForgetDetail(id)
	e.warned = ""
	e.lobbyScope.Rescope(fmt.Sprintf("%s#%d", id, gen), func() []*poller.Handle {
		return []*poller.Handle{e.sched.Start("lobby_state:"+id, e.cfg.DetailInterval, e.detailTask(gen, id))}
	})
}

// leaveLobby resets the machine to IDLE and drops everything tied to the lobby.
func (e *Engine) leaveLobby(reason string) {
	id := e.machine.LobbyID()
	e.lobbyGen++
	e.lobbyScope.Close()
	if id != "" {
		e.recon.ForgetDetail(id)
	}
	if tr, ok := e.machine.Reset(reason, e.clock.Now()); ok {
		e.applyTransitions([]game.Transition{tr})
	}
	e.stopCountdown()
}
