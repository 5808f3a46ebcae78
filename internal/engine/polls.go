package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"synonym-game/internal/game"
	"synonym-game/internal/poller"
	"synonym-game/internal/process"
	"synonym-game/internal/stream"
)

// startListLoop polls the lobby list for as long as this connection lasts.
func (e *Engine) startListLoop() {
	gen := e.connGen
	e.listScope.Rescope(fmt.Sprintf("%s#%d", e.player, gen), func() []*poller.Handle {
		return []*poller.Handle{e.sched.Start("list_lobbies", e.cfg.ListInterval, e.listTask(gen))}
	})
}

func (e *Engine) listTask(gen uint64) poller.Task {
	return func(ctx context.Context) (poller.Commit, error) {
		lobbies, err := e.proc.ListLobbies(ctx)
		if err != nil {
			logReadFailure(err, "list_lobbies", "")
			return nil, err
		}
		return func() {
			e.post(ctx.Done(), func() { e.onLobbies(gen, lobbies) })
		}, nil
	}
}

func (e *Engine) onLobbies(gen uint64, lobbies []game.LobbySummary) {
	if gen != e.connGen || !e.connected {
		metricStaleResults.Add(1)
		return
	}
	if !e.recon.ObserveLobbies(lobbies) {
		return
	}
	e.hub.Publish(stream.EventLobbies, game.CloneSummaries(lobbies))
	e.publishView()
}

func (e *Engine) detailTask(gen uint64, lobbyID string) poller.Task {
	return func(ctx context.Context) (poller.Commit, error) {
		d, err := e.proc.LobbyState(ctx, lobbyID)
		if err != nil {
			logReadFailure(err, "lobby_state", lobbyID)
			return nil, err
		}
		return func() {
			e.post(ctx.Done(), func() { e.onDetail(gen, d) })
		}, nil
	}
}

func (e *Engine) onDetail(gen uint64, d game.LobbyDetail) {
	if gen != e.lobbyGen || d.ID != e.machine.LobbyID() {
		metricStaleResults.Add(1)
		return
	}
	if !e.recon.ObserveDetail(d) {
		return
	}
	metricSnapshotsUsed.Add(1)
	e.checkRules(d)
	e.applyTransitions(e.machine.Apply(d, e.clock.Now()))
	e.publishView()
}

// applyCached re-evaluates the last accepted snapshot after a local phase
// change; unchanged polls never reach Apply on their own.
func (e *Engine) applyCached() {
	id := e.machine.LobbyID()
	if id == "" {
		return
	}
	if d, ok := e.recon.Detail(id); ok {
		e.applyTransitions(e.machine.Apply(d, e.clock.Now()))
	}
}

// checkRules warns once per lobby when the process plays by different rules
// than this client was configured with.
func (e *Engine) checkRules(d game.LobbyDetail) {
	if e.warned == d.ID {
		return
	}
	want := e.cfg.Rules
	limitDiffers := d.RoundLimit > 0 && d.RoundLimit != want.RoundLimit
	durationDiffers := d.RoundDuration > 0 && int(want.RoundDuration.Seconds()) != d.RoundDuration
	if !limitDiffers && !durationDiffers {
		return
	}
	e.warned = d.ID
	log.Warn().
		Str("lobby_id", d.ID).
		Int("process_round_limit", d.RoundLimit).
		Int("client_round_limit", want.RoundLimit).
		Int("process_round_duration_sec", d.RoundDuration).
		Dur("client_round_duration", want.RoundDuration).
		Msg("process rules differ from client configuration, following the process")
}

func logReadFailure(err error, loop, lobbyID string) {
	if process.IsKind(err, process.KindMalformed) {
		log.Warn().Err(err).Str("loop", loop).Str("lobby_id", lobbyID).Msg("malformed snapshot ignored")
	}
}
