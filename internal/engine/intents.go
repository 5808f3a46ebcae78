package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"synonym-game/internal/game"
	"synonym-game/internal/process"
)

// Connect binds playerID and runs the Info handshake, retrying up to
// ConnectAttempts times. The process must answer with status Connected.
func (e *Engine) Connect(ctx context.Context, playerID string) error {
	playerID = strings.TrimSpace(playerID)
	var seq uint64
	err := e.do(ctx, func() error {
		if playerID == "" {
			return game.Guard("connect", e.machine.Phase(), game.ErrMissingPlayerID)
		}
		if e.connected {
			return game.Guard("connect", e.machine.Phase(), game.ErrAlreadyConnected)
		}
		if e.busy != "" {
			return game.Guard("connect", e.machine.Phase(), game.ErrActionInFlight)
		}
		e.writeSeq++
		seq = e.writeSeq
		e.busy = "connect"
		metricIntents.Add("connect", 1)
		e.publishView()
		return nil
	})
	if err != nil {
		return err
	}

	callErr := e.handshake(ctx)
	e.settle(func() {
		if !e.endWrite(seq) {
			return
		}
		if callErr != nil {
			e.noteError("connect", callErr)
			e.publishView()
			return
		}
		e.connected = true
		e.player = playerID
		e.connGen++
		e.lastErr = ""
		e.machine.SetPlayer(playerID)
		e.startListLoop()
		log.Info().Str("player_id", playerID).Msg("wallet connected")
		e.publishView()
	})
	return callErr
}

func (e *Engine) handshake(ctx context.Context) error {
	var last error
	for attempt := 1; attempt <= e.cfg.ConnectAttempts; attempt++ {
		info, err := e.proc.Info(ctx)
		if err == nil && info.Status == process.StatusConnected {
			return nil
		}
		if err == nil {
			err = &process.Failure{
				Kind:    process.KindProcess,
				Action:  process.ActionInfo,
				Message: fmt.Sprintf("unexpected status %q", info.Status),
			}
		}
		last = err
		log.Debug().Err(err).Int("attempt", attempt).Msg("connect handshake failed")
		if attempt == e.cfg.ConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.clock.After(e.cfg.ConnectRetry):
		}
	}
	return last
}

// Disconnect resets everything to IDLE. It is idempotent and never reaches
// the process.
func (e *Engine) Disconnect(ctx context.Context) error {
	return e.do(ctx, func() error {
		if !e.connected && e.busy == "" {
			return nil
		}
		metricIntents.Add("disconnect", 1)
		e.writeSeq++
		e.busy = ""
		e.leaveLobby("wallet disconnected")
		e.listScope.Close()
		e.recon.Forget()
		e.connected = false
		e.connGen++
		log.Info().Str("player_id", e.player).Msg("wallet disconnected")
		e.player = ""
		e.lastErr = ""
		e.machine.SetPlayer("")
		e.publishView()
		return nil
	})
}

// CreateLobby creates a lobby and enters it once the process acknowledges.
func (e *Engine) CreateLobby(ctx context.Context, name string) (string, error) {
	var seq uint64
	var player string
	err := e.do(ctx, func() error {
		if err := e.requireConnected("create_lobby"); err != nil {
			return err
		}
		if e.machine.Phase() != game.PhaseIdle {
			return game.Guard("create_lobby", e.machine.Phase(), game.ErrAlreadyInLobby)
		}
		s, err := e.beginWrite("create_lobby")
		if err != nil {
			return err
		}
		seq, player = s, e.player
		metricIntents.Add("create_lobby", 1)
		e.publishView()
		return nil
	})
	if err != nil {
		return "", err
	}

	id, callErr := e.proc.CreateLobby(ctx, player, strings.TrimSpace(name))
	e.settle(func() {
		if !e.endWrite(seq) {
			return
		}
		if callErr != nil {
			e.noteError("create_lobby", callErr)
		} else {
			e.joined(id)
		}
		e.publishView()
	})
	return id, callErr
}

// JoinLobby joins an existing lobby.
func (e *Engine) JoinLobby(ctx context.Context, lobbyID string) error {
	lobbyID = strings.TrimSpace(lobbyID)
	var seq uint64
	var player string
	err := e.do(ctx, func() error {
		if err := e.requireConnected("join_lobby"); err != nil {
			return err
		}
		if lobbyID == "" {
			return game.Guard("join_lobby", e.machine.Phase(), game.ErrMissingLobbyID)
		}
		if e.machine.Phase() != game.PhaseIdle {
			return game.Guard("join_lobby", e.machine.Phase(), game.ErrAlreadyInLobby)
		}
		s, err := e.beginWrite("join_lobby")
		if err != nil {
			return err
		}
		seq, player = s, e.player
		metricIntents.Add("join_lobby", 1)
		e.publishView()
		return nil
	})
	if err != nil {
		return err
	}

	callErr := e.proc.JoinLobby(ctx, player, lobbyID)
	e.settle(func() {
		if !e.endWrite(seq) {
			return
		}
		if callErr != nil {
			e.noteError("join_lobby", callErr)
		} else {
			e.joined(lobbyID)
		}
		e.publishView()
	})
	return callErr
}

func (e *Engine) joined(lobbyID string) {
	tr, err := e.machine.Join(lobbyID, e.clock.Now())
	if err != nil {
		log.Warn().Err(err).Str("lobby_id", lobbyID).Msg("join acknowledged in unexpected phase")
		return
	}
	e.lastErr = ""
	e.applyTransitions([]game.Transition{tr})
	e.enterLobby(lobbyID)
}

// LeaveLobby leaves the current lobby. On acknowledgement the machine resets to IDLE.
func (e *Engine) LeaveLobby(ctx context.Context) error {
	var seq uint64
	var player, lobbyID string
	err := e.do(ctx, func() error {
		if err := e.requireConnected("leave_lobby"); err != nil {
			return err
		}
		if e.machine.LobbyID() == "" {
			return game.Guard("leave_lobby", e.machine.Phase(), game.ErrNotInLobby)
		}
		s, err := e.beginWrite("leave_lobby")
		if err != nil {
			return err
		}
		seq, player, lobbyID = s, e.player, e.machine.LobbyID()
		metricIntents.Add("leave_lobby", 1)
		e.publishView()
		return nil
	})
	if err != nil {
		return err
	}

	callErr := e.proc.LeaveLobby(ctx, player, lobbyID)
	e.settle(func() {
		if !e.endWrite(seq) {
			return
		}
		if callErr != nil {
			e.noteError("leave_lobby", callErr)
		} else if e.machine.LobbyID() == lobbyID {
			e.lastErr = ""
			e.leaveLobby("left lobby")
		}
		e.publishView()
	})
	return callErr
}

// Ready marks the local player ready. The local hint shows immediately but
// phase changes wait for a poll to confirm every player is ready. Calling
// Ready when already ready, or while a ready is pending, does nothing.
func (e *Engine) Ready(ctx context.Context) error {
	var seq, gen uint64
	var player, lobbyID string
	send := false
	err := e.do(ctx, func() error {
		if err := e.requireConnected("ready"); err != nil {
			return err
		}
		if e.busy != "" {
			return game.Guard("ready", e.machine.Phase(), game.ErrActionInFlight)
		}
		ok, err := e.machine.BeginReady()
		if err != nil || !ok {
			return err
		}
		s, err := e.beginWrite("ready")
		if err != nil {
			e.machine.ReadyDone(false)
			return err
		}
		send = true
		seq, gen, player, lobbyID = s, e.lobbyGen, e.player, e.machine.LobbyID()
		metricIntents.Add("ready", 1)
		e.publishView()
		return nil
	})
	if err != nil || !send {
		return err
	}

	callErr := e.proc.PlayerReady(ctx, player, lobbyID)
	e.settle(func() {
		if !e.endWrite(seq) || gen != e.lobbyGen {
			return
		}
		e.machine.ReadyDone(callErr == nil)
		if callErr != nil {
			e.noteError("ready", callErr)
		}
		e.publishView()
	})
	return callErr
}

// SubmitWord submits the local player's word for the current round.
func (e *Engine) SubmitWord(ctx context.Context, word string) error {
	var seq, gen uint64
	var player, lobbyID string
	var round int
	err := e.do(ctx, func() error {
		if err := e.requireConnected("submit_word"); err != nil {
			return err
		}
		if e.busy != "" {
			return game.Guard("submit_word", e.machine.Phase(), game.ErrActionInFlight)
		}
		w, err := e.machine.BeginSubmit(word)
		if err != nil {
			return err
		}
		s, err := e.beginWrite("submit_word")
		if err != nil {
			e.machine.SubmitDone(e.machine.Round(), w, false)
			return err
		}
		word = w
		seq, gen, player, lobbyID, round = s, e.lobbyGen, e.player, e.machine.LobbyID(), e.machine.Round()
		metricIntents.Add("submit_word", 1)
		e.publishView()
		return nil
	})
	if err != nil {
		return err
	}

	callErr := e.proc.SubmitWord(ctx, player, lobbyID, word)
	e.settle(func() {
		if !e.endWrite(seq) || gen != e.lobbyGen {
			return
		}
		e.machine.SubmitDone(round, word, callErr == nil)
		if callErr != nil {
			e.noteError("submit_word", callErr)
		}
		e.publishView()
	})
	return callErr
}

// Acknowledge leaves COMPLETE and waits for a new game in the same lobby.
func (e *Engine) Acknowledge(ctx context.Context) error {
	return e.do(ctx, func() error {
		if err := e.requireConnected("acknowledge"); err != nil {
			return err
		}
		tr, err := e.machine.Acknowledge(e.clock.Now())
		if err != nil {
			return err
		}
		metricIntents.Add("acknowledge", 1)
		e.applyTransitions([]game.Transition{tr})
		e.applyCached()
		e.publishView()
		return nil
	})
}

// Lobbies returns the cached lobby list filtered by a case-insensitive name
// substring.
func (e *Engine) Lobbies(query string) []game.LobbySummary {
	return FilterLobbies(e.State().Lobbies, query)
}

func FilterLobbies(in []game.LobbySummary, query string) []game.LobbySummary {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]game.LobbySummary, 0, len(in))
	for _, l := range in {
		if query == "" || strings.Contains(strings.ToLower(l.Name), query) || l.ID == query {
			out = append(out, l)
		}
	}
	return out
}
