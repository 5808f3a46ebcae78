package engine

import (
	"fmt"
	"time"

	"synonym-game/internal/game"
	"synonym-game/internal/timer"
)

// View is the immutable snapshot handed to renderers.
type View struct {
	Connected bool   `json:"connected"`
	PlayerID  string `json:"player_id,omitempty"`
	Busy      string `json:"busy,omitempty"`
	LastError string `json:"last_error,omitempty"`

	Phase   game.Phase          `json:"phase"`
	LobbyID string              `json:"lobby_id,omitempty"`
	Lobby   *game.LobbyDetail   `json:"lobby,omitempty"`
	Lobbies []game.LobbySummary `json:"lobbies"`

	Round         int   `json:"round"`
	RoundLimit    int   `json:"round_limit"`
	RoundDuration int64 `json:"round_duration_ms"`

	AnchorMS    int64   `json:"anchor_ms,omitempty"`
	RemainingMS int64   `json:"remaining_ms"`
	Countdown   string  `json:"countdown,omitempty"`
	Progress    float64 `json:"progress"`

	Ready     game.ReadyState    `json:"ready"`
	Submitted bool               `json:"submitted"`
	Words     []string           `json:"words"`
	Rounds    []game.RoundRecord `json:"rounds"`

	UpdatedMS int64 `json:"updated_ms"`
}

func (e *Engine) buildView() *View {
	m := e.machine
	rules := m.Rules()
	v := &View{
		Connected:     e.connected,
		PlayerID:      e.player,
		Busy:          e.busy,
		LastError:     e.lastErr,
		Phase:         m.Phase(),
		LobbyID:       m.LobbyID(),
		Lobbies:       e.recon.Lobbies(),
		Round:         m.Round(),
		RoundLimit:    rules.RoundLimit,
		RoundDuration: rules.RoundDuration.Milliseconds(),
		Ready:         m.Ready(),
		Submitted:     m.Submitted(),
		Words:         m.Words(),
		Rounds:        m.History(),
		UpdatedMS:     e.clock.Now().UnixMilli(),
	}
	if v.Lobbies == nil {
		v.Lobbies = []game.LobbySummary{}
	}
	if d, ok := e.recon.Detail(m.LobbyID()); ok && m.LobbyID() != "" {
		v.Lobby = &d
	}
	if anchor := m.Anchor(); !anchor.IsZero() && m.Phase().Timed() {
		v.AnchorMS = anchor.UnixMilli()
		remaining := e.sample.Remaining
		if e.sample.Anchor.IsZero() || !e.sample.Anchor.Equal(anchor) {
			remaining = anchor.Sub(e.clock.Now())
			if remaining < 0 {
				remaining = 0
			}
		}
		v.RemainingMS = remaining.Milliseconds()
		v.Progress = timer.Progress(remaining, e.timerTotal)
		v.Countdown = countdownText(m.Phase(), remaining)
	}
	return v
}

func countdownText(phase game.Phase, remaining time.Duration) string {
	secs := timer.Seconds(remaining)
	switch phase {
	case game.PhaseCountdown:
		if secs > 0 {
			return fmt.Sprintf("Starting in %ds", secs)
		}
		return "Game starting..."
	case game.PhaseActive:
		if secs > 0 {
			return fmt.Sprintf("%ds left", secs)
		}
		return "Time's up"
	}
	return ""
}
