package main

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"synonym-game/internal/config"
	"synonym-game/internal/engine"
	"synonym-game/internal/game"

	"github.com/rs/zerolog/log"
)

type action struct {
	Name string
	Path string
	Body any
}

type bot struct {
	cfg   config.BotConfig
	think time.Duration
	last  string
}

func newBot(cfg config.BotConfig) *bot {
	return &bot{cfg: cfg, think: time.Duration(cfg.ThinkMS) * time.Millisecond}
}

// step sends at most one intent per view and blocks until it settles. The
// same intent is not repeated for the same lobby and phase once accepted.
func (b *bot) step(ctx context.Context, api *apiClient, v engine.View) {
	a, ok := decide(b.cfg, v)
	if !ok {
		return
	}
	key := a.Name + "|" + v.LobbyID + "|" + string(v.Phase) + "|" + strconv.Itoa(v.Round)
	if key == b.last {
		return
	}
	if a.Name == "submit_word" && b.think > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.think):
		}
	}
	if err := api.post(ctx, a); err != nil {
		log.Warn().Err(err).Str("action", a.Name).Msg("intent rejected")
		return
	}
	b.last = key
	log.Info().Str("action", a.Name).Str("phase", string(v.Phase)).Int("round", v.Round).Msg("intent sent")
}

// decide maps a client view to the single next intent, if any.
func decide(cfg config.BotConfig, v engine.View) (action, bool) {
	if !v.Connected {
		if v.Busy != "" {
			return action{}, false
		}
		return action{Name: "connect", Path: "/api/connect", Body: map[string]string{"player_id": cfg.PlayerID}}, true
	}
	if v.Busy != "" {
		return action{}, false
	}
	switch {
	case v.Phase == game.PhaseIdle:
		if id := pickLobby(cfg, v.Lobbies); id != "" {
			return action{Name: "join_lobby", Path: "/api/lobbies/" + url.PathEscape(id) + "/join"}, true
		}
		return action{Name: "create_lobby", Path: "/api/lobbies", Body: map[string]string{"name": cfg.PlayerID + "'s lobby"}}, true
	case v.Phase == game.PhaseComplete:
		return action{Name: "acknowledge", Path: "/api/lobby/ack"}, true
	case v.Phase == game.PhaseActive && !v.Submitted:
		return action{Name: "submit_word", Path: "/api/lobby/words", Body: map[string]string{"word": wordFor(cfg.Words, v.Round)}}, true
	case v.Phase.CanReady() && !v.Ready.Ready() && !v.Ready.InFlight:
		return action{Name: "ready", Path: "/api/lobby/ready"}, true
	}
	return action{}, false
}

func pickLobby(cfg config.BotConfig, lobbies []game.LobbySummary) string {
	if cfg.LobbyID != "" {
		return cfg.LobbyID
	}
	for _, l := range lobbies {
		if l.Status != game.LobbyWaiting {
			continue
		}
		if l.MaxPlayers > 0 && l.PlayerCount >= l.MaxPlayers {
			continue
		}
		return l.ID
	}
	return ""
}

func wordFor(words []string, round int) string {
	if len(words) == 0 {
		return "word"
	}
	if round < 1 {
		round = 1
	}
	return words[(round-1)%len(words)]
}
