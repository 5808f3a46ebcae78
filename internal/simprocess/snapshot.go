package simprocess

import (
	"strconv"

	"synonym-game/internal/process"
)

type summaryBody struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	Players    []string `json:"players"`
	MaxPlayers int      `json:"maxPlayers"`
}

type playerBody struct {
	Ready bool `json:"ready"`
}

type roundBody struct {
	RoundNumber int               `json:"roundNumber"`
	Submissions map[string]string `json:"submissions"`
}

type detailBody struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	MaxPlayers    int        `json:"maxPlayers"`
	Players       any        `json:"players"`
	CurrentRound  *roundBody `json:"currentRound"`
	GameStart     *int64     `json:"gameStart"`
	RoundLimit    int        `json:"roundLimit,omitempty"`
	RoundDuration int        `json:"roundDuration,omitempty"`
}

func (w *World) listLobbies() map[string]any {
	out := make([]summaryBody, 0, len(w.lobbies))
	for i := 1; i <= w.nextID; i++ {
		l, ok := w.lobbies[strconv.Itoa(i)]
		if !ok {
			continue
		}
		out = append(out, summaryBody{
			ID:         l.id,
			Name:       l.name,
			Status:     l.status,
			Players:    l.playerIDs(),
			MaxPlayers: l.maxPlayers,
		})
	}
	return map[string]any{"status": process.StatusSuccess, "lobbies": out}
}

func (w *World) lobbyState(id string) (any, error) {
	l, err := w.lobby(id)
	if err != nil {
		return nil, err
	}
	d := detailBody{
		ID:         l.id,
		Name:       l.name,
		Status:     l.status,
		MaxPlayers: l.maxPlayers,
	}
	// an empty player table encodes as [] the way the real process does it
	if len(l.players) == 0 {
		d.Players = []string{}
	} else {
		players := make(map[string]playerBody, len(l.players))
		for pid, p := range l.players {
			players[pid] = playerBody{Ready: p.ready}
		}
		d.Players = players
	}
	if l.round != nil {
		subs := make(map[string]string, len(l.round.submissions))
		for pid, word := range l.round.submissions {
			subs[pid] = word
		}
		d.CurrentRound = &roundBody{RoundNumber: l.round.number, Submissions: subs}
	}
	if !l.announced.IsZero() {
		ms := l.announced.UnixMilli()
		d.GameStart = &ms
	}
	if w.rules.Publish {
		d.RoundLimit = w.rules.RoundLimit
		d.RoundDuration = int(w.rules.RoundDuration.Seconds())
	}
	return map[string]any{"status": process.StatusSuccess, "lobby": d}, nil
}
