package process

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"synonym-game/internal/game"
)

// flexString accepts values the process encodes either as strings or as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type envelope struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type wireInfo struct {
	Status  string     `json:"status"`
	Version flexString `json:"version"`
	Name    string     `json:"name"`
}

type wireCreated struct {
	LobbyID flexString `json:"lobbyId"`
}

type wireSummary struct {
	ID          flexString      `json:"id"`
	Name        string          `json:"name"`
	Status      string          `json:"status"`
	Players     json.RawMessage `json:"players"`
	PlayerCount *int            `json:"playerCount"`
	MaxPlayers  int             `json:"maxPlayers"`
}

type wirePlayer struct {
	Ready bool   `json:"ready"`
	Name  string `json:"name"`
}

type wireRound struct {
	RoundNumber int               `json:"roundNumber"`
	Submissions map[string]string `json:"submissions"`
}

type wireDetail struct {
	ID            flexString      `json:"id"`
	Name          string          `json:"name"`
	Status        string          `json:"status"`
	MaxPlayers    int             `json:"maxPlayers"`
	Players       json.RawMessage `json:"players"`
	CurrentRound  *wireRound      `json:"currentRound"`
	GameStart     *float64        `json:"gameStart"`
	RoundLimit    int             `json:"roundLimit"`
	RoundDuration int             `json:"roundDuration"`
}

func (s wireSummary) toGame() game.LobbySummary {
	count := 0
	if s.PlayerCount != nil {
		count = *s.PlayerCount
	} else {
		count = countPlayers(s.Players)
	}
	return game.LobbySummary{
		ID:          string(s.ID),
		Name:        s.Name,
		Status:      game.LobbyStatus(s.Status),
		PlayerCount: count,
		MaxPlayers:  s.MaxPlayers,
	}
}

// countPlayers handles both a player array and a player map; the process
// encodes an empty table as either.
func countPlayers(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	switch raw[0] {
	case '[':
		var arr []json.RawMessage
		if json.Unmarshal(raw, &arr) == nil {
			return len(arr)
		}
	case '{':
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) == nil {
			return len(obj)
		}
	}
	return 0
}

func (d wireDetail) toGame() (game.LobbyDetail, error) {
	out := game.LobbyDetail{
		ID:            string(d.ID),
		Name:          d.Name,
		Status:        game.LobbyStatus(d.Status),
		MaxPlayers:    d.MaxPlayers,
		Players:       make(map[string]game.PlayerState),
		RoundLimit:    d.RoundLimit,
		RoundDuration: d.RoundDuration,
	}
	// an empty player table may arrive as []; the schema caps arrays at zero items
	var players map[string]wirePlayer
	if raw := bytes.TrimSpace(d.Players); len(raw) > 0 && raw[0] != '[' {
		if err := json.Unmarshal(raw, &players); err != nil {
			return game.LobbyDetail{}, fmt.Errorf("players: %w", err)
		}
	}
	for id, p := range players {
		out.Players[id] = game.PlayerState{Ready: p.Ready, Name: p.Name}
	}
	if d.CurrentRound != nil {
		subs := make(map[string]string, len(d.CurrentRound.Submissions))
		for id, w := range d.CurrentRound.Submissions {
			subs[id] = w
		}
		out.CurrentRound = &game.RoundInfo{RoundNumber: d.CurrentRound.RoundNumber, Submissions: subs}
	}
	if d.GameStart != nil && *d.GameStart > 0 {
		out.GameStart = int64(math.Round(*d.GameStart))
	}
	return out, nil
}
