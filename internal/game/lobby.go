package game

import "sort"

type LobbyStatus string

const (
	LobbyWaiting  LobbyStatus = "waiting"
	LobbyReady    LobbyStatus = "ready"
	LobbyActive   LobbyStatus = "active"
	LobbyComplete LobbyStatus = "complete"
)

func (s LobbyStatus) Valid() bool {
	switch s {
	case LobbyWaiting, LobbyReady, LobbyActive, LobbyComplete:
		return true
	default:
		return false
	}
}

type LobbySummary struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Status      LobbyStatus `json:"status"`
	PlayerCount int         `json:"player_count"`
	MaxPlayers  int         `json:"max_players"`
}

type PlayerState struct {
	Ready bool   `json:"ready"`
	Name  string `json:"name,omitempty"`
}

type RoundInfo struct {
	RoundNumber int               `json:"round_number"`
	Submissions map[string]string `json:"submissions"`
}

// LobbyDetail is the full snapshot of the selected lobby. GameStart is the raw
// epoch value supplied by the process (seconds or milliseconds), zero when absent.
// RoundLimit and RoundDuration are zero unless the process publishes them.
type LobbyDetail struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name,omitempty"`
	Status        LobbyStatus            `json:"status"`
	MaxPlayers    int                    `json:"max_players"`
	Players       map[string]PlayerState `json:"players"`
	CurrentRound  *RoundInfo             `json:"current_round,omitempty"`
	GameStart     int64                  `json:"game_start,omitempty"`
	RoundLimit    int                    `json:"round_limit,omitempty"`
	RoundDuration int                    `json:"round_duration_sec,omitempty"`
}

func (d LobbyDetail) PlayerCount() int {
	return len(d.Players)
}

// AllReady is true when at least MinPlayers are joined and every one of them is ready.
func (d LobbyDetail) AllReady() bool {
	if len(d.Players) < MinPlayers {
		return false
	}
	for _, p := range d.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// RoundComplete reports whether every joined player has a submission for the
// current round.
func (d LobbyDetail) RoundComplete() bool {
	if d.CurrentRound == nil || len(d.Players) < MinPlayers {
		return false
	}
	for id := range d.Players {
		if _, ok := d.CurrentRound.Submissions[id]; !ok {
			return false
		}
	}
	return true
}

func (d LobbyDetail) PlayerIDs() []string {
	ids := make([]string, 0, len(d.Players))
	for id := range d.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (d LobbyDetail) Summary() LobbySummary {
	return LobbySummary{
		ID:          d.ID,
		Name:        d.Name,
		Status:      d.Status,
		PlayerCount: len(d.Players),
		MaxPlayers:  d.MaxPlayers,
	}
}

// Clone returns a deep copy so cached snapshots never alias caller maps.
func (d LobbyDetail) Clone() LobbyDetail {
	out := d
	if d.Players != nil {
		out.Players = make(map[string]PlayerState, len(d.Players))
		for k, v := range d.Players {
			out.Players[k] = v
		}
	}
	if d.CurrentRound != nil {
		r := d.CurrentRound.Clone()
		out.CurrentRound = &r
	}
	return out
}

func (r RoundInfo) Clone() RoundInfo {
	out := RoundInfo{RoundNumber: r.RoundNumber}
	if r.Submissions != nil {
		out.Submissions = make(map[string]string, len(r.Submissions))
		for k, v := range r.Submissions {
			out.Submissions[k] = v
		}
	}
	return out
}

func CloneSummaries(in []LobbySummary) []LobbySummary {
	if in == nil {
		return nil
	}
	out := make([]LobbySummary, len(in))
	copy(out, in)
	return out
}
