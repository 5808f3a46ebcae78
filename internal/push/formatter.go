package push

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"synonym-game/internal/engine"
	"synonym-game/internal/game"
)

const (
	colorInfo    = 0x3498DB
	colorStart   = 0xF1C40F
	colorMatch   = 0x2ECC71
	colorNoMatch = 0xE67E22
	colorDone    = 0x9B59B6
)

// tracker turns the stream of views into announcements. Only phase changes
// produce output, so repeated views of the same phase are free.
type tracker struct {
	phase game.Phase
	lobby string
}

func (t *tracker) observe(v engine.View, now time.Time) []Announcement {
	prev, prevLobby := t.phase, t.lobby
	t.phase, t.lobby = v.Phase, v.LobbyID
	if v.Phase == prev && v.LobbyID == prevLobby {
		return nil
	}
	ts := now.UTC().Format(time.RFC3339)
	switch v.Phase {
	case game.PhaseWaiting:
		if prev != game.PhaseIdle && v.LobbyID == prevLobby {
			return nil
		}
		return []Announcement{lobbyJoined(v, ts)}
	case game.PhaseCountdown:
		if prev != game.PhaseReadyUp && prev != game.PhaseWaiting {
			return nil
		}
		return []Announcement{gameStart(v, ts)}
	case game.PhaseScoring:
		rec, ok := lastRound(v)
		if !ok {
			return nil
		}
		return []Announcement{roundResult(v, rec, ts)}
	case game.PhaseComplete:
		return []Announcement{gameComplete(v, ts)}
	}
	return nil
}

func lobbyJoined(v engine.View, ts string) Announcement {
	return Announcement{
		Event:       EventLobbyJoined,
		Title:       "Joined " + lobbyName(v),
		Description: fmt.Sprintf("%s is waiting for players", playerName(v)),
		Color:       colorInfo,
		Timestamp:   ts,
		Fields:      []Field{{Name: "Players", Value: fmt.Sprint(playerCount(v)), Inline: true}},
	}
}

func gameStart(v engine.View, ts string) Announcement {
	return Announcement{
		Event:       EventGameStart,
		Title:       "Game starting in " + lobbyName(v),
		Description: "Players: " + strings.Join(players(v), ", "),
		Color:       colorStart,
		Timestamp:   ts,
		Fields: []Field{
			{Name: "Rounds", Value: fmt.Sprint(v.RoundLimit), Inline: true},
			{Name: "Round time", Value: (time.Duration(v.RoundDuration) * time.Millisecond).String(), Inline: true},
		},
	}
}

func roundResult(v engine.View, rec game.RoundRecord, ts string) Announcement {
	a := Announcement{
		Event:     EventRoundResult,
		PanelKey:  "game:" + v.LobbyID,
		Title:     fmt.Sprintf("%s: round %d of %d", lobbyName(v), rec.Number, v.RoundLimit),
		Timestamp: ts,
		Fields:    wordFields(rec),
	}
	if matched(rec) {
		a.Description = "Everyone matched!"
		a.Color = colorMatch
	} else {
		a.Description = "No match this round."
		a.Color = colorNoMatch
	}
	return a
}

func gameComplete(v engine.View, ts string) Announcement {
	matches := 0
	for _, rec := range v.Rounds {
		if matched(rec) {
			matches++
		}
	}
	fields := make([]Field, 0, len(v.Rounds))
	for _, rec := range v.Rounds {
		fields = append(fields, Field{Name: fmt.Sprintf("Round %d", rec.Number), Value: summary(rec)})
	}
	return Announcement{
		Event:       EventGameComplete,
		PanelKey:    "game:" + v.LobbyID,
		Final:       true,
		Title:       lobbyName(v) + ": game complete",
		Description: fmt.Sprintf("%d of %d rounds matched", matches, len(v.Rounds)),
		Color:       colorDone,
		Timestamp:   ts,
		Fields:      fields,
	}
}

func lastRound(v engine.View) (game.RoundRecord, bool) {
	if len(v.Rounds) == 0 {
		return game.RoundRecord{}, false
	}
	return v.Rounds[len(v.Rounds)-1], true
}

// matched is true when every player submitted the same non-empty word.
func matched(rec game.RoundRecord) bool {
	first := ""
	for _, w := range rec.Words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			return false
		}
		if first == "" {
			first = w
		} else if w != first {
			return false
		}
	}
	return len(rec.Words) >= game.MinPlayers
}

func wordFields(rec game.RoundRecord) []Field {
	ids := sortedKeys(rec.Words)
	out := make([]Field, 0, len(ids))
	for _, id := range ids {
		w := rec.Words[id]
		if w == "" {
			w = "(no word)"
		}
		out = append(out, Field{Name: id, Value: w, Inline: true})
	}
	return out
}

func summary(rec game.RoundRecord) string {
	ids := sortedKeys(rec.Words)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		w := rec.Words[id]
		if w == "" {
			w = "-"
		}
		parts = append(parts, id+": "+w)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lobbyName(v engine.View) string {
	if v.Lobby != nil && v.Lobby.Name != "" {
		return v.Lobby.Name
	}
	if v.LobbyID != "" {
		return "lobby " + v.LobbyID
	}
	return "lobby"
}

func playerName(v engine.View) string {
	if v.PlayerID == "" {
		return "player"
	}
	return v.PlayerID
}

func playerCount(v engine.View) int {
	if v.Lobby == nil {
		return 0
	}
	return v.Lobby.PlayerCount()
}

func players(v engine.View) []string {
	if v.Lobby == nil {
		return nil
	}
	out := make([]string, 0, len(v.Lobby.Players))
	for id := range v.Lobby.Players {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
