package simprocess

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"synonym-game/internal/process"
)

var t0 = time.Unix(1_700_000_000, 0)

func newTestWorld(limit int) (*World, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(t0)
	w := NewWorld(clock, Rules{Countdown: 5 * time.Second, RoundDuration: 20 * time.Second, RoundLimit: limit, MaxPlayers: 3, Publish: true})
	return w, clock
}

func send(t *testing.T, w *World, owner, action string, params map[string]string, dryRun bool) map[string]any {
	t.Helper()
	data := ""
	if params != nil {
		raw, _ := json.Marshal(params)
		data = string(raw)
	}
	res := w.Evaluate(process.Message{Owner: owner, Data: data, Tags: []process.Tag{{Name: "Action", Value: action}}}, dryRun)
	if res.Error != "" || len(res.Messages) != 1 {
		t.Fatalf("%s: unexpected result %+v", action, res)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(res.Messages[0].Data), &out); err != nil {
		t.Fatalf("%s: decode: %v", action, err)
	}
	return out
}

func mustOK(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	if out["status"] != process.StatusSuccess {
		t.Fatalf("expected success, got %v", out)
	}
	return out
}

func state(t *testing.T, w *World, id string) map[string]any {
	t.Helper()
	out := mustOK(t, send(t, w, "", process.ActionLobbyState, map[string]string{"lobbyId": id}, true))
	return out["lobby"].(map[string]any)
}

func TestGameLifecycle(t *testing.T) {
	w, clock := newTestWorld(2)
	id := mustOK(t, send(t, w, "alice", process.ActionCreateLobby, map[string]string{"name": "fun"}, false))["lobbyId"].(string)
	mustOK(t, send(t, w, "bob", process.ActionJoinLobby, map[string]string{"lobbyId": id}, false))

	mustOK(t, send(t, w, "alice", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	if l := state(t, w, id); l["gameStart"] != nil || l["status"] != statusWaiting {
		t.Fatalf("countdown started with one player ready: %v", l)
	}
	mustOK(t, send(t, w, "bob", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	l := state(t, w, id)
	if l["status"] != statusReady || int64(l["gameStart"].(float64)) != t0.Add(5*time.Second).UnixMilli() {
		t.Fatalf("unexpected countdown snapshot %v", l)
	}

	clock.Advance(5 * time.Second)
	l = state(t, w, id)
	round := l["currentRound"].(map[string]any)
	if l["status"] != statusActive || round["roundNumber"].(float64) != 1 {
		t.Fatalf("round did not open: %v", l)
	}
	for pid, p := range l["players"].(map[string]any) {
		if p.(map[string]any)["ready"].(bool) {
			t.Fatalf("%s still ready after round opened", pid)
		}
	}

	mustOK(t, send(t, w, "alice", process.ActionSubmitWord, map[string]string{"lobbyId": id, "word": "happy"}, false))
	if out := send(t, w, "alice", process.ActionSubmitWord, map[string]string{"lobbyId": id, "word": "glad"}, false); out["error"] != errSubmitted.Error() {
		t.Fatalf("second submission accepted: %v", out)
	}
	mustOK(t, send(t, w, "bob", process.ActionSubmitWord, map[string]string{"lobbyId": id, "word": "joyful"}, false))
	l = state(t, w, id)
	subs := l["currentRound"].(map[string]any)["submissions"].(map[string]any)
	if l["status"] != statusWaiting || subs["alice"] != "happy" || subs["bob"] != "joyful" {
		t.Fatalf("round did not close: %v", l)
	}

	// second round ends on the deadline with bob silent
	mustOK(t, send(t, w, "alice", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	mustOK(t, send(t, w, "bob", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	clock.Advance(5 * time.Second)
	mustOK(t, send(t, w, "alice", process.ActionSubmitWord, map[string]string{"lobbyId": id, "word": "cheerful"}, false))
	clock.Advance(20 * time.Second)
	l = state(t, w, id)
	round = l["currentRound"].(map[string]any)
	subs = round["submissions"].(map[string]any)
	if l["status"] != statusComplete || round["roundNumber"].(float64) != 2 || subs["bob"] != "" {
		t.Fatalf("game did not complete: %v", l)
	}
	if l["roundLimit"].(float64) != 2 || l["roundDuration"].(float64) != 20 {
		t.Fatalf("rules not published: %v", l)
	}

	// readying on a finished lobby starts over
	mustOK(t, send(t, w, "alice", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	l = state(t, w, id)
	if l["status"] != statusWaiting || l["currentRound"] != nil || l["gameStart"] != nil {
		t.Fatalf("lobby not restarted: %v", l)
	}
}

func TestDryRunRefusesWrites(t *testing.T) {
	w, _ := newTestWorld(6)
	out := send(t, w, "alice", process.ActionCreateLobby, nil, true)
	if out["status"] != "error" || out["error"] != errReadOnly.Error() {
		t.Fatalf("dry-run write accepted: %v", out)
	}
	list := mustOK(t, send(t, w, "", process.ActionListLobbies, nil, true))
	if lobbies := list["lobbies"].([]any); len(lobbies) != 0 {
		t.Fatalf("dry-run changed state: %v", lobbies)
	}
}

func TestJoinRules(t *testing.T) {
	w, clock := newTestWorld(6)
	id := mustOK(t, send(t, w, "alice", process.ActionCreateLobby, nil, false))["lobbyId"].(string)

	tests := []struct {
		player, lobby string
		want          string
	}{
		{"bob", "99", errLobbyNotFound.Error()},
		{"bob", "", errMissingLobby.Error()},
	}
	for _, tt := range tests {
		out := send(t, w, tt.player, process.ActionJoinLobby, map[string]string{"lobbyId": tt.lobby}, false)
		if out["error"] != tt.want {
			t.Fatalf("join %q: got %v, want %s", tt.lobby, out, tt.want)
		}
	}

	mustOK(t, send(t, w, "bob", process.ActionJoinLobby, map[string]string{"lobbyId": id}, false))
	mustOK(t, send(t, w, "bob", process.ActionJoinLobby, map[string]string{"lobbyId": id}, false))
	mustOK(t, send(t, w, "alice", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	mustOK(t, send(t, w, "bob", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	clock.Advance(5 * time.Second)
	if out := send(t, w, "carol", process.ActionJoinLobby, map[string]string{"lobbyId": id}, false); out["error"] != errInProgress.Error() {
		t.Fatalf("joined a running game: %v", out)
	}
}

func TestLeaveAbortsAndRemoves(t *testing.T) {
	w, clock := newTestWorld(6)
	id := mustOK(t, send(t, w, "alice", process.ActionCreateLobby, nil, false))["lobbyId"].(string)
	mustOK(t, send(t, w, "bob", process.ActionJoinLobby, map[string]string{"lobbyId": id}, false))
	mustOK(t, send(t, w, "alice", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	mustOK(t, send(t, w, "bob", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	clock.Advance(5 * time.Second)

	mustOK(t, send(t, w, "bob", process.ActionLeaveLobby, map[string]string{"lobbyId": id}, false))
	l := state(t, w, id)
	if l["status"] != statusWaiting || l["currentRound"] != nil {
		t.Fatalf("game not aborted: %v", l)
	}

	mustOK(t, send(t, w, "alice", process.ActionLeaveLobby, map[string]string{"lobbyId": id}, false))
	if out := send(t, w, "", process.ActionLobbyState, map[string]string{"lobbyId": id}, true); out["error"] != errLobbyNotFound.Error() {
		t.Fatalf("empty lobby kept: %v", out)
	}
}

func TestSeededBotsPlayAlong(t *testing.T) {
	seed, err := ParseSeed([]byte(`
lobbies:
  - name: Bot Lounge
    max_players: 3
    bots:
      - id: bot-ann
        words: [happy, glad]
`))
	if err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	w, clock := newTestWorld(6)
	ids := w.Apply(seed)
	if len(ids) != 1 {
		t.Fatalf("seeded %v", ids)
	}
	id := ids[0]

	list := mustOK(t, send(t, w, "", process.ActionListLobbies, nil, true))["lobbies"].([]any)
	if got := list[0].(map[string]any); got["name"] != "Bot Lounge" || len(got["players"].([]any)) != 1 {
		t.Fatalf("unexpected lobby list %v", list)
	}

	mustOK(t, send(t, w, "alice", process.ActionJoinLobby, map[string]string{"lobbyId": id}, false))
	mustOK(t, send(t, w, "alice", process.ActionPlayerReady, map[string]string{"lobbyId": id}, false))
	if l := state(t, w, id); l["status"] != statusReady {
		t.Fatalf("bot did not ready up: %v", l)
	}
	clock.Advance(5 * time.Second)
	subs := state(t, w, id)["currentRound"].(map[string]any)["submissions"].(map[string]any)
	if subs["bot-ann"] != "happy" {
		t.Fatalf("bot did not submit: %v", subs)
	}
}

func TestParseSeedRejectsBadBots(t *testing.T) {
	for _, raw := range []string{
		"lobbies:\n  - bots:\n      - words: [a]\n",
		"lobbies:\n  - bots:\n      - id: x\n      - id: x\n",
		"lobbies: [",
	} {
		if _, err := ParseSeed([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
