package process

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"synonym-game/internal/game"
)

type fakeTransport struct {
	dryRun func(Message) (Result, error)
	send   func(Message) (Result, error)
	sent   []Message
}

func (f *fakeTransport) DryRun(_ context.Context, msg Message) (Result, error) {
	return f.dryRun(msg)
}

func (f *fakeTransport) Send(_ context.Context, msg Message) (Result, error) {
	f.sent = append(f.sent, msg)
	return f.send(msg)
}

func reply(data string) func(Message) (Result, error) {
	return func(Message) (Result, error) {
		return Result{Messages: []OutMessage{{Data: data}}}, nil
	}
}

func newTestClient(t *testing.T, ft *fakeTransport) *Client {
	t.Helper()
	c, err := NewClient(ft, Options{ProcessID: "proc", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestLobbyStateDecodesSnapshot(t *testing.T) {
	ft := &fakeTransport{dryRun: reply(`{"status":"success","lobby":{"id":7,"name":"fun","status":"ready","maxPlayers":4,
		"players":{"alice":{"ready":true},"bob":{"ready":false,"name":"Bob"}},
		"currentRound":{"roundNumber":2,"submissions":{"alice":"happy"}},
		"gameStart":1700000005,"roundLimit":6,"roundDuration":20}}`)}
	c := newTestClient(t, ft)

	d, err := c.LobbyState(context.Background(), "7")
	if err != nil {
		t.Fatalf("lobby state: %v", err)
	}
	if d.ID != "7" || d.Status != game.LobbyReady || d.PlayerCount() != 2 || !d.Players["alice"].Ready || d.Players["bob"].Name != "Bob" {
		t.Fatalf("unexpected detail %+v", d)
	}
	if d.CurrentRound == nil || d.CurrentRound.RoundNumber != 2 || d.CurrentRound.Submissions["alice"] != "happy" {
		t.Fatalf("unexpected round %+v", d.CurrentRound)
	}
	if d.GameStart != 1700000005 || d.RoundLimit != 6 || d.RoundDuration != 20 {
		t.Fatalf("unexpected timing fields %+v", d)
	}
}

func TestLobbyStateEmptyPlayerArray(t *testing.T) {
	ft := &fakeTransport{dryRun: reply(`{"status":"success","lobby":{"id":"3","status":"waiting","players":[],"gameStart":null}}`)}
	d, err := newTestClient(t, ft).LobbyState(context.Background(), "3")
	if err != nil {
		t.Fatalf("lobby state: %v", err)
	}
	if d.PlayerCount() != 0 || d.GameStart != 0 || d.CurrentRound != nil {
		t.Fatalf("unexpected detail %+v", d)
	}
}

func TestDetailPlayerTable(t *testing.T) {
	for name, tc := range map[string]struct {
		players string
		want    int
		bad     bool
	}{
		"map":        {players: `{"alice":{"ready":true},"bob":{}}`, want: 2},
		"empty list": {players: `[]`},
		"absent":     {players: ``},
		"wrong type": {players: `{"alice":{"ready":"yes"}}`, bad: true},
		"scalar":     {players: `7`, bad: true},
	} {
		w := wireDetail{ID: "7", Status: "waiting", Players: json.RawMessage(tc.players)}
		d, err := w.toGame()
		if tc.bad {
			if err == nil {
				t.Fatalf("%s: expected a decode error, got %+v", name, d)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if d.PlayerCount() != tc.want {
			t.Fatalf("%s: players = %d, want %d", name, d.PlayerCount(), tc.want)
		}
	}
}

func TestMalformedResponses(t *testing.T) {
	cases := map[string]Result{
		"no messages":   {},
		"empty data":    {Messages: []OutMessage{{Data: "  "}}},
		"not json":      {Messages: []OutMessage{{Data: "Lobby not found"}}},
		"not an object": {Messages: []OutMessage{{Data: `[1,2]`}}},
		"no status":     {Messages: []OutMessage{{Data: `{"lobby":{}}`}}},
		"missing lobby": {Messages: []OutMessage{{Data: `{"status":"success"}`}}},
		"null lobby":    {Messages: []OutMessage{{Data: `{"status":"success","lobby":null}`}}},
		"bad status":    {Messages: []OutMessage{{Data: `{"status":"success","lobby":{"id":"7","status":"paused","players":{}}}`}}},
		"wrong lobby":   {Messages: []OutMessage{{Data: `{"status":"success","lobby":{"id":"8","status":"waiting","players":{}}}`}}},
		"bad round":     {Messages: []OutMessage{{Data: `{"status":"success","lobby":{"id":"7","status":"active","players":{},"currentRound":{"roundNumber":"one"}}}`}}},
	}
	for name, res := range cases {
		res := res
		ft := &fakeTransport{dryRun: func(Message) (Result, error) { return res, nil }}
		_, err := newTestClient(t, ft).LobbyState(context.Background(), "7")
		if !IsKind(err, KindMalformed) {
			t.Fatalf("%s: expected MALFORMED_RESPONSE, got %v", name, err)
		}
	}
}

func TestProcessErrorStatus(t *testing.T) {
	ft := &fakeTransport{send: reply(`{"status":"error","error":"Lobby is full"}`)}
	err := newTestClient(t, ft).JoinLobby(context.Background(), "alice", "7")
	var f *Failure
	if !errors.As(err, &f) || f.Kind != KindProcess || f.Message != "Lobby is full" || f.Action != ActionJoinLobby {
		t.Fatalf("unexpected error %#v", err)
	}

	ft = &fakeTransport{send: func(Message) (Result, error) { return Result{Error: "out of gas"}, nil }}
	err = newTestClient(t, ft).PlayerReady(context.Background(), "alice", "7")
	if !IsKind(err, KindProcess) {
		t.Fatalf("expected PROCESS_ERROR, got %v", err)
	}
}

func TestNetworkFailure(t *testing.T) {
	ft := &fakeTransport{dryRun: func(Message) (Result, error) { return Result{}, errors.New("connection refused") }}
	_, err := newTestClient(t, ft).ListLobbies(context.Background())
	if KindOf(err) != KindNetwork {
		t.Fatalf("expected NETWORK, got %v", err)
	}
}

func TestWriteMessageEnvelope(t *testing.T) {
	ft := &fakeTransport{send: reply(`{"status":"success"}`)}
	c := newTestClient(t, ft)
	if err := c.SubmitWord(context.Background(), "alice", "7", "happy"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(ft.sent) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(ft.sent))
	}
	msg := ft.sent[0]
	if msg.Target != "proc" || msg.Owner != "alice" || msg.Tag("Action") != ActionSubmitWord || msg.Tag("Intent-Id") == "" {
		t.Fatalf("unexpected envelope %+v", msg)
	}
	var params map[string]string
	if err := json.Unmarshal([]byte(msg.Data), &params); err != nil {
		t.Fatalf("data: %v", err)
	}
	if params["lobbyId"] != "7" || params["playerId"] != "alice" || params["word"] != "happy" {
		t.Fatalf("unexpected params %v", params)
	}
}

func TestWriteIsNotRetried(t *testing.T) {
	ft := &fakeTransport{send: func(Message) (Result, error) { return Result{}, errors.New("timeout") }}
	c := newTestClient(t, ft)
	if err := c.LeaveLobby(context.Background(), "alice", "7"); !IsKind(err, KindNetwork) {
		t.Fatalf("expected NETWORK, got %v", err)
	}
	if len(ft.sent) != 1 {
		t.Fatalf("write retried: %d sends", len(ft.sent))
	}
}

func TestListLobbiesAcceptsBothShapes(t *testing.T) {
	ft := &fakeTransport{dryRun: reply(`{"status":"success","lobbies":[
		{"id":1,"name":"a","status":"waiting","players":["x","y"],"maxPlayers":4},
		{"id":"2","name":"b","status":"active","playerCount":3,"maxPlayers":4},
		{"id":3,"name":"c","status":"waiting","players":{},"maxPlayers":4}]}`)}
	lobbies, err := newTestClient(t, ft).ListLobbies(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int{2, 3, 0}
	if len(lobbies) != 3 {
		t.Fatalf("lobbies = %+v", lobbies)
	}
	for i, l := range lobbies {
		if l.PlayerCount != want[i] {
			t.Fatalf("lobby %s player count = %d want %d", l.ID, l.PlayerCount, want[i])
		}
	}
	if lobbies[0].ID != "1" || lobbies[1].Status != game.LobbyActive {
		t.Fatalf("unexpected decode %+v", lobbies)
	}
}

func TestInfoAndCreateLobby(t *testing.T) {
	ft := &fakeTransport{
		dryRun: reply(`{"status":"Connected","version":1.2,"name":"synonyms"}`),
		send:   reply(`{"status":"success","lobbyId":42}`),
	}
	c := newTestClient(t, ft)
	info, err := c.Info(context.Background())
	if err != nil || info.Status != StatusConnected || info.Version != "1.2" {
		t.Fatalf("info: %+v %v", info, err)
	}
	id, err := c.CreateLobby(context.Background(), "alice", "")
	if err != nil || id != "42" {
		t.Fatalf("create: %q %v", id, err)
	}
}
