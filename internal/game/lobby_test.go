package game

import "testing"

func TestLobbyDetailAllReady(t *testing.T) {
	d := LobbyDetail{Players: map[string]PlayerState{"a": {Ready: true}}}
	if d.AllReady() {
		t.Fatal("a single ready player is not enough")
	}
	d.Players["b"] = PlayerState{}
	if d.AllReady() {
		t.Fatal("b is not ready")
	}
	d.Players["b"] = PlayerState{Ready: true}
	if !d.AllReady() {
		t.Fatal("expected all ready")
	}
}

func TestLobbyDetailRoundComplete(t *testing.T) {
	d := LobbyDetail{Players: map[string]PlayerState{"a": {}, "b": {}}}
	if d.RoundComplete() {
		t.Fatal("no round yet")
	}
	d.CurrentRound = &RoundInfo{RoundNumber: 1, Submissions: map[string]string{"a": "x"}}
	if d.RoundComplete() {
		t.Fatal("b has not submitted")
	}
	d.CurrentRound.Submissions["b"] = "y"
	if !d.RoundComplete() {
		t.Fatal("expected complete")
	}
}

func TestLobbyDetailCloneIsDeep(t *testing.T) {
	d := LobbyDetail{
		ID:           "1",
		Players:      map[string]PlayerState{"a": {}},
		CurrentRound: &RoundInfo{RoundNumber: 1, Submissions: map[string]string{"a": "x"}},
	}
	c := d.Clone()
	c.Players["b"] = PlayerState{Ready: true}
	c.CurrentRound.Submissions["a"] = "changed"
	if len(d.Players) != 1 || d.CurrentRound.Submissions["a"] != "x" {
		t.Fatalf("clone aliases original: %+v", d)
	}
}

func TestLobbyDetailSummary(t *testing.T) {
	d := LobbyDetail{ID: "3", Name: "fun", Status: LobbyReady, MaxPlayers: 4, Players: map[string]PlayerState{"a": {}, "b": {}}}
	s := d.Summary()
	if s.ID != "3" || s.PlayerCount != 2 || s.MaxPlayers != 4 || s.Status != LobbyReady {
		t.Fatalf("unexpected summary %+v", s)
	}
	if ids := d.PlayerIDs(); len(ids) != 2 || ids[0] != "a" {
		t.Fatalf("player ids not sorted: %v", ids)
	}
}
