package reconcile

import (
	"testing"

	"synonym-game/internal/game"
)

func TestObserveLobbiesEmitsOnlyOnChange(t *testing.T) {
	r := New()
	list := []game.LobbySummary{{ID: "1", Status: game.LobbyWaiting, PlayerCount: 1, MaxPlayers: 4}}

	if !r.ObserveLobbies(nil) {
		t.Fatal("first observation must be a change")
	}
	if r.ObserveLobbies([]game.LobbySummary{}) {
		t.Fatal("empty and nil lists are the same content")
	}
	if !r.ObserveLobbies(list) {
		t.Fatal("expected change")
	}
	same := []game.LobbySummary{{ID: "1", Status: game.LobbyWaiting, PlayerCount: 1, MaxPlayers: 4}}
	if r.ObserveLobbies(same) {
		t.Fatal("identical payload must not emit")
	}
	same[0].PlayerCount = 2
	if !r.ObserveLobbies(same) {
		t.Fatal("player count change must emit")
	}
}

func TestObserveDetailSequence(t *testing.T) {
	r := New()
	base := func() game.LobbyDetail {
		return game.LobbyDetail{
			ID:      "7",
			Status:  game.LobbyWaiting,
			Players: map[string]game.PlayerState{"a": {}, "b": {}},
		}
	}
	seq := []struct {
		mutate func(*game.LobbyDetail)
		want   bool
	}{
		{func(*game.LobbyDetail) {}, true},
		{func(*game.LobbyDetail) {}, false},
		{func(d *game.LobbyDetail) { d.Players["a"] = game.PlayerState{Ready: true} }, true},
		{func(d *game.LobbyDetail) { d.Players["a"] = game.PlayerState{Ready: true} }, false},
		{func(d *game.LobbyDetail) {
			d.Players["a"] = game.PlayerState{Ready: true}
			d.CurrentRound = &game.RoundInfo{RoundNumber: 1, Submissions: map[string]string{}}
		}, true},
		{func(d *game.LobbyDetail) {
			d.Players["a"] = game.PlayerState{Ready: true}
			d.CurrentRound = &game.RoundInfo{RoundNumber: 1}
		}, false},
	}
	for i, step := range seq {
		d := base()
		step.mutate(&d)
		if got := r.ObserveDetail(d); got != step.want {
			t.Fatalf("step %d: changed=%v want %v", i, got, step.want)
		}
	}
}

func TestCachedDetailDoesNotAliasInput(t *testing.T) {
	r := New()
	d := game.LobbyDetail{ID: "7", Players: map[string]game.PlayerState{"a": {}}}
	r.ObserveDetail(d)
	d.Players["b"] = game.PlayerState{}
	if r.ObserveDetail(d) != true {
		t.Fatal("mutating the caller's map must not update the cache")
	}
	cached, ok := r.Detail("7")
	if !ok || len(cached.Players) != 2 {
		t.Fatalf("unexpected cached detail %+v", cached)
	}
}

func TestForgetDetailResetsBaseline(t *testing.T) {
	r := New()
	d := game.LobbyDetail{ID: "7", Players: map[string]game.PlayerState{"a": {}}}
	r.ObserveDetail(d)
	r.ForgetDetail("7")
	if _, ok := r.Detail("7"); ok {
		t.Fatal("detail should be forgotten")
	}
	if !r.ObserveDetail(d) {
		t.Fatal("observation after forget must emit")
	}
	r.Forget()
	if !r.ObserveLobbies(nil) {
		t.Fatal("list observation after Forget must emit")
	}
}
