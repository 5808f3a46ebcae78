package push

import (
	"testing"
	"time"

	"synonym-game/internal/engine"
	"synonym-game/internal/game"
)

func viewAt(phase game.Phase, rounds ...game.RoundRecord) engine.View {
	return engine.View{
		Connected:     true,
		PlayerID:      "alice",
		Phase:         phase,
		LobbyID:       "L1",
		Lobby:         &game.LobbyDetail{ID: "L1", Name: "Synonyms", Players: map[string]game.PlayerState{"alice": {}, "bob": {}}},
		RoundLimit:    2,
		RoundDuration: 20000,
		Rounds:        rounds,
	}
}

func TestTrackerAnnouncesMilestones(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r1 := game.RoundRecord{Number: 1, Words: map[string]string{"alice": "Glad", "bob": "glad"}}
	r2 := game.RoundRecord{Number: 2, Words: map[string]string{"alice": "happy", "bob": ""}}

	steps := []struct {
		view engine.View
		want string
	}{
		{view: engine.View{Connected: true, Phase: game.PhaseIdle}},
		{view: viewAt(game.PhaseWaiting), want: EventLobbyJoined},
		{view: viewAt(game.PhaseWaiting)},
		{view: viewAt(game.PhaseReadyUp)},
		{view: viewAt(game.PhaseCountdown), want: EventGameStart},
		{view: viewAt(game.PhaseActive)},
		{view: viewAt(game.PhaseScoring, r1), want: EventRoundResult},
		{view: viewAt(game.PhaseCountdown, r1)},
		{view: viewAt(game.PhaseActive, r1)},
		{view: viewAt(game.PhaseScoring, r1, r2), want: EventRoundResult},
		{view: viewAt(game.PhaseComplete, r1, r2), want: EventGameComplete},
		{view: viewAt(game.PhaseWaiting)},
	}
	var tr tracker
	var got []Announcement
	for i, s := range steps {
		out := tr.observe(s.view, now)
		if s.want == "" {
			if len(out) != 0 {
				t.Fatalf("step %d (%s): unexpected %s", i, s.view.Phase, out[0].Event)
			}
			continue
		}
		if len(out) != 1 || out[0].Event != s.want {
			t.Fatalf("step %d (%s): expected %s, got %+v", i, s.view.Phase, s.want, out)
		}
		got = append(got, out[0])
	}

	first := got[2]
	if first.Description != "Everyone matched!" || first.PanelKey != "game:L1" || len(first.Fields) != 2 {
		t.Fatalf("unexpected round result: %+v", first)
	}
	second := got[3]
	if second.Color != colorNoMatch || second.Fields[1].Value != "(no word)" {
		t.Fatalf("unexpected second round result: %+v", second)
	}
	done := got[4]
	if !done.Final || done.Description != "1 of 2 rounds matched" {
		t.Fatalf("unexpected completion: %+v", done)
	}
	if done.Fields[1].Value != "alice: happy, bob: -" {
		t.Fatalf("unexpected round summary: %q", done.Fields[1].Value)
	}
}

func TestMatchedNeedsTwoPlayers(t *testing.T) {
	if matched(game.RoundRecord{Words: map[string]string{"alice": "glad"}}) {
		t.Fatal("a single submission is not a match")
	}
}
