package game

import (
	"testing"
	"time"
)

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseIdle, PhaseWaiting, true},
		{PhaseIdle, PhaseActive, false},
		{PhaseIdle, PhaseIdle, false},
		{PhaseWaiting, PhaseReadyUp, true},
		{PhaseReadyUp, PhaseWaiting, true},
		{PhaseReadyUp, PhaseActive, false},
		{PhaseCountdown, PhaseActive, true},
		{PhaseCountdown, PhaseWaiting, true},
		{PhaseActive, PhaseWaiting, true},
		{PhaseScoring, PhaseWaiting, true},
		{PhaseActive, PhaseScoring, true},
		{PhaseActive, PhaseCountdown, false},
		{PhaseScoring, PhaseCountdown, true},
		{PhaseScoring, PhaseComplete, true},
		{PhaseComplete, PhaseWaiting, true},
		{PhaseActive, PhaseIdle, true},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestPhaseTimed(t *testing.T) {
	for _, p := range []Phase{PhaseIdle, PhaseWaiting, PhaseReadyUp, PhaseScoring, PhaseComplete} {
		if p.Timed() {
			t.Fatalf("%s should not be timed", p)
		}
	}
	if !PhaseCountdown.Timed() || !PhaseActive.Timed() {
		t.Fatal("countdown and active must be timed")
	}
}

func TestEpochTimeUnits(t *testing.T) {
	if got := EpochTime(1_700_000_000); !got.Equal(time.Unix(1_700_000_000, 0)) {
		t.Fatalf("seconds: %v", got)
	}
	if got := EpochTime(1_700_000_000_500); !got.Equal(time.UnixMilli(1_700_000_000_500)) {
		t.Fatalf("millis: %v", got)
	}
	if !EpochTime(0).IsZero() || !EpochTime(-5).IsZero() {
		t.Fatal("non-positive epoch must be the zero time")
	}
}
