package stream

import (
	"testing"
	"time"
)

func TestHubOrderAndReplay(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	h := NewHub(10, func() time.Time { return at })
	ev1 := h.Publish(EventView, map[string]any{"n": 1})
	ev2 := h.Publish(EventTransition, map[string]any{"n": 2})
	ev3 := h.Publish(EventView, map[string]any{"n": 3})

	if ev1.ID != "1" || ev2.ID != "2" || ev3.ID != "3" {
		t.Fatalf("unexpected event ids: %s %s %s", ev1.ID, ev2.ID, ev3.ID)
	}
	if ev1.At != at.UnixMilli() {
		t.Fatalf("unexpected timestamp %d", ev1.At)
	}
	replay := h.Since("1")
	if len(replay) != 2 || replay[0].ID != "2" || replay[1].ID != "3" {
		t.Fatalf("unexpected replay: %+v", replay)
	}
	if all := h.Since("junk"); len(all) != 3 {
		t.Fatalf("bad id should replay everything, got %d", len(all))
	}
}

func TestHubBoundsBuffer(t *testing.T) {
	h := NewHub(2, nil)
	for i := 0; i < 5; i++ {
		h.Publish(EventView, i)
	}
	replay := h.Since("")
	if len(replay) != 2 || replay[0].ID != "4" {
		t.Fatalf("unexpected buffer: %+v", replay)
	}
}

func TestHubSubscribeReceivesLiveEvents(t *testing.T) {
	h := NewHub(10, nil)
	ch := h.Subscribe()
	h.Publish(EventTransition, "x")
	select {
	case ev := <-ch:
		if ev.Type != EventTransition {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no live event")
	}
	h.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}

	ch2 := h.Subscribe()
	h.Close()
	if _, ok := <-ch2; ok {
		t.Fatal("channel should be closed after hub close")
	}
	if ev := h.Publish(EventView, nil); ev.ID != "" {
		t.Fatal("publish after close must be a no-op")
	}
}
