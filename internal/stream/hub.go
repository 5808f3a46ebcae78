package stream

import (
	"expvar"
	"strconv"
	"sync"
	"time"
)

const (
	EventView       = "view"
	EventTransition = "transition"
	EventLobbies    = "lobbies"
	EventError      = "error"
)

var metricDropped = expvar.NewInt("stream_dropped_total")

type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	At   int64  `json:"at_ms"`
	Data any    `json:"data"`
}

// Hub keeps the last max events for replay and fans new ones out to
// subscribers. A slow subscriber misses events instead of blocking Publish.
type Hub struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   int64
	max      int
	events   []Event
	watchers map[chan Event]struct{}
	closed   bool
}

func NewHub(max int, now func() time.Time) *Hub {
	if max <= 0 {
		max = 256
	}
	if now == nil {
		now = time.Now
	}
	return &Hub{max: max, now: now, watchers: map[chan Event]struct{}{}}
}

func (h *Hub) Publish(typ string, data any) Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return Event{}
	}
	h.nextID++
	ev := Event{ID: strconv.FormatInt(h.nextID, 10), Type: typ, At: h.now().UnixMilli(), Data: data}
	h.events = append(h.events, ev)
	if len(h.events) > h.max {
		h.events = h.events[len(h.events)-h.max:]
	}
	for ch := range h.watchers {
		select {
		case ch <- ev:
		default:
			metricDropped.Add(1)
		}
	}
	return ev
}

// Since returns buffered events newer than lastID. An empty or unparsable id
// replays the whole buffer.
func (h *Hub) Since(lastID string) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	last, err := strconv.ParseInt(lastID, 10, 64)
	if lastID == "" || err != nil {
		last = 0
	}
	out := make([]Event, 0, len(h.events))
	for _, ev := range h.events {
		id, _ := strconv.ParseInt(ev.ID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 32)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.watchers[ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[ch]; ok {
		delete(h.watchers, ch)
		close(ch)
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.watchers {
		close(ch)
		delete(h.watchers, ch)
	}
}
