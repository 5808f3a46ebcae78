package httptransport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"synonym-game/internal/stream"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StreamHandler upgrades to a websocket, replays buffered events newer than
// ?last_event_id and then forwards live events until either side goes away.
type StreamHandler struct {
	eng      Engine
	upgrader websocket.Upgrader
}

func NewStreamHandler(eng Engine, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		eng: eng,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

func (s *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	metricStreamConnectionsTotal.Add(1)
	metricStreamConnectionsActive.Add(1)
	defer metricStreamConnectionsActive.Add(-1)

	// Subscribe before reading the replay buffer so nothing published in
	// between is lost; duplicates are filtered by id below.
	live := s.eng.Subscribe()
	defer s.eng.Unsubscribe(live)

	closed := make(chan struct{})
	go readLoop(conn, closed)

	var last int64
	for _, ev := range s.eng.Since(r.URL.Query().Get("last_event_id")) {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
		last = eventSeq(ev)
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case ev, ok := <-live:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "engine stopped"),
					time.Now().Add(writeWait))
				return
			}
			if eventSeq(ev) <= last {
				continue
			}
			if err := writeEvent(conn, ev); err != nil {
				log.Debug().Err(err).Msg("view stream write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev stream.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func eventSeq(ev stream.Event) int64 {
	n, _ := strconv.ParseInt(ev.ID, 10, 64)
	return n
}
