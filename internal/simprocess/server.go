package simprocess

import (
	"encoding/json"
	"expvar"
	"io"
	"math/rand"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"synonym-game/internal/logging"
	"synonym-game/internal/process"
)

const (
	maxMessageBytes = 64 << 10
	maxResults      = 1024
)

// Server exposes a World over the same HTTP surface an AO compute unit and
// message unit offer: dry-run, message and result.
type Server struct {
	world     *World
	processID string

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	results map[string]process.Result
	order   []string
}

func NewServer(world *World, processID string) *Server {
	return &Server{
		world:     world,
		processID: processID,
		entropy:   ulid.Monotonic(rand.New(rand.NewSource(world.clock.Now().UnixNano())), 0),
		results:   map[string]process.Result{},
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(logging.RequestLogger())
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "process_id": s.processID})
		})
		r.Post("/dry-run", s.handleDryRun)
		r.Post("/message", s.handleMessage)
		r.Get("/result/{message_id}", s.handleResult)
	})
	return r
}

func (s *Server) handleDryRun(w http.ResponseWriter, r *http.Request) {
	if !s.checkProcess(w, r.URL.Query().Get("process-id")) {
		return
	}
	msg, ok := decodeMessage(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.world.Evaluate(msg, true))
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	msg, ok := decodeMessage(w, r)
	if !ok {
		return
	}
	if !s.checkProcess(w, msg.Target) {
		return
	}
	res := s.world.Evaluate(msg, false)
	writeJSON(w, http.StatusOK, map[string]string{"id": s.store(res)})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if !s.checkProcess(w, r.URL.Query().Get("process-id")) {
		return
	}
	s.mu.Lock()
	res, ok := s.results[chi.URLParam(r, "message_id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "message not found"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) checkProcess(w http.ResponseWriter, id string) bool {
	if id != s.processID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "process not found"})
		return false
	}
	return true
}

// store keeps the result under a new message id, evicting the oldest once
// maxResults are held.
func (s *Server) store(res process.Result) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(s.world.clock.Now()), s.entropy).String()
	s.results[id] = res
	s.order = append(s.order, id)
	if len(s.order) > maxResults {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
	metricResults.Set(int64(len(s.results)))
	return id
}

func decodeMessage(w http.ResponseWriter, r *http.Request) (process.Message, bool) {
	var msg process.Message
	body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(body).Decode(&msg); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message"})
		return process.Message{}, false
	}
	return msg, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
