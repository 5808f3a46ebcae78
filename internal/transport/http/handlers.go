package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	eng           Engine
	defaultPlayer string
}

func NewHandlers(eng Engine, defaultPlayer string) *Handlers {
	return &Handlers{eng: eng, defaultPlayer: strings.TrimSpace(defaultPlayer)}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		v := h.eng.State()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "connected": v.Connected, "phase": v.Phase})
	}
}

func (h *Handlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, h.eng.State())
	}
}

func (h *Handlers) Lobbies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"lobbies": h.eng.Lobbies(r.URL.Query().Get("q"))})
	}
}

type connectRequest struct {
	PlayerID string `json:"player_id"`
}

func (h *Handlers) Connect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req connectRequest
		if !decodeBody(w, r, &req) {
			return
		}
		player := strings.TrimSpace(req.PlayerID)
		if player == "" {
			player = h.defaultPlayer
		}
		h.run(w, r, "connect", func(ctx context.Context) (map[string]any, error) {
			return nil, h.eng.Connect(ctx, player)
		})
	}
}

func (h *Handlers) Disconnect() http.HandlerFunc {
	return h.intentHandler("disconnect", func(ctx context.Context, _ *http.Request) (map[string]any, error) {
		return nil, h.eng.Disconnect(ctx)
	})
}

type createLobbyRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) CreateLobby() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLobbyRequest
		if !decodeBody(w, r, &req) {
			return
		}
		h.run(w, r, "create_lobby", func(ctx context.Context) (map[string]any, error) {
			id, err := h.eng.CreateLobby(ctx, req.Name)
			return map[string]any{"lobby_id": id}, err
		})
	}
}

func (h *Handlers) JoinLobby() http.HandlerFunc {
	return h.intentHandler("join_lobby", func(ctx context.Context, r *http.Request) (map[string]any, error) {
		id := chi.URLParam(r, "lobby_id")
		return map[string]any{"lobby_id": id}, h.eng.JoinLobby(ctx, id)
	})
}

func (h *Handlers) LeaveLobby() http.HandlerFunc {
	return h.intentHandler("leave_lobby", func(ctx context.Context, _ *http.Request) (map[string]any, error) {
		return nil, h.eng.LeaveLobby(ctx)
	})
}

func (h *Handlers) Ready() http.HandlerFunc {
	return h.intentHandler("ready", func(ctx context.Context, _ *http.Request) (map[string]any, error) {
		return nil, h.eng.Ready(ctx)
	})
}

type submitWordRequest struct {
	Word string `json:"word"`
}

func (h *Handlers) SubmitWord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitWordRequest
		if !decodeBody(w, r, &req) {
			return
		}
		h.run(w, r, "submit_word", func(ctx context.Context) (map[string]any, error) {
			return nil, h.eng.SubmitWord(ctx, req.Word)
		})
	}
}

func (h *Handlers) Acknowledge() http.HandlerFunc {
	return h.intentHandler("acknowledge", func(ctx context.Context, _ *http.Request) (map[string]any, error) {
		return nil, h.eng.Acknowledge(ctx)
	})
}

func (h *Handlers) intentHandler(name string, fn func(ctx context.Context, r *http.Request) (map[string]any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.run(w, r, name, func(ctx context.Context) (map[string]any, error) { return fn(ctx, r) })
	}
}

// run executes an intent and answers with the resulting view merged into fn's fields.
func (h *Handlers) run(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context) (map[string]any, error)) {
	metricIntentRequests.Add(name, 1)
	out, err := fn(r.Context())
	if err != nil {
		metricIntentErrors.Add(name, 1)
		writeIntentError(w, err)
		return
	}
	if out == nil {
		out = map[string]any{}
	}
	out["state"] = h.eng.State()
	writeJSON(w, http.StatusOK, out)
}

// decodeBody reads an optional JSON body. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}
