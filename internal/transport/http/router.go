package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"synonym-game/internal/config"
	"synonym-game/internal/logging"
	"synonym-game/internal/mcpserver"
	"synonym-game/internal/stream"
)

// Engine is everything the local control surface drives.
type Engine interface {
	mcpserver.Engine
	Connect(ctx context.Context, playerID string) error
	Disconnect(ctx context.Context) error
	Since(lastID string) []stream.Event
	Subscribe() chan stream.Event
	Unsubscribe(ch chan stream.Event)
}

func NewRouter(eng Engine, cfg config.ClientConfig) *chi.Mux {
	mcpSrv := mcpserver.New(eng)
	h := NewHandlers(eng, cfg.PlayerID)
	streams := NewStreamHandler(eng, cfg.CORSAllowedOrigins)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	r := chi.NewRouter()
	r.Use(c.Handler)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(logging.RequestLogger()).Get("/healthz", h.Health())
	r.Get("/ws", streams.ServeHTTP)
	r.Get("/debug/vars", expvar.Handler().ServeHTTP)

	r.With(logging.RequestLogger()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(logging.RequestLogger()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(logging.RequestLogger()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(logging.RequestLogger()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(logging.RequestLogger())
		r.Get("/state", h.State())
		r.Get("/lobbies", h.Lobbies())
		r.Post("/connect", h.Connect())
		r.Post("/disconnect", h.Disconnect())
		r.Post("/lobbies", h.CreateLobby())
		r.Post("/lobbies/{lobby_id}/join", h.JoinLobby())
		r.Post("/lobby/leave", h.LeaveLobby())
		r.Post("/lobby/ready", h.Ready())
		r.Post("/lobby/words", h.SubmitWord())
		r.Post("/lobby/ack", h.Acknowledge())
	})
	return r
}

func LogRoutes(r chi.Routes) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
