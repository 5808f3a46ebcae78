package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"synonym-game/internal/engine"
	"synonym-game/internal/game"
)

const stateURI = "game://state"

// Engine is the part of the client engine the tools drive.
type Engine interface {
	State() engine.View
	Lobbies(query string) []game.LobbySummary
	CreateLobby(ctx context.Context, name string) (string, error)
	JoinLobby(ctx context.Context, lobbyID string) error
	LeaveLobby(ctx context.Context) error
	Ready(ctx context.Context) error
	SubmitWord(ctx context.Context, word string) error
	Acknowledge(ctx context.Context) error
}

type Server struct {
	eng Engine

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(eng Engine) *Server {
	mcpSrv := server.NewMCPServer(
		"synonym-game",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		eng:        eng,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerLobbyTools()
	s.registerGameplayTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource(
			stateURI,
			"game_state",
			mcp.WithResourceDescription("Current reconciled game view"),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			payload, err := json.Marshal(s.eng.State())
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      stateURI,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
