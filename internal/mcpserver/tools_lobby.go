package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerLobbyTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_lobbies",
			mcp.WithDescription("List lobbies from the latest poll"),
			mcp.WithString("query", mcp.Description("Optional case-insensitive name filter")),
		),
		s.handleListLobbies,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_lobby",
			mcp.WithDescription("Create a lobby and enter it"),
			mcp.WithString("name", mcp.Description("Optional lobby name")),
		),
		s.handleCreateLobby,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"join_lobby",
			mcp.WithDescription("Join an existing lobby"),
			mcp.WithString("lobby_id", mcp.Required(), mcp.Description("Lobby id")),
		),
		s.handleJoinLobby,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"leave_lobby",
			mcp.WithDescription("Leave the current lobby"),
		),
		s.handleLeaveLobby,
	)
}

func (s *Server) handleListLobbies(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lobbies := s.eng.Lobbies(request.GetString("query", ""))
	return toolResult(map[string]any{"lobbies": lobbies}), nil
}

func (s *Server) handleCreateLobby(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.eng.CreateLobby(ctx, request.GetString("name", ""))
	if err != nil {
		return intentError(err), nil
	}
	return toolResult(map[string]any{"lobby_id": id, "state": s.eng.State()}), nil
}

func (s *Server) handleJoinLobby(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lobbyID, err := request.RequireString("lobby_id")
	if err != nil || strings.TrimSpace(lobbyID) == "" {
		return toolError("invalid_request", "lobby_id is required"), nil
	}
	if err := s.eng.JoinLobby(ctx, lobbyID); err != nil {
		return intentError(err), nil
	}
	return toolResult(map[string]any{"lobby_id": lobbyID, "state": s.eng.State()}), nil
}

func (s *Server) handleLeaveLobby(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.eng.LeaveLobby(ctx); err != nil {
		return intentError(err), nil
	}
	return toolResult(map[string]any{"state": s.eng.State()}), nil
}
