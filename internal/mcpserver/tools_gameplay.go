package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"synonym-game/internal/engine"
	"synonym-game/internal/game"
)

func (s *Server) registerGameplayTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_state",
			mcp.WithDescription("Current game view plus the tools that make sense in this phase."),
		),
		s.handleGetState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"ready",
			mcp.WithDescription("Mark the local player ready. Does nothing when already ready."),
		),
		s.handleReady,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_word",
			mcp.WithDescription("Submit one word for the current round."),
			mcp.WithString("word", mcp.Required(), mcp.Description("A single word, no spaces")),
		),
		s.handleSubmitWord,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"acknowledge",
			mcp.WithDescription("Leave the final results and wait for a new game in the same lobby."),
		),
		s.handleAcknowledge,
	)
}

func (s *Server) handleGetState(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v := s.eng.State()
	return toolResult(map[string]any{
		"state":         v,
		"allowed_tools": allowedTools(v),
	}), nil
}

func (s *Server) handleReady(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.eng.Ready(ctx); err != nil {
		return intentError(err), nil
	}
	return toolResult(map[string]any{"state": s.eng.State()}), nil
}

func (s *Server) handleSubmitWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word, err := request.RequireString("word")
	if err != nil {
		return toolError(engine.CodeInvalidRequest, err.Error()), nil
	}
	if err := s.eng.SubmitWord(ctx, word); err != nil {
		return intentError(err), nil
	}
	return toolResult(map[string]any{"state": s.eng.State()}), nil
}

func (s *Server) handleAcknowledge(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.eng.Acknowledge(ctx); err != nil {
		return intentError(err), nil
	}
	return toolResult(map[string]any{"state": s.eng.State()}), nil
}

// allowedTools lists the write tools the local guards would accept right now.
func allowedTools(v engine.View) []string {
	if !v.Connected || v.Busy != "" {
		return []string{}
	}
	switch {
	case v.Phase == game.PhaseIdle:
		return []string{"create_lobby", "join_lobby"}
	case v.Phase == game.PhaseComplete:
		return []string{"acknowledge", "leave_lobby"}
	case v.Phase == game.PhaseActive && !v.Submitted:
		return []string{"submit_word", "leave_lobby"}
	case v.Phase.CanReady() && !v.Ready.Ready():
		return []string{"ready", "leave_lobby"}
	}
	return []string{"leave_lobby"}
}
