package engine

import (
	"context"

	"synonym-game/internal/game"
	"synonym-game/internal/process"
)

// Process is the subset of *process.Client the engine drives.
type Process interface {
	Info(ctx context.Context) (process.Info, error)
	CreateLobby(ctx context.Context, from, name string) (string, error)
	JoinLobby(ctx context.Context, from, lobbyID string) error
	LeaveLobby(ctx context.Context, from, lobbyID string) error
	ListLobbies(ctx context.Context) ([]game.LobbySummary, error)
	LobbyState(ctx context.Context, lobbyID string) (game.LobbyDetail, error)
	PlayerReady(ctx context.Context, from, lobbyID string) error
	SubmitWord(ctx context.Context, from, lobbyID, word string) error
}

var _ Process = (*process.Client)(nil)
