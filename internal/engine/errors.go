package engine

import (
	"context"
	"errors"

	"synonym-game/internal/game"
	"synonym-game/internal/process"
)

// Error codes shared by the HTTP and MCP surfaces.
const (
	CodeInvalidRequest = "invalid_request"
	CodeGuard          = "guard_violation"
	CodeProcess        = "process_error"
	CodeMalformed      = "malformed_response"
	CodeNetwork        = "network"
	CodeTimeout        = "timeout"
	CodeStopped        = "engine_stopped"
	CodeInternal       = "internal_error"
)

// ErrorCode classifies an error returned by an intent.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, game.ErrMissingLobbyID),
		errors.Is(err, game.ErrMissingPlayerID),
		errors.Is(err, game.ErrEmptyWord),
		errors.Is(err, game.ErrInvalidWord):
		return CodeInvalidRequest
	case errors.Is(err, game.ErrGuardViolation):
		return CodeGuard
	case errors.Is(err, ErrStopped):
		return CodeStopped
	}
	switch process.KindOf(err) {
	case process.KindProcess:
		return CodeProcess
	case process.KindMalformed:
		return CodeMalformed
	case process.KindNetwork:
		return CodeNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CodeTimeout
	}
	return CodeInternal
}
