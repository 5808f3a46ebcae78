package game

import (
	"errors"
	"fmt"
)

// ErrGuardViolation matches every local guard rejection via errors.Is.
var ErrGuardViolation = errors.New("guard_violation")

var (
	ErrInvalidPhase     = errors.New("invalid action for current phase")
	ErrEmptyWord        = errors.New("word cannot be empty")
	ErrInvalidWord      = errors.New("word must be a single word")
	ErrAlreadySubmitted = errors.New("already submitted this round")
	ErrNotInLobby       = errors.New("no lobby selected")
	ErrAlreadyInLobby   = errors.New("already in a lobby")
	ErrNotConnected     = errors.New("wallet not connected")
	ErrAlreadyConnected = errors.New("wallet already connected")
	ErrActionInFlight   = errors.New("another action is in progress")
	ErrMissingLobbyID   = errors.New("lobby id is required")
	ErrMissingPlayerID  = errors.New("player id is required")
)

// GuardError is returned when an intent is rejected locally, before any
// request reaches the process.
type GuardError struct {
	Op    string
	Phase Phase
	Err   error
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("%s rejected in %s: %v", e.Op, e.Phase, e.Err)
}

func (e *GuardError) Unwrap() []error {
	return []error{ErrGuardViolation, e.Err}
}

func guard(op string, phase Phase, err error) error {
	return &GuardError{Op: op, Phase: phase, Err: err}
}

// Guard builds a GuardError for callers outside the machine.
func Guard(op string, phase Phase, err error) error {
	return guard(op, phase, err)
}
