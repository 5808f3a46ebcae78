package game

// Phase is the client-held game phase. Only Machine changes it.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseWaiting   Phase = "WAITING_FOR_PLAYERS"
	PhaseReadyUp   Phase = "READY_UP"
	PhaseCountdown Phase = "COUNTDOWN"
	PhaseActive    Phase = "ACTIVE"
	PhaseScoring   Phase = "SCORING"
	PhaseComplete  Phase = "COMPLETE"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseIdle:      {PhaseWaiting},
	PhaseWaiting:   {PhaseReadyUp},
	PhaseReadyUp:   {PhaseCountdown, PhaseWaiting},
	PhaseCountdown: {PhaseActive, PhaseWaiting},
	PhaseActive:    {PhaseScoring, PhaseWaiting},
	PhaseScoring:   {PhaseCountdown, PhaseComplete, PhaseWaiting},
	PhaseComplete:  {PhaseWaiting},
}

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether target is reachable from p in one step.
// Resetting to IDLE is always allowed.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseIdle {
		return p != PhaseIdle
	}
	for _, next := range phaseTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

// InGame reports whether p belongs to a running game the process can abandon.
func (p Phase) InGame() bool {
	return p == PhaseCountdown || p == PhaseActive || p == PhaseScoring
}

// Timed reports whether the phase runs against a countdown anchor.
func (p Phase) Timed() bool {
	return p == PhaseCountdown || p == PhaseActive
}

// CanReady reports whether a PlayerReady intent makes sense in p.
func (p Phase) CanReady() bool {
	switch p {
	case PhaseWaiting, PhaseReadyUp, PhaseScoring:
		return true
	default:
		return false
	}
}
