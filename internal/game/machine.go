package game

import (
	"strings"
	"time"
)

// Transition records one phase change.
type Transition struct {
	From   Phase     `json:"from"`
	To     Phase     `json:"to"`
	Round  int       `json:"round"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// RoundRecord keeps every player's word for a finished round.
type RoundRecord struct {
	Number int               `json:"number"`
	Words  map[string]string `json:"words"`
}

// ReadyState separates the provisional local hint from what the last poll confirmed.
type ReadyState struct {
	Hint      bool `json:"hint"`
	Confirmed bool `json:"confirmed"`
	InFlight  bool `json:"in_flight"`
}

func (r ReadyState) Ready() bool {
	return r.Hint || r.Confirmed
}

// Machine owns the game phase register. Transitions caused by other players
// only ever come from Apply; local intents update provisional hints that the
// next poll overwrites. Machine is not safe for concurrent use.
type Machine struct {
	configured Rules
	rules      Rules

	phase    Phase
	lobbyID  string
	playerID string
	round    int
	anchor   time.Time

	// gameStart value already turned into a countdown; a stale value is never reused.
	consumedStart int64

	ready          ReadyState
	submitted      int
	submitInFlight bool

	words   []string
	history []RoundRecord
}

func NewMachine(rules Rules) *Machine {
	rules = rules.normalized()
	return &Machine{configured: rules, rules: rules, phase: PhaseIdle}
}

func (m *Machine) Phase() Phase { return m.phase }
func (m *Machine) LobbyID() string { return m.lobbyID }
func (m *Machine) PlayerID() string { return m.playerID }
func (m *Machine) Round() int { return m.round }
func (m *Machine) Rules() Rules { return m.rules }
func (m *Machine) Ready() ReadyState { return m.ready }
func (m *Machine) Anchor() time.Time { return m.anchor }
func (m *Machine) SubmittedRound() int { return m.submitted }

func (m *Machine) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}

func (m *Machine) History() []RoundRecord {
	out := make([]RoundRecord, len(m.history))
	for i, rec := range m.history {
		words := make(map[string]string, len(rec.Words))
		for k, v := range rec.Words {
			words[k] = v
		}
		out[i] = RoundRecord{Number: rec.Number, Words: words}
	}
	return out
}

// Submitted reports whether the local player has a word in for the current round,
// counting an unacknowledged submission as in.
func (m *Machine) Submitted() bool {
	return m.submitInFlight || (m.round > 0 && m.submitted == m.round)
}

// SetPlayer binds the local wallet identity used to read readiness from snapshots.
func (m *Machine) SetPlayer(id string) {
	m.playerID = id
}

// Join moves IDLE to WAITING_FOR_PLAYERS once a create or join was acknowledged.
func (m *Machine) Join(lobbyID string, now time.Time) (Transition, error) {
	if lobbyID == "" {
		return Transition{}, guard("join", m.phase, ErrMissingLobbyID)
	}
	if m.phase != PhaseIdle {
		return Transition{}, guard("join", m.phase, ErrAlreadyInLobby)
	}
	m.lobbyID = lobbyID
	return m.moveTo(PhaseWaiting, "lobby joined", now), nil
}

// Apply consumes a change-filtered lobby snapshot. A single snapshot may carry
// the machine through several phases, but never out of SCORING on the same
// snapshot that entered it unless that snapshot already shows the lobby complete.
func (m *Machine) Apply(d LobbyDetail, now time.Time) []Transition {
	if m.phase == PhaseIdle || d.ID != m.lobbyID {
		return nil
	}
	m.adoptRules(d)
	m.observeSelf(d)

	var out []Transition
	for i := 0; i < 4; i++ {
		tr, ok := m.step(d, now)
		if !ok {
			break
		}
		out = append(out, tr)
		if tr.To == PhaseScoring && d.Status != LobbyComplete {
			break
		}
	}
	return out
}

func (m *Machine) observeSelf(d LobbyDetail) {
	p, joined := d.Players[m.playerID]
	// ready flags left over in a finished lobby do not count for the next game
	m.ready.Confirmed = joined && p.Ready && d.Status != LobbyComplete
	if !m.ready.InFlight {
		m.ready.Hint = m.ready.Confirmed
	}
	if m.phase == PhaseActive && !m.submitInFlight && d.CurrentRound != nil && d.CurrentRound.RoundNumber == m.round {
		if _, ok := d.CurrentRound.Submissions[m.playerID]; ok {
			m.submitted = m.round
		}
	}
}

func (m *Machine) step(d LobbyDetail, now time.Time) (Transition, bool) {
	players := d.PlayerCount()
	if m.phase.InGame() && abandoned(d) {
		ready := m.ready
		m.clearGame()
		m.ready = ready
		return m.moveTo(PhaseWaiting, "game abandoned", now), true
	}
	switch m.phase {
	case PhaseWaiting:
		if players >= MinPlayers {
			return m.moveTo(PhaseReadyUp, "enough players", now), true
		}
	case PhaseReadyUp:
		if players < MinPlayers {
			return m.moveTo(PhaseWaiting, "player left", now), true
		}
		if d.AllReady() && m.freshStart(d.GameStart) {
			m.round = 1
			m.startCountdown(d.GameStart)
			return m.moveTo(PhaseCountdown, "all players ready", now), true
		}
	case PhaseCountdown:
		// The process may reschedule a countdown it already announced.
		if m.freshStart(d.GameStart) && d.AllReady() {
			m.startCountdown(d.GameStart)
		}
	case PhaseActive:
		r := d.CurrentRound
		if r == nil {
			return Transition{}, false
		}
		number := r.RoundNumber
		if number == 0 {
			if m.staleRound(r) {
				return Transition{}, false
			}
			number = m.round
		}
		switch {
		case number == m.round && d.RoundComplete():
			m.recordRound(r)
			return m.endRound("all words submitted", now), true
		case number > m.round:
			return m.endRound("process moved to next round", now), true
		}
	case PhaseScoring:
		if d.Status == LobbyComplete {
			return m.moveTo(PhaseComplete, "lobby complete", now), true
		}
		if !d.AllReady() {
			return Transition{}, false
		}
		if m.round >= m.rules.RoundLimit {
			return m.moveTo(PhaseComplete, "round limit reached", now), true
		}
		if m.freshStart(d.GameStart) {
			m.round++
			m.startCountdown(d.GameStart)
			return m.moveTo(PhaseCountdown, "all players ready", now), true
		}
	}
	return Transition{}, false
}

// abandoned reports a snapshot showing the process gave up the game: too few
// players, or a waiting lobby with neither a round nor a scheduled start.
func abandoned(d LobbyDetail) bool {
	if d.PlayerCount() < MinPlayers {
		return true
	}
	return d.Status == LobbyWaiting && d.CurrentRound == nil && d.GameStart == 0
}

// staleRound is true when an unnumbered round still carries the words of the
// round recorded last, i.e. the process has not opened the new round yet.
func (m *Machine) staleRound(r *RoundInfo) bool {
	if len(m.history) == 0 || len(r.Submissions) == 0 {
		return false
	}
	last := m.history[len(m.history)-1].Words
	if len(last) != len(r.Submissions) {
		return false
	}
	for k, v := range r.Submissions {
		if w, ok := last[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Tick advances the timed phases from the local clock.
func (m *Machine) Tick(now time.Time) []Transition {
	if m.phase != PhaseCountdown || m.anchor.IsZero() || now.Before(m.anchor) {
		return nil
	}
	m.anchor = now.Add(m.rules.RoundDuration)
	m.submitInFlight = false
	return []Transition{m.moveTo(PhaseActive, "countdown elapsed", now)}
}

// Acknowledge leaves COMPLETE for a fresh game in the same lobby.
func (m *Machine) Acknowledge(now time.Time) (Transition, error) {
	if m.phase != PhaseComplete {
		return Transition{}, guard("acknowledge", m.phase, ErrInvalidPhase)
	}
	m.clearGame()
	return m.moveTo(PhaseWaiting, "new game", now), nil
}

// Reset unconditionally returns to IDLE and clears everything tied to the
// lobby: round counter, word history, round history, anchor and hints.
func (m *Machine) Reset(reason string, now time.Time) (Transition, bool) {
	from := m.phase
	m.clearGame()
	m.lobbyID = ""
	m.consumedStart = 0
	m.rules = m.configured
	if from == PhaseIdle {
		return Transition{}, false
	}
	m.phase = PhaseIdle
	return Transition{From: from, To: PhaseIdle, Reason: reason, At: now}, true
}

// BeginReady validates a ready intent. It returns send=false when the local
// player is already ready (confirmed or pending) so repeated intents are no-ops.
func (m *Machine) BeginReady() (bool, error) {
	if m.lobbyID == "" {
		return false, guard("ready", m.phase, ErrNotInLobby)
	}
	if !m.phase.CanReady() {
		return false, guard("ready", m.phase, ErrInvalidPhase)
	}
	if m.ready.Ready() || m.ready.InFlight {
		return false, nil
	}
	m.ready.Hint = true
	m.ready.InFlight = true
	return true, nil
}

// ReadyDone settles a ready intent. On failure the provisional hint is rolled back.
func (m *Machine) ReadyDone(ok bool) {
	m.ready.InFlight = false
	if !ok {
		m.ready.Hint = m.ready.Confirmed
	}
}

// BeginSubmit validates a word for the current round and returns it trimmed.
func (m *Machine) BeginSubmit(word string) (string, error) {
	word = strings.TrimSpace(word)
	if m.phase != PhaseActive {
		return "", guard("submit", m.phase, ErrInvalidPhase)
	}
	if word == "" {
		return "", guard("submit", m.phase, ErrEmptyWord)
	}
	if strings.ContainsAny(word, " \t\r\n") {
		return "", guard("submit", m.phase, ErrInvalidWord)
	}
	if m.Submitted() {
		return "", guard("submit", m.phase, ErrAlreadySubmitted)
	}
	m.submitInFlight = true
	return word, nil
}

// SubmitDone settles a submission for round. Only an acknowledged word enters
// the local word history.
func (m *Machine) SubmitDone(round int, word string, ok bool) {
	m.submitInFlight = false
	if !ok {
		return
	}
	m.words = append(m.words, word)
	if round == m.round {
		m.submitted = round
	}
}

func (m *Machine) adoptRules(d LobbyDetail) {
	next := m.configured
	if d.RoundLimit > 0 {
		next.RoundLimit = d.RoundLimit
	}
	if d.RoundDuration > 0 {
		next.RoundDuration = time.Duration(d.RoundDuration) * time.Second
	}
	m.rules = next
}

func (m *Machine) freshStart(gameStart int64) bool {
	return gameStart > 0 && gameStart != m.consumedStart
}

func (m *Machine) startCountdown(gameStart int64) {
	m.consumedStart = gameStart
	m.anchor = EpochTime(gameStart)
	m.ready = ReadyState{}
}

func (m *Machine) recordRound(r *RoundInfo) {
	words := make(map[string]string, len(r.Submissions))
	for k, v := range r.Submissions {
		words[k] = v
	}
	m.history = append(m.history, RoundRecord{Number: m.round, Words: words})
}

func (m *Machine) endRound(reason string, now time.Time) Transition {
	m.anchor = time.Time{}
	m.submitInFlight = false
	return m.moveTo(PhaseScoring, reason, now)
}

func (m *Machine) clearGame() {
	m.round = 0
	m.anchor = time.Time{}
	m.ready = ReadyState{}
	m.submitted = 0
	m.submitInFlight = false
	m.words = nil
	m.history = nil
}

func (m *Machine) moveTo(next Phase, reason string, now time.Time) Transition {
	tr := Transition{From: m.phase, To: next, Round: m.round, Reason: reason, At: now}
	m.phase = next
	return tr
}
