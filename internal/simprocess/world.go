package simprocess

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"synonym-game/internal/process"
)

type Rules struct {
	Countdown     time.Duration
	RoundDuration time.Duration
	RoundLimit    int
	MaxPlayers    int
	// Publish adds roundLimit and roundDuration to lobby snapshots.
	Publish bool
}

func DefaultRules() Rules {
	return Rules{
		Countdown:     5 * time.Second,
		RoundDuration: 20 * time.Second,
		RoundLimit:    6,
		MaxPlayers:    4,
		Publish:       true,
	}
}

// Bot is a seeded player that readies itself and submits from a word list.
type Bot struct {
	ID    string   `yaml:"id"`
	Words []string `yaml:"words"`
}

func (b *Bot) word(round int) string {
	if len(b.Words) == 0 {
		return "word"
	}
	return b.Words[(round-1)%len(b.Words)]
}

var (
	errLobbyNotFound = errors.New("Lobby not found")
	errLobbyFull     = errors.New("Lobby is full")
	errInProgress    = errors.New("Game already in progress")
	errNotInLobby    = errors.New("Player not in lobby")
	errNoRound       = errors.New("No active round")
	errSubmitted     = errors.New("Word already submitted")
	errEmptyWord     = errors.New("Word cannot be empty")
	errMissingLobby  = errors.New("Lobby id is required")
	errReadOnly      = errors.New("Action changes state and cannot be dry-run")
	errUnknownAction = errors.New("Unknown action")
)

// World is the in-memory state of one simulated game process.
type World struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	rules   Rules
	lobbies map[string]*lobby
	nextID  int
}

func NewWorld(clock clockwork.Clock, rules Rules) *World {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	def := DefaultRules()
	if rules.Countdown <= 0 {
		rules.Countdown = def.Countdown
	}
	if rules.RoundDuration <= 0 {
		rules.RoundDuration = def.RoundDuration
	}
	if rules.RoundLimit <= 0 {
		rules.RoundLimit = def.RoundLimit
	}
	if rules.MaxPlayers < minPlayers {
		rules.MaxPlayers = def.MaxPlayers
	}
	return &World{clock: clock, rules: rules, lobbies: map[string]*lobby{}}
}

func isWrite(action string) bool {
	switch action {
	case process.ActionCreateLobby, process.ActionJoinLobby, process.ActionLeaveLobby,
		process.ActionPlayerReady, process.ActionSubmitWord:
		return true
	}
	return false
}

// Evaluate runs msg against the world. Dry runs must not change state, so
// write actions are refused there.
func (w *World) Evaluate(msg process.Message, dryRun bool) process.Result {
	action := msg.Tag("Action")
	metricMessages.Add(action, 1)
	if dryRun && isWrite(action) {
		return reply(errorBody(errReadOnly))
	}

	var params map[string]string
	if strings.TrimSpace(msg.Data) != "" {
		if err := json.Unmarshal([]byte(msg.Data), &params); err != nil {
			// bare lobby ids are accepted as data too
			params = map[string]string{"lobbyId": strings.TrimSpace(msg.Data)}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.clock.Now()
	for _, l := range w.lobbies {
		l.advance(now, w.rules)
	}

	var body any
	var err error
	switch action {
	case process.ActionInfo:
		body = map[string]any{"status": process.StatusConnected, "version": "1.0", "name": "synonym-game-sim"}
	case process.ActionListLobbies:
		body = w.listLobbies()
	case process.ActionLobbyState:
		body, err = w.lobbyState(params["lobbyId"])
	case process.ActionCreateLobby:
		body, err = w.createLobby(msg.Owner, params["name"])
	case process.ActionJoinLobby:
		err = w.joinLobby(msg.Owner, params["lobbyId"])
	case process.ActionLeaveLobby:
		err = w.leaveLobby(msg.Owner, params["lobbyId"])
	case process.ActionPlayerReady:
		err = w.playerReady(msg.Owner, params["lobbyId"])
	case process.ActionSubmitWord:
		err = w.submitWord(msg.Owner, params["lobbyId"], params["word"])
	default:
		err = errUnknownAction
	}
	if err != nil {
		metricRejected.Add(action, 1)
		log.Debug().Err(err).Str("action", action).Str("player_id", msg.Owner).Msg("sim rejected message")
		return reply(errorBody(err))
	}
	if body == nil {
		body = map[string]any{"status": process.StatusSuccess, "message": action + " ok"}
	}
	if isWrite(action) {
		// writes can complete a transition immediately
		for _, l := range w.lobbies {
			l.advance(now, w.rules)
		}
	}
	return reply(body)
}

func reply(body any) process.Result {
	raw, err := json.Marshal(body)
	if err != nil {
		return process.Result{Error: err.Error()}
	}
	return process.Result{Messages: []process.OutMessage{{Data: string(raw)}}}
}

func errorBody(err error) map[string]any {
	return map[string]any{"status": "error", "error": err.Error()}
}

func (w *World) lobby(id string) (*lobby, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errMissingLobby
	}
	l, ok := w.lobbies[id]
	if !ok {
		return nil, errLobbyNotFound
	}
	return l, nil
}

func (w *World) addLobby(name string) *lobby {
	w.nextID++
	id := strconv.Itoa(w.nextID)
	if name == "" {
		name = "Lobby " + id
	}
	l := newLobby(id, name, w.rules.MaxPlayers)
	w.lobbies[id] = l
	return l
}

func (w *World) createLobby(owner, name string) (any, error) {
	l := w.addLobby(strings.TrimSpace(name))
	l.players[owner] = &player{}
	log.Info().Str("lobby_id", l.id).Str("player_id", owner).Msg("sim lobby created")
	return map[string]any{"status": process.StatusSuccess, "lobbyId": l.id}, nil
}

func (w *World) joinLobby(playerID, lobbyID string) error {
	l, err := w.lobby(lobbyID)
	if err != nil {
		return err
	}
	if _, ok := l.players[playerID]; ok {
		return nil
	}
	if len(l.players) >= l.maxPlayers {
		return errLobbyFull
	}
	if l.inGame() && l.status != statusComplete {
		return errInProgress
	}
	l.players[playerID] = &player{}
	return nil
}

func (w *World) leaveLobby(playerID, lobbyID string) error {
	l, err := w.lobby(lobbyID)
	if err != nil {
		return err
	}
	if _, ok := l.players[playerID]; !ok {
		return errNotInLobby
	}
	delete(l.players, playerID)
	if len(l.players) == 0 {
		delete(w.lobbies, l.id)
	}
	return nil
}

func (w *World) playerReady(playerID, lobbyID string) error {
	l, err := w.lobby(lobbyID)
	if err != nil {
		return err
	}
	p, ok := l.players[playerID]
	if !ok {
		return errNotInLobby
	}
	if l.status == statusComplete {
		l.restart()
	}
	if l.roundOpen() {
		return errInProgress
	}
	p.ready = true
	return nil
}

func (w *World) submitWord(playerID, lobbyID, word string) error {
	l, err := w.lobby(lobbyID)
	if err != nil {
		return err
	}
	if _, ok := l.players[playerID]; !ok {
		return errNotInLobby
	}
	if !l.roundOpen() {
		return errNoRound
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return errEmptyWord
	}
	if _, ok := l.round.submissions[playerID]; ok {
		return errSubmitted
	}
	l.round.submissions[playerID] = word
	return nil
}
