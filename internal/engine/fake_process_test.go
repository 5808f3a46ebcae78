package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"synonym-game/internal/game"
	"synonym-game/internal/process"
)

// fakeProcess is an in-memory process. Writes change the stored lobbies so
// later polls observe them, like the real thing.
type fakeProcess struct {
	mu sync.Mutex

	infoStatus []string
	infoErrs   []error
	infoCalls  int

	lobbies map[string]*game.LobbyDetail
	nextID  int

	writeErr  map[string]error
	gates     map[string]chan struct{}
	calls     map[string]int
	stateGate chan struct{}
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{
		lobbies:  map[string]*game.LobbyDetail{},
		writeErr: map[string]error{},
		gates:    map[string]chan struct{}{},
		calls:    map[string]int{},
	}
}

func (f *fakeProcess) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[action]
}

func (f *fakeProcess) gate(action string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[action] = ch
	return ch
}

func (f *fakeProcess) update(id string, fn func(d *game.LobbyDetail)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.lobbies[id])
}

func (f *fakeProcess) failWrites(action string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr[action] = err
}

// enter records the call and waits on a gate when one is set. Gates ignore
// ctx so a request can settle after its caller gave up.
func (f *fakeProcess) enter(action string) error {
	f.mu.Lock()
	f.calls[action]++
	gate := f.gates[action]
	delete(f.gates, action)
	err := f.writeErr[action]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeProcess) Info(context.Context) (process.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.infoCalls
	f.infoCalls++
	if i < len(f.infoErrs) && f.infoErrs[i] != nil {
		return process.Info{}, f.infoErrs[i]
	}
	status := process.StatusConnected
	if i < len(f.infoStatus) {
		status = f.infoStatus[i]
	}
	return process.Info{Status: status, Version: "1"}, nil
}

func (f *fakeProcess) CreateLobby(_ context.Context, from, name string) (string, error) {
	if err := f.enter("create"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.lobbies[id] = &game.LobbyDetail{
		ID:         id,
		Name:       name,
		Status:     game.LobbyWaiting,
		MaxPlayers: 4,
		Players:    map[string]game.PlayerState{from: {}},
	}
	return id, nil
}

func (f *fakeProcess) JoinLobby(_ context.Context, from, lobbyID string) error {
	if err := f.enter("join"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.lobbies[lobbyID]
	if !ok {
		return &process.Failure{Kind: process.KindProcess, Action: process.ActionJoinLobby, Message: "Lobby not found"}
	}
	d.Players[from] = game.PlayerState{}
	return nil
}

func (f *fakeProcess) LeaveLobby(_ context.Context, from, lobbyID string) error {
	if err := f.enter("leave"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.lobbies[lobbyID]; ok {
		delete(d.Players, from)
	}
	return nil
}

func (f *fakeProcess) ListLobbies(context.Context) ([]game.LobbySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	out := make([]game.LobbySummary, 0, len(f.lobbies))
	for i := 1; i <= f.nextID; i++ {
		if d, ok := f.lobbies[strconv.Itoa(i)]; ok {
			out = append(out, d.Summary())
		}
	}
	return out, nil
}

func (f *fakeProcess) LobbyState(_ context.Context, lobbyID string) (game.LobbyDetail, error) {
	f.mu.Lock()
	f.calls["state"]++
	gate := f.stateGate
	d, ok := f.lobbies[lobbyID]
	var snap game.LobbyDetail
	if ok {
		snap = d.Clone()
	}
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if !ok {
		return game.LobbyDetail{}, &process.Failure{Kind: process.KindMalformed, Action: process.ActionLobbyState, Message: "no lobby in response"}
	}
	return snap, nil
}

func (f *fakeProcess) PlayerReady(_ context.Context, from, lobbyID string) error {
	if err := f.enter("ready"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lobbies[lobbyID].Players[from] = game.PlayerState{Ready: true}
	return nil
}

func (f *fakeProcess) SubmitWord(_ context.Context, from, lobbyID, word string) error {
	if err := f.enter("submit"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.lobbies[lobbyID]
	if d.CurrentRound == nil {
		return errors.New("no active round")
	}
	d.CurrentRound.Submissions[from] = word
	return nil
}
