package reconcile

import (
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"synonym-game/internal/game"
)

// Reconciler caches the last lobby list and the last detail snapshot per
// lobby, reporting a change only when the structure actually differs. nil and
// empty collections compare equal.
type Reconciler struct {
	mu      sync.RWMutex
	lobbies []game.LobbySummary
	listed  bool
	details map[string]game.LobbyDetail
}

func New() *Reconciler {
	return &Reconciler{details: make(map[string]game.LobbyDetail)}
}

var equalOpts = []cmp.Option{cmpopts.EquateEmpty()}

// ObserveLobbies stores next and reports whether it differs from the cached
// list. The first observation always counts as a change.
func (r *Reconciler) ObserveLobbies(next []game.LobbySummary) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listed && cmp.Equal(r.lobbies, next, equalOpts...) {
		return false
	}
	r.lobbies = game.CloneSummaries(next)
	r.listed = true
	metricLobbyChanges.Add(1)
	return true
}

// ObserveDetail stores next under its lobby id and reports whether it changed.
func (r *Reconciler) ObserveDetail(next game.LobbyDetail) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.details[next.ID]
	if ok && cmp.Equal(prev, next, equalOpts...) {
		metricDetailUnchanged.Add(1)
		return false
	}
	r.details[next.ID] = next.Clone()
	metricDetailChanges.Add(1)
	return true
}

func (r *Reconciler) ForgetDetail(lobbyID string) {
	r.mu.Lock()
	delete(r.details, lobbyID)
	r.mu.Unlock()
}

// Forget drops every cached snapshot.
func (r *Reconciler) Forget() {
	r.mu.Lock()
	r.lobbies = nil
	r.listed = false
	r.details = make(map[string]game.LobbyDetail)
	r.mu.Unlock()
}

func (r *Reconciler) Lobbies() []game.LobbySummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return game.CloneSummaries(r.lobbies)
}

func (r *Reconciler) Detail(lobbyID string) (game.LobbyDetail, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.details[lobbyID]
	if !ok {
		return game.LobbyDetail{}, false
	}
	return d.Clone(), true
}
