package simprocess

import (
	"sort"
	"time"
)

const (
	statusWaiting  = "waiting"
	statusReady    = "ready"
	statusActive   = "active"
	statusComplete = "complete"

	minPlayers = 2
)

type player struct {
	ready bool
	bot   *Bot
}

type round struct {
	number      int
	submissions map[string]string
	deadline    time.Time
	closed      bool
}

type lobby struct {
	id         string
	name       string
	status     string
	maxPlayers int
	players    map[string]*player
	round      *round
	played     int

	// pending is the scheduled start of the next round; announced is the
	// last start value shown to clients and stays visible after it passes.
	pending   time.Time
	announced time.Time
}

func newLobby(id, name string, maxPlayers int) *lobby {
	return &lobby{id: id, name: name, status: statusWaiting, maxPlayers: maxPlayers, players: map[string]*player{}}
}

func (l *lobby) playerIDs() []string {
	ids := make([]string, 0, len(l.players))
	for id := range l.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (l *lobby) allReady() bool {
	if len(l.players) < minPlayers {
		return false
	}
	for _, p := range l.players {
		if !p.ready {
			return false
		}
	}
	return true
}

func (l *lobby) roundOpen() bool {
	return l.round != nil && !l.round.closed
}

func (l *lobby) allSubmitted() bool {
	if !l.roundOpen() {
		return false
	}
	for id := range l.players {
		if _, ok := l.round.submissions[id]; !ok {
			return false
		}
	}
	return true
}

// restart clears the game so the lobby can play again from scratch.
func (l *lobby) restart() {
	l.status = statusWaiting
	l.round = nil
	l.played = 0
	l.pending = time.Time{}
	l.announced = time.Time{}
	for _, p := range l.players {
		p.ready = false
	}
}

func (l *lobby) inGame() bool {
	return l.status != statusWaiting || l.played > 0 || l.round != nil || !l.pending.IsZero()
}

// advance catches the lobby up to now. Nothing runs in the background; every
// request advances the lobbies it touches first.
func (l *lobby) advance(now time.Time, r Rules) {
	for i := 0; i < 8; i++ {
		if !l.step(now, r) {
			return
		}
	}
}

func (l *lobby) step(now time.Time, r Rules) bool {
	if l.status == statusComplete {
		return false
	}
	if len(l.players) < minPlayers {
		if l.inGame() {
			l.restart()
			return true
		}
		return false
	}
	if !l.roundOpen() && l.pending.IsZero() {
		for _, p := range l.players {
			if p.bot != nil {
				p.ready = true
			}
		}
	}

	switch {
	case l.roundOpen() && (l.allSubmitted() || !now.Before(l.round.deadline)):
		l.closeRound(r)
		return true
	case !l.roundOpen() && l.pending.IsZero() && l.allReady():
		l.pending = now.Add(r.Countdown)
		l.announced = l.pending
		l.status = statusReady
		return true
	case !l.roundOpen() && !l.pending.IsZero() && !now.Before(l.pending):
		l.openRound(r)
		return true
	}
	return false
}

func (l *lobby) openRound(r Rules) {
	l.round = &round{
		number:      l.played + 1,
		submissions: map[string]string{},
		deadline:    l.pending.Add(r.RoundDuration),
	}
	l.pending = time.Time{}
	l.status = statusActive
	for id, p := range l.players {
		p.ready = false
		if p.bot != nil {
			l.round.submissions[id] = p.bot.word(l.round.number)
		}
	}
}

// closeRound ends the open round. Players who never submitted get an empty
// word so every client sees a complete round.
func (l *lobby) closeRound(r Rules) {
	for id := range l.players {
		if _, ok := l.round.submissions[id]; !ok {
			l.round.submissions[id] = ""
		}
	}
	l.round.closed = true
	l.played++
	if l.played >= r.RoundLimit {
		l.status = statusComplete
		return
	}
	l.status = statusWaiting
}
