package simprocess

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Seed pre-creates lobbies when the simulator starts.
type Seed struct {
	Lobbies []SeedLobby `yaml:"lobbies"`
}

type SeedLobby struct {
	Name       string `yaml:"name"`
	MaxPlayers int    `yaml:"max_players"`
	Bots       []Bot  `yaml:"bots"`
}

func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	for i, l := range s.Lobbies {
		seen := map[string]bool{}
		for _, b := range l.Bots {
			if b.ID == "" {
				return Seed{}, fmt.Errorf("seed lobby %d: bot without id", i)
			}
			if seen[b.ID] {
				return Seed{}, fmt.Errorf("seed lobby %d: duplicate bot %q", i, b.ID)
			}
			seen[b.ID] = true
		}
	}
	return s, nil
}

// Apply creates the seeded lobbies and returns their ids in order.
func (w *World) Apply(s Seed) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(s.Lobbies))
	for _, sl := range s.Lobbies {
		l := w.addLobby(sl.Name)
		if sl.MaxPlayers >= minPlayers {
			l.maxPlayers = sl.MaxPlayers
		}
		for i := range sl.Bots {
			bot := sl.Bots[i]
			l.players[bot.ID] = &player{bot: &bot}
		}
		ids = append(ids, l.id)
		log.Info().Str("lobby_id", l.id).Int("bots", len(sl.Bots)).Msg("seeded lobby")
	}
	return ids
}
