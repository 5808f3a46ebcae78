package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	ClientURL string   `env:"BOT_CLIENT_URL" envDefault:"http://localhost:8090"`
	PlayerID  string   `env:"BOT_PLAYER_ID" envDefault:"bot"`
	LobbyID   string   `env:"BOT_LOBBY_ID"`
	Words     []string `env:"BOT_WORDS" envSeparator:"," envDefault:"happy,glad,joyful,cheerful,content,merry"`
	ThinkMS   int      `env:"BOT_THINK_MS" envDefault:"500"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
