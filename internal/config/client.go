package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ClientConfig struct {
	ProcessID  string `env:"AO_PROCESS_ID,required,notEmpty"`
	CUURL      string `env:"AO_CU_URL" envDefault:"https://cu.ao-testnet.xyz"`
	MessageURL string `env:"AO_MESSAGE_URL" envDefault:"https://mu.ao-testnet.xyz"`
	PlayerID   string `env:"PLAYER_ID"`
	HTTPAddr   string `env:"CLIENT_HTTP_ADDR" envDefault:":8090"`

	LobbyListPollMS  int `env:"LOBBY_LIST_POLL_MS" envDefault:"5000"`
	LobbyStatePollMS int `env:"LOBBY_STATE_POLL_MS" envDefault:"1000"`
	TimerTickMS      int `env:"TIMER_TICK_MS" envDefault:"250"`
	RequestTimeoutMS int `env:"REQUEST_TIMEOUT_MS" envDefault:"10000"`

	RoundLimit       int `env:"ROUND_LIMIT" envDefault:"6"`
	RoundDurationSec int `env:"ROUND_DURATION_SEC" envDefault:"20"`

	ConnectAttempts int `env:"CONNECT_ATTEMPTS" envDefault:"3"`
	ConnectRetryMS  int `env:"CONNECT_RETRY_MS" envDefault:"1000"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func (c ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
