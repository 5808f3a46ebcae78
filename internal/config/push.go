package config

import "github.com/caarlos0/env/v11"

type PushConfig struct {
	Enabled     bool   `env:"PUSH_ENABLED" envDefault:"false"`
	TargetsJSON string `env:"PUSH_TARGETS_JSON"`
	TargetsPath string `env:"PUSH_TARGETS_PATH"`
	Workers     int    `env:"PUSH_WORKERS" envDefault:"2"`
	RetryMax    int    `env:"PUSH_RETRY_MAX" envDefault:"3"`
	RetryBaseMS int    `env:"PUSH_RETRY_BASE_MS" envDefault:"500"`
	TimeoutMS   int    `env:"PUSH_TIMEOUT_MS" envDefault:"5000"`
}

func LoadPush() (PushConfig, error) {
	var cfg PushConfig
	err := env.Parse(&cfg)
	return cfg, err
}
