package config

import "github.com/caarlos0/env/v11"

type SimConfig struct {
	HTTPAddr         string `env:"SIM_HTTP_ADDR" envDefault:":8070"`
	ProcessID        string `env:"AO_PROCESS_ID" envDefault:"sim-process"`
	SeedFile         string `env:"SIM_SEED_FILE"`
	CountdownSec     int    `env:"SIM_COUNTDOWN_SEC" envDefault:"5"`
	RoundDurationSec int    `env:"ROUND_DURATION_SEC" envDefault:"20"`
	RoundLimit       int    `env:"ROUND_LIMIT" envDefault:"6"`
	MaxPlayers       int    `env:"SIM_MAX_PLAYERS" envDefault:"4"`
	PublishRules     bool   `env:"SIM_PUBLISH_RULES" envDefault:"true"`
}

func LoadSim() (SimConfig, error) {
	var cfg SimConfig
	err := env.Parse(&cfg)
	return cfg, err
}
