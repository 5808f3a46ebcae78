package engine

import (
	"time"

	"synonym-game/internal/config"
	"synonym-game/internal/game"
)

type Config struct {
	ListInterval    time.Duration
	DetailInterval  time.Duration
	TickInterval    time.Duration
	Rules           game.Rules
	ConnectAttempts int
	ConnectRetry    time.Duration
	ReplaySize      int
}

func DefaultConfig() Config {
	return Config{
		ListInterval:    5 * time.Second,
		DetailInterval:  time.Second,
		TickInterval:    250 * time.Millisecond,
		Rules:           game.DefaultRules(),
		ConnectAttempts: 3,
		ConnectRetry:    time.Second,
		ReplaySize:      256,
	}
}

func ConfigFromClient(c config.ClientConfig) Config {
	cfg := DefaultConfig()
	if c.LobbyListPollMS > 0 {
		cfg.ListInterval = time.Duration(c.LobbyListPollMS) * time.Millisecond
	}
	if c.LobbyStatePollMS > 0 {
		cfg.DetailInterval = time.Duration(c.LobbyStatePollMS) * time.Millisecond
	}
	if c.TimerTickMS > 0 {
		cfg.TickInterval = time.Duration(c.TimerTickMS) * time.Millisecond
	}
	if c.RoundLimit > 0 {
		cfg.Rules.RoundLimit = c.RoundLimit
	}
	if c.RoundDurationSec > 0 {
		cfg.Rules.RoundDuration = time.Duration(c.RoundDurationSec) * time.Second
	}
	if c.ConnectAttempts > 0 {
		cfg.ConnectAttempts = c.ConnectAttempts
	}
	if c.ConnectRetryMS >= 0 {
		cfg.ConnectRetry = time.Duration(c.ConnectRetryMS) * time.Millisecond
	}
	return cfg
}
