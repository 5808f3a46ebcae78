package config

import (
	"testing"
	"time"
)

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("AO_PROCESS_ID", "proc-1")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.LobbyListPollMS != 5000 || cfg.LobbyStatePollMS != 1000 {
		t.Fatalf("poll intervals = %d/%d, want 5000/1000", cfg.LobbyListPollMS, cfg.LobbyStatePollMS)
	}
	if cfg.RoundLimit != 6 || cfg.RoundDurationSec != 20 {
		t.Fatalf("rules = %d/%d, want 6/20", cfg.RoundLimit, cfg.RoundDurationSec)
	}
	if cfg.ConnectAttempts != 3 || cfg.ConnectRetryMS != 1000 {
		t.Fatalf("connect = %d/%d", cfg.ConnectAttempts, cfg.ConnectRetryMS)
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Fatalf("RequestTimeout = %s", cfg.RequestTimeout())
	}
	if cfg.HTTPAddr != ":8090" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
}

func TestLoadClientRequiresProcessID(t *testing.T) {
	t.Setenv("AO_PROCESS_ID", "")

	if _, err := LoadClient(); err == nil {
		t.Fatal("LoadClient() expected error, got nil")
	}
}

func TestLoadClientOverrides(t *testing.T) {
	t.Setenv("AO_PROCESS_ID", "proc-1")
	t.Setenv("LOBBY_STATE_POLL_MS", "250")
	t.Setenv("ROUND_LIMIT", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.LobbyStatePollMS != 250 || cfg.RoundLimit != 3 {
		t.Fatalf("unexpected client config: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}
