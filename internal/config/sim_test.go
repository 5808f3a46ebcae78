package config

import "testing"

func TestLoadSimDefaults(t *testing.T) {
	cfg, err := LoadSim()
	if err != nil {
		t.Fatalf("LoadSim() error = %v", err)
	}
	if cfg.HTTPAddr != ":8070" || cfg.CountdownSec != 5 || cfg.MaxPlayers != 4 {
		t.Fatalf("unexpected sim config: %+v", cfg)
	}
	if !cfg.PublishRules {
		t.Fatal("PublishRules should default to true")
	}
}

func TestLoadSimOverrides(t *testing.T) {
	t.Setenv("SIM_SEED_FILE", "seed.yaml")
	t.Setenv("SIM_COUNTDOWN_SEC", "2")

	cfg, err := LoadSim()
	if err != nil {
		t.Fatalf("LoadSim() error = %v", err)
	}
	if cfg.SeedFile != "seed.yaml" || cfg.CountdownSec != 2 {
		t.Fatalf("unexpected sim config: %+v", cfg)
	}
}
