package push

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"synonym-game/internal/config"
)

func ConfigFromEnv(cfg config.PushConfig) (Config, error) {
	out := Config{
		Enabled:             cfg.Enabled,
		Workers:             cfg.Workers,
		RetryMax:            cfg.RetryMax,
		RetryBase:           time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		FailureThreshold:    3,
		CircuitOpenDuration: 30 * time.Second,
		RequestTimeout:      time.Duration(cfg.TimeoutMS) * time.Millisecond,
		DispatchBuffer:      256,
	}
	if !out.Enabled {
		return out, nil
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	raw := strings.TrimSpace(cfg.TargetsJSON)
	if path := strings.TrimSpace(cfg.TargetsPath); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read push targets %q: %w", path, err)
		}
		raw = strings.TrimSpace(string(b))
	}
	if raw == "" {
		return out, nil
	}
	targets, err := parseTargets(raw)
	if err != nil {
		return Config{}, err
	}
	out.Targets = targets
	return out, nil
}

// parseTargets keeps enabled targets with an endpoint. Platform and event
// names are case-insensitive.
func parseTargets(raw string) ([]Target, error) {
	var targets []Target
	if err := json.Unmarshal([]byte(raw), &targets); err != nil {
		return nil, fmt.Errorf("parse push targets: %w", err)
	}
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		t.Platform = strings.ToLower(strings.TrimSpace(t.Platform))
		t.Endpoint = strings.TrimSpace(t.Endpoint)
		if !t.Enabled || t.Endpoint == "" || t.Platform == "" {
			continue
		}
		for i := range t.Events {
			t.Events[i] = strings.ToLower(strings.TrimSpace(t.Events[i]))
		}
		out = append(out, t)
	}
	return out, nil
}
