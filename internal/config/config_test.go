package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GRIDWAR_DB_DSN",
		"GRIDWAR_HTTP_ADDR",
		"GRIDWAR_CHAIN_GATEWAY",
		"GRIDWAR_COMBAT_DURATION",
		"GRIDWAR_RESOLVER_POLL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("http addr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.CombatDuration != time.Hour {
		t.Fatalf("combat duration = %s, want 1h", cfg.CombatDuration)
	}
	if cfg.ResolverPoll != 30*time.Second {
		t.Fatalf("resolver poll = %s, want 30s", cfg.ResolverPoll)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "gridwar.yaml")
	raw := []byte(`
http_addr: ":9090"
database_dsn: "postgres://localhost/gridwar"
combat_duration: "45m"
alliance_cooldown: "2h"
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("http addr = %q, want :9090", cfg.HTTPAddr)
	}
	if cfg.DatabaseDSN != "postgres://localhost/gridwar" {
		t.Fatalf("dsn = %q", cfg.DatabaseDSN)
	}
	if cfg.CombatDuration != 45*time.Minute {
		t.Fatalf("combat duration = %s, want 45m", cfg.CombatDuration)
	}
	if cfg.AllianceCooldown != 2*time.Hour {
		t.Fatalf("alliance cooldown = %s, want 2h", cfg.AllianceCooldown)
	}
	// Untouched keys keep their defaults.
	if cfg.BattleCooldown != time.Hour {
		t.Fatalf("battle cooldown = %s, want default 1h", cfg.BattleCooldown)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "gridwar.yaml")
	if err := os.WriteFile(path, []byte(`combat_duration: "45m"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GRIDWAR_COMBAT_DURATION", "10m")
	t.Setenv("GRIDWAR_DB_DSN", "postgres://env/db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CombatDuration != 10*time.Minute {
		t.Fatalf("combat duration = %s, want env override 10m", cfg.CombatDuration)
	}
	if cfg.DatabaseDSN != "postgres://env/db" {
		t.Fatalf("dsn = %q, want env override", cfg.DatabaseDSN)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "gridwar.yaml")
	if err := os.WriteFile(path, []byte(`combat_duration: "soon"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}
