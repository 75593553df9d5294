package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr      string
	EventFeedAddr string
	DatabaseDSN   string
	MigrationsDir string
	ChainGateway  string

	CombatDuration   time.Duration
	ResolverPoll     time.Duration
	AllianceCooldown time.Duration
	BattleCooldown   time.Duration
	MovementDelay    time.Duration
}

func Default() Config {
	return Config{
		HTTPAddr:         ":8080",
		EventFeedAddr:    ":8081",
		MigrationsDir:    "./migrations",
		CombatDuration:   time.Hour,
		ResolverPoll:     30 * time.Second,
		AllianceCooldown: 4 * time.Hour,
		BattleCooldown:   time.Hour,
		MovementDelay:    time.Hour,
	}
}

// fileConfig is the YAML shape. Durations are strings ("45m", "1h30m") and
// parsed with time.ParseDuration.
type fileConfig struct {
	HTTPAddr      string `yaml:"http_addr"`
	EventFeedAddr string `yaml:"event_feed_addr"`
	DatabaseDSN   string `yaml:"database_dsn"`
	MigrationsDir string `yaml:"migrations_dir"`
	ChainGateway  string `yaml:"chain_gateway"`

	CombatDuration   string `yaml:"combat_duration"`
	ResolverPoll     string `yaml:"resolver_poll"`
	AllianceCooldown string `yaml:"alliance_cooldown"`
	BattleCooldown   string `yaml:"battle_cooldown"`
	MovementDelay    string `yaml:"movement_delay"`
}

// Load reads the YAML file at path (optional) and then applies environment
// overrides. GRIDWAR_DB_DSN is required for a Postgres-backed run.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var file fileConfig
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := cfg.applyFile(file); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("GRIDWAR_DB_DSN")); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("GRIDWAR_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("GRIDWAR_CHAIN_GATEWAY")); v != "" {
		cfg.ChainGateway = v
	}
	if err := overrideDuration("GRIDWAR_COMBAT_DURATION", &cfg.CombatDuration); err != nil {
		return Config{}, err
	}
	if err := overrideDuration("GRIDWAR_RESOLVER_POLL", &cfg.ResolverPoll); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(file fileConfig) error {
	if file.HTTPAddr != "" {
		c.HTTPAddr = file.HTTPAddr
	}
	if file.EventFeedAddr != "" {
		c.EventFeedAddr = file.EventFeedAddr
	}
	if file.DatabaseDSN != "" {
		c.DatabaseDSN = file.DatabaseDSN
	}
	if file.MigrationsDir != "" {
		c.MigrationsDir = file.MigrationsDir
	}
	if file.ChainGateway != "" {
		c.ChainGateway = file.ChainGateway
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"combat_duration", file.CombatDuration, &c.CombatDuration},
		{"resolver_poll", file.ResolverPoll, &c.ResolverPoll},
		{"alliance_cooldown", file.AllianceCooldown, &c.AllianceCooldown},
		{"battle_cooldown", file.BattleCooldown, &c.BattleCooldown},
		{"movement_delay", file.MovementDelay, &c.MovementDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func overrideDuration(envKey string, dst *time.Duration) error {
	v := strings.TrimSpace(os.Getenv(envKey))
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", envKey, err)
	}
	*dst = parsed
	return nil
}
