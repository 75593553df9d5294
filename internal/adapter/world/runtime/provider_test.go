package runtime_test

import (
	"context"
	"testing"
	"time"

	"gridwar/internal/adapter/repo/memory"
	worldruntime "gridwar/internal/adapter/world/runtime"
	"gridwar/internal/domain/game"
)

func newProvider(t *testing.T, now time.Time) (worldruntime.Provider, memory.CooldownRepo) {
	t.Helper()
	store := memory.NewStore()
	cooldowns := memory.NewCooldownRepo(store)
	cfg := worldruntime.DefaultConfig()
	cfg.BaseDelay = time.Hour
	cfg.Now = func() time.Time { return now }
	return worldruntime.NewProvider(cooldowns, cfg), cooldowns
}

func TestCanMoveWithoutCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	provider, _ := newProvider(t, now)

	check, err := provider.CanMove(context.Background(), "game-1", "alice")
	if err != nil {
		t.Fatalf("can move: %v", err)
	}
	if !check.CanMove {
		t.Fatalf("fresh agent must be free to move, got %+v", check)
	}
}

func TestTerrainScalesTheDelay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		terrain game.TerrainType
		want    time.Duration
	}{
		{game.TerrainPlains, time.Hour},
		{game.TerrainRiver, 90 * time.Minute},
		{game.TerrainMountain, 2 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(string(tc.terrain), func(t *testing.T) {
			provider, cooldowns := newProvider(t, now)
			if err := provider.ApplyTerrainEffect(context.Background(), "game-1", "alice", tc.terrain); err != nil {
				t.Fatalf("apply terrain effect: %v", err)
			}
			cd, err := cooldowns.ActiveByAgentAndType(context.Background(), "game-1", "alice", game.CooldownMovement, now)
			if err != nil {
				t.Fatalf("movement cooldown missing: %v", err)
			}
			if want := now.Add(tc.want); !cd.EndsAt.Equal(want) {
				t.Fatalf("cooldown ends at %s, want %s", cd.EndsAt, want)
			}

			check, err := provider.CanMove(context.Background(), "game-1", "alice")
			if err != nil {
				t.Fatalf("can move: %v", err)
			}
			if check.CanMove {
				t.Fatal("movement must be gated while the delay runs")
			}
		})
	}
}
