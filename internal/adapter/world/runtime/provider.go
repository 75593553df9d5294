package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"

	"github.com/google/uuid"
)

// Config tunes the movement gate. Terrain scales the base delay, so crossing
// a river costs more downtime than walking plains.
type Config struct {
	BaseDelay          time.Duration
	TerrainMultipliers map[game.TerrainType]float64
	Now                func() time.Time
}

func DefaultConfig() Config {
	return Config{
		BaseDelay: time.Hour,
		TerrainMultipliers: map[game.TerrainType]float64{
			game.TerrainPlains:   1,
			game.TerrainMountain: 2,
			game.TerrainRiver:    1.5,
		},
	}
}

// Provider gates movement through movement-type cooldown rows. The rows live
// in the shared store, so every process instance sees the same gate.
type Provider struct {
	cooldowns ports.CooldownRepository
	cfg       Config
}

func NewProvider(cooldowns ports.CooldownRepository, cfg Config) Provider {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return Provider{cooldowns: cooldowns, cfg: cfg}
}

func (p Provider) CanMove(ctx context.Context, gameID, agentID string) (ports.MoveCheck, error) {
	cd, err := p.cooldowns.ActiveByAgentAndType(ctx, gameID, agentID, game.CooldownMovement, p.cfg.Now())
	if errors.Is(err, ports.ErrNotFound) {
		return ports.MoveCheck{CanMove: true}, nil
	}
	if err != nil {
		return ports.MoveCheck{}, err
	}
	return ports.MoveCheck{
		CanMove: false,
		Reason:  fmt.Sprintf("movement cooldown active until %s", cd.EndsAt.UTC().Format(time.RFC3339)),
	}, nil
}

func (p Provider) ApplyTerrainEffect(ctx context.Context, gameID, agentID string, terrain game.TerrainType) error {
	multiplier, ok := p.cfg.TerrainMultipliers[terrain]
	if !ok {
		multiplier = 1
	}
	delay := time.Duration(float64(p.cfg.BaseDelay) * multiplier)
	return p.cooldowns.Create(ctx, game.Cooldown{
		ID:      uuid.NewString(),
		GameID:  gameID,
		AgentID: agentID,
		Type:    game.CooldownMovement,
		EndsAt:  p.cfg.Now().Add(delay),
	})
}
