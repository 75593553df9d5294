package ports

import (
	"context"

	"gridwar/internal/domain/game"
)

type MoveCheck struct {
	CanMove bool
	Reason  string
}

// MovementProvider is the terrain collaborator consulted by the MOVE branch.
// Movement eligibility is gated separately from alliance/battle cooldowns.
type MovementProvider interface {
	CanMove(ctx context.Context, gameID, agentID string) (MoveCheck, error)
	ApplyTerrainEffect(ctx context.Context, gameID, agentID string, terrain game.TerrainType) error
}
