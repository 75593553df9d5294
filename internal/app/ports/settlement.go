package ports

import (
	"context"

	"gridwar/internal/domain/game"
)

// TxReference is the opaque transaction reference returned by the chain program.
type TxReference string

type BattleStartParams struct {
	GameOnchainID     int64
	BattleID          string
	Topology          game.BattleType
	AttackerOnchainID int64
	DefenderOnchainID int64
}

type BattleResolveParams struct {
	GameOnchainID      int64
	BattleID           string
	Topology           game.BattleType
	WinnerOnchainID    int64
	AttackerWon        bool
	TransferPercentage int
	// DeadOnchainIDs trigger full-stake transfer for agents that died.
	DeadOnchainIDs []int64
}

// SettlementClient mirrors game state onto the chain program. Calls are
// fire-and-forget-with-logging from the core's point of view: a settlement
// failure is surfaced but never rolls back committed local state.
type SettlementClient interface {
	RegisterAgent(ctx context.Context, gameOnchainID, agentOnchainID int64) (TxReference, error)
	KillAgent(ctx context.Context, gameOnchainID, agentOnchainID int64) (TxReference, error)
	FormAlliance(ctx context.Context, gameOnchainID, initiatorOnchainID, joinerOnchainID int64) (TxReference, error)
	BreakAlliance(ctx context.Context, gameOnchainID, initiatorOnchainID, joinerOnchainID int64) (TxReference, error)
	StartBattle(ctx context.Context, params BattleStartParams) (TxReference, error)
	ResolveBattle(ctx context.Context, params BattleResolveParams) (TxReference, error)
}
