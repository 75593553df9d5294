package ports

import (
	"context"
	"time"

	"gridwar/internal/domain/game"
)

type AgentRepository interface {
	GetByID(ctx context.Context, gameID, agentID string) (game.Agent, error)
	GetByOnchainID(ctx context.Context, gameID string, onchainID int64) (game.Agent, error)
	ListByIDs(ctx context.Context, gameID string, agentIDs []string) ([]game.Agent, error)
	// LockByIDs reads the agents while taking write locks that last until the
	// surrounding transaction commits. Locks are acquired in id order, so two
	// transactions locking overlapping sets cannot deadlock.
	LockByIDs(ctx context.Context, gameID string, agentIDs []string) ([]game.Agent, error)
	SaveWithVersion(ctx context.Context, agent game.Agent, expectedVersion int64) error
}

type AllianceRepository interface {
	ActiveByAgentID(ctx context.Context, gameID, agentID string) (game.Alliance, error)
	ActiveByPair(ctx context.Context, gameID, agentA, agentB string) (game.Alliance, error)
	LatestBrokenByAgentID(ctx context.Context, gameID, agentID string) (game.Alliance, error)
	Create(ctx context.Context, alliance game.Alliance) error
	MarkBroken(ctx context.Context, allianceID string, endedAt time.Time) error
}

type BattleRepository interface {
	Create(ctx context.Context, battle game.Battle) error
	GetByID(ctx context.Context, battleID string) (game.Battle, error)
	ActiveByAgentID(ctx context.Context, gameID, agentID string) (game.Battle, error)
	// ListDue returns Active battles whose start time is at or before cutoff.
	ListDue(ctx context.Context, cutoff time.Time) ([]game.Battle, error)
	// MarkResolved transitions Active -> Resolved atomically. It returns
	// ErrConflict when the battle is no longer Active, which is how a racing
	// resolver instance observes that it lost.
	MarkResolved(ctx context.Context, battleID, winnerID string, endedAt time.Time) error
}

type CooldownRepository interface {
	ActiveByAgentAndType(ctx context.Context, gameID, agentID string, cooldownType game.CooldownType, now time.Time) (game.Cooldown, error)
	Create(ctx context.Context, cooldown game.Cooldown) error
	DeleteExpired(ctx context.Context, gameID string, now time.Time) error
}

type IgnoreRecord struct {
	ID       string
	GameID   string
	AgentID  string
	TargetID string
	AddedAt  time.Time
}

type IgnoreRepository interface {
	Create(ctx context.Context, record IgnoreRecord) error
}

type EventRepository interface {
	Append(ctx context.Context, events []game.DomainEvent) error
	ListByGameAndAgent(ctx context.Context, gameID, agentID string, limit int) ([]game.DomainEvent, error)
}
