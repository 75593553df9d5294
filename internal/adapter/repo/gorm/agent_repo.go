package gormrepo

import (
	"context"
	"errors"
	"sort"

	"gridwar/internal/adapter/repo/gorm/model"
	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AgentRepo struct {
	db *gorm.DB
}

func NewAgentRepo(db *gorm.DB) AgentRepo {
	return AgentRepo{db: db}
}

func (r AgentRepo) GetByID(ctx context.Context, gameID, agentID string) (game.Agent, error) {
	var m model.Agent
	err := getDBFromCtx(ctx, r.db).Where("game_id = ? AND id = ?", gameID, agentID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Agent{}, ports.ErrNotFound
		}
		return game.Agent{}, err
	}
	return toAgent(m), nil
}

func (r AgentRepo) GetByOnchainID(ctx context.Context, gameID string, onchainID int64) (game.Agent, error) {
	var m model.Agent
	err := getDBFromCtx(ctx, r.db).Where("game_id = ? AND onchain_id = ?", gameID, onchainID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Agent{}, ports.ErrNotFound
		}
		return game.Agent{}, err
	}
	return toAgent(m), nil
}

func (r AgentRepo) ListByIDs(ctx context.Context, gameID string, agentIDs []string) ([]game.Agent, error) {
	var rows []model.Agent
	err := getDBFromCtx(ctx, r.db).Where("game_id = ? AND id IN ?", gameID, agentIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]game.Agent, 0, len(rows))
	for _, m := range rows {
		out = append(out, toAgent(m))
	}
	return out, nil
}

// LockByIDs takes FOR UPDATE row locks on the agents and returns their fresh
// state. The ORDER BY fixes the lock acquisition order, which keeps two
// transactions locking overlapping agent sets deadlock-free.
func (r AgentRepo) LockByIDs(ctx context.Context, gameID string, agentIDs []string) ([]game.Agent, error) {
	ids := make([]string, len(agentIDs))
	copy(ids, agentIDs)
	sort.Strings(ids)

	var rows []model.Agent
	err := getDBFromCtx(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("game_id = ? AND id IN ?", gameID, ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]game.Agent, 0, len(rows))
	for _, m := range rows {
		out = append(out, toAgent(m))
	}
	return out, nil
}

func (r AgentRepo) SaveWithVersion(ctx context.Context, agent game.Agent, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)
	if expectedVersion == 0 {
		return db.Create(toAgentModel(agent)).Error
	}

	updates := map[string]any{
		"health":   int32(agent.Health),
		"is_alive": agent.IsAlive,
		"x":        int32(agent.Position.X),
		"y":        int32(agent.Position.Y),
		"tokens":   agent.Tokens,
		"death_at": agent.DeathAt,
		"version":  agent.Version,
	}
	res := db.Model(&model.Agent{}).
		Where("id = ? AND version = ?", agent.ID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func toAgent(m model.Agent) game.Agent {
	return game.Agent{
		ID:        m.ID,
		OnchainID: m.OnchainID,
		GameID:    m.GameID,
		Health:    int(m.Health),
		IsAlive:   m.IsAlive,
		Position:  game.Position{X: int(m.X), Y: int(m.Y)},
		Tokens:    m.Tokens,
		DeathAt:   m.DeathAt,
		Version:   m.Version,
	}
}

func toAgentModel(a game.Agent) *model.Agent {
	return &model.Agent{
		ID:        a.ID,
		OnchainID: a.OnchainID,
		GameID:    a.GameID,
		Health:    int32(a.Health),
		IsAlive:   a.IsAlive,
		X:         int32(a.Position.X),
		Y:         int32(a.Position.Y),
		Tokens:    a.Tokens,
		DeathAt:   a.DeathAt,
		Version:   a.Version,
	}
}
