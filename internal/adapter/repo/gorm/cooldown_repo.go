package gormrepo

import (
	"context"
	"errors"
	"time"

	"gridwar/internal/adapter/repo/gorm/model"
	"gridwar/internal/app/ports"
	"gridwar/internal/domain/game"

	"gorm.io/gorm"
)

type CooldownRepo struct {
	db *gorm.DB
}

func NewCooldownRepo(db *gorm.DB) CooldownRepo {
	return CooldownRepo{db: db}
}

func (r CooldownRepo) ActiveByAgentAndType(ctx context.Context, gameID, agentID string, cooldownType game.CooldownType, now time.Time) (game.Cooldown, error) {
	var m model.Cooldown
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND agent_id = ? AND type = ? AND ends_at > ?",
			gameID, agentID, string(cooldownType), now).
		Order("ends_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Cooldown{}, ports.ErrNotFound
		}
		return game.Cooldown{}, err
	}
	return game.Cooldown{
		ID:      m.ID,
		GameID:  m.GameID,
		AgentID: m.AgentID,
		Type:    game.CooldownType(m.Type),
		EndsAt:  m.EndsAt,
	}, nil
}

func (r CooldownRepo) Create(ctx context.Context, cooldown game.Cooldown) error {
	m := model.Cooldown{
		ID:      cooldown.ID,
		GameID:  cooldown.GameID,
		AgentID: cooldown.AgentID,
		Type:    string(cooldown.Type),
		EndsAt:  cooldown.EndsAt,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r CooldownRepo) DeleteExpired(ctx context.Context, gameID string, now time.Time) error {
	return getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND ends_at <= ?", gameID, now).
		Delete(&model.Cooldown{}).Error
}
