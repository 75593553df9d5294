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

type AllianceRepo struct {
	db *gorm.DB
}

func NewAllianceRepo(db *gorm.DB) AllianceRepo {
	return AllianceRepo{db: db}
}

func (r AllianceRepo) ActiveByAgentID(ctx context.Context, gameID, agentID string) (game.Alliance, error) {
	var m model.Alliance
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND status = ? AND (initiator_id = ? OR joiner_id = ?)",
			gameID, string(game.AllianceActive), agentID, agentID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Alliance{}, ports.ErrNotFound
		}
		return game.Alliance{}, err
	}
	return toAlliance(m), nil
}

func (r AllianceRepo) ActiveByPair(ctx context.Context, gameID, agentA, agentB string) (game.Alliance, error) {
	var m model.Alliance
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND status = ? AND ((initiator_id = ? AND joiner_id = ?) OR (initiator_id = ? AND joiner_id = ?))",
			gameID, string(game.AllianceActive), agentA, agentB, agentB, agentA).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Alliance{}, ports.ErrNotFound
		}
		return game.Alliance{}, err
	}
	return toAlliance(m), nil
}

func (r AllianceRepo) LatestBrokenByAgentID(ctx context.Context, gameID, agentID string) (game.Alliance, error) {
	var m model.Alliance
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND status = ? AND (initiator_id = ? OR joiner_id = ?)",
			gameID, string(game.AllianceBroken), agentID, agentID).
		Order("ended_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Alliance{}, ports.ErrNotFound
		}
		return game.Alliance{}, err
	}
	return toAlliance(m), nil
}

func (r AllianceRepo) Create(ctx context.Context, alliance game.Alliance) error {
	m := model.Alliance{
		ID:          alliance.ID,
		GameID:      alliance.GameID,
		InitiatorID: alliance.InitiatorID,
		JoinerID:    alliance.JoinerID,
		Status:      string(alliance.Status),
		FormedAt:    alliance.FormedAt,
		EndedAt:     alliance.EndedAt,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r AllianceRepo) MarkBroken(ctx context.Context, allianceID string, endedAt time.Time) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.Alliance{}).
		Where("id = ? AND status = ?", allianceID, string(game.AllianceActive)).
		Updates(map[string]any{
			"status":   string(game.AllianceBroken),
			"ended_at": endedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func toAlliance(m model.Alliance) game.Alliance {
	return game.Alliance{
		ID:          m.ID,
		GameID:      m.GameID,
		InitiatorID: m.InitiatorID,
		JoinerID:    m.JoinerID,
		Status:      game.AllianceStatus(m.Status),
		FormedAt:    m.FormedAt,
		EndedAt:     m.EndedAt,
	}
}
