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

type BattleRepo struct {
	db *gorm.DB
}

func NewBattleRepo(db *gorm.DB) BattleRepo {
	return BattleRepo{db: db}
}

func (r BattleRepo) Create(ctx context.Context, battle game.Battle) error {
	m := toBattleModel(battle)
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}

func (r BattleRepo) GetByID(ctx context.Context, battleID string) (game.Battle, error) {
	var m model.Battle
	err := getDBFromCtx(ctx, r.db).Where("id = ?", battleID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Battle{}, ports.ErrNotFound
		}
		return game.Battle{}, err
	}
	return toBattle(m), nil
}

func (r BattleRepo) ActiveByAgentID(ctx context.Context, gameID, agentID string) (game.Battle, error) {
	var m model.Battle
	err := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND status = ? AND (attacker_id = ? OR defender_id = ? OR attacker_ally_id = ? OR defender_ally_id = ?)",
			gameID, string(game.BattleActive), agentID, agentID, agentID, agentID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return game.Battle{}, ports.ErrNotFound
		}
		return game.Battle{}, err
	}
	return toBattle(m), nil
}

func (r BattleRepo) ListDue(ctx context.Context, cutoff time.Time) ([]game.Battle, error) {
	var rows []model.Battle
	err := getDBFromCtx(ctx, r.db).
		Where("status = ? AND started_at <= ?", string(game.BattleActive), cutoff).
		Order("started_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]game.Battle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toBattle(m))
	}
	return out, nil
}

// MarkResolved is the at-most-once guard: the status predicate in the WHERE
// clause makes the transition a compare-and-swap, so a second resolver racing
// on the same battle updates zero rows and gets ErrConflict.
func (r BattleRepo) MarkResolved(ctx context.Context, battleID, winnerID string, endedAt time.Time) error {
	res := getDBFromCtx(ctx, r.db).Model(&model.Battle{}).
		Where("id = ? AND status = ?", battleID, string(game.BattleActive)).
		Updates(map[string]any{
			"status":    string(game.BattleResolved),
			"winner_id": winnerID,
			"ended_at":  endedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func toBattle(m model.Battle) game.Battle {
	return game.Battle{
		ID:             m.ID,
		GameID:         m.GameID,
		GameOnchainID:  m.GameOnchainID,
		AttackerID:     m.AttackerID,
		AttackerAllyID: m.AttackerAllyID,
		DefenderID:     m.DefenderID,
		DefenderAllyID: m.DefenderAllyID,
		Type:           game.BattleType(m.Type),
		Status:         game.BattleStatus(m.Status),
		TokensStaked:   m.TokensStaked,
		StartedAt:      m.StartedAt,
		EndedAt:        m.EndedAt,
		WinnerID:       m.WinnerID,
	}
}

func toBattleModel(b game.Battle) model.Battle {
	return model.Battle{
		ID:             b.ID,
		GameID:         b.GameID,
		GameOnchainID:  b.GameOnchainID,
		AttackerID:     b.AttackerID,
		AttackerAllyID: b.AttackerAllyID,
		DefenderID:     b.DefenderID,
		DefenderAllyID: b.DefenderAllyID,
		Type:           string(b.Type),
		Status:         string(b.Status),
		TokensStaked:   b.TokensStaked,
		StartedAt:      b.StartedAt,
		EndedAt:        b.EndedAt,
		WinnerID:       b.WinnerID,
	}
}
