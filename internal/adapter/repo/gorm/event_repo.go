package gormrepo

import (
	"context"
	"encoding/json"

	"gridwar/internal/adapter/repo/gorm/model"
	"gridwar/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []game.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.DomainEvent, 0, len(events))
	for _, e := range events {
		b, _ := json.Marshal(e.Payload)
		rows = append(rows, model.DomainEvent{
			ID:         e.ID,
			GameID:     e.GameID,
			AgentID:    e.AgentID,
			Type:       e.Type,
			OccurredAt: e.OccurredAt,
			Payload:    b,
		})
	}
	return getDBFromCtx(ctx, r.db).Create(&rows).Error
}

func (r EventRepo) ListByGameAndAgent(ctx context.Context, gameID, agentID string, limit int) ([]game.DomainEvent, error) {
	var rows []model.DomainEvent
	query := getDBFromCtx(ctx, r.db).
		Where("game_id = ? AND agent_id = ?", gameID, agentID).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "occurred_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]game.DomainEvent, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		if len(row.Payload) > 0 {
			_ = json.Unmarshal(row.Payload, &payload)
		}
		out = append(out, game.DomainEvent{
			ID:         row.ID,
			GameID:     row.GameID,
			AgentID:    row.AgentID,
			Type:       row.Type,
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}
