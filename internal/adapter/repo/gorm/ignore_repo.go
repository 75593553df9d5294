package gormrepo

import (
	"context"

	"gridwar/internal/adapter/repo/gorm/model"
	"gridwar/internal/app/ports"

	"gorm.io/gorm"
)

type IgnoreRepo struct {
	db *gorm.DB
}

func NewIgnoreRepo(db *gorm.DB) IgnoreRepo {
	return IgnoreRepo{db: db}
}

func (r IgnoreRepo) Create(ctx context.Context, record ports.IgnoreRecord) error {
	m := model.Ignore{
		ID:       record.ID,
		GameID:   record.GameID,
		AgentID:  record.AgentID,
		TargetID: record.TargetID,
		AddedAt:  record.AddedAt,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}
