package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

type CooperativeRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, cooperatives []*types.Cooperative) ([]*types.Cooperative, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Cooperative, error)
}

type cooperativeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCooperativeRepo(db *gorm.DB, baseLog *logger.Logger) CooperativeRepo {
	repoLog := baseLog.With("repo", "CooperativeRepo")
	return &cooperativeRepo{db: db, log: repoLog}
}

func (cr *cooperativeRepo) Upsert(ctx context.Context, tx *gorm.DB, cooperatives []*types.Cooperative) ([]*types.Cooperative, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(cooperatives) == 0 {
		return []*types.Cooperative{}, nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&cooperatives).Error; err != nil {
		return nil, err
	}
	return cooperatives, nil
}

func (cr *cooperativeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Cooperative, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Cooperative
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
