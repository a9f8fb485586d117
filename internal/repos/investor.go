package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

type InvestorRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, investors []*types.Investor) ([]*types.Investor, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Investor, error)
}

type investorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInvestorRepo(db *gorm.DB, baseLog *logger.Logger) InvestorRepo {
	repoLog := baseLog.With("repo", "InvestorRepo")
	return &investorRepo{db: db, log: repoLog}
}

func (ir *investorRepo) Upsert(ctx context.Context, tx *gorm.DB, investors []*types.Investor) ([]*types.Investor, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	if len(investors) == 0 {
		return []*types.Investor{}, nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&investors).Error; err != nil {
		return nil, err
	}
	return investors, nil
}

func (ir *investorRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Investor, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.Investor
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
