package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

type ApplicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, applications []*types.Application) ([]*types.Application, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Application, error)
	GetByOpportunityIDs(ctx context.Context, tx *gorm.DB, opportunityIDs []uuid.UUID) ([]*types.Application, error)
	ExistsForUserAndOpportunity(ctx context.Context, tx *gorm.DB, userID, opportunityID uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	repoLog := baseLog.With("repo", "ApplicationRepo")
	return &applicationRepo{db: db, log: repoLog}
}

func (ar *applicationRepo) Create(ctx context.Context, tx *gorm.DB, applications []*types.Application) ([]*types.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(applications) == 0 {
		return []*types.Application{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (ar *applicationRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Application
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *applicationRepo) GetByOpportunityIDs(ctx context.Context, tx *gorm.DB, opportunityIDs []uuid.UUID) ([]*types.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Application
	if len(opportunityIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("opportunity_id IN ?", opportunityIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *applicationRepo) ExistsForUserAndOpportunity(ctx context.Context, tx *gorm.DB, userID, opportunityID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Application{}).
		Where("user_id = ? AND opportunity_id = ?", userID, opportunityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *applicationRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Application{}).
		Where("id = ?", id).
		Update("status", status).Error
}
