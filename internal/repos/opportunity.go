package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

type OpportunityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, opportunities []*types.Opportunity) ([]*types.Opportunity, error)
	Update(ctx context.Context, tx *gorm.DB, opportunity *types.Opportunity) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Opportunity, error)
	// GetPublished returns the catalog visible to non-admin flows: only rows
	// with status = publié, newest first.
	GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Opportunity, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Opportunity, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type opportunityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOpportunityRepo(db *gorm.DB, baseLog *logger.Logger) OpportunityRepo {
	repoLog := baseLog.With("repo", "OpportunityRepo")
	return &opportunityRepo{db: db, log: repoLog}
}

func (or *opportunityRepo) Create(ctx context.Context, tx *gorm.DB, opportunities []*types.Opportunity) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	if len(opportunities) == 0 {
		return []*types.Opportunity{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&opportunities).Error; err != nil {
		return nil, err
	}
	return opportunities, nil
}

func (or *opportunityRepo) Update(ctx context.Context, tx *gorm.DB, opportunity *types.Opportunity) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Save(opportunity).Error
}

func (or *opportunityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.Opportunity
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

func (or *opportunityRepo) GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.Opportunity
	if err := transaction.WithContext(ctx).
		Where("status = ?", types.OpportunityStatusPublished).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *opportunityRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Opportunity, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.Opportunity
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *opportunityRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Opportunity{}).
		Where("id = ?", id).
		Update("status", status).Error
}
